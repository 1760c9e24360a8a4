// Package model defines the database models for the IAM administration API.
//
// # Core Models
//
//   - Org: an organization with its allowed origins
//   - ComplexityPolicy, AgePolicy, LockoutPolicy: per-organization password policies
//   - SMTPConfig: the instance-wide mail sender, password sealed at rest
//   - IDPConfig: an OIDC identity provider of an organization, client secret sealed at rest
//   - CustomText: an organization's override of a message template in one language
//
// # Sealed Columns
//
// SMTPConfig and IDPConfig seal their secrets in gorm hooks. The cipher is read
// from the statement context, so the *gorm.DB must be derived from a context
// built with secretbox.WithCipher:
//
//	db = db.WithContext(secretbox.WithCipher(ctx, box))
package model
