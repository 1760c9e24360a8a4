// Package store provides storage abstractions for the IAM administration server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints to be decoupled from the specific database implementation.
// The gorm subpackage implements them on PostgreSQL; endpoint tests use mocks.
//
// # Available Stores
//
//   - OrgsStore: organizations and their allowed origins
//   - PoliciesStore: password complexity, age and lockout policies
//   - SMTPStore: the instance-wide SMTP configuration
//   - IDPsStore: OIDC identity providers of an organization
//   - TextsStore: custom message texts
//   - HealthStore: database connectivity
//
// # Errors
//
// Lookups of missing rows return ErrNotFound. Creating a row that already
// exists returns ErrAlreadyExists. Callers test with errors.Is:
//
//	p, err := policies.GetPolicy(ctx, orgID, policy.KindLockout)
//	if errors.Is(err, store.ErrNotFound) {
//	    // fall back to the instance default
//	}
package store
