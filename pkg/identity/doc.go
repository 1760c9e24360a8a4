// Package identity provides the authenticated administrator of a request.
//
// An Identity combines the claims of a verified admin token (subject,
// organization, roles) with request context such as the client IP.
//
// # Basic Usage
//
//	id := &identity.Identity{Subject: "alice", Roles: []string{identity.RoleIAMAdmin}}
//	ctx = identity.Set(ctx, id.WithRemoteIP(clientIP))
//
//	id, ok := identity.Get(ctx)
//	if ok && id.CanManageOrg(orgID) {
//	    // proceed
//	}
//
// # Roles
//
//   - iam_admin: every organization, plus instance-wide settings such as SMTP
//   - org_owner: only the organization in the token's org claim
package identity
