package identity

import (
	"context"
	"net"
	"slices"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Administrative roles carried in the roles claim.
const (
	// RoleIAMAdmin may manage every organization and the instance settings.
	RoleIAMAdmin = "iam_admin"
	// RoleOrgOwner may manage the organization named in the org claim.
	RoleOrgOwner = "org_owner"
)

// Identity represents the authenticated administrator of a request.
type Identity struct {
	// Token claims
	Subject   string
	OrgID     string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Request context
	RemoteIP net.IP
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// HasRole reports whether role is among the identity's roles.
func (i *Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

func (i *Identity) IsIAMAdmin() bool {
	return i.HasRole(RoleIAMAdmin)
}

// CanManageOrg reports whether the identity may change the organization orgID.
func (i *Identity) CanManageOrg(orgID string) bool {
	if i.IsIAMAdmin() {
		return true
	}
	return i.HasRole(RoleOrgOwner) && i.OrgID != "" && i.OrgID == orgID
}

// ClientIP returns the remote IP as a string, or "" if unknown.
func (i *Identity) ClientIP() string {
	if i.RemoteIP == nil {
		return ""
	}
	return i.RemoteIP.String()
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
