package store

import (
	"context"

	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
)

// PoliciesStore abstracts password policy storage. Policies returned by the
// store always have Default set to false; instance defaults are applied by callers.
type PoliciesStore interface {
	// GetPolicy returns ErrNotFound if the organization has no policy of this kind.
	GetPolicy(ctx context.Context, orgID string, kind policy.Kind) (*policy.Policy, error)

	// CreatePolicy returns ErrAlreadyExists if the organization already has one.
	CreatePolicy(ctx context.Context, p *policy.Policy) (*policy.Policy, error)

	// UpdatePolicy returns ErrNotFound if there is nothing to modify.
	UpdatePolicy(ctx context.Context, p *policy.Policy) (*policy.Policy, error)

	// DeletePolicy returns ErrNotFound if there is nothing to delete.
	DeletePolicy(ctx context.Context, orgID string, kind policy.Kind) error
}
