package store

import (
	"context"

	"github.com/doodlesbykumbi/iam-admin/pkg/model"
)

// OrgsStore abstracts organization storage operations.
// An org reference is either the organization id or its unique name.
type OrgsStore interface {
	ListOrgs(ctx context.Context) ([]model.Org, error)

	// GetOrg returns ErrNotFound if no organization matches ref.
	GetOrg(ctx context.Context, ref string) (*model.Org, error)

	// CreateOrg returns ErrAlreadyExists if the name is taken.
	CreateOrg(ctx context.Context, org *model.Org) error

	// UpdateOrg saves name, primary domain and allowed origins.
	UpdateOrg(ctx context.Context, org *model.Org) error

	// DeleteOrg removes an organization with its policies, providers and texts.
	DeleteOrg(ctx context.Context, id string) error

	SetOrgState(ctx context.Context, id string, state model.State) error

	// AddAllowedOrigin appends origin to the org's allowed origins and returns
	// the new list. It returns ErrAlreadyExists if the origin is registered.
	AddAllowedOrigin(ctx context.Context, id, origin string) ([]string, error)

	// RemoveAllowedOrigin returns ErrNotFound if the origin is not registered.
	RemoveAllowedOrigin(ctx context.Context, id, origin string) ([]string, error)

	// AllowedOrigins returns the union of the allowed origins of active organizations.
	AllowedOrigins(ctx context.Context) ([]string, error)
}
