package store

import (
	"context"

	"github.com/doodlesbykumbi/iam-admin/pkg/model"
)

// IDPsStore abstracts identity provider storage, always scoped to one organization.
type IDPsStore interface {
	ListIDPs(ctx context.Context, orgID string) ([]model.IDPConfig, error)
	GetIDP(ctx context.Context, orgID, id string) (*model.IDPConfig, error)

	// CreateIDP returns ErrAlreadyExists if the organization has a provider of the same name.
	CreateIDP(ctx context.Context, idp *model.IDPConfig) error

	// UpdateIDP keeps the stored client secret when idp.ClientSecret is empty.
	UpdateIDP(ctx context.Context, idp *model.IDPConfig) error
	DeleteIDP(ctx context.Context, orgID, id string) error
	SetIDPState(ctx context.Context, orgID, id string, state model.State) error
}
