package store

import (
	"context"

	"github.com/doodlesbykumbi/iam-admin/pkg/customtext"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
)

type TextsStore interface {
	// GetCustomText returns ErrNotFound if the organization kept the default.
	GetCustomText(ctx context.Context, orgID string, key customtext.Key, lang string) (*model.CustomText, error)

	// SetCustomText creates or replaces an override.
	SetCustomText(ctx context.Context, text *model.CustomText) error

	// ResetCustomText deletes an override. It returns ErrNotFound if there was none.
	ResetCustomText(ctx context.Context, orgID string, key customtext.Key, lang string) error
}
