package store

import (
	"context"

	"github.com/doodlesbykumbi/iam-admin/pkg/model"
)

type SMTPStore interface {
	// GetSMTPConfig returns ErrNotFound until a configuration is saved.
	GetSMTPConfig(ctx context.Context) (*model.SMTPConfig, error)

	// SaveSMTPConfig creates or replaces the configuration. An empty password
	// keeps the stored one.
	SaveSMTPConfig(ctx context.Context, cfg *model.SMTPConfig) error
}
