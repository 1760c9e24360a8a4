package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// Ensure SMTPStore implements store.SMTPStore
var _ store.SMTPStore = (*SMTPStore)(nil)

// SMTPStore implements store.SMTPStore using GORM
type SMTPStore struct {
	db *gorm.DB
}

// NewSMTPStore creates a new SMTPStore
func NewSMTPStore(db *gorm.DB) *SMTPStore {
	return &SMTPStore{db: db}
}

func (s *SMTPStore) GetSMTPConfig(ctx context.Context) (*model.SMTPConfig, error) {
	var cfg model.SMTPConfig
	if err := withContext(s.db, ctx).Where("id = ?", model.SMTPConfigID).First(&cfg).Error; err != nil {
		return nil, notFound(err)
	}
	return &cfg, nil
}

func (s *SMTPStore) SaveSMTPConfig(ctx context.Context, cfg *model.SMTPConfig) error {
	cfg.ID = model.SMTPConfigID
	return withContext(s.db, ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.SMTPConfig
		err := tx.Where("id = ?", cfg.ID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(cfg).Error
		}
		if err != nil {
			return err
		}

		if cfg.Password == "" {
			cfg.SealedPassword = existing.SealedPassword
		}
		cfg.CreatedAt = existing.CreatedAt
		return tx.Save(cfg).Error
	})
}
