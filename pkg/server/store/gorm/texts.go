package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/customtext"
	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// Ensure TextsStore implements store.TextsStore
var _ store.TextsStore = (*TextsStore)(nil)

// TextsStore implements store.TextsStore using GORM
type TextsStore struct {
	db *gorm.DB
}

// NewTextsStore creates a new TextsStore
func NewTextsStore(db *gorm.DB) *TextsStore {
	return &TextsStore{db: db}
}

const textKeyQuery = "org_id = ? AND template_key = ? AND language = ?"

func (s *TextsStore) GetCustomText(ctx context.Context, orgID string, key customtext.Key, lang string) (*model.CustomText, error) {
	var text model.CustomText
	if err := withContext(s.db, ctx).Where(textKeyQuery, orgID, key, lang).First(&text).Error; err != nil {
		return nil, notFound(err)
	}
	return &text, nil
}

func (s *TextsStore) SetCustomText(ctx context.Context, text *model.CustomText) error {
	return withContext(s.db, ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.CustomText
		err := tx.Where(textKeyQuery, text.OrgID, text.Key, text.Language).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(text).Error
		}
		if err != nil {
			return err
		}
		text.CreatedAt = existing.CreatedAt
		return tx.Save(text).Error
	})
}

func (s *TextsStore) ResetCustomText(ctx context.Context, orgID string, key customtext.Key, lang string) error {
	return affected(withContext(s.db, ctx).Where(textKeyQuery, orgID, key, lang).Delete(&model.CustomText{}))
}
