package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// Ensure IDPsStore implements store.IDPsStore
var _ store.IDPsStore = (*IDPsStore)(nil)

// IDPsStore implements store.IDPsStore using GORM
type IDPsStore struct {
	db *gorm.DB
}

// NewIDPsStore creates a new IDPsStore
func NewIDPsStore(db *gorm.DB) *IDPsStore {
	return &IDPsStore{db: db}
}

func (s *IDPsStore) ListIDPs(ctx context.Context, orgID string) ([]model.IDPConfig, error) {
	var idps []model.IDPConfig
	if err := withContext(s.db, ctx).Where("org_id = ?", orgID).Order("name").Find(&idps).Error; err != nil {
		return nil, err
	}
	return idps, nil
}

func (s *IDPsStore) GetIDP(ctx context.Context, orgID, id string) (*model.IDPConfig, error) {
	var idp model.IDPConfig
	if err := withContext(s.db, ctx).Where("org_id = ? AND id = ?", orgID, id).First(&idp).Error; err != nil {
		return nil, notFound(err)
	}
	return &idp, nil
}

func nameTaken(tx *gorm.DB, idp *model.IDPConfig) error {
	q := tx.Model(&model.IDPConfig{}).Where("org_id = ? AND name = ?", idp.OrgID, idp.Name)
	if idp.ID != "" {
		q = q.Where("id <> ?", idp.ID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *IDPsStore) CreateIDP(ctx context.Context, idp *model.IDPConfig) error {
	return conflict(withContext(s.db, ctx).Transaction(func(tx *gorm.DB) error {
		if err := nameTaken(tx, idp); err != nil {
			return err
		}
		return tx.Create(idp).Error
	}))
}

func (s *IDPsStore) UpdateIDP(ctx context.Context, idp *model.IDPConfig) error {
	return conflict(withContext(s.db, ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.IDPConfig
		if err := tx.Where("org_id = ? AND id = ?", idp.OrgID, idp.ID).First(&existing).Error; err != nil {
			return notFound(err)
		}
		if err := nameTaken(tx, idp); err != nil {
			return err
		}

		if idp.ClientSecret == "" {
			idp.SealedClientSecret = existing.SealedClientSecret
		}
		if idp.State == "" {
			idp.State = existing.State
		}
		idp.CreatedAt = existing.CreatedAt
		return tx.Save(idp).Error
	}))
}

func (s *IDPsStore) DeleteIDP(ctx context.Context, orgID, id string) error {
	return affected(withContext(s.db, ctx).Where("org_id = ? AND id = ?", orgID, id).Delete(&model.IDPConfig{}))
}

func (s *IDPsStore) SetIDPState(ctx context.Context, orgID, id string, state model.State) error {
	return affected(withContext(s.db, ctx).Model(&model.IDPConfig{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Update("state", state))
}
