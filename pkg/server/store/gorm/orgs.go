package gorm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// Ensure OrgsStore implements store.OrgsStore
var _ store.OrgsStore = (*OrgsStore)(nil)

// OrgsStore implements store.OrgsStore using GORM
type OrgsStore struct {
	db *gorm.DB
}

// NewOrgsStore creates a new OrgsStore
func NewOrgsStore(db *gorm.DB) *OrgsStore {
	return &OrgsStore{db: db}
}

func (s *OrgsStore) ListOrgs(ctx context.Context) ([]model.Org, error) {
	var orgs []model.Org
	if err := withContext(s.db, ctx).Order("name").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// GetOrg looks ref up by id when it parses as a UUID, by name otherwise.
func (s *OrgsStore) GetOrg(ctx context.Context, ref string) (*model.Org, error) {
	column := "name"
	if _, err := uuid.Parse(ref); err == nil {
		column = "id"
	}

	var org model.Org
	if err := withContext(s.db, ctx).Where(column+" = ?", ref).First(&org).Error; err != nil {
		return nil, notFound(err)
	}
	return &org, nil
}

func (s *OrgsStore) CreateOrg(ctx context.Context, org *model.Org) error {
	return conflict(withContext(s.db, ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Org{}).Where("name = ?", org.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return store.ErrAlreadyExists
		}
		return tx.Create(org).Error
	}))
}

func (s *OrgsStore) UpdateOrg(ctx context.Context, org *model.Org) error {
	return conflict(withContext(s.db, ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Org{}).Where("name = ? AND id <> ?", org.Name, org.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return store.ErrAlreadyExists
		}
		return affected(tx.Model(&model.Org{}).Where("id = ?", org.ID).Updates(map[string]interface{}{
			"name":            org.Name,
			"primary_domain":  org.PrimaryDomain,
			"allowed_origins": org.AllowedOrigins,
		}))
	}))
}

// DeleteOrg relies on ON DELETE CASCADE to remove dependent rows.
func (s *OrgsStore) DeleteOrg(ctx context.Context, id string) error {
	return affected(withContext(s.db, ctx).Where("id = ?", id).Delete(&model.Org{}))
}

func (s *OrgsStore) SetOrgState(ctx context.Context, id string, state model.State) error {
	return affected(withContext(s.db, ctx).Model(&model.Org{}).Where("id = ?", id).Update("state", state))
}

func allowedOrigins(tx *gorm.DB, id string) ([]string, error) {
	var org model.Org
	if err := tx.Select("allowed_origins").Where("id = ?", id).First(&org).Error; err != nil {
		return nil, notFound(err)
	}
	return []string(org.AllowedOrigins), nil
}

// AddAllowedOrigin appends in SQL so concurrent changes to the same org are
// not lost.
func (s *OrgsStore) AddAllowedOrigin(ctx context.Context, id, o string) ([]string, error) {
	var origins []string
	err := withContext(s.db, ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`UPDATE orgs SET allowed_origins = array_append(allowed_origins, ?), updated_at = now() `+
			`WHERE id = ? AND NOT (? = ANY(allowed_origins))`, o, id, o)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Missing org or origin already present.
			if _, err := allowedOrigins(tx, id); err != nil {
				return err
			}
			return fmt.Errorf("origin %s: %w", o, store.ErrAlreadyExists)
		}
		var err error
		origins, err = allowedOrigins(tx, id)
		return err
	})
	return origins, err
}

func (s *OrgsStore) RemoveAllowedOrigin(ctx context.Context, id, o string) ([]string, error) {
	var origins []string
	err := withContext(s.db, ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`UPDATE orgs SET allowed_origins = array_remove(allowed_origins, ?), updated_at = now() `+
			`WHERE id = ? AND ? = ANY(allowed_origins)`, o, id, o)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("origin %s: %w", o, store.ErrNotFound)
		}
		var err error
		origins, err = allowedOrigins(tx, id)
		return err
	})
	return origins, err
}

func (s *OrgsStore) AllowedOrigins(ctx context.Context) ([]string, error) {
	rows, err := withContext(s.db, ctx).
		Raw("SELECT DISTINCT unnest(allowed_origins) FROM orgs WHERE state = ?", model.StateActive).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	origins := []string{}
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		origins = append(origins, o)
	}
	return origins, rows.Err()
}
