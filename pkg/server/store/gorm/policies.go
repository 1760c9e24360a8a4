package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/model"
	"github.com/doodlesbykumbi/iam-admin/pkg/policy"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// Ensure PoliciesStore implements store.PoliciesStore
var _ store.PoliciesStore = (*PoliciesStore)(nil)

// PoliciesStore implements store.PoliciesStore using GORM. Each kind lives in
// its own table keyed by org_id.
type PoliciesStore struct {
	db *gorm.DB
}

// NewPoliciesStore creates a new PoliciesStore
func NewPoliciesStore(db *gorm.DB) *PoliciesStore {
	return &PoliciesStore{db: db}
}

func (s *PoliciesStore) GetPolicy(ctx context.Context, orgID string, kind policy.Kind) (*policy.Policy, error) {
	return s.get(withContext(s.db, ctx), orgID, kind)
}

func (s *PoliciesStore) get(db *gorm.DB, orgID string, kind policy.Kind) (*policy.Policy, error) {
	row, err := model.EmptyPolicyRow(kind)
	if err != nil {
		return nil, err
	}
	if err := db.Where("org_id = ?", orgID).First(row).Error; err != nil {
		return nil, notFound(err)
	}
	return row.Policy(), nil
}

func (s *PoliciesStore) CreatePolicy(ctx context.Context, p *policy.Policy) (*policy.Policy, error) {
	row := model.NewPolicyRow(p)
	if row == nil {
		return nil, fmt.Errorf("%s policy for org %s has no settings", p.Kind, p.OrgID)
	}

	err := withContext(s.db, ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(row).Where("org_id = ?", p.OrgID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return store.ErrAlreadyExists
		}
		return tx.Create(row).Error
	})
	if err = conflict(err); err != nil {
		return nil, err
	}
	return row.Policy(), nil
}

func (s *PoliciesStore) UpdatePolicy(ctx context.Context, p *policy.Policy) (*policy.Policy, error) {
	row := model.NewPolicyRow(p)
	if row == nil {
		return nil, fmt.Errorf("%s policy for org %s has no settings", p.Kind, p.OrgID)
	}
	empty, err := model.EmptyPolicyRow(p.Kind)
	if err != nil {
		return nil, err
	}

	db := withContext(s.db, ctx)
	if err := affected(db.Model(empty).Where("org_id = ?", p.OrgID).Updates(row.Columns())); err != nil {
		return nil, err
	}
	return s.get(db, p.OrgID, p.Kind)
}

func (s *PoliciesStore) DeletePolicy(ctx context.Context, orgID string, kind policy.Kind) error {
	row, err := model.EmptyPolicyRow(kind)
	if err != nil {
		return err
	}
	return affected(withContext(s.db, ctx).Where("org_id = ?", orgID).Delete(row))
}
