package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

var _ store.HealthStore = (*HealthStore)(nil)

// HealthStore pings the database behind a gorm connection.
type HealthStore struct {
	db *gorm.DB
}

func NewHealthStore(db *gorm.DB) *HealthStore {
	return &HealthStore{db: db}
}

// CheckConnectivity pings the pool and then runs a trivial query, so a
// database that accepts connections but cannot serve reads is reported too.
func (s *HealthStore) CheckConnectivity(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("database handle unavailable: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	var one int
	return s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}
