package gorm

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/iam-admin/pkg/secretbox"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/store"
)

// withContext binds ctx to db while keeping the cipher db was opened with.
func withContext(db *gorm.DB, ctx context.Context) *gorm.DB {
	if db.Statement != nil && db.Statement.Context != nil {
		if c, ok := secretbox.FromContext(db.Statement.Context); ok {
			if _, has := secretbox.FromContext(ctx); !has {
				ctx = secretbox.WithCipher(ctx, c)
			}
		}
	}
	return db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

const uniqueViolation = "23505"

// conflict maps a unique constraint violation to store.ErrAlreadyExists. The
// count checks before inserts do not hold under concurrent writers; the
// constraint does.
func conflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return store.ErrAlreadyExists
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return store.ErrAlreadyExists
	}
	return err
}

func affected(tx *gorm.DB) error {
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
