package db

import (
	"context"
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/iam-admin/pkg/logging"
	"github.com/doodlesbykumbi/iam-admin/pkg/secretbox"
)

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var)
	URL string
	// Cipher seals SMTP passwords and IdP client secrets. Optional for
	// commands that never touch sealed columns.
	Cipher secretbox.Cipher
}

// Connect establishes a database connection.
// If no URL is provided, it reads from DATABASE_URL environment variable.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logging.GormLogLevel()),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return WithCipher(db, cfg.Cipher), nil
}

// WithCipher returns a session whose context carries c, so model hooks can
// seal and open secret columns. A nil cipher leaves db unchanged.
func WithCipher(db *gorm.DB, c secretbox.Cipher) *gorm.DB {
	if c == nil {
		return db
	}
	return db.WithContext(secretbox.WithCipher(context.Background(), c))
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}

// DataKey reads the base64 IAM_DATA_KEY from the environment and builds the
// cipher for secret columns.
func DataKey() (*secretbox.Box, error) {
	encoded, ok := os.LookupEnv("IAM_DATA_KEY")
	if !ok || encoded == "" {
		return nil, fmt.Errorf("IAM_DATA_KEY environment variable is required")
	}
	box, err := secretbox.NewFromBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid IAM_DATA_KEY: %w", err)
	}
	return box, nil
}
