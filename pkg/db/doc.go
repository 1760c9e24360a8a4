// Package db opens the PostgreSQL connection used by the admin server and
// owns the schema migrations.
//
// # Connection
//
//	box, err := db.DataKey()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	database, err := db.Connect(db.Config{Cipher: box})
//
// The cipher travels in the gorm context so SMTP passwords and identity
// provider client secrets are sealed on save and opened on load.
//
// # Migrations
//
// The SQL migrations under migrations/ are embedded in the binary and run by
// golang-migrate. Versions are tracked in the iam_schema_migrations table.
// NewMigrate also accepts a directory to run migrations from disk during
// development.
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string (required)
//   - IAM_DATA_KEY: Base64 encoded 256 bit key for secret columns
//
// SQL statements are logged when the log level is debug or trace.
package db
