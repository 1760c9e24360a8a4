package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending database migrations to bring the schema
up to date. The migrations are embedded in the binary.

Example:
  iamctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("migrations")
		if err := runMigrations(os.Stdout, dir); err != nil {
			fail("Migration failed", err)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  iamctl db down      # Rollback 1 migration
  iamctl db down 3    # Rollback 3 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fail("Invalid steps", err)
			}
			steps = n
		}

		dir, _ := cmd.Flags().GetString("migrations")
		if err := runMigrationsDown(os.Stdout, dir, steps); err != nil {
			fail("Rollback failed", err)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("migrations")
		if err := showMigrationStatus(os.Stdout, dir); err != nil {
			fail("Failed to get status", err)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

func runMigrations(out io.Writer, dir string) error {
	m, err := db.NewMigrate(db.URL(), dir)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if version, dirty, applied, err := db.Version(m); err == nil && applied {
		fmt.Fprintf(out, "Current version: %d (dirty: %v)\n", version, dirty)
	}

	changed, err := db.Up(m)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(out, "No migrations to run - database is up to date")
		return nil
	}

	version, _, _, _ := db.Version(m)
	fmt.Fprintf(out, "Migrated to version: %d\n", version)
	return nil
}

func runMigrationsDown(out io.Writer, dir string, steps int) error {
	m, err := db.NewMigrate(db.URL(), dir)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	fmt.Fprintf(out, "Rolling back %d migration(s)...\n", steps)
	if err := db.Down(m, steps); err != nil {
		return err
	}

	version, _, applied, _ := db.Version(m)
	if !applied {
		fmt.Fprintln(out, "Rolled back every migration")
		return nil
	}
	fmt.Fprintf(out, "Rolled back to version: %d\n", version)
	return nil
}

func showMigrationStatus(out io.Writer, dir string) error {
	m, err := db.NewMigrate(db.URL(), dir)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, applied, err := db.Version(m)
	if err != nil {
		return err
	}
	if !applied {
		fmt.Fprintln(out, "No migrations have been applied yet")
		return nil
	}

	fmt.Fprintf(out, "Current version: %d\n", version)
	if dirty {
		fmt.Fprintln(out, "Warning: Database is in a dirty state")
	}
	return nil
}
