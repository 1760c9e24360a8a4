package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/iam-admin/pkg/audit"
	"github.com/doodlesbykumbi/iam-admin/pkg/config"
	"github.com/doodlesbykumbi/iam-admin/pkg/db"
	"github.com/doodlesbykumbi/iam-admin/pkg/logging"
	"github.com/doodlesbykumbi/iam-admin/pkg/server"
	"github.com/doodlesbykumbi/iam-admin/pkg/server/endpoints"
)

const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the IAM administration server",
	Long: `Run the IAM administration server.

To run the server requires the environment variables DATABASE_URL,
IAM_DATA_KEY and IAM_TOKEN_SIGNING_KEY.

By default, database migrations are run on startup. Use --no-migrate to skip.
SIGHUP reloads the logging settings from the configuration file.`,
	Run: func(cmd *cobra.Command, args []string) {
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		dir, _ := cmd.Flags().GetString("migrations")
		if err := runServer(!noMigrate, dir); err != nil {
			fail("Server failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().String("migrations", "", "run migrations from this directory instead of the embedded ones")
}

func runServer(migrate bool, migrationsDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := logging.Setup(cfg); err != nil {
		return err
	}

	// Fail fast on missing keys before touching the database.
	box, err := db.DataKey()
	if err != nil {
		return err
	}
	authn, err := authenticator(cfg)
	if err != nil {
		return err
	}

	if migrate {
		logrus.Info("Running database migrations...")
		if err := runMigrations(os.Stdout, migrationsDir); err != nil {
			return err
		}
	}

	database, err := db.Connect(db.Config{Cipher: box})
	if err != nil {
		return err
	}

	if cfg.AuditDatabase {
		sqlDB, err := database.DB()
		if err != nil {
			return err
		}
		audit.SetStore(audit.NewStoreWithDB(sqlDB))
	}

	s := server.NewServer(cfg, database, authn)
	endpoints.RegisterAll(s)

	errs := make(chan error, 1)
	go func() { errs <- s.Start() }()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	for {
		select {
		case err := <-errs:
			return err
		case sig := <-signals:
			if sig == syscall.SIGHUP {
				reloadLogging()
				continue
			}
			logrus.WithField("signal", sig.String()).Info("Shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			err := s.Shutdown(ctx)
			cancel()
			return err
		}
	}
}

// reloadLogging applies log level and format changes without a restart.
// Everything else needs one.
func reloadLogging() {
	if err := config.Reload(); err != nil {
		logrus.WithError(err).Error("Failed to reload configuration")
		return
	}
	if err := logging.Setup(config.Get()); err != nil {
		logrus.WithError(err).Error("Failed to apply logging configuration")
		return
	}
	logrus.Info("Reloaded logging configuration")
}
