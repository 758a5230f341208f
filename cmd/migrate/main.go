package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/househero/backend/internal/infrastructure/config"
	"github.com/househero/backend/internal/infrastructure/logger"
	"github.com/househero/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the House Hero database schema and seed data",
	Long: `Apply, roll back and inspect the versioned SQL migrations embedded in
the binary, create new migration files, and seed the pricing catalogue.

Connection settings come from config.toml and HH_* environment variables;
DATABASE_URL overrides them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		log, err = logger.New(&logger.Config{
			Level:      logLevel,
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "2006-01-02 15:04:05",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = logger.Sync(log)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(upCmd, downCmd, stepsCmd, versionCmd, forceCmd, createCmd, autoMigrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openMigrator connects to Postgres and returns a migrator over the embedded files
func openMigrator() (*migration.Migrator, func(), error) {
	if cfg.Database.Driver() != config.DriverPostgres {
		return nil, nil, fmt.Errorf("SQL migrations target PostgreSQL; use 'migrate automigrate' for %s", cfg.Database.Driver())
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	m, err := migration.New(db, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.Debug("Connected", zap.String("url", cfg.Database.RedactedURL()))
	return m, func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}, nil
}
