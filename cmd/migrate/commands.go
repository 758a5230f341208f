package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/househero/backend/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeFn, err := openMigrator()
		if err != nil {
			return err
		}
		defer closeFn()
		return m.Up()
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeFn, err := openMigrator()
		if err != nil {
			return err
		}
		defer closeFn()
		return m.Down()
	},
}

var stepsCmd = &cobra.Command{
	Use:   "steps N",
	Short: "Apply N migrations (negative N rolls back)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n == 0 {
			return fmt.Errorf("steps must be a non-zero integer, got %q", args[0])
		}
		m, closeFn, err := openMigrator()
		if err != nil {
			return err
		}
		defer closeFn()
		return m.Steps(n)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, closeFn, err := openMigrator()
		if err != nil {
			return err
		}
		defer closeFn()

		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		if dirty {
			log.Warn("Database is dirty; fix the failed migration and run 'migrate force <version>'")
		}
		return nil
	},
}

var forceCmd = &cobra.Command{
	Use:   "force VERSION",
	Short: "Set the schema version without running migrations (clears the dirty flag)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		m, closeFn, err := openMigrator()
		if err != nil {
			return err
		}
		defer closeFn()
		return m.Force(version)
	},
}

var createDir string

var createCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create the next numbered up/down migration pair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mf, err := migration.CreateMigration(createDir, args[0], time.Now())
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createDir, "dir", migration.SourceDir, "Directory the migration files are written to")
}
