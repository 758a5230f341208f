package main

import (
	"fmt"
	"os"
	"time"

	pricingapp "github.com/househero/backend/internal/application/pricing"
	"github.com/househero/backend/internal/domain/pricing"
	"github.com/househero/backend/internal/infrastructure/cache"
	"github.com/househero/backend/internal/infrastructure/config"
	"github.com/househero/backend/internal/infrastructure/logger"
	"github.com/househero/backend/internal/infrastructure/persistence"
	"github.com/househero/backend/internal/infrastructure/persistence/models"
	"github.com/househero/backend/internal/infrastructure/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the pricing catalogue, skipping existing category/type pairs",
	Long: `Seed loads the price list embedded in the binary, or the YAML file given
with --file, and inserts every item whose category and service type are not
already present. Running it twice is harmless.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

var autoMigrateCmd = &cobra.Command{
	Use:   "automigrate",
	Short: "Create or update tables from the GORM models (development SQLite databases)",
	Args:  cobra.NoArgs,
	RunE:  runAutoMigrate,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML price list to load instead of the embedded default")
}

func openDatabase() (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.GormLevelForEnv(cfg.App.Env), logger.WithSlowThreshold(time.Second))
	return persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
}

func runSeed(cmd *cobra.Command, args []string) error {
	items, err := loadPriceList()
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// With Redis configured, seeding also clears the cache the server reads.
	var pricingCache cache.Cache
	if cfg.Redis.Enabled() {
		client, err := cache.NewRedisClient(cmd.Context(), cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, cached pricing will expire on its own", zap.Error(err))
		} else {
			defer client.Close()
			pricingCache = cache.NewRedisCache(client, "househero:")
		}
	}

	svc := pricingapp.NewService(persistence.NewGormPricingRepository(db.DB), pricingCache, cfg.Redis.CacheTTL, log)
	inserted, err := svc.Seed(cmd.Context(), items)
	if err != nil {
		return err
	}
	log.Info("Pricing seeded",
		zap.Int("inserted", inserted),
		zap.Int("skipped", len(items)-inserted),
	)
	return nil
}

func loadPriceList() ([]pricing.Item, error) {
	if seedFile == "" {
		return seed.DefaultPricing()
	}
	f, err := os.Open(seedFile)
	if err != nil {
		return nil, fmt.Errorf("open price list: %w", err)
	}
	defer f.Close()
	return seed.ParsePricing(f)
}

func runAutoMigrate(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.Driver() == config.DriverPostgres {
		log.Warn("automigrate on PostgreSQL bypasses versioned migrations; prefer 'migrate up'")
	}
	if err := db.DB.WithContext(cmd.Context()).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	log.Info("Schema synchronized", zap.Int("models", len(models.All())))
	return nil
}
