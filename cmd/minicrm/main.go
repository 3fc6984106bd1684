package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/suteetoe/minicrm/internal/model"
	"github.com/suteetoe/minicrm/pkg/config"
	"github.com/suteetoe/minicrm/pkg/database"
	"github.com/suteetoe/minicrm/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "minicrm"

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "minicrm - companies, leads, deals and activities behind a session API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, initializes the logger and opens the
// database with the schema migrated.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogConfig()...)

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.MigrateModels(db, model.All()...); err != nil {
		_ = database.Close(db)
		return nil, nil, nil, err
	}
	log.Info("Database connection established", zap.String("driver", cfg.DB.Driver))

	return cfg, log, db, nil
}
