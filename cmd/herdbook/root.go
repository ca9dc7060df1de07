package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/repository/gormdb"
	"github.com/mamadbah2/herdbook/pkg/logger"
)

var (
	envFile    string
	cfg        *config.Config
	baseLogger *zap.Logger
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "herdbook",
		Short: "herdbook keeps breeding and lactation records for livestock farms",
		Long: `herdbook records animals, services, pregnancy checks, milk production,
lactations, treatments and notes for each farm, and sends a weekly herd report.

Configuration is read from HERDBOOK_* environment variables, optionally
loaded from a .env file first.

  Examples:
    HERDBOOK_DB_DRIVER          postgres or sqlite
    HERDBOOK_DB_DSN             database connection string
    HERDBOOK_AUTH_SECRET        token signing secret (16+ characters)
    HERDBOOK_REPORT_CRON_SCHEDULE  weekly report schedule`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(envFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			l, err := logger.New(loaded.LogLevel)
			if err != nil {
				return err
			}
			cfg, baseLogger = loaded, l
			zap.ReplaceGlobals(baseLogger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if baseLogger != nil {
				_ = baseLogger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"env file to load before reading the environment (default: ./.env when present)")

	rootCmd.AddCommand(getServeCmd())
	rootCmd.AddCommand(getMigrateCmd())
	rootCmd.AddCommand(getFarmCmd())
	rootCmd.AddCommand(getReportCmd())

	return rootCmd
}

func openStore() (*gormdb.Store, error) {
	store, err := gormdb.Open(cfg.Database, baseLogger.Named("repo.gorm"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}
