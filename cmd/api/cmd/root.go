package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/observability"
	"github.com/spec-kit/event-service/internal/persistence"
	"github.com/spec-kit/event-service/internal/repository"
	"github.com/spec-kit/event-service/internal/repository/memstore"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "event-service",
	Short: "Event management API with capacity-safe registrations",
	// Serve is the default when no subcommand is given.
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(adminCmd)
}

// bootstrap loads configuration and builds the logger shared by every command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// openStore returns the Postgres store when a DSN is configured and the
// in-memory store otherwise. The returned Postgres handle may be disabled.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, *persistence.Postgres, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(connectCtx, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if !pg.Enabled() {
		logger.Warn("using in-memory store; data is lost on restart")
		return memstore.New(), pg, nil
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.MigrateUp(cfg.Postgres.DSN, logger); err != nil {
			pg.Close()
			return nil, nil, err
		}
	}
	store, err := repository.NewPostgresStore(pg.PoolHandle())
	if err != nil {
		pg.Close()
		return nil, nil, err
	}
	return store, pg, nil
}
