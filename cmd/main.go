package main

import (
	"HerbPass/cmd/config"
	migration "HerbPass/cmd/database/migrate"
	"HerbPass/internal/utils"
	"HerbPass/internal/utils/logger"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	programName     = "herbpass"
	shutdownTimeout = 10 * time.Second
)

var configFile string

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (*utils.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := utils.LoadConfig(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, nil, err
	}

	if _, err := maxprocs.Set(maxprocs.Logger(log.Sugar().Infof)); err != nil {
		log.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}

	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func serveCommand() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			defer func() {
				if err := config.CloseDB(db); err != nil {
					log.Error("failed to close database", zap.Error(err))
				}
			}()

			if !skipMigrate {
				if err := migration.Migrate(db); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := config.NewEvidenceStore(ctx, cfg, log)
			if err != nil {
				return err
			}

			app, err := config.NewApp(db, store, cfg, log)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening", zap.String("port", cfg.HTTPPort), zap.String("app_url", cfg.AppURL))
				errCh <- app.Listen(":" + cfg.HTTPPort)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not migrate the schema before serving")
	return cmd
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			defer config.CloseDB(db) //nolint:errcheck

			if err := migration.Migrate(db); err != nil {
				return err
			}
			log.Info("schema migrated")
			return nil
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Herbal batch provenance service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "config.yaml", "path to config file")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(migrateCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
