package config

import (
	"HerbPass/internal/api/handlers"
	"HerbPass/internal/api/presenters"
	"HerbPass/internal/api/routes"
	"HerbPass/internal/middleware"
	"HerbPass/internal/utils"
	"HerbPass/internal/utils/locator"
	"HerbPass/internal/utils/metrics"
	"HerbPass/internal/utils/storage"
	"HerbPass/pkg/batch"
	"HerbPass/pkg/ledger"
	"HerbPass/pkg/verification"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB, store storage.EvidenceStore, cfg *utils.Config, log *zap.Logger) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:      "HerbPass",
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler: presenters.ErrorHandler,
	})
	middlewares := middleware.NewMiddleware(log)
	validator := utils.NewValidator()

	// setting up access log, recovery and limiter
	if err := os.MkdirAll(filepath.Dir(cfg.AccessLogFile), os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating logs directory: %w", err)
	}
	file, err := os.OpenFile(
		cfg.AccessLogFile,
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, fmt.Errorf("error opening access log: %w", err)
	}
	app.Hooks().OnShutdown(file.Close)

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     file,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: 1 * time.Second,
	}))

	// utils
	registry := metrics.NewRegistry()
	ledgerMetrics := metrics.NewLedger(registry)
	codec := locator.NewCodec(locator.DefaultOptions())
	clock := utils.NewClock()

	// Repository
	batchRepository := batch.NewBatchRepository(db)
	ledgerRepository := ledger.NewLedgerRepository(db)
	verificationRepository := verification.NewVerificationRepository(db)

	// Service
	batchService := batch.NewBatchService(batchRepository, store, codec, batch.Options{
		BaseURL: cfg.AppURL,
		Clock:   clock,
		Logger:  log.Named("batch"),
		Metrics: ledgerMetrics,
	})
	ledgerService := ledger.NewLedgerService(ledgerRepository, store, ledger.Options{
		DefaultStatus: cfg.DefaultPharmaStatus,
		Clock:         clock,
		Logger:        log.Named("ledger"),
		Metrics:       ledgerMetrics,
	})
	verificationService := verification.NewVerificationService(verificationRepository, log.Named("verification"))

	// Handler
	batchHandler := handlers.NewBatchHandler(batchService, verificationService, validator)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, validator)
	artifactHandler := handlers.NewArtifactHandler(store)

	// routes
	routesConfig := routes.Config{
		App:             app,
		BatchHandler:    batchHandler,
		LedgerHandler:   ledgerHandler,
		ArtifactHandler: artifactHandler,
		Middleware:      middlewares,
		Metrics:         adaptor.HTTPHandler(metrics.Handler(registry)),
	}
	routesConfig.Setup()
	return app, nil
}
