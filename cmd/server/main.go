package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbecker/postal/internal"
	"github.com/mbecker/postal/internal/batch"
	"github.com/mbecker/postal/internal/handler/api"
	"github.com/mbecker/postal/internal/middleware"
	"github.com/mbecker/postal/internal/postgres"
	"github.com/mbecker/postal/internal/router"
	"github.com/mbecker/postal/internal/storage"
	"github.com/mbecker/postal/internal/telemetry"
	"github.com/mbecker/postal/internal/validation"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize result store
	recordStore := postgres.NewRecordStore(pool)

	// Initialize telemetry
	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// Initialize validation providers
	logger.Info("Initializing validation providers...")
	primary := validation.NewUSPSValidator(validation.USPSConfig{
		ClientID:     cfg.USPS.ClientID,
		ClientSecret: cfg.USPS.ClientSecret,
		BaseURL:      cfg.USPS.BaseURL,
		TokenURL:     cfg.USPS.TokenURL,
		Logger:       logger,
		Metrics:      metrics,
	})
	secondary := validation.NewSmartyValidator(validation.SmartyConfig{
		AuthID:    cfg.Smarty.AuthID,
		AuthToken: cfg.Smarty.AuthToken,
		BaseURL:   cfg.Smarty.BaseURL,
		Logger:    logger,
	})
	if cfg.Smarty.AuthID == "" || cfg.Smarty.AuthToken == "" {
		logger.Warn("Smarty credentials not configured; fallback provider will fail immediately")
	}
	orchestrator := validation.NewFailoverValidator(primary, secondary, logger, metrics)
	logger.Info("Validation providers initialized")

	// Initialize object storage for batch sources
	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}
	logger.Info("Object storage initialized", "provider", cfg.Storage.Provider)

	// Initialize batch driver and handler
	batchDriver := batch.NewDriver(orchestrator, recordStore, objectStore, logger, metrics)
	validateHandler := api.NewValidateHandler(orchestrator, recordStore, batchDriver, logger)

	// Build router
	r := router.New(
		middleware.RequestID,
		middleware.WithRequestLogger(logger),
		middleware.Recover,
	)
	r.Post("/validate", validateHandler.Validate)
	r.Get("/healthz", validateHandler.Health)
	r.Handle(http.MethodGet, "/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
