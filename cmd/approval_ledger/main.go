package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/bp848/mqdriven-sub001/internal/adapters/filestore"
	"github.com/bp848/mqdriven-sub001/internal/adapters/mailer"
	"github.com/bp848/mqdriven-sub001/internal/adapters/ocr"
	portsrepo "github.com/bp848/mqdriven-sub001/internal/core/ports/repositories"
	portssvc "github.com/bp848/mqdriven-sub001/internal/core/ports/services"
	"github.com/bp848/mqdriven-sub001/internal/core/services"
	"github.com/bp848/mqdriven-sub001/internal/handlers"
	"github.com/bp848/mqdriven-sub001/internal/middleware"
	"github.com/bp848/mqdriven-sub001/internal/platform/config"
	"github.com/bp848/mqdriven-sub001/internal/platform/metrics"
	"github.com/bp848/mqdriven-sub001/internal/repositories/backend"
	"github.com/bp848/mqdriven-sub001/internal/repositories/batch"
	"github.com/bp848/mqdriven-sub001/internal/repositories/database/memory"
	"github.com/bp848/mqdriven-sub001/internal/repositories/database/pgsql"
	"github.com/bp848/mqdriven-sub001/internal/repositories/store"
	"github.com/bp848/mqdriven-sub001/pkg/database"
)

const (
	migrationsPath  = "file://migrations"
	extractTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	var primary portsrepo.Backend
	if cfg.DatabaseURL != "" {
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, cfg.BackendTimeout)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.ClosePgxPool(dbPool)

		if cfg.RunMigrations {
			if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
				// Tables that did not get created are served from the fallback store.
				logger.Error("Database migrations failed; continuing in degraded mode", slog.String("error", err.Error()))
			}
		}
		primary = pgsql.NewBackend(dbPool, cfg.BatchChunkSize)
	}

	adapter := backend.New(primary, memory.NewSeeded(), backend.Options{
		Timeout: cfg.BackendTimeout,
		Logger:  logger,
	})
	executor := batch.NewExecutor(adapter, batch.Config{
		ChunkSize:   cfg.BatchChunkSize,
		Concurrency: cfg.BatchConcurrency,
	})
	repos := store.NewRepositoryProvider(adapter, executor)

	// --- Outbound adapters ---
	var documents *filestore.Store
	if cfg.FileStorageRoot != "" {
		if err := os.MkdirAll(cfg.FileStorageRoot, 0o755); err != nil {
			logger.Error("Failed to prepare file storage root", slog.String("root", cfg.FileStorageRoot), slog.String("error", err.Error()))
			os.Exit(1)
		}
		documents = filestore.NewOS(cfg.FileStorageRoot)
	} else {
		logger.Warn("FILE_STORAGE_ROOT not set; uploaded documents are kept in memory")
		documents = filestore.NewMemory()
	}

	var extractor portssvc.Extractor
	if cfg.OCREndpoint != "" {
		extractor = ocr.New(ocr.Config{Endpoint: cfg.OCREndpoint, Timeout: extractTimeout})
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, mailer.NewLogMailer(), documents, extractor)

	// --- HTTP ---
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		metrics.GinMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimit(rateLimiter),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, adapter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.Bool("primary_backend", adapter.HasPrimary()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// runMigrations applies every pending "up" migration over a short-lived database/sql handle.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// pgx/v5/stdlib keeps the migration connection on the same driver as the pool
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(migrationsPath, "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
		return errors.Join(sourceErr, dbErr)
	}
	switch {
	case errors.Is(upErr, migrate.ErrNoChange):
		logger.Info("No new migrations to apply.")
	case upErr != nil:
		return upErr
	default:
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
