package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/analytics-service/internal/cache"
	"github.com/SAP-F-2025/analytics-service/internal/config"
	"github.com/SAP-F-2025/analytics-service/internal/events"
	"github.com/SAP-F-2025/analytics-service/internal/handlers"
	"github.com/SAP-F-2025/analytics-service/internal/repositories"
	"github.com/SAP-F-2025/analytics-service/internal/repositories/httpapi"
	"github.com/SAP-F-2025/analytics-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/analytics-service/internal/services"
	"github.com/SAP-F-2025/analytics-service/internal/utils"
	"github.com/SAP-F-2025/analytics-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	validator := utils.NewValidator()

	// Academic records backend. The HTTP adapter talks to the records
	// service API; the postgres adapter reads the records schema directly.
	var (
		source    repositories.RecordSource
		snapshots repositories.SnapshotRepository
	)
	switch cfg.RecordsSource {
	case "postgres":
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			logger.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		source = postgres.NewRecordsPostgreSQL(db)
		snapshots = postgres.NewSnapshotPostgreSQL(db)
	default:
		source = httpapi.NewRecordsHTTP(cfg.RecordsBaseURL, cfg.RecordsTimeout, logger)
		// Snapshot history still needs the database when available.
		if db, err := pkg.InitDatabase(cfg); err != nil {
			logger.Warn("Snapshot history disabled, database unavailable", "error", err)
		} else {
			snapshots = postgres.NewSnapshotPostgreSQL(db)
		}
	}

	analyticsCache := buildCache(cfg, logger)

	eventPublisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("Failed to create event publisher, falling back to mock", "error", err)
		eventPublisher = events.NewMockEventPublisher(utils.ToSlogLogger(logger))
	}
	defer func() {
		if err := eventPublisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	analyticsService := services.NewAnalyticsService(
		source,
		analyticsCache,
		snapshots,
		eventPublisher,
		logger,
		validator,
		cfg.WorkerPoolSize,
	)
	exportService := services.NewExportService(analyticsService, logger)

	var authMiddleware gin.HandlerFunc
	if cfg.AuthEnabled {
		casdoorClient := casdoorsdk.NewClient(
			cfg.CasdoorEndpoint,
			cfg.CasdoorClientID,
			cfg.CasdoorClientSecret,
			cfg.CasdoorCertificate,
			cfg.CasdoorOrganization,
			cfg.CasdoorApplication,
		)
		authMiddleware = handlers.NewAuthMiddleware(casdoorClient, logger)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(analyticsService, exportService, validator, logger, authMiddleware)
	handlerManager.SetupRoutes(router)

	logger.Info("Starting analytics service",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"records_source", cfg.RecordsSource)

	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

// buildCache prefers Redis and degrades to the in-process cache when the
// connection cannot be established.
func buildCache(cfg *config.Config, logger utils.Logger) cache.AnalyticsCache {
	if cfg.RedisURL == "" {
		logger.Info("No Redis URL configured, using in-memory analytics cache")
		return cache.NewMemoryCache()
	}

	client, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory analytics cache", "error", err)
		return cache.NewMemoryCache()
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return cache.NewRedisCache(client, ttl, logger)
}
