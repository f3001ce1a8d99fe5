package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/RaidOuahioune/dms/internal/api"
	"github.com/RaidOuahioune/dms/internal/auth"
	"github.com/RaidOuahioune/dms/internal/config"
	"github.com/RaidOuahioune/dms/internal/events"
	"github.com/RaidOuahioune/dms/internal/logging"
	"github.com/RaidOuahioune/dms/internal/repository"
	"github.com/RaidOuahioune/dms/internal/services"
)

func main() {
	ctx := context.Background()

	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Configuration loading failed: %v", err)
	}

	logger := logging.NewLogger(cfg.Log.Level)
	logger.Info("Starting document management suite",
		"events_backend", cfg.Events.Backend,
		"auth_enabled", cfg.Auth.Enabled,
		"extraction_simulated", cfg.Extraction.Simulate,
	)

	// Database
	dbPool, err := initDatabase(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer dbPool.Close()
	logger.Info("Database connected")

	// Event bus
	var bus events.Bus
	switch cfg.Events.Backend {
	case "memory":
		bus = events.NewMemoryBus(logger)
	default:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("Failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			log.Fatalf("Redis connection failed: %v", err)
		}
		defer rdb.Close()
		bus = events.NewRedisBus(rdb, logger)
	}
	defer bus.Close()
	logger.Info("Event bus ready")

	// Repository layer
	documentStore := repository.NewPostgresDocumentStore(dbPool)
	workflowStore := repository.NewPostgresWorkflowStore(dbPool)
	patientStore := repository.NewPostgresPatientStore(dbPool)

	// Service layer
	documentService := services.NewDocumentService(documentStore, bus, logger)
	workflowService := services.NewWorkflowService(workflowStore, bus, logger)
	patientService := services.NewPatientService(patientStore)
	projector := services.NewProjector(documentStore, logger)

	group := cfg.Events.Group
	workflowService.RegisterConsumers(bus, group+"-workflow")
	projector.RegisterConsumers(bus, group+"-documents")
	if cfg.Extraction.Simulate {
		worker := services.NewExtractionWorker(services.SimulatedExtractor{}, bus, logger)
		worker.RegisterConsumers(bus, group+"-extractor")
	}
	logger.Info("Event consumers registered")

	// HTTP surface
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("dms"))

	e.GET("/health", api.HandleHealth)

	apiGroup := e.Group("/api/v1")
	if cfg.Auth.Enabled {
		apiGroup.Use(auth.New(cfg.Auth.JWTSecret).Middleware())
	}
	api.NewDocumentServer(documentService).Register(apiGroup)
	api.NewWorkflowServer(workflowService).Register(apiGroup)
	api.NewPatientServer(patientService).Register(apiGroup)
	logger.Info("REST API handlers mounted")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}
		logger.Info("Server stopped gracefully")
	}
}

func initDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
