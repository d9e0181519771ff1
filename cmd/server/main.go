package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/vitrine-backend/config"
	"github.com/ikkim/vitrine-backend/internal/app/controller"
	"github.com/ikkim/vitrine-backend/internal/app/repository"
	"github.com/ikkim/vitrine-backend/internal/app/service"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/ikkim/vitrine-backend/internal/db"
	"github.com/ikkim/vitrine-backend/internal/middleware"
	"github.com/ikkim/vitrine-backend/internal/router"
	"github.com/ikkim/vitrine-backend/internal/scheduler"
	"github.com/ikkim/vitrine-backend/internal/storage"
	"github.com/ikkim/vitrine-backend/internal/storefront"
	"github.com/ikkim/vitrine-backend/internal/websocket"
	"github.com/ikkim/vitrine-backend/pkg/logger"
	"github.com/ikkim/vitrine-backend/pkg/metrics"
	"github.com/ikkim/vitrine-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Log.Level
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting Vitrine Backend Server", map[string]interface{}{
		"environment":    cfg.Server.Environment,
		"port":           cfg.Server.Port,
		"log_level":      logLevel,
		"session_store":  cfg.Session.Store,
		"catalog_source": cfg.Catalog.Source,
	})

	ctx := context.Background()

	// Metrics registry
	var registry *prometheus.Registry
	var registerer prometheus.Registerer
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		registerer = registry
	}
	httpMetrics := metrics.NewHTTPMetrics(registerer)
	storefrontMetrics := metrics.NewStorefrontMetrics(registerer)
	jobMetrics := metrics.NewJobMetrics(registerer)

	// Catalog
	source, err := catalogSource(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to prepare catalog source", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()
	cat, err := catalog.Load(ctx, source)
	if err != nil {
		logger.Fatal("Failed to load catalog", err)
	}

	// Session store
	sessions, closeStore, err := sessionRepository(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize session store", err)
	}
	defer closeStore()

	// Effect stream
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Initialize services
	storefrontService := service.NewStorefrontService(
		sessions,
		storefront.NewController(cat, cfg.Checkout.WhatsAppNumber),
		service.StorefrontOptions{
			Secret:    cfg.Session.Secret,
			TokenTTL:  cfg.Session.TokenTTL,
			IdleTTL:   cfg.Session.IdleTTL,
			Publisher: hub,
			Metrics:   storefrontMetrics,
		},
	)
	catalogService := service.NewCatalogService(cat)
	exportService := service.NewExportService()

	// Idle session sweeper; redis expires keys on its own
	if cfg.Session.Store == config.StoreMemory {
		sweeper := scheduler.NewSessionSweeper(cfg.Session.SweepSpec, storefrontService, jobMetrics)
		if err := sweeper.Start(); err != nil {
			logger.Fatal("Failed to start session sweeper", err)
		}
		defer sweeper.Stop()
	}

	// Setup router
	r := router.NewRouter(
		controller.NewSessionController(storefrontService),
		controller.NewCatalogController(catalogService),
		controller.NewStorefrontController(storefrontService, exportService),
		controller.NewWSController(hub, cfg.CORS.AllowedOrigins),
		middleware.NewSessionMiddleware(cfg.Session.Secret),
		httpMetrics,
		registry,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}

func catalogSource(ctx context.Context, cfg *config.Config) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case config.CatalogFile:
		return catalog.FileSource{Path: cfg.Catalog.Path}, nil
	case config.CatalogS3:
		return catalog.ObjectSource{Store: storage.NewS3Storage(ctx, &cfg.S3), Key: cfg.Catalog.S3Key}, nil
	case config.CatalogDatabase:
		if err := db.Initialize(&cfg.Database); err != nil {
			return nil, err
		}
		if err := db.Migrate(db.GetDB()); err != nil {
			return nil, err
		}
		return catalog.DatabaseSource{Repo: repository.NewProductRepository(db.GetDB())}, nil
	default:
		return catalog.EmbeddedSource{}, nil
	}
}

func sessionRepository(ctx context.Context, cfg *config.Config) (repository.SessionRepository, func(), error) {
	if cfg.Session.Store != config.StoreRedis {
		return repository.NewMemorySessionRepository(), func() {}, nil
	}

	client, err := redis.New(ctx, &cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("Failed to close redis client", err)
		}
	}
	return repository.NewRedisSessionRepository(client, cfg.Session.IdleTTL), closeFn, nil
}
