package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/config"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/database"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/logging"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/routes"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/services"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/storage"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/validation"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err.Error())
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err.Error())
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewStdoutHandler(),
		pgLogHandler,
	)))

	// Log cleanup
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	// Object storage
	var (
		store     storage.ObjectStore
		mediaRoot string
	)
	switch cfg.StorageDriver {
	case "supabase":
		store = storage.NewSupabaseStore(cfg.StorageRemoteURL, cfg.StorageBucket, cfg.StorageServiceKey, cfg.StorageTimeout)
	default:
		local, err := storage.NewLocalStore(cfg.StorageLocalRoot, cfg.StoragePublicURL)
		if err != nil {
			slog.Error("local storage init failed", "root", cfg.StorageLocalRoot, "error", err.Error())
			os.Exit(1)
		}
		store, mediaRoot = local, local.Root()
	}
	slog.Info("object storage ready", "driver", cfg.StorageDriver)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Services
	validator := validation.New()
	identityService := services.NewIdentityService(db)
	tagService := services.NewTagService(db, validator, int64(cfg.TagCacheSize))
	locationService := services.NewLocationService(db, validator)
	photoService := services.NewPhotoService(db, identityService, tagService, validator)
	uploadService := services.NewUploadService(identityService, photoService, store, collector)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err.Error())
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxUploadBytes,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.RequestMetrics(collector))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, db, routes.Handlers{
		Health:    handlers.NewHealthHandler(db, cfg.StorageDriver),
		Photos:    handlers.NewPhotoHandler(photoService, uploadService, collector),
		Tags:      handlers.NewTagHandler(tagService),
		Locations: handlers.NewLocationHandler(locationService),
		Users:     handlers.NewUserHandler(identityService, validator),
	}, registry, mediaRoot)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err.Error())
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err.Error())
	}

	close(cleanupDone)
	tagService.Close()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err.Error())
	}

	slog.Info("server stopped")
}
