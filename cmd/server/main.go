package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	jsoniter "github.com/json-iterator/go"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/cache"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/config"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/database"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/logging"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/repository"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/routes"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	// Storage
	var repo repository.Repository
	var pgLogHandler *logging.PGHandler
	cleanupDone := make(chan struct{})

	switch cfg.DBDriver {
	case config.DriverPostgres:
		if cfg.DBPassword == "" {
			slog.Error("DB_PASSWORD environment variable is required")
			os.Exit(1)
		}
		if err := database.Connect(cfg); err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(database.DB)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.NewJSONHandler(os.Stdout),
			pgLogHandler,
		)))

		logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)
		repo = repository.NewGormRepository(database.DB)
	case config.DriverMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		repo = repository.NewMemoryRepository()
	default:
		slog.Error("unsupported DB_DRIVER", "driver", cfg.DBDriver)
		os.Exit(1)
	}

	// Schema cache
	var schemaCache cache.Cache
	switch cfg.CacheDriver {
	case config.DriverRedis:
		redisCache := cache.NewRedis(cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.CacheTTL)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redisCache.Ping(pingCtx)
		cancel()
		if err != nil {
			slog.Error("redis unreachable, schema cache disabled", "addr", cfg.RedisAddr, "error", err)
			schemaCache = cache.Noop{}
		} else {
			schemaCache = redisCache
		}
	case config.DriverMemory:
		schemaCache = cache.NewMemory(cfg.CacheTTL)
	default:
		schemaCache = cache.Noop{}
	}
	slog.Info("storage ready", "db_driver", cfg.DBDriver, "cache_driver", cfg.CacheDriver)

	// Services
	accessService := services.NewAccessService(repo)
	workspaceService := services.NewWorkspaceService(repo)
	schemaService := services.NewSchemaService(repo, schemaCache)
	recordService := services.NewRecordService(repo, schemaService)

	// Handlers
	healthHandler := handlers.NewHealthHandler(repo, cfg.DBDriver)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService)
	listHandler := handlers.NewListHandler(schemaService, workspaceService)
	recordHandler := handlers.NewRecordHandler(recordService)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: handlers.ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
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
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, accessService, healthHandler, workspaceHandler, listHandler, recordHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
