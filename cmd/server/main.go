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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	logging.WithPersistence(pgLogHandler)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

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

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Notifications
	var publisher notify.Publisher = notify.LogPublisher{}
	var kafkaPublisher *notify.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		if err != nil {
			slog.Error("kafka publisher init failed", "error", err)
			os.Exit(1)
		}
		kafkaPublisher = kp
		publisher = kp
		slog.Info("notifications routed to kafka", "brokers", cfg.KafkaBrokers)
	}
	dispatcher := notify.NewDispatcher(publisher, 5*time.Second)

	// Sweep lease across replicas
	var locker jobs.Locker
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := jobs.ConnectRedis(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			slog.Warn("redis unavailable, sweeping without lease", "error", err)
		} else {
			defer redisClient.Close()
			locker = jobs.NewRedisLocker(redisClient, "")
		}
	}

	// Repositories
	reportRepo := repository.NewReportRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	contentRepo := repository.NewContentRepository(database.DB)
	evaluationRepo := repository.NewEvaluationRepository(database.DB, cfg.EvaluationScanBatch)

	// Services
	escalationService := services.NewEscalationService(userRepo, dispatcher, m, cfg.BanThreshold)
	enforcementService := services.NewEnforcementService(reportRepo, contentRepo, services.LogMediaStore{}, escalationService, dispatcher, m, services.SweepConfig{
		Concurrency: cfg.SweepConcurrency,
		AdminEmail:  cfg.ModerationAdminEmail,
	})
	moderationService := services.NewModerationService(reportRepo, contentRepo, cfg.ReportActionWindow)
	reputationService := services.NewReputationService(userRepo, evaluationRepo, m, services.ReputationConfig{
		Concurrency: cfg.RecomputeConcurrency,
	})

	scheduler := jobs.NewSweepScheduler(enforcementService, locker, cfg.SweepInterval)
	sweepDone := make(chan struct{})
	if cfg.SweepEnabled {
		scheduler.Start(sweepDone)
		slog.Info("enforcement sweep scheduled", "interval", cfg.SweepInterval.String())
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	moderationHandler := handlers.NewModerationHandler(moderationService, scheduler)
	reputationHandler := handlers.NewReputationHandler(reputationService)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
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
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, registry, healthHandler, moderationHandler, reputationHandler)

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

	close(sweepDone)
	scheduler.Wait()
	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	dispatcher.Wait()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			slog.Error("kafka writer close error", "error", err)
		}
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
