package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"hirelink/internal/config"
	"hirelink/internal/handler"
	"hirelink/internal/middleware"
	"hirelink/internal/pkg/i18n"
	"hirelink/internal/repository"
	"hirelink/internal/service"
	"hirelink/internal/service/push"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	log := config.NewLogger(cfg)

	if cfg.LocalesPath != "" {
		if err := i18n.LoadTranslations(cfg.LocalesPath); err != nil {
			log.WithError(err).Warn("Failed to load locale overrides, using embedded copy")
		}
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := config.RunMigrations(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	var cache *redis.Client
	cache, err = config.NewRedisClient(cfg)
	if err != nil {
		log.WithError(err).Warn("Failed to connect to Redis, unread counts will not be cached")
		cache = nil
	} else {
		defer cache.Close()
	}

	sender := newPushSender(cfg, log)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, cache, sender, cfg, log)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(middleware.Metrics())

	handler.SetupRoutes(app, handlers, services.Auth)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down")
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	log.Infof("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	services.Notification.Wait()
	services.Application.Wait()
}

// newPushSender builds the single push client shared by every request.
func newPushSender(cfg *config.Config, log *logrus.Logger) push.Sender {
	if !cfg.PushEnabled() {
		log.Info("FIREBASE_CREDENTIALS_FILE not set, push notifications are logged only")
		return push.NewLogSender(log)
	}

	client, err := config.NewMessagingClient(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Warn("Failed to initialise Firebase, push notifications are logged only")
		return push.NewLogSender(log)
	}

	return push.NewReliableSender(push.NewFCMSender(client), push.Policy{
		Timeout:       cfg.PushTimeout,
		MaxAttempts:   cfg.PushMaxAttempts,
		RatePerSecond: cfg.PushRatePerSec,
		Burst:         cfg.PushBurst,
	})
}
