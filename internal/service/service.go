package service

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"hirelink/internal/config"
	"hirelink/internal/repository"
	"hirelink/internal/service/application"
	"hirelink/internal/service/auth"
	"hirelink/internal/service/chat"
	"hirelink/internal/service/email"
	"hirelink/internal/service/notification"
	"hirelink/internal/service/push"
)

type Services struct {
	Auth         auth.Service
	Email        email.Service
	Notification notification.Service
	Application  application.Service
	Chat         chat.Service
}

// NewServices wires the core. sender is the process-wide push client; a nil
// sender disables push delivery. redis may be nil.
func NewServices(repos *repository.Repositories, redis *redis.Client, sender push.Sender, cfg *config.Config, log logrus.FieldLogger) *Services {
	emailService := email.NewService(cfg, log)
	authService := auth.NewService(repos.User, cfg.JWTSecret)

	notificationService := notification.NewService(
		repos.Notification,
		repos.User,
		sender,
		redis,
		log.WithField("component", "notification"),
		notification.Options{
			Async:          cfg.PushAsync,
			PushDeadline:   cfg.PushTimeout * time.Duration(cfg.PushMaxAttempts+1),
			MaxInflight:    cfg.PushMaxInflight,
			UnreadCacheTTL: cfg.UnreadCacheTTL,
		},
	)

	applicationService := application.NewService(
		repos,
		notificationService,
		emailService,
		log.WithField("component", "application"),
		application.Options{
			Locale:                    cfg.NotificationLocale,
			AllowTerminalRetransition: cfg.AllowTerminalRetransition,
		},
	)

	chatService := chat.NewService(
		repos,
		notificationService,
		log.WithField("component", "chat"),
		chat.Options{Locale: cfg.NotificationLocale},
	)

	return &Services{
		Auth:         authService,
		Email:        emailService,
		Notification: notificationService,
		Application:  applicationService,
		Chat:         chatService,
	}
}
