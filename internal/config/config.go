package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	DatabaseURL    string `env:"DATABASE_URL"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	RunMigrations  bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	RedisURL       string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	UnreadCacheTTL time.Duration `env:"UNREAD_CACHE_TTL" envDefault:"5m"`

	JWTSecret string `env:"JWT_SECRET"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	FirebaseCredentialsFile string        `env:"FIREBASE_CREDENTIALS_FILE"`
	PushTimeout             time.Duration `env:"PUSH_TIMEOUT" envDefault:"3s"`
	PushMaxAttempts         uint          `env:"PUSH_MAX_ATTEMPTS" envDefault:"3"`
	PushRatePerSec          float64       `env:"PUSH_RATE_PER_SEC" envDefault:"20"`
	PushBurst               int           `env:"PUSH_BURST" envDefault:"10"`
	PushAsync               bool          `env:"PUSH_ASYNC" envDefault:"true"`
	PushMaxInflight         int           `env:"PUSH_MAX_INFLIGHT" envDefault:"64"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromEmail    string `env:"FROM_EMAIL" envDefault:"noreply@example.com"`
	AppName      string `env:"APP_NAME" envDefault:"HireLink"`

	NotificationLocale string `env:"NOTIFICATION_LOCALE" envDefault:"en"`
	LocalesPath        string `env:"LOCALES_PATH"`

	AllowTerminalRetransition bool `env:"ALLOW_TERMINAL_RETRANSITION" envDefault:"true"`
}

// Load parses the process environment. Callers load .env beforehand.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.PushMaxAttempts < 1 {
		errs = append(errs, errors.New("PUSH_MAX_ATTEMPTS must be at least 1"))
	}
	if c.PushTimeout <= 0 {
		errs = append(errs, errors.New("PUSH_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) PushEnabled() bool {
	return c.FirebaseCredentialsFile != ""
}

func (c *Config) EmailEnabled() bool {
	return c.ResendAPIKey != ""
}
