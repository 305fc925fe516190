package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	SessionSecret    string `env:"SESSION_SECRET"`
	OAuthClientID    string `env:"OAUTH_CLIENT_ID"`
	OAuthSecret      string `env:"OAUTH_CLIENT_SECRET"`
	OAuthRedirectURI string `env:"OAUTH_REDIRECT_URI"`

	PaymentWebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET"`

	CacheTTL       time.Duration `env:"CACHE_TTL" default:"30s"`
	SessionMaxAge  time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" default:"10m"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" default:"20"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// requiredVars is ordered so the first missing variable is reported deterministically.
var requiredVars = []string{
	"DATABASE_URL",
	"REDIS_URL",
	"SESSION_SECRET",
	"OAUTH_CLIENT_ID",
	"OAUTH_CLIENT_SECRET",
	"OAUTH_REDIRECT_URI",
	"PAYMENT_WEBHOOK_SECRET",
}

func validate(cfg *Config) error {
	values := map[string]string{
		"DATABASE_URL":           cfg.DatabaseURL,
		"REDIS_URL":              cfg.RedisURL,
		"SESSION_SECRET":         cfg.SessionSecret,
		"OAUTH_CLIENT_ID":        cfg.OAuthClientID,
		"OAUTH_CLIENT_SECRET":    cfg.OAuthSecret,
		"OAUTH_REDIRECT_URI":     cfg.OAuthRedirectURI,
		"PAYMENT_WEBHOOK_SECRET": cfg.PaymentWebhookSecret,
	}
	for _, name := range requiredVars {
		if values[name] == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(cfg.PaymentWebhookSecret) < 16 || len(cfg.PaymentWebhookSecret) > 200 {
		return errors.New("PAYMENT_WEBHOOK_SECRET must be between 16 and 200 characters")
	}
	if cfg.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

// IsProduction reports whether cookies should be marked secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
