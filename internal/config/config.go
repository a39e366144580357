// Package config loads and validates application configuration from the
// environment.
package config

import (
	"encoding/hex"
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

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI"`

	TokenEncryptionKey string `env:"TOKEN_ENCRYPTION_KEY"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// FreshnessWindow is the default staleness threshold applied to every
	// dataset; a snapshot older than this is re-fetched.
	FreshnessWindow time.Duration `env:"SYNC_FRESHNESS_WINDOW" default:"24h"`
	// ProviderTimeout bounds each individual provider call.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" default:"15s"`
	// SyncLockTTL bounds the per-creator Redis sync lease.
	SyncLockTTL time.Duration `env:"SYNC_LOCK_TTL" default:"2m"`

	// APIRateLimit and APIRateBurst cap analytics API requests per client IP.
	APIRateLimit float64 `env:"API_RATE_LIMIT" default:"10"`
	APIRateBurst int     `env:"API_RATE_BURST" default:"20"`
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

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":         cfg.DatabaseURL,
		"REDIS_URL":            cfg.RedisURL,
		"GOOGLE_CLIENT_ID":     cfg.GoogleClientID,
		"GOOGLE_CLIENT_SECRET": cfg.GoogleClientSecret,
		"GOOGLE_REDIRECT_URI":  cfg.GoogleRedirectURI,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.TokenEncryptionKey != "" {
		keyBytes, err := hex.DecodeString(cfg.TokenEncryptionKey)
		if err != nil {
			return fmt.Errorf("TOKEN_ENCRYPTION_KEY must be valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("TOKEN_ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
		}
	}

	if cfg.FreshnessWindow <= 0 {
		return fmt.Errorf("SYNC_FRESHNESS_WINDOW must be positive")
	}
	if cfg.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if cfg.APIRateLimit <= 0 {
		return fmt.Errorf("API_RATE_LIMIT must be positive")
	}
	if cfg.APIRateBurst <= 0 {
		return fmt.Errorf("API_RATE_BURST must be positive")
	}

	return nil
}
