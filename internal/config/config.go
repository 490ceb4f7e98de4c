package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/handover.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// RedisURL enables the shared leaderboard when set.
	RedisURL string `env:"REDIS_URL"`

	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"1m"`

	// Researcher export is disabled while the hash is empty.
	ResearcherUser         string `env:"RESEARCHER_USER" envDefault:"researcher"`
	ResearcherPasswordHash string `env:"RESEARCHER_PASSWORD_HASH"`

	OTELEndpoint string `env:"OTEL_ENDPOINT"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.JanitorInterval <= 0 {
		return nil, fmt.Errorf("JANITOR_INTERVAL must be positive, got %s", cfg.JanitorInterval)
	}
	return &cfg, nil
}
