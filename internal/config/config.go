package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

type StorageDriver string

const (
	SQLite   StorageDriver = "sqlite"
	Postgres StorageDriver = "postgres"
)

// Config holds everything the process reads from its environment.
// Variables carry the SHELFMARK_ prefix, e.g. SHELFMARK_SESSION_SECRET.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	SessionSecret   string        `envconfig:"SESSION_SECRET" required:"true"`
	StorageDriver   StorageDriver `envconfig:"STORAGE_DRIVER" default:"sqlite"`
	SQLitePath      string        `envconfig:"SQLITE_PATH" default:"data/shelfmark.db"`
	PostgresDSN     string        `envconfig:"POSTGRES_DSN"`
	LogLevel        zapcore.Level `envconfig:"LOG_LEVEL" default:"info"`
	IsProduction    bool          `envconfig:"IS_PRODUCTION" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (*Config, error) {
	// .env is a development convenience; deployed environments set
	// variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("shelfmark", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment config: %w", err)
	}

	switch cfg.StorageDriver {
	case SQLite:
	case Postgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("SHELFMARK_POSTGRES_DSN is not set")
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}

	return cfg, nil
}
