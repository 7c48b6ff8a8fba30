package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the server configuration. Values come from an optional YAML
// file and are overridden by environment variables.
type Config struct {
	LogLevel string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTP     HTTP    `yaml:"http"`
	Storage  Storage `yaml:"storage"`
	Game     Game    `yaml:"game"`
}

type HTTP struct {
	Host           string `yaml:"host" env:"HTTP_HOST" env-default:""`
	Port           int    `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	MetricsEnabled bool   `yaml:"metrics-enabled" env:"METRICS_ENABLED"`
}

type Storage struct {
	Type        string `yaml:"type" env:"STORAGE_TYPE" env-default:"memory"`
	RedisURL    string `yaml:"redis-url" env:"REDIS_URL"`
	PostgresDSN string `yaml:"postgres-dsn" env:"POSTGRES_DSN"`
}

type Game struct {
	// AutoAssign deals roles as soon as the fourth player joins.
	// Defaulted in defaults() since cleanenv would override an explicit false.
	AutoAssign bool `yaml:"auto-assign" env:"AUTO_ASSIGN"`
	// Seed makes role shuffling reproducible; zero uses crypto/rand
	Seed uint64 `yaml:"seed" env:"SHUFFLE_SEED"`
}

func defaults() *Config {
	return &Config{
		HTTP: HTTP{MetricsEnabled: true},
		Game: Game{AutoAssign: true},
	}
}

// Load reads the config file at path, if any, then the environment
func Load(path string) (*Config, error) {
	cfg := defaults()

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected storage backend is fully configured
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN required when STORAGE_TYPE=postgres")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis or postgres", c.Storage.Type)
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTP.Port)
	}
	return nil
}

// SlogLevel maps LogLevel onto slog, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
