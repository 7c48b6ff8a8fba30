package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/rajamantri/internal/dependencies/clock"
	"github.com/mcoot/rajamantri/internal/dependencies/identity"
	"github.com/mcoot/rajamantri/internal/dependencies/random"
	"github.com/mcoot/rajamantri/internal/metrics"
	"github.com/mcoot/rajamantri/internal/services/roster"
	"github.com/mcoot/rajamantri/internal/services/round"
	"github.com/mcoot/rajamantri/internal/services/scoring"
	"github.com/mcoot/rajamantri/internal/storage"
	"github.com/mcoot/rajamantri/internal/storage/memory"
	pgstorage "github.com/mcoot/rajamantri/internal/storage/postgres"
	redisstorage "github.com/mcoot/rajamantri/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    identity.Generator

	// Observability
	Metrics *metrics.Metrics

	// Services
	ScoringService   *scoring.Service
	RoundController  *round.Controller
	RosterController *roster.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds PostgreSQL settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
	// DisableAutoAssign stops the fourth join from dealing roles
	DisableAutoAssign bool
	// Seed, when non-zero, makes role shuffling reproducible
	Seed uint64
	// Registerer receives the game metrics (optional)
	// If nil, metrics are recorded but not exported
	Registerer prometheus.Registerer
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := pgstorage.New(*cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	// Create external dependencies
	clk := clock.New()
	var rnd random.Random = random.New()
	if cfg.Seed != 0 {
		rnd = random.NewSeeded(cfg.Seed)
	}

	return newWithDependencies(store, clk, rnd, identity.New(), metrics.New(cfg.Registerer), !cfg.DisableAutoAssign, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	ids identity.Generator,
	m *metrics.Metrics,
	autoAssign bool,
	logger *slog.Logger,
) *App {
	scoringService := scoring.New()
	roundController := round.NewController(store, scoringService, clk, rnd, m, logger)
	rosterController := roster.NewController(store, roundController, ids, clk, m, logger, autoAssign)

	return &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		IDs:              ids,
		Metrics:          m,
		ScoringService:   scoringService,
		RoundController:  roundController,
		RosterController: rosterController,
	}
}
