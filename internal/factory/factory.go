package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/courtside/internal/dependencies/clock"
	"github.com/mcoot/courtside/internal/dependencies/ids"
	"github.com/mcoot/courtside/internal/publish"
	"github.com/mcoot/courtside/internal/publish/kafka"
	"github.com/mcoot/courtside/internal/publish/redisstream"
	"github.com/mcoot/courtside/internal/publish/sse"
	"github.com/mcoot/courtside/internal/services/access"
	"github.com/mcoot/courtside/internal/services/auth"
	"github.com/mcoot/courtside/internal/services/boxscore"
	"github.com/mcoot/courtside/internal/services/catalog"
	"github.com/mcoot/courtside/internal/services/game"
	"github.com/mcoot/courtside/internal/services/gameclock"
	"github.com/mcoot/courtside/internal/services/roster"
	"github.com/mcoot/courtside/internal/services/scorer"
	"github.com/mcoot/courtside/internal/storage"
	"github.com/mcoot/courtside/internal/storage/memory"
	"github.com/mcoot/courtside/internal/storage/postgres"
	redisstorage "github.com/mcoot/courtside/internal/storage/redis"
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
	Clock clock.Clock
	IDs   ids.Generator

	// Services
	CatalogService *catalog.Service
	AccessService  *access.Service
	AuthService    *auth.Service
	GameController *game.Controller

	// Delivery
	HubManager *sse.HubManager
	Publisher  publish.Publisher

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings. Required if StorageType is
	// "redis" or RedisStream is set.
	RedisConfig *redisstorage.Config
	// PostgresConfig is required if StorageType is "postgres"
	PostgresConfig *postgres.Config
	// RedisStream appends every committed update to a Redis stream
	RedisStream bool
	// KafkaBrokers, when set, publishes every committed update to KafkaTopic
	KafkaBrokers []string
	KafkaTopic   string
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var (
		store       storage.Storage
		closers     []io.Closer
		redisClient *redis.Client
	)
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
			return nil, fmt.Errorf("connecting redis storage: %w", err)
		}
		store = redisStore
		redisClient = redisStore.Client()
		closers = append(closers, redisStore)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := postgres.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		store = pgStore
		closers = append(closers, pgStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	var publishers []publish.Publisher
	if cfg.RedisStream {
		if redisClient == nil {
			if cfg.RedisConfig == nil {
				_ = closeAll(closers)
				return nil, errors.New("RedisConfig required when RedisStream is set")
			}
			opts, err := redis.ParseURL(cfg.RedisConfig.URL)
			if err != nil {
				_ = closeAll(closers)
				return nil, fmt.Errorf("parsing redis URL: %w", err)
			}
			redisClient = redis.NewClient(opts)
			closers = append(closers, redisClient)
		}
		publishers = append(publishers, redisstream.New(redisClient, redisstream.DefaultStream, 10000))
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			_ = closeAll(closers)
			return nil, err
		}
		kafkaPublisher := kafka.New(producer, cfg.KafkaTopic)
		publishers = append(publishers, kafkaPublisher)
		closers = append(closers, kafkaPublisher)
	}

	app := newWithDependencies(store, clock.New(), ids.New(), cfg.AuthConfig, logger, publishers...)
	app.closers = closers

	if err := app.CatalogService.EnsureDefaultFormats(ctx); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("seeding formats: %w", err)
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	idGen ids.Generator,
	authCfg auth.Config,
	logger *slog.Logger,
	publishers ...publish.Publisher,
) *App {
	hubManager := sse.NewHubManager(logger)
	publisher := publish.Multi(append([]publish.Publisher{sse.NewBroadcaster(hubManager, logger)}, publishers...))

	catalogService := catalog.New(store, clk, logger)
	gameController := game.NewController(
		store,
		catalogService,
		gameclock.New(),
		roster.New(),
		scorer.New(),
		boxscore.New(),
		publisher,
		clk,
		idGen,
		logger,
	)

	return &App{
		Storage:        store,
		Clock:          clk,
		IDs:            idGen,
		CatalogService: catalogService,
		AccessService:  access.New(logger),
		AuthService:    auth.New(clk, authCfg),
		GameController: gameController,
		HubManager:     hubManager,
		Publisher:      publisher,
	}
}

// Close stops live streams and releases backend connections
func (a *App) Close() error {
	a.HubManager.Close()
	return closeAll(a.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
