package backend

import (
	"context"
	"errors"
	"fmt"

	"boatshare/internal/amqp"
	"boatshare/internal/cache"
	"boatshare/internal/core"
	applog "boatshare/internal/log"
	"boatshare/internal/services"
	"boatshare/internal/sheets/memory"
	"boatshare/internal/storage"
)

const redisKeyPrefix = "boatshare:"

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend opens the stores named by config and wires the services on
// top of them. Optional dependencies (AMQP, Redis) that fail to connect are
// logged and left out.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result  *BackendResult
		closers []func() error
		err     error
	)
	switch config.Type {
	case SQLiteBackend:
		result, closers, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	closers = append(closers, f.attachCache(ctx, config, result)...)

	var publisher services.EventPublisher
	if client := f.connectAMQP(config); client != nil {
		publisher = client
		result.AMQPEnabled = true
		result.Checks = append(result.Checks, Check{Name: "amqp", Ping: func(context.Context) error { return client.Ping() }})
		closers = append(closers, client.Close)
	}

	result.Financing = services.NewFinancingService(result.Cache, result.Scenarios, f.logger)
	result.BoatService = services.NewBoatService(result.Boats, publisher, f.logger)
	result.Cleanup = closeAll(closers)

	f.logger.Info("Backend ready",
		"type", config.Type,
		"amqp_enabled", result.AMQPEnabled,
		"shared_cache", result.SharedCache)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, []func() error, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Boats:     repo,
		Scenarios: repo,
		Checks:    []Check{{Name: "sqlite", Ping: repo.Ping}},
	}, []func() error{repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend() *BackendResult {
	store := memory.New()
	f.logger.Info("Initialized memory backend")
	return &BackendResult{
		Boats:     store,
		Scenarios: store,
	}
}

// attachCache uses Redis when an address is configured and reachable,
// otherwise an in-process LRU swept by a cache.Manager.
func (f *DefaultFactory) attachCache(ctx context.Context, config Config, result *BackendResult) []func() error {
	size, ttl := config.cacheSettings()

	if config.RedisAddr != "" {
		rc := cache.NewRedisCache[core.FinancingResult](cache.NewRedisClient(config.RedisAddr), redisKeyPrefix, ttl, f.logger)
		err := rc.Ping(ctx)
		if err == nil {
			result.Cache = rc
			result.SharedCache = true
			result.Checks = append(result.Checks, Check{Name: "redis", Ping: rc.Ping})
			f.logger.Info("Using Redis result cache", "addr", config.RedisAddr)
			return []func() error{rc.Close}
		}
		f.logger.Warn("Redis unreachable, falling back to in-process cache", "addr", config.RedisAddr, "error", err)
		rc.Close()
	}

	lru := cache.NewLRUCache[core.FinancingResult](size, ttl)
	manager := cache.NewManager(f.logger)
	manager.Register(lru)
	manager.StartCleanup(ttl)
	result.Cache = lru
	return []func() error{func() error { manager.Stop(); return nil }}
}

func (f *DefaultFactory) connectAMQP(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	if config.Type != SQLiteBackend {
		f.logger.Warn("AMQP_URL ignored: boat events need the sqlite backend")
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

// closeAll runs closers in reverse order and joins their errors.
func closeAll(closers []func() error) CleanupFunc {
	return func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
