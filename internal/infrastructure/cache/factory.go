package cache

import (
	"fmt"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/erp/fiscalsync/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ImportLockerFactory creates import lockers based on configuration
type ImportLockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	redisConnect          func(RedisConfig) (fiscalsync.ImportLocker, error)
}

// ImportLockerFactoryOption is a functional option for configuring the factory
type ImportLockerFactoryOption func(*ImportLockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ImportLockerFactoryOption {
	return func(f *ImportLockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory locker
// when Redis is unavailable. Default is false.
func WithInMemoryFallback(allow bool) ImportLockerFactoryOption {
	return func(f *ImportLockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewImportLockerFactory creates a new factory
func NewImportLockerFactory(cfg config.RedisConfig, opts ...ImportLockerFactoryOption) *ImportLockerFactory {
	f := &ImportLockerFactory{
		redisConfig:  cfg,
		logger:       zap.NewNop(),
		redisConnect: connectRedisLocker,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

func connectRedisLocker(cfg RedisConfig) (fiscalsync.ImportLocker, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewRedisImportLocker(client, "fiscalsync:"), nil
}

// CreateLocker returns the locker for backend, "memory" or "redis".
func (f *ImportLockerFactory) CreateLocker(backend string) (fiscalsync.ImportLocker, error) {
	switch backend {
	case "", "memory":
		f.logger.Info("using in-memory import locker")
		return NewInMemoryImportLocker(), nil
	case "redis":
	default:
		return nil, fmt.Errorf("unknown lock backend %q", backend)
	}

	locker, err := f.redisConnect(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis import locker", zap.String("addr", f.redisConfig.Addr()))
		return locker, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for import locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory import locker. "+
		"Concurrent imports on other instances will not be serialized.",
		zap.Error(err),
	)
	return NewInMemoryImportLocker(), nil
}
