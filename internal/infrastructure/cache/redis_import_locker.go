package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
	"github.com/redis/go-redis/v9"
)

const defaultLockPrefix = "lock:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisImportLocker implements fiscalsync.ImportLocker with redislock, so
// imports are serialized across every instance sharing the Redis server.
type RedisImportLocker struct {
	client    *redis.Client
	locker    *redislock.Client
	keyPrefix string
}

// NewRedisImportLocker creates a locker with an existing Redis client
func NewRedisImportLocker(client *redis.Client, keyPrefix string) *RedisImportLocker {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisImportLocker{
		client:    client,
		locker:    redislock.New(client),
		keyPrefix: keyPrefix,
	}
}

// Acquire obtains the lock without retrying
func (l *RedisImportLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (fiscalsync.ImportLock, error) {
	lock, err := l.locker.Obtain(ctx, l.keyPrefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fiscalsync.ErrImportInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain import lock: %w", err)
	}
	return &redisLock{lock: lock}, nil
}

// Close closes the Redis client
func (l *RedisImportLocker) Close() error {
	return l.client.Close()
}

type redisLock struct {
	lock *redislock.Lock
}

// Release frees the lock. A lock that already expired is not an error.
func (r *redisLock) Release(ctx context.Context) error {
	err := r.lock.Release(ctx)
	if err == nil || errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return fmt.Errorf("failed to release import lock: %w", err)
}

// Ensure RedisImportLocker implements ImportLocker
var _ fiscalsync.ImportLocker = (*RedisImportLocker)(nil)
