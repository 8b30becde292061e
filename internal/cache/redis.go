package cache

import (
	"context"
	"log"
	"time"

	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		PoolSize:     50,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
}

// RedisStore is a Store on top of a Redis server.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates the Redis client without waiting for the server.
// The connection is checked in the background so a missing Redis never
// delays startup; requests simply fail open until it comes up.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		// A cache lookup is cheaper to skip than to retry.
		MaxRetries: -1,
	})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout+time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[cache] Redis at %s unavailable, serving uncached: %v", cfg.Addr, err)
			return
		}
		log.Printf("[cache] Connected to Redis at %s", cfg.Addr)
	}()

	return NewRedisStoreFromClient(client)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, errors.Annotatef(err, "redis get %q", key)
	}
	return value, true, nil
}

// Set implements Store. The value expires after ttl, like SETEX.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Annotatef(err, "redis set %q", key)
	}
	return nil
}

// Ping checks whether the Redis connection is healthy.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
