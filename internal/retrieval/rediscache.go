package retrieval

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finvault-ai/semindex/internal/observability"
)

// RedisContextCache is a Redis-backed ContextStore for multi-process
// deployments. Redis enforces TTL and memory bounds itself; any fault is
// treated as a miss.
type RedisContextCache struct {
	client *redis.Client
	logger *observability.Logger
	ttl    time.Duration
	prefix string
}

// RedisCacheConfig configures the Redis cache.
type RedisCacheConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	TTL      time.Duration
	Prefix   string
}

// NewRedisContextCache creates a Redis-backed cache, verifying connectivity.
func NewRedisContextCache(cfg RedisCacheConfig, logger *observability.Logger) (*RedisContextCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "semindex:context:"
	}

	return &RedisContextCache{
		client: client,
		logger: logger,
		ttl:    ttl,
		prefix: prefix,
	}, nil
}

// Get returns the cached context string, treating any Redis error as a miss.
func (c *RedisContextCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug().Err(err).Str("key", key).Msg("Redis cache get failed")
		}
		return "", false
	}
	return val, true
}

// Put stores the context string with the configured TTL.
func (c *RedisContextCache) Put(ctx context.Context, key string, value string) {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("Redis cache put failed")
	}
}

// Close closes the Redis connection.
func (c *RedisContextCache) Close() error {
	return c.client.Close()
}

var _ ContextStore = (*RedisContextCache)(nil)
