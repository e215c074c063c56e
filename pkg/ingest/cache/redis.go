package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"strata-hq/strata/pkg/ingest"
)

// RedisConfig contains configuration for the Redis cache.
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection URL.
	// Default: redis://localhost:6379
	URL string

	// KeyPrefix namespaces every cache key. Default: "strata:cache:"
	KeyPrefix string

	// TTL expires entries. Zero keeps them until removed.
	TTL time.Duration
}

// RedisCache implements ingest.Cache on Redis strings.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	url := cfg.URL
	if url == "" {
		url = "redis://localhost:6379"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, ingest.NewConfigError("cache.redis.url", fmt.Sprintf("parse redis url: %v", err))
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, ingest.NewCacheError("redis", "connect", "", err)
	}

	return NewRedisCacheFromClient(client, cfg), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client redis.UniversalClient, cfg RedisConfig) *RedisCache {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "strata:cache:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: cfg.TTL}
}

func (c *RedisCache) key(id string) string { return c.prefix + id }

// Get implements ingest.Cache.
func (c *RedisCache) Get(ctx context.Context, id string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ingest.NewCacheError("redis", "get", id, err)
	}
	return data, true, nil
}

// Put implements ingest.Cache.
func (c *RedisCache) Put(ctx context.Context, id string, data []byte) error {
	if err := c.client.Set(ctx, c.key(id), data, c.ttl).Err(); err != nil {
		return ingest.NewCacheError("redis", "put", id, err)
	}
	return nil
}

// Remove implements ingest.Cache.
func (c *RedisCache) Remove(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return ingest.NewCacheError("redis", "remove", id, err)
	}
	return nil
}

// Close implements ingest.Cache.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
