package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"NewsLens/internal/ports"
)

// RedisCache caches assembled feed pages with a short TTL. Every
// operation is nil-safe and failure-tolerant: a broken cache degrades
// to a miss, never to an error for the caller.
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
	logger     *slog.Logger
}

var _ ports.FeedCache = (*RedisCache)(nil)

// NewRedisCache connects to Redis; a failed ping is logged, not fatal.
func NewRedisCache(addr string, defaultTTL time.Duration, logger *slog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil && logger != nil {
		logger.Warn("redis ping failed, cache will degrade to misses", "addr", addr, "error", err)
	}

	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &RedisCache{client: client, defaultTTL: defaultTTL, logger: logger}
}

// Get decodes a cached value; false means miss.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

// Set stores a value; encoding or transport failures are swallowed.
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil && c.logger != nil {
		c.logger.Debug("cache set failed", "key", key, "error", err)
	}
}
