package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/passarei/backend/internal/platform/logger"
)

// Cache is the narrow cache-aside surface consumed by read services. A nil
// *Cache is a valid no-op cache so callers never branch on availability.
type Cache struct {
	client *redis.Client
	log    *logger.Logger
}

func New(addr, password string, db int, baseLog *logger.Logger) *Cache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{client: client, log: baseLog.With("component", "RedisCache")}
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// GetJSON unmarshals the cached value into out. Returns false on miss or on
// any redis failure; cache errors are logged, never propagated.
func (c *Cache) GetJSON(ctx context.Context, key string, out interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn("cache value corrupt, dropping", "key", key, "error", err)
		_ = c.client.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		c.log.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
