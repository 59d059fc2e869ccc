package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// TagCache is a get-or-compute cache whose entries all share one
// invalidation tag. Flushing the tag drops every entry wholesale instead of
// enumerating keys, trading recomputation for simplicity.
//
// Lookups are not serialized per key: concurrent misses on the same key
// each recompute and the last write wins.
type TagCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewTagCache constructs a TagCache with the given entry TTL.
func NewTagCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *TagCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagCache{client: client, ttl: ttl, logger: logger}
}

// GetOrCompute loads the JSON value stored under key into dest, computing
// and storing it on a miss. Redis read failures degrade to a miss and store
// failures are logged, never surfaced: the computed value is still
// returned. The boolean reports whether the value came from cache.
func (c *TagCache) GetOrCompute(ctx context.Context, tag, key string, dest any, compute func(context.Context) (any, error)) (bool, error) {
	if payload, err := c.client.Get(ctx, key).Bytes(); err == nil {
		if err := json.Unmarshal(payload, dest); err == nil {
			return true, nil
		}
		// Unreadable entry, drop it and recompute.
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache get failed", slog.String("key", key), slog.Any("error", err))
	}

	value, err := compute(ctx)
	if err != nil {
		return false, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("platform/cache: marshal %s: %w", key, err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, payload, c.ttl)
	pipe.SAdd(ctx, tag, key)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("cache store failed", slog.String("key", key), slog.Any("error", err))
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("platform/cache: decode %s: %w", key, err)
	}
	return false, nil
}

// Flush drops every entry registered under tag.
func (c *TagCache) Flush(ctx context.Context, tag string) error {
	keys, err := c.client.SMembers(ctx, tag).Result()
	if err != nil {
		return fmt.Errorf("platform/cache: members of %s: %w", tag, err)
	}

	pipe := c.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, tag)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("platform/cache: flush %s: %w", tag, err)
	}
	return nil
}
