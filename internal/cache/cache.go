// Package cache stages raw request batches between acceptance and processing.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces staged batches in a shared Redis
const DefaultKeyPrefix = "ingest:batch:"

// StagingCache is a TTL key/value store for raw batches keyed by tracking id
type StagingCache interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get reports found=false for absent or expired keys. err is reserved for
	// transport failures.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Remove(ctx context.Context, key string) error
}

// RedisCache is a StagingCache backed by Redis string keys
type RedisCache struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisCache wraps a go-redis client
func NewRedisCache(rdb redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisCache{rdb: rdb, prefix: prefix}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Put stores value under key, replacing any previous value
func (c *RedisCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// Get returns the staged value for key
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Remove deletes key. Removing an absent key is not an error.
func (c *RedisCache) Remove(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
