package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheKeyPrefix = "wbtxdash:cache:"

// RedisQueryCache stores cached API responses in Redis
type RedisQueryCache struct {
	client *redis.Client
	log    logrus.FieldLogger
}

// NewRedisQueryCache creates a Redis-backed query cache
func NewRedisQueryCache(client *redis.Client, logger logrus.FieldLogger) *RedisQueryCache {
	return &RedisQueryCache{
		client: client,
		log:    logger.WithField("component", "querycache"),
	}
}

// Get returns the cached bytes. Redis errors are logged and count as a miss.
func (c *RedisQueryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Query cache read failed")
		return nil, false
	}
	return data, true
}

// Set stores value under key for ttl
func (c *RedisQueryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, cacheKeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}

// InvalidatePrefix deletes every key under prefix using SCAN
func (c *RedisQueryCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+prefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %d cache keys: %w", len(keys), err)
	}
	return nil
}
