package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryQueryCache is the default query cache
type MemoryQueryCache struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewMemoryQueryCache creates an empty cache
func NewMemoryQueryCache() *MemoryQueryCache {
	return &MemoryQueryCache{
		cache: ttlcache.New[string, []byte](
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
	}
}

// Get returns a fresh entry
func (c *MemoryQueryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	item := c.cache.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set stores value under key for ttl. A non-positive ttl removes the key.
func (c *MemoryQueryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		c.cache.Delete(key)
		return nil
	}

	c.cache.Set(key, value, ttl)
	return nil
}

// InvalidatePrefix drops every entry whose key starts with prefix
func (c *MemoryQueryCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	for _, key := range c.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
	return nil
}

// Sweep evicts expired entries and returns how many were dropped
func (c *MemoryQueryCache) Sweep() int {
	return sweep(c.cache)
}

// Len returns the number of fresh entries
func (c *MemoryQueryCache) Len() int {
	return c.cache.Len()
}
