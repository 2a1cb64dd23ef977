package cars

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	listCacheKey        = "cars:available"
	defaultListCacheTTL = 5 * time.Minute
)

// ListCache is a Redis cache-aside layer for the public available-car list,
// the hottest read in the system. Any car mutation invalidates it.
type ListCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewListCache creates a list cache on an existing Redis client. A
// non-positive ttl selects the default.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if ttl <= 0 {
		ttl = defaultListCacheTTL
	}
	return &ListCache{redis: client, ttl: ttl}
}

// Get returns the cached list, or nil on a miss. Cache errors are treated
// as misses; the caller falls through to storage.
func (c *ListCache) Get(ctx context.Context) []*Car {
	raw, err := c.redis.Get(ctx, listCacheKey).Result()
	if err != nil {
		return nil
	}

	var cars []*Car
	if err := json.Unmarshal([]byte(raw), &cars); err != nil {
		return nil
	}
	return cars
}

// Set stores the list with a short TTL
func (c *ListCache) Set(ctx context.Context, cars []*Car) {
	raw, err := json.Marshal(cars)
	if err != nil {
		return
	}
	c.redis.Set(ctx, listCacheKey, raw, c.ttl)
}

// Invalidate drops the cached list
func (c *ListCache) Invalidate(ctx context.Context) {
	c.redis.Del(ctx, listCacheKey)
}
