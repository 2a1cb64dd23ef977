package cars

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ListCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewListCache(client, 0), mr
}

func TestListCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	assert.Nil(t, cache.Get(ctx))

	cars := []*Car{testCar("c1", "o1", "Berlin")}
	cache.Set(ctx, cars)

	got := cache.Get(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "BMW", got[0].Brand)
}

func TestListCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, []*Car{testCar("c1", "o1", "Berlin")})
	cache.Invalidate(ctx)
	assert.Nil(t, cache.Get(ctx))
}

func TestListCache_TTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, []*Car{testCar("c1", "o1", "Berlin")})
	mr.FastForward(defaultListCacheTTL * 2)
	assert.Nil(t, cache.Get(ctx))
}

func TestListCache_RedisDownIsAMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	mr.Close()
	assert.Nil(t, cache.Get(ctx))
}
