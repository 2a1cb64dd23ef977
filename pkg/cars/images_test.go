package cars

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemImageStore_RoundTrip(t *testing.T) {
	store, err := NewFilesystemImageStore(t.TempDir(), "http://localhost:8080/images/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Put(ctx, "cars/c1", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/images/cars/c1", url)

	data, err := store.Get(ctx, "cars/c1")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	_, err = store.Get(ctx, "cars/missing")
	assert.Error(t, err)
}

// countingImageStore counts reads that reach the backing store
type countingImageStore struct {
	inner ImageStore
	gets  atomic.Int64
}

func (c *countingImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return c.inner.Put(ctx, key, data, contentType)
}

func (c *countingImageStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets.Add(1)
	return c.inner.Get(ctx, key)
}

func TestCachedImageStore_ServesFromLRU(t *testing.T) {
	fs, err := NewFilesystemImageStore(t.TempDir(), "http://localhost/images")
	require.NoError(t, err)
	counting := &countingImageStore{inner: fs}

	cached, err := NewCachedImageStore(counting, 8)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cached.Put(ctx, "cars/c1", []byte("bytes"), "image/png")
	require.NoError(t, err)

	// Put primed the cache, so reads never hit the backing store
	for i := 0; i < 3; i++ {
		data, err := cached.Get(ctx, "cars/c1")
		require.NoError(t, err)
		assert.Equal(t, []byte("bytes"), data)
	}
	assert.Equal(t, int64(0), counting.gets.Load())

	// A cold key hits the store exactly once
	_, err = fs.Put(ctx, "cars/c2", []byte("other"), "image/png")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := cached.Get(ctx, "cars/c2")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), counting.gets.Load())
}
