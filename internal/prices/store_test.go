package prices

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use different DB for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Ping(ctx).Err()
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	err = client.FlushDB(ctx).Err()
	require.NoError(t, err)

	return client
}

func cleanupTestRedis(_ *testing.T, client *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = client.FlushDB(ctx).Err()
	_ = client.Close()
}

func TestRedisStore_RoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewRedisStore(client, "test-cached-prices")
	require.NoError(t, err)

	ctx := context.Background()

	in := map[string]Entry{
		mintSOL:  {USD: 150, ObservedAt: time.Now().UnixMilli()},
		mintUSDC: {USD: 1, ObservedAt: time.Now().UnixMilli()},
	}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRedisStore_LoadMissingKey(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewRedisStore(client, "never-written")
	require.NoError(t, err)

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNewRedisStore_Validation(t *testing.T) {
	_, err := NewRedisStore(nil, "key")
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	_, err = NewRedisStore(client, "")
	assert.Error(t, err)
}

func TestLoadCache_PrunesStaleEntries(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewRedisStore(client, "test-cached-prices")
	require.NoError(t, err)

	ctx := context.Background()
	ttl := time.Minute

	require.NoError(t, store.Save(ctx, map[string]Entry{
		mintSOL:  freshEntry(150),
		mintUSDC: staleEntry(1, ttl),
	}))

	cache := LoadCache(ctx, store, ttl, nil)
	assert.Equal(t, 1, cache.Len())

	_, ok := cache.Get(mintSOL)
	assert.True(t, ok)
	_, ok = cache.Lookup(mintUSDC)
	assert.False(t, ok)
}
