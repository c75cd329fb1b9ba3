package settings

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwner  = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
	otherOwner = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
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

func TestValidateOwner(t *testing.T) {
	assert.NoError(t, ValidateOwner(testOwner))

	assert.Error(t, ValidateOwner(""))
	assert.Error(t, ValidateOwner("not-base58-0OIl"))
	assert.Error(t, ValidateOwner("abc")) // decodes to fewer than 32 bytes
}

func TestStore_UpsertAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	out, err := store.Upsert(ctx, Settings{
		Owner:            testOwner,
		SlippageBps:      100,
		PriorityFeeSOL:   0.001,
		OnlyDirectRoutes: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, out.UpdatedAt)

	got, err := store.Get(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, uint16(100), got.SlippageBps)
	assert.Equal(t, 0.001, got.PriorityFeeSOL)
	assert.True(t, got.OnlyDirectRoutes)
}

func TestStore_GetMissing(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), testOwner)
	assert.Equal(t, ErrNotFound, err)
}

func TestStore_GetOrDefault(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	// No stored settings falls back to defaults
	got, err := store.GetOrDefault(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, uint16(50), got.SlippageBps)
	assert.Equal(t, testOwner, got.Owner)

	// Stored settings win
	_, err = store.Upsert(ctx, Settings{Owner: testOwner, SlippageBps: 200})
	require.NoError(t, err)

	got, err = store.GetOrDefault(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, uint16(200), got.SlippageBps)
}

func TestStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = store.Upsert(ctx, Settings{Owner: testOwner, SlippageBps: 100})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, testOwner))

	_, err = store.Get(ctx, testOwner)
	assert.Equal(t, ErrNotFound, err)

	// Deleting settings that never existed is fine
	assert.NoError(t, store.Delete(ctx, otherOwner))
}

func TestStore_InvalidOwnerRejected(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(t, client)

	store, err := NewStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = store.Upsert(ctx, Settings{Owner: "bogus"})
	assert.Error(t, err)
	_, err = store.Get(ctx, "bogus")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, "bogus"))
}
