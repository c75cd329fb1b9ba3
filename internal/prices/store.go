package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Store persists the price table across restarts. There is exactly one
// writer (the resolver), so load/merge/save does not need to be atomic.
type Store interface {
	Load(ctx context.Context) (map[string]Entry, error)
	Save(ctx context.Context, entries map[string]Entry) error
}

// LoadCache builds the in-memory cache from durable storage. Stale entries
// are pruned once here; there is no background sweeper.
func LoadCache(ctx context.Context, store Store, ttl time.Duration, logger *logrus.Logger) *Cache {
	if logger == nil {
		logger = logrus.New()
	}
	cache := NewCache(ttl)
	if store == nil {
		return cache
	}

	entries, err := store.Load(ctx)
	if err != nil {
		logger.WithError(err).Warn("failed to load cached prices, starting empty")
		return cache
	}
	cache.Merge(entries)

	if removed := cache.PruneExpired(); removed > 0 {
		logger.WithFields(logrus.Fields{
			"removed":   removed,
			"remaining": cache.Len(),
		}).Debug("pruned expired cached prices")
	}
	return cache
}

// RedisStore keeps the whole serialized table under a single key, mirroring
// the browser terminal's localStorage layout.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisStore(client redis.Cmdable, key string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("storage key is empty")
	}
	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Load(ctx context.Context) (map[string]Entry, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return map[string]Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cached prices: %w", err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal([]byte(val), &entries); err != nil {
		return nil, fmt.Errorf("unmarshal cached prices: %w", err)
	}
	if entries == nil {
		entries = map[string]Entry{}
	}
	return entries, nil
}

func (s *RedisStore) Save(ctx context.Context, entries map[string]Entry) error {
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal cached prices: %w", err)
	}
	if err := s.client.Set(ctx, s.key, b, 0).Err(); err != nil {
		return fmt.Errorf("save cached prices: %w", err)
	}
	return nil
}
