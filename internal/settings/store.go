package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/redis/go-redis/v9"

	"github.com/aman-zulfiqar/solana-swap-terminal/internal/constants"
)

// Store persists per-owner settings in redis, one JSON value per owner with
// a set index for listing.
type Store struct {
	client redis.Cmdable
}

func NewStore(client redis.Cmdable) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &Store{client: client}, nil
}

// ValidateOwner rejects keys that are not 32-byte base58 public keys, so
// arbitrary strings cannot land in the settings keyspace.
func ValidateOwner(owner string) error {
	raw, err := base58.Decode(owner)
	if err != nil {
		return fmt.Errorf("invalid owner address")
	}
	if len(raw) != 32 {
		return fmt.Errorf("invalid owner address")
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, in Settings) (*Settings, error) {
	if err := ValidateOwner(in.Owner); err != nil {
		return nil, err
	}

	in.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(&in)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, ownerKey(in.Owner), b, 0)
	pipe.SAdd(ctx, constants.SettingsIndexKey, in.Owner)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("upsert settings: %w", err)
	}

	return &in, nil
}

// Get returns stored settings for owner, or ErrNotFound.
func (s *Store) Get(ctx context.Context, owner string) (*Settings, error) {
	if err := ValidateOwner(owner); err != nil {
		return nil, err
	}

	val, err := s.client.Get(ctx, ownerKey(owner)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	var out Settings
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	return &out, nil
}

// GetOrDefault returns stored settings, falling back to defaults when the
// owner has none.
func (s *Store) GetOrDefault(ctx context.Context, owner string) (*Settings, error) {
	out, err := s.Get(ctx, owner)
	if err == ErrNotFound {
		return Default(owner), nil
	}
	return out, err
}

func (s *Store) Delete(ctx context.Context, owner string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, ownerKey(owner))
	pipe.SRem(ctx, constants.SettingsIndexKey, owner)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}

func ownerKey(owner string) string {
	return constants.SettingsValuePrefix + owner
}
