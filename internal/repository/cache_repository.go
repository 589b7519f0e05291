package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

// CacheRepository stores JSON snapshots in Redis.
type CacheRepository struct {
	client redis.Cmdable
}

// NewCacheRepository constructs a cache repository. A nil client yields a
// repository that always misses.
func NewCacheRepository(client redis.Cmdable) *CacheRepository {
	return &CacheRepository{client: client}
}

// Get retrieves and unmarshals the cached value into dest.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set marshals value and stores it with ttl.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Generation returns the counter stored at key, or zero when it was never
// bumped.
func (r *CacheRepository) Generation(ctx context.Context, key string) (int64, error) {
	if r.client == nil {
		return 0, nil
	}

	n, err := r.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get generation %s: %w", key, err)
	}
	return n, nil
}

// Bump increments the counters at keys in one MULTI/EXEC round trip.
func (r *CacheRepository) Bump(ctx context.Context, keys ...string) error {
	if r.client == nil || len(keys) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, key := range keys {
		pipe.Incr(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis incr %v: %w", keys, err)
	}
	return nil
}
