package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Generation(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, keys ...string) error
}

// CacheService wraps the snapshot cache. Cache failures are logged and
// swallowed; callers fall back to the database.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get reports whether key was found and decoded into dest.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	err := s.repo.Get(ctx, key, dest)
	if err != nil {
		s.metrics.RecordCacheOperation(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	s.metrics.RecordCacheOperation(true)
	return true
}

// Set stores value under key.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) {
	if !s.Enabled() {
		return
	}
	if err := s.repo.Set(ctx, key, value, s.defaultTTL); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Generation reads the version counter at key. ok is false when the cache is
// off or the counter could not be read; callers must not cache in that case.
func (s *CacheService) Generation(ctx context.Context, key string) (gen int64, ok bool) {
	if !s.Enabled() {
		return 0, false
	}
	gen, err := s.repo.Generation(ctx, key)
	if err != nil {
		s.logger.Warn("cache generation read failed", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return gen, true
}

// Bump advances version counters so snapshots stored under an older
// generation are never read again.
func (s *CacheService) Bump(ctx context.Context, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}
	if err := s.repo.Bump(ctx, keys...); err != nil {
		s.logger.Warn("cache generation bump failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Snapshots are keyed by generation. A reader that loaded before a write but
// stores after the bump writes under the old generation, which nobody reads.
func occupancyGenerationKey(offeringID string) string {
	return "occupancy:" + offeringID + ":gen"
}

func occupancyKey(offeringID string, gen int64) string {
	return fmt.Sprintf("occupancy:%s:v%d", offeringID, gen)
}
