package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

type cacheRepoStub struct {
	mu     sync.Mutex
	store  map[string][]byte
	gens   map[string]int64
	bumped []string
	getErr error
	genErr error
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{store: map[string][]byte{}, gens: map[string]int64{}}
}

func (s *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return s.getErr
	}
	raw, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[key] = raw
	return nil
}

func (s *cacheRepoStub) Generation(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.genErr != nil {
		return 0, s.genErr
	}
	return s.gens[key], nil
}

func (s *cacheRepoStub) Bump(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.gens[key]++
		s.bumped = append(s.bumped, key)
	}
	return nil
}

func (s *cacheRepoStub) generation(offeringID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[occupancyGenerationKey(offeringID)]
}

// writeDuringList lets a test commit a write while an occupancy read is
// between its database load and its cache store.
type writeDuringList struct {
	*assignmentRepoStub
	during func()
}

func (w *writeDuringList) ListByOffering(ctx context.Context, exec sqlx.ExtContext, offeringID string) ([]models.Assignment, error) {
	out, err := w.assignmentRepoStub.ListByOffering(ctx, exec, offeringID)
	if w.during != nil {
		during := w.during
		w.during = nil
		during()
	}
	return out, err
}

func assignmentsIn(offeringID string, periods ...models.Periods) []models.Assignment {
	out := make([]models.Assignment, 0, len(periods))
	for i, p := range periods {
		out = append(out, models.Assignment{
			ID:             offeringID + "-a" + string(rune('0'+i)),
			RegistrationID: "reg-" + string(rune('a'+i)),
			OfferingID:     offeringID,
			Periods:        p,
		})
	}
	return out
}

func TestTallyOccupancy(t *testing.T) {
	offering := &models.Offering{ID: "off-1", SizeLimit: 2}
	assignments := assignmentsIn("off-1", models.Periods{1}, models.Periods{1, 2}, models.Periods{2, 3})

	occ := TallyOccupancy(offering, assignments, "")
	assert.Equal(t, map[int]int{1: 2, 2: 2, 3: 1}, occ.Periods)
	assert.Equal(t, 3, occ.Total)
	assert.Equal(t, 2, occ.SizeLimit)

	excluded := TallyOccupancy(offering, assignments, assignments[1].ID)
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, excluded.Periods)
	assert.Equal(t, 2, excluded.Total)
}

func TestCheckCapacityAtLimit(t *testing.T) {
	offering := &models.Offering{ID: "off-1", SizeLimit: 3}

	occ := TallyOccupancy(offering, assignmentsIn("off-1", models.Periods{1}, models.Periods{1}), "")
	require.NoError(t, CheckCapacity(occ, models.Periods{1}), "third seat is open")

	occ = TallyOccupancy(offering, assignmentsIn("off-1", models.Periods{1}, models.Periods{1}, models.Periods{1}), "")
	err := CheckCapacity(occ, models.Periods{1})
	appErr := requireCode(t, err, appErrors.ErrCapacityExceeded)
	assert.True(t, appErr.Retryable)
	assert.Equal(t, "off-1", appErr.Details["offering_id"])
	assert.Equal(t, 1, appErr.Details["period"])

	require.NoError(t, CheckCapacity(occ, models.Periods{2, 3}), "other periods still open")
}

func TestCheckCapacityNamesFirstFullPeriod(t *testing.T) {
	occ := models.Occupancy{OfferingID: "off-1", SizeLimit: 1, Periods: map[int]int{3: 1}}
	err := CheckCapacity(occ, models.Periods{3, 2})
	appErr := requireCode(t, err, appErrors.ErrCapacityExceeded)
	assert.Equal(t, 3, appErr.Details["period"])
}

func TestCheckCapacityZeroLimitBlocksEverything(t *testing.T) {
	occ := TallyOccupancy(&models.Offering{ID: "off-1", SizeLimit: 0}, nil, "")
	for _, p := range []int{1, 2, 3} {
		requireCode(t, CheckCapacity(occ, models.Periods{p}), appErrors.ErrCapacityExceeded)
	}
	requireCode(t, CheckCapacity(occ, nil), appErrors.ErrCapacityExceeded)
}

func TestTallyOccupancyReportsEmptyPeriods(t *testing.T) {
	occ := TallyOccupancy(&models.Offering{ID: "off-1", Periods: models.Periods{1, 2, 3}, SizeLimit: 20}, nil, "")
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0}, occ.Periods)

	raw, err := json.Marshal(occ)
	require.NoError(t, err)
	assert.JSONEq(t, `{"offering_id":"off-1","periods":{"1":0,"2":0,"3":0},"total":0,"size_limit":20}`, string(raw))
}

func TestCapacityServiceAdmitWithoutPeriods(t *testing.T) {
	svc := NewCapacityService(&offeringRepoStub{}, &assignmentRepoStub{}, nil, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Admit(ctx, nil, &models.Offering{ID: "off-1", SizeLimit: 1}, nil, ""))

	err := svc.Admit(ctx, nil, &models.Offering{ID: "off-closed", SizeLimit: 0}, models.Periods{}, "")
	appErr := requireCode(t, err, appErrors.ErrCapacityExceeded)
	assert.Equal(t, "off-closed", appErr.Details["offering_id"])
}

func TestCapacityServiceAdmitExcludesSelf(t *testing.T) {
	offering := &models.Offering{ID: "off-1", SizeLimit: 1}
	assignments := &assignmentRepoStub{items: assignmentsIn("off-1", models.Periods{1})}
	svc := NewCapacityService(&offeringRepoStub{}, assignments, nil, nil, nil)

	err := svc.Admit(context.Background(), nil, offering, models.Periods{1}, "")
	requireCode(t, err, appErrors.ErrCapacityExceeded)

	require.NoError(t, svc.Admit(context.Background(), nil, offering, models.Periods{1}, assignments.items[0].ID))
}

func TestCapacityServiceOccupancyUsesCache(t *testing.T) {
	offerings := &offeringRepoStub{offerings: map[string]*models.Offering{
		"off-1": {ID: "off-1", SizeLimit: 5},
	}}
	assignments := &assignmentRepoStub{items: assignmentsIn("off-1", models.Periods{1, 2})}
	cacheRepo := newCacheRepoStub()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, nil, true)
	svc := NewCapacityService(offerings, assignments, cache, metrics, nil)

	occ, err := svc.Occupancy(context.Background(), "off-1")
	require.NoError(t, err)
	assert.Equal(t, 1, occ.Periods[1])
	assert.Contains(t, cacheRepo.store, "occupancy:off-1:v0")

	// A stale snapshot is served until invalidated.
	assignments.items = append(assignments.items, assignmentsIn("off-1", models.Periods{1})...)
	occ, err = svc.Occupancy(context.Background(), "off-1")
	require.NoError(t, err)
	assert.Equal(t, 1, occ.Periods[1])

	svc.Invalidate(context.Background(), "off-1", "off-1")
	assert.Equal(t, []string{"occupancy:off-1:gen"}, cacheRepo.bumped)

	occ, err = svc.Occupancy(context.Background(), "off-1")
	require.NoError(t, err)
	assert.Equal(t, 2, occ.Periods[1])
	assert.Equal(t, 5, occ.Remaining(2)+occ.Periods[2])
	assert.Contains(t, cacheRepo.store, "occupancy:off-1:v1")
}

func TestCapacityServiceOccupancyWriteDuringLoadIsNotServed(t *testing.T) {
	offerings := &offeringRepoStub{offerings: map[string]*models.Offering{
		"off-1": {ID: "off-1", SizeLimit: 5},
	}}
	store := &assignmentRepoStub{}
	lister := &writeDuringList{assignmentRepoStub: store}
	cacheRepo := newCacheRepoStub()
	svc := NewCapacityService(offerings, lister, NewCacheService(cacheRepo, nil, time.Minute, nil, true), nil, nil)
	ctx := context.Background()

	lister.during = func() {
		store.items = append(store.items, assignmentsIn("off-1", models.Periods{1})...)
		svc.Invalidate(ctx, "off-1")
	}

	first, err := svc.Occupancy(ctx, "off-1")
	require.NoError(t, err)
	assert.Zero(t, first.Total, "load happened before the write")

	next, err := svc.Occupancy(ctx, "off-1")
	require.NoError(t, err)
	assert.Equal(t, 1, next.Total)
	assert.Equal(t, 1, next.Periods[1])
}

func TestCapacityServiceOccupancySkipsCacheWhenGenerationUnreadable(t *testing.T) {
	offerings := &offeringRepoStub{offerings: map[string]*models.Offering{
		"off-1": {ID: "off-1", SizeLimit: 5},
	}}
	cacheRepo := newCacheRepoStub()
	cacheRepo.genErr = errors.New("connection refused")
	svc := NewCapacityService(offerings, &assignmentRepoStub{}, NewCacheService(cacheRepo, nil, time.Minute, nil, true), nil, nil)

	_, err := svc.Occupancy(context.Background(), "off-1")
	require.NoError(t, err)
	assert.Empty(t, cacheRepo.store)
}

func TestCapacityServiceOccupancyNotFound(t *testing.T) {
	svc := NewCapacityService(&offeringRepoStub{}, &assignmentRepoStub{}, nil, nil, nil)
	_, err := svc.Occupancy(context.Background(), "missing")
	requireCode(t, err, appErrors.ErrNotFound)
}
