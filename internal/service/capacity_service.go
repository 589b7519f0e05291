package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

type offeringReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Offering, error)
}

type offeringAssignmentLister interface {
	ListByOffering(ctx context.Context, exec sqlx.ExtContext, offeringID string) ([]models.Assignment, error)
}

// CapacityService tallies and enforces per-period seat usage for offerings.
type CapacityService struct {
	offerings   offeringReader
	assignments offeringAssignmentLister
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewCapacityService constructs the capacity ledger.
func NewCapacityService(offerings offeringReader, assignments offeringAssignmentLister, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *CapacityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CapacityService{offerings: offerings, assignments: assignments, cache: cache, metrics: metrics, logger: logger}
}

// TallyOccupancy counts, per period, the assignments of offering that occupy
// it. The assignment with excludeID is left out so an existing assignment can
// be re-validated against everyone else.
func TallyOccupancy(offering *models.Offering, assignments []models.Assignment, excludeID string) models.Occupancy {
	occ := models.Occupancy{
		OfferingID: offering.ID,
		Periods:    make(map[int]int, models.MaxPeriod),
		SizeLimit:  offering.SizeLimit,
	}
	for p := 1; p <= models.MaxPeriod; p++ {
		occ.Periods[p] = 0
	}
	for _, a := range assignments {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		occ.Total++
		for _, p := range a.Periods.Normalize() {
			occ.Periods[p]++
		}
	}
	return occ
}

// CheckCapacity reports the first candidate period that has no open seat.
// A size limit of zero or less blocks every period and also assignments that
// claim no period at all.
func CheckCapacity(occ models.Occupancy, candidate models.Periods) error {
	if occ.SizeLimit <= 0 && len(candidate) == 0 {
		err := appErrors.Clone(appErrors.ErrCapacityExceeded,
			fmt.Sprintf("offering %s accepts no assignments", occ.OfferingID))
		err.Details = map[string]interface{}{
			"offering_id": occ.OfferingID,
			"size_limit":  occ.SizeLimit,
		}
		return err
	}
	for _, p := range candidate.Normalize() {
		if occ.Periods[p] < occ.SizeLimit {
			continue
		}
		err := appErrors.Clone(appErrors.ErrCapacityExceeded,
			fmt.Sprintf("offering %s is full in period %d", occ.OfferingID, p))
		err.Details = map[string]interface{}{
			"offering_id": occ.OfferingID,
			"period":      p,
			"occupied":    occ.Periods[p],
			"size_limit":  occ.SizeLimit,
		}
		return err
	}
	return nil
}

// Admit verifies candidate periods fit in offering. The caller must hold the
// offering row lock inside exec so the tally cannot go stale before the write.
func (s *CapacityService) Admit(ctx context.Context, exec sqlx.ExtContext, offering *models.Offering, candidate models.Periods, excludeID string) error {
	if len(candidate) == 0 && offering.SizeLimit > 0 {
		return nil
	}
	assignments, err := s.assignments.ListByOffering(ctx, exec, offering.ID)
	if err != nil {
		return err
	}
	occ := TallyOccupancy(offering, assignments, excludeID)
	if err := CheckCapacity(occ, candidate); err != nil {
		if appErr := appErrors.FromError(err); appErr.Details != nil {
			if period, ok := appErr.Details["period"].(int); ok {
				s.metrics.RecordCapacityRejection(period)
			}
		}
		s.logger.Debug("capacity rejected",
			zap.String("offering_id", offering.ID),
			zap.Ints("periods", []int(candidate)),
			zap.Int("size_limit", offering.SizeLimit))
		return err
	}
	return nil
}

// Occupancy returns a read-only occupancy snapshot for an offering. Snapshots
// may come from the cache and are never used for enforcement.
func (s *CapacityService) Occupancy(ctx context.Context, offeringID string) (*models.Occupancy, error) {
	gen, cacheable := s.cache.Generation(ctx, occupancyGenerationKey(offeringID))
	key := occupancyKey(offeringID, gen)
	if cacheable {
		var cached models.Occupancy
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	offering, err := s.offerings.FindByID(ctx, nil, offeringID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	assignments, err := s.assignments.ListByOffering(ctx, nil, offeringID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	occ := TallyOccupancy(offering, assignments, "")
	if cacheable {
		s.cache.Set(ctx, key, occ)
	}
	return &occ, nil
}

// Invalidate retires cached snapshots for the given offerings. Call it after
// the write has committed.
func (s *CapacityService) Invalidate(ctx context.Context, offeringIDs ...string) {
	if s == nil || len(offeringIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(offeringIDs))
	seen := make(map[string]struct{}, len(offeringIDs))
	for _, id := range offeringIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, occupancyGenerationKey(id))
	}
	s.cache.Bump(ctx, keys...)
}
