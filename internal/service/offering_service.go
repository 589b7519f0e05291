package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	"github.com/dmurtari/mbu-online-sub002/pkg/database"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

type offeringRepository interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Offering, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Offering, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Offering, error)
	Create(ctx context.Context, exec sqlx.ExtContext, offering *models.Offering) error
	Update(ctx context.Context, exec sqlx.ExtContext, offering *models.Offering) error
}

type offeringAssignmentRepository interface {
	ListByOffering(ctx context.Context, exec sqlx.ExtContext, offeringID string) ([]models.Assignment, error)
	ListDetailsByOffering(ctx context.Context, offeringID string) ([]models.AssignmentDetail, error)
	UpdateCompletions(ctx context.Context, exec sqlx.ExtContext, id string, completions models.Completions) error
}

// CreateOfferingRequest describes a new badge offering at an event.
type CreateOfferingRequest struct {
	EventID      string          `json:"event_id" validate:"required"`
	BadgeID      string          `json:"badge_id" validate:"required"`
	Duration     int             `json:"duration" validate:"required,min=1,max=3"`
	Periods      []int           `json:"periods" validate:"omitempty,max=3,dive,min=1,max=3"`
	Price        decimal.Decimal `json:"price"`
	SizeLimit    *int            `json:"size_limit" validate:"omitempty,min=0"`
	Requirements []string        `json:"requirements" validate:"omitempty,dive,max=64"`
}

// UpdateOfferingRequest patches an offering; nil fields are left alone.
type UpdateOfferingRequest struct {
	Duration     *int             `json:"duration" validate:"omitempty,min=1,max=3"`
	Periods      *[]int           `json:"periods" validate:"omitempty,max=3,dive,min=1,max=3"`
	Price        *decimal.Decimal `json:"price"`
	SizeLimit    *int             `json:"size_limit" validate:"omitempty,min=0"`
	Requirements *[]string        `json:"requirements" validate:"omitempty,dive,max=64"`
}

// RequirementsRequest replaces the requirement list of an offering.
type RequirementsRequest struct {
	Requirements []string `json:"requirements" validate:"dive,max=64"`
}

// OfferingUpdateResult reports the offering after a change and how many
// assignments had their completions reconciled.
type OfferingUpdateResult struct {
	Offering   *models.Offering `json:"offering"`
	Reconciled int              `json:"reconciled_assignments"`
}

// OfferingConfig tunes offering writes.
type OfferingConfig struct {
	DefaultSizeLimit int
	LockTimeout      time.Duration
}

// OfferingService manages offerings and keeps assignment completions in step
// with requirement changes.
type OfferingService struct {
	tx          txProvider
	offerings   offeringRepository
	assignments offeringAssignmentRepository
	events      eventReader
	capacity    *CapacityService
	validator   *validator.Validate
	metrics     *MetricsService
	logger      *zap.Logger
	cfg         OfferingConfig
}

// NewOfferingService constructs the offering service.
func NewOfferingService(tx txProvider, offerings offeringRepository, assignments offeringAssignmentRepository, events eventReader, capacity *CapacityService, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg OfferingConfig) *OfferingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultSizeLimit == 0 {
		cfg.DefaultSizeLimit = models.DefaultSizeLimit
	}
	return &OfferingService{
		tx:          tx,
		offerings:   offerings,
		assignments: assignments,
		events:      events,
		capacity:    capacity,
		validator:   validate,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
	}
}

// ValidateShape checks a duration and period set without touching storage.
func (s *OfferingService) ValidateShape(duration int, periods []int) error {
	return ValidateOfferingShape(duration, models.Periods(periods).Normalize())
}

// Get returns a single offering.
func (s *OfferingService) Get(ctx context.Context, id string) (*models.Offering, error) {
	offering, err := s.offerings.FindByID(ctx, nil, id)
	if err != nil {
		return nil, translateStoreError(notFoundOr(err, "offering"), "failed to load offering")
	}
	return offering, nil
}

// ListByEvent returns the offerings of an event.
func (s *OfferingService) ListByEvent(ctx context.Context, eventID string) ([]models.Offering, error) {
	offerings, err := s.offerings.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}
	return offerings, nil
}

// Create stores a new offering after checking its shape.
func (s *OfferingService) Create(ctx context.Context, req CreateOfferingRequest) (*models.Offering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if req.Price.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "price must not be negative")
	}
	periods := models.Periods(req.Periods).Normalize()
	if err := ValidateOfferingShape(req.Duration, periods); err != nil {
		return nil, err
	}
	if _, err := s.events.FindByID(ctx, nil, req.EventID); err != nil {
		return nil, translateStoreError(notFoundOr(err, "event"), "failed to load event")
	}

	sizeLimit := s.cfg.DefaultSizeLimit
	if req.SizeLimit != nil {
		sizeLimit = *req.SizeLimit
	}
	offering := &models.Offering{
		EventID:      req.EventID,
		BadgeID:      req.BadgeID,
		Duration:     req.Duration,
		Periods:      periods,
		Price:        req.Price,
		SizeLimit:    sizeLimit,
		Requirements: pq.StringArray(normalizeRequirements(req.Requirements)),
	}
	if err := s.offerings.Create(ctx, nil, offering); err != nil {
		return nil, translateStoreError(err, "failed to create offering")
	}
	s.logger.Info("offering created",
		zap.String("offering_id", offering.ID),
		zap.String("event_id", offering.EventID),
		zap.String("badge_id", offering.BadgeID))
	return offering, nil
}

// Update patches an offering. When the requirement list changes, every
// assignment of the offering is reconciled in the same transaction.
func (s *OfferingService) Update(ctx context.Context, id string, req UpdateOfferingRequest) (*OfferingUpdateResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "price must not be negative")
	}
	return s.apply(ctx, id, "update_offering", func(offering *models.Offering) error {
		if req.Duration != nil {
			offering.Duration = *req.Duration
		}
		if req.Periods != nil {
			offering.Periods = models.Periods(*req.Periods).Normalize()
		}
		if req.Duration != nil || req.Periods != nil {
			if err := ValidateOfferingShape(offering.Duration, offering.Periods); err != nil {
				return err
			}
		}
		if req.Price != nil {
			offering.Price = *req.Price
		}
		if req.SizeLimit != nil {
			offering.SizeLimit = *req.SizeLimit
		}
		if req.Requirements != nil {
			offering.Requirements = pq.StringArray(normalizeRequirements(*req.Requirements))
		}
		return nil
	})
}

// ReconcileRequirements replaces the requirement list of an offering and
// rewrites the completion map of every assignment to match it.
func (s *OfferingService) ReconcileRequirements(ctx context.Context, id string, req RequirementsRequest) (*OfferingUpdateResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return s.apply(ctx, id, "reconcile_requirements", func(offering *models.Offering) error {
		offering.Requirements = pq.StringArray(normalizeRequirements(req.Requirements))
		return nil
	})
}

// ListAssignees returns the roster of an offering.
func (s *OfferingService) ListAssignees(ctx context.Context, id string) ([]models.AssignmentDetail, error) {
	if _, err := s.offerings.FindByID(ctx, nil, id); err != nil {
		return nil, translateStoreError(notFoundOr(err, "offering"), "failed to load offering")
	}
	roster, err := s.assignments.ListDetailsByOffering(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignees")
	}
	return roster, nil
}

// Occupancy returns the per-period seat usage of an offering.
func (s *OfferingService) Occupancy(ctx context.Context, id string) (*models.Occupancy, error) {
	return s.capacity.Occupancy(ctx, id)
}

// apply locks the offering, lets mutate change it, stores it, and fans out a
// requirement change to assignments, all in one transaction.
func (s *OfferingService) apply(ctx context.Context, id, operation string, mutate func(*models.Offering) error) (*OfferingUpdateResult, error) {
	result := &OfferingUpdateResult{}
	start := time.Now()
	err := database.WithTx(ctx, s.tx, nil, func(tx *sqlx.Tx) error {
		if err := database.SetLockTimeout(ctx, tx, s.cfg.LockTimeout); err != nil {
			return err
		}
		offering, err := s.offerings.LockByID(ctx, tx, id)
		if err != nil {
			return notFoundOr(err, "offering")
		}
		before := append([]string(nil), offering.Requirements...)
		if err := mutate(offering); err != nil {
			return err
		}
		if err := s.offerings.Update(ctx, tx, offering); err != nil {
			return notFoundOr(err, "offering")
		}
		result.Offering = offering

		if stringSlicesEqual(before, offering.Requirements) {
			return nil
		}
		n, err := s.reconcileAssignments(ctx, tx, offering)
		if err != nil {
			wrapped := appErrors.Wrap(translateStoreError(err, "reconcile assignments"), appErrors.ErrReconciliation.Code,
				appErrors.ErrReconciliation.Status, appErrors.ErrReconciliation.Message)
			wrapped.Retryable = true
			wrapped.Details = map[string]interface{}{"offering_id": offering.ID}
			return wrapped
		}
		result.Reconciled = n
		return nil
	})
	s.metrics.ObserveTransaction(operation, time.Since(start))
	if err != nil {
		return nil, translateStoreError(err, "failed to update offering")
	}
	if result.Reconciled > 0 {
		s.metrics.ObserveReconciliation(result.Reconciled)
	}
	s.capacity.Invalidate(ctx, id)
	s.logger.Info("offering updated",
		zap.String("offering_id", id),
		zap.Int("reconciled_assignments", result.Reconciled))
	return result, nil
}

// reconcileAssignments rewrites every assignment's completion map against the
// offering's current requirements. The caller holds the offering lock.
func (s *OfferingService) reconcileAssignments(ctx context.Context, tx sqlx.ExtContext, offering *models.Offering) (int, error) {
	assignments, err := s.assignments.ListByOffering(ctx, tx, offering.ID)
	if err != nil {
		return 0, err
	}
	for _, a := range assignments {
		next := ReconcileCompletions(offering.Requirements, a.Completions)
		if err := s.assignments.UpdateCompletions(ctx, tx, a.ID, next); err != nil {
			return 0, err
		}
	}
	return len(assignments), nil
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
