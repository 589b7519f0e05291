package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	"github.com/dmurtari/mbu-online-sub002/pkg/database"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

// Binding kinds and modes used for metrics and logs.
const (
	KindPreference = "preference"
	KindAssignment = "assignment"

	ModeAppend  = "append"
	ModeReplace = "replace"
	ModeUpdate  = "update"
	ModeRemove  = "remove"
)

type bindingOfferingRepository interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Offering, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Offering, error)
}

type bindingRegistrationRepository interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Registration, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Registration, error)
}

type bindingAssignmentRepository interface {
	ListByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]models.Assignment, error)
	FindByRegistrationOffering(ctx context.Context, exec sqlx.ExtContext, registrationID, offeringID string) (*models.Assignment, error)
	Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error
	UpdatePeriods(ctx context.Context, exec sqlx.ExtContext, id string, periods models.Periods) error
	UpdateCompletions(ctx context.Context, exec sqlx.ExtContext, id string, completions models.Completions) error
	DeleteByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]string, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, registrationID, offeringID string) error
}

type bindingPreferenceRepository interface {
	ListByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]models.Preference, error)
	Create(ctx context.Context, exec sqlx.ExtContext, pref *models.Preference) error
	DeleteByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) (int64, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, registrationID, offeringID string) error
}

type capacityAdmitter interface {
	Admit(ctx context.Context, exec sqlx.ExtContext, offering *models.Offering, candidate models.Periods, excludeID string) error
	Invalidate(ctx context.Context, offeringIDs ...string)
}

// AssignmentRequest binds a registration to periods of one offering.
type AssignmentRequest struct {
	OfferingID string `json:"offering_id" validate:"required"`
	Periods    []int  `json:"periods" validate:"omitempty,max=3,dive,min=1,max=3"`
}

// PreferenceRequest records a ranked interest in one offering.
type PreferenceRequest struct {
	OfferingID string `json:"offering_id" validate:"required"`
	Rank       int    `json:"rank" validate:"required,min=1,max=6"`
}

// UpdatePeriodsRequest moves an existing assignment to new periods.
type UpdatePeriodsRequest struct {
	Periods []int `json:"periods" validate:"omitempty,max=3,dive,min=1,max=3"`
}

// UpdateCompletionsRequest marks requirements of an assignment.
type UpdateCompletionsRequest struct {
	Completions map[string]bool `json:"completions" validate:"required,min=1"`
}

// BindingConfig tunes the coordinator.
type BindingConfig struct {
	LockTimeout time.Duration
}

// BindingService applies preference and assignment writes for registrations.
// Appends add one record; replaces swap the full set atomically.
type BindingService struct {
	tx            txProvider
	registrations bindingRegistrationRepository
	offerings     bindingOfferingRepository
	assignments   bindingAssignmentRepository
	preferences   bindingPreferenceRepository
	capacity      capacityAdmitter
	validator     *validator.Validate
	metrics       *MetricsService
	logger        *zap.Logger
	cfg           BindingConfig
}

// NewBindingService constructs the binding coordinator.
func NewBindingService(
	tx txProvider,
	registrations bindingRegistrationRepository,
	offerings bindingOfferingRepository,
	assignments bindingAssignmentRepository,
	preferences bindingPreferenceRepository,
	capacity capacityAdmitter,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg BindingConfig,
) *BindingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BindingService{
		tx:            tx,
		registrations: registrations,
		offerings:     offerings,
		assignments:   assignments,
		preferences:   preferences,
		capacity:      capacity,
		validator:     validate,
		metrics:       metrics,
		logger:        logger,
		cfg:           cfg,
	}
}

// withWriteTx runs fn in a read-committed transaction with the configured lock
// timeout applied.
func (s *BindingService) withWriteTx(ctx context.Context, operation string, fn func(tx *sqlx.Tx) error) error {
	start := time.Now()
	err := database.WithTx(ctx, s.tx, nil, func(tx *sqlx.Tx) error {
		if err := database.SetLockTimeout(ctx, tx, s.cfg.LockTimeout); err != nil {
			return err
		}
		return fn(tx)
	})
	s.metrics.ObserveTransaction(operation, time.Since(start))
	return err
}

func (s *BindingService) record(kind, mode string, err error) {
	s.metrics.RecordBinding(kind, mode, bindingOutcome(err))
}

// bindingOutcome classifies err for metrics. Bulk failures are classified by
// the cause of the rejected row.
func bindingOutcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	appErr := appErrors.FromError(err)
	code := appErr.Code
	if code == appErrors.ErrBulkReplace.Code {
		if cause, ok := appErr.Details["cause"].(string); ok {
			code = cause
		}
	}
	switch code {
	case appErrors.ErrCapacityExceeded.Code:
		return OutcomeCapacity
	case appErrors.ErrInternal.Code, appErrors.ErrContention.Code:
		return OutcomeError
	}
	return OutcomeRejected
}

func (s *BindingService) validationError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
}

// sortedOfferingIDs returns the distinct offering ids of reqs in lock order.
func sortedOfferingIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
