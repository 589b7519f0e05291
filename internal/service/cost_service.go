package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	"github.com/dmurtari/mbu-online-sub002/pkg/database"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

type registrationReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Registration, error)
}

type eventReader interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Event, error)
}

type purchaseLineLister interface {
	ListLinesByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]models.PurchaseLine, error)
}

type offeringPriceLister interface {
	ListOfferingPrices(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]decimal.Decimal, error)
}

// CostService prices registrations from their purchases, offerings, and event.
type CostService struct {
	tx            txProvider
	registrations registrationReader
	events        eventReader
	purchases     purchaseLineLister
	preferences   offeringPriceLister
	assignments   offeringPriceLister
	logger        *zap.Logger
}

// NewCostService constructs the cost calculator.
func NewCostService(tx txProvider, registrations registrationReader, events eventReader, purchases purchaseLineLister, preferences, assignments offeringPriceLister, logger *zap.Logger) *CostService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CostService{
		tx:            tx,
		registrations: registrations,
		events:        events,
		purchases:     purchases,
		preferences:   preferences,
		assignments:   assignments,
		logger:        logger,
	}
}

type costBasis int

const (
	basisProjected costBasis = 1 << iota
	basisActual
)

type costInputs struct {
	eventPrice       decimal.Decimal
	lines            []models.PurchaseLine
	preferencePrices []decimal.Decimal
	assignmentPrices []decimal.Decimal
}

// TotalCost sums purchase lines, class prices, and the event price.
func TotalCost(eventPrice decimal.Decimal, lines []models.PurchaseLine, offeringPrices []decimal.Decimal) decimal.Decimal {
	total := eventPrice
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	for _, price := range offeringPrices {
		total = total.Add(price)
	}
	return total
}

// FormatCost renders an amount with exactly two decimal places.
func FormatCost(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// ProjectedCost prices the registration as if every preference were granted.
func (s *CostService) ProjectedCost(ctx context.Context, registrationID string) (string, error) {
	in, err := s.load(ctx, registrationID, basisProjected)
	if err != nil {
		return "", err
	}
	return FormatCost(TotalCost(in.eventPrice, in.lines, in.preferencePrices)), nil
}

// ActualCost prices the registration from its binding assignments.
func (s *CostService) ActualCost(ctx context.Context, registrationID string) (string, error) {
	in, err := s.load(ctx, registrationID, basisActual)
	if err != nil {
		return "", err
	}
	return FormatCost(TotalCost(in.eventPrice, in.lines, in.assignmentPrices)), nil
}

// Summary returns projected and actual cost read from one snapshot.
func (s *CostService) Summary(ctx context.Context, registrationID string) (*models.CostSummary, error) {
	in, err := s.load(ctx, registrationID, basisProjected|basisActual)
	if err != nil {
		return nil, err
	}
	return &models.CostSummary{
		RegistrationID: registrationID,
		Projected:      FormatCost(TotalCost(in.eventPrice, in.lines, in.preferencePrices)),
		Actual:         FormatCost(TotalCost(in.eventPrice, in.lines, in.assignmentPrices)),
	}, nil
}

// load reads every input in a single repeatable-read snapshot so concurrent
// writes cannot produce a total mixing two states.
func (s *CostService) load(ctx context.Context, registrationID string, basis costBasis) (*costInputs, error) {
	var in costInputs
	err := database.WithTx(ctx, s.tx, database.ReadSnapshot, func(tx *sqlx.Tx) error {
		registration, err := s.registrations.FindByID(ctx, tx, registrationID)
		if err != nil {
			return notFoundOr(err, "registration")
		}
		event, err := s.events.FindByID(ctx, tx, registration.EventID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.logger.Error("registration references missing event",
					zap.String("registration_id", registrationID),
					zap.String("event_id", registration.EventID))
				return appErrors.WithDetail(appErrors.ErrEventIntegrityFault, "event_id", registration.EventID)
			}
			return err
		}
		in.eventPrice = event.Price

		if in.lines, err = s.purchases.ListLinesByRegistration(ctx, tx, registrationID); err != nil {
			return err
		}
		if basis&basisProjected != 0 {
			if in.preferencePrices, err = s.preferences.ListOfferingPrices(ctx, tx, registrationID); err != nil {
				return err
			}
		}
		if basis&basisActual != 0 {
			if in.assignmentPrices, err = s.assignments.ListOfferingPrices(ctx, tx, registrationID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to compute cost")
	}
	return &in, nil
}
