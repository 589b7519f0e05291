package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
)

const offeringColumns = `id, event_id, badge_id, duration, periods, price, size_limit, requirements, created_at, updated_at`

// OfferingRepository persists badge offerings.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs the repository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// FindByID returns an offering by id.
func (r *OfferingRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Offering, error) {
	query := `SELECT ` + offeringColumns + ` FROM offerings WHERE id = $1`
	var offering models.Offering
	if err := sqlx.GetContext(ctx, target(r.db, exec), &offering, query, id); err != nil {
		return nil, err
	}
	return &offering, nil
}

// LockByID loads the offering and holds its row lock until exec commits.
// Every writer that touches the offering's assignments takes this lock first.
func (r *OfferingRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Offering, error) {
	query := `SELECT ` + offeringColumns + ` FROM offerings WHERE id = $1 FOR UPDATE`
	var offering models.Offering
	if err := sqlx.GetContext(ctx, exec, &offering, query, id); err != nil {
		return nil, err
	}
	return &offering, nil
}

// ListByEvent returns the offerings of an event ordered by badge.
func (r *OfferingRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Offering, error) {
	query := `SELECT ` + offeringColumns + ` FROM offerings WHERE event_id = $1 ORDER BY badge_id ASC`
	var offerings []models.Offering
	if err := r.db.SelectContext(ctx, &offerings, query, eventID); err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	return offerings, nil
}

// Create inserts a new offering.
func (r *OfferingRepository) Create(ctx context.Context, exec sqlx.ExtContext, offering *models.Offering) error {
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if offering.CreatedAt.IsZero() {
		offering.CreatedAt = now
	}
	offering.UpdatedAt = now
	if offering.Requirements == nil {
		offering.Requirements = pq.StringArray{}
	}

	const query = `INSERT INTO offerings (id, event_id, badge_id, duration, periods, price, size_limit, requirements, created_at, updated_at)
VALUES (:id, :event_id, :badge_id, :duration, :periods, :price, :size_limit, :requirements, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, offering); err != nil {
		return fmt.Errorf("insert offering: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of an offering.
func (r *OfferingRepository) Update(ctx context.Context, exec sqlx.ExtContext, offering *models.Offering) error {
	offering.UpdatedAt = time.Now().UTC()
	if offering.Requirements == nil {
		offering.Requirements = pq.StringArray{}
	}
	const query = `UPDATE offerings
SET duration = :duration, periods = :periods, price = :price, size_limit = :size_limit, requirements = :requirements, updated_at = :updated_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, offering)
	if err != nil {
		return fmt.Errorf("update offering: %w", err)
	}
	return expectOneRow(res, "update offering")
}
