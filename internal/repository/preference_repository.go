package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
)

// PreferenceRepository persists ranked offering preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// ListByRegistration returns preferences ordered by rank.
func (r *PreferenceRepository) ListByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]models.Preference, error) {
	const query = `SELECT id, registration_id, offering_id, rank, created_at FROM preferences WHERE registration_id = $1 ORDER BY rank ASC, created_at ASC`
	var prefs []models.Preference
	if err := sqlx.SelectContext(ctx, target(r.db, exec), &prefs, query, registrationID); err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return prefs, nil
}

// Create inserts a preference.
func (r *PreferenceRepository) Create(ctx context.Context, exec sqlx.ExtContext, pref *models.Preference) error {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	if pref.CreatedAt.IsZero() {
		pref.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO preferences (id, registration_id, offering_id, rank, created_at)
VALUES (:id, :registration_id, :offering_id, :rank, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, pref); err != nil {
		return fmt.Errorf("insert preference: %w", err)
	}
	return nil
}

// DeleteByRegistration removes every preference of a registration.
func (r *PreferenceRepository) DeleteByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) (int64, error) {
	res, err := target(r.db, exec).ExecContext(ctx, `DELETE FROM preferences WHERE registration_id = $1`, registrationID)
	if err != nil {
		return 0, fmt.Errorf("delete preferences: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes the preference for the pair.
func (r *PreferenceRepository) Delete(ctx context.Context, exec sqlx.ExtContext, registrationID, offeringID string) error {
	res, err := target(r.db, exec).ExecContext(ctx, `DELETE FROM preferences WHERE registration_id = $1 AND offering_id = $2`, registrationID, offeringID)
	if err != nil {
		return fmt.Errorf("delete preference: %w", err)
	}
	return expectOneRow(res, "delete preference")
}

// ListOfferingPrices returns the price of each preferred offering.
func (r *PreferenceRepository) ListOfferingPrices(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]decimal.Decimal, error) {
	const query = `SELECT o.price FROM preferences p JOIN offerings o ON o.id = p.offering_id WHERE p.registration_id = $1`
	var prices []decimal.Decimal
	if err := sqlx.SelectContext(ctx, target(r.db, exec), &prices, query, registrationID); err != nil {
		return nil, fmt.Errorf("list preferred offering prices: %w", err)
	}
	return prices, nil
}
