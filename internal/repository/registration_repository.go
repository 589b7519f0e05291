package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
)

// RegistrationRepository reads registrations owned by the enrollment catalog.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// FindByID returns a registration by id.
func (r *RegistrationRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Registration, error) {
	const query = `SELECT id, event_id, scout_id, created_at FROM registrations WHERE id = $1`
	var reg models.Registration
	if err := sqlx.GetContext(ctx, target(r.db, exec), &reg, query, id); err != nil {
		return nil, err
	}
	return &reg, nil
}

// LockByID loads the registration holding its row lock until exec commits,
// serialising bulk replaces for the same registration.
func (r *RegistrationRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Registration, error) {
	const query = `SELECT id, event_id, scout_id, created_at FROM registrations WHERE id = $1 FOR UPDATE`
	var reg models.Registration
	if err := sqlx.GetContext(ctx, exec, &reg, query, id); err != nil {
		return nil, err
	}
	return &reg, nil
}
