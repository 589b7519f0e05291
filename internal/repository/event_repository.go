package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
)

// EventRepository reads events from the catalog.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// FindByID returns an event by id.
func (r *EventRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Event, error) {
	const query = `SELECT id, name, year, price, created_at, updated_at FROM events WHERE id = $1`
	var event models.Event
	if err := sqlx.GetContext(ctx, target(r.db, exec), &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}
