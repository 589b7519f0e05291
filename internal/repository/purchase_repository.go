package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
)

// PurchaseRepository reads registration purchases joined with item prices.
type PurchaseRepository struct {
	db *sqlx.DB
}

// NewPurchaseRepository constructs the repository.
func NewPurchaseRepository(db *sqlx.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// ListLinesByRegistration returns each purchase with its item's unit price.
func (r *PurchaseRepository) ListLinesByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]models.PurchaseLine, error) {
	const query = `
SELECT pu.purchasable_id, pu.quantity, pa.price
FROM purchases pu
JOIN purchasables pa ON pa.id = pu.purchasable_id
WHERE pu.registration_id = $1`
	var lines []models.PurchaseLine
	if err := sqlx.SelectContext(ctx, target(r.db, exec), &lines, query, registrationID); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return lines, nil
}
