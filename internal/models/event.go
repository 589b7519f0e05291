package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is one season's gathering; its flat price applies to every registration.
type Event struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Year      int             `db:"year" json:"year"`
	Price     decimal.Decimal `db:"price" json:"price"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
