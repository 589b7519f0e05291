package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchasable is an item an event sells outside of class offerings.
type Purchasable struct {
	ID        string          `db:"id" json:"id"`
	EventID   string          `db:"event_id" json:"event_id"`
	Item      string          `db:"item" json:"item"`
	Price     decimal.Decimal `db:"price" json:"price"`
	HasSize   bool            `db:"has_size" json:"has_size"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Purchase is a quantity of a purchasable bought by a registration.
type Purchase struct {
	ID             string    `db:"id" json:"id"`
	RegistrationID string    `db:"registration_id" json:"registration_id"`
	PurchasableID  string    `db:"purchasable_id" json:"purchasable_id"`
	Quantity       int       `db:"quantity" json:"quantity"`
	Size           *string   `db:"size" json:"size,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// PurchaseLine is a purchase joined with its item's unit price.
type PurchaseLine struct {
	PurchasableID string          `db:"purchasable_id" json:"purchasable_id"`
	Quantity      int             `db:"quantity" json:"quantity"`
	Price         decimal.Decimal `db:"price" json:"price"`
}

// CostSummary holds both totals for a registration, formatted to two decimals.
type CostSummary struct {
	RegistrationID string `json:"registration_id"`
	Projected      string `json:"projected_cost"`
	Actual         string `json:"actual_cost"`
}
