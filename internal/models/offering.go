package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// DefaultSizeLimit is the per-period seat count applied when none is given.
const DefaultSizeLimit = 20

// Offering is a badge class available at one event.
type Offering struct {
	ID           string          `db:"id" json:"id"`
	EventID      string          `db:"event_id" json:"event_id"`
	BadgeID      string          `db:"badge_id" json:"badge_id"`
	Duration     int             `db:"duration" json:"duration"`
	Periods      Periods         `db:"periods" json:"periods"`
	Price        decimal.Decimal `db:"price" json:"price"`
	SizeLimit    int             `db:"size_limit" json:"size_limit"`
	Requirements pq.StringArray  `db:"requirements" json:"requirements"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Occupancy is the per-period seat usage of one offering.
type Occupancy struct {
	OfferingID string      `json:"offering_id"`
	Periods    map[int]int `json:"periods"`
	Total      int         `json:"total"`
	SizeLimit  int         `json:"size_limit"`
}

// Full reports whether period is at or above the offering's size limit.
func (o Occupancy) Full(period int) bool {
	return o.Periods[period] >= o.SizeLimit
}

// Remaining returns open seats in period, never below zero.
func (o Occupancy) Remaining(period int) int {
	left := o.SizeLimit - o.Periods[period]
	if left < 0 {
		return 0
	}
	return left
}
