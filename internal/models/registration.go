package models

import "time"

// Registration is one scout's enrollment in one event.
type Registration struct {
	ID        string    `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"event_id"`
	ScoutID   string    `db:"scout_id" json:"scout_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Preference is a ranked, non-binding interest in an offering.
type Preference struct {
	ID             string    `db:"id" json:"id"`
	RegistrationID string    `db:"registration_id" json:"registration_id"`
	OfferingID     string    `db:"offering_id" json:"offering_id"`
	Rank           int       `db:"rank" json:"rank"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Assignment binds a registration to specific periods of an offering.
type Assignment struct {
	ID             string      `db:"id" json:"id"`
	RegistrationID string      `db:"registration_id" json:"registration_id"`
	OfferingID     string      `db:"offering_id" json:"offering_id"`
	Periods        Periods     `db:"periods" json:"periods"`
	Completions    Completions `db:"completions" json:"completions"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// AssignmentDetail adds the scout behind the registration for roster views.
type AssignmentDetail struct {
	Assignment
	ScoutID string `db:"scout_id" json:"scout_id"`
}
