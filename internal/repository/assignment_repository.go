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

const assignmentColumns = `id, registration_id, offering_id, periods, completions, created_at, updated_at`

// AssignmentRepository persists binding enrollments of registrations into offerings.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByOffering returns every assignment bound to an offering.
func (r *AssignmentRepository) ListByOffering(ctx context.Context, exec sqlx.ExtContext, offeringID string) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE offering_id = $1 ORDER BY created_at ASC`
	var assignments []models.Assignment
	if err := sqlx.SelectContext(ctx, target(r.db, exec), &assignments, query, offeringID); err != nil {
		return nil, fmt.Errorf("list assignments by offering: %w", err)
	}
	return assignments, nil
}

// ListDetailsByOffering returns the offering roster with scout ids.
func (r *AssignmentRepository) ListDetailsByOffering(ctx context.Context, offeringID string) ([]models.AssignmentDetail, error) {
	const query = `
SELECT a.id, a.registration_id, a.offering_id, a.periods, a.completions, a.created_at, a.updated_at,
       r.scout_id
FROM assignments a
JOIN registrations r ON r.id = a.registration_id
WHERE a.offering_id = $1
ORDER BY a.created_at ASC`
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, offeringID); err != nil {
		return nil, fmt.Errorf("list offering roster: %w", err)
	}
	return details, nil
}

// ListByRegistration returns the assignments owned by a registration.
func (r *AssignmentRepository) ListByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE registration_id = $1 ORDER BY created_at ASC`
	var assignments []models.Assignment
	if err := sqlx.SelectContext(ctx, target(r.db, exec), &assignments, query, registrationID); err != nil {
		return nil, fmt.Errorf("list assignments by registration: %w", err)
	}
	return assignments, nil
}

// FindByRegistrationOffering returns the single assignment for the pair.
func (r *AssignmentRepository) FindByRegistrationOffering(ctx context.Context, exec sqlx.ExtContext, registrationID, offeringID string) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE registration_id = $1 AND offering_id = $2`
	var assignment models.Assignment
	if err := sqlx.GetContext(ctx, target(r.db, exec), &assignment, query, registrationID, offeringID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now
	if assignment.Completions == nil {
		assignment.Completions = models.Completions{}
	}

	const query = `INSERT INTO assignments (id, registration_id, offering_id, periods, completions, created_at, updated_at)
VALUES (:id, :registration_id, :offering_id, :periods, :completions, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target(r.db, exec), query, assignment); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

// UpdatePeriods replaces the periods of an assignment.
func (r *AssignmentRepository) UpdatePeriods(ctx context.Context, exec sqlx.ExtContext, id string, periods models.Periods) error {
	const query = `UPDATE assignments SET periods = $1, updated_at = $2 WHERE id = $3`
	res, err := target(r.db, exec).ExecContext(ctx, query, periods, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update assignment periods: %w", err)
	}
	return expectOneRow(res, "update assignment periods")
}

// UpdateCompletions replaces the completion record of an assignment.
func (r *AssignmentRepository) UpdateCompletions(ctx context.Context, exec sqlx.ExtContext, id string, completions models.Completions) error {
	const query = `UPDATE assignments SET completions = $1, updated_at = $2 WHERE id = $3`
	res, err := target(r.db, exec).ExecContext(ctx, query, completions, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update assignment completions: %w", err)
	}
	return expectOneRow(res, "update assignment completions")
}

// DeleteByRegistration removes every assignment of a registration and returns
// the offerings they were bound to.
func (r *AssignmentRepository) DeleteByRegistration(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]string, error) {
	const query = `DELETE FROM assignments WHERE registration_id = $1 RETURNING offering_id`
	var offeringIDs []string
	if err := sqlx.SelectContext(ctx, target(r.db, exec), &offeringIDs, query, registrationID); err != nil {
		return nil, fmt.Errorf("delete assignments: %w", err)
	}
	return offeringIDs, nil
}

// Delete removes the assignment for the pair.
func (r *AssignmentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, registrationID, offeringID string) error {
	const query = `DELETE FROM assignments WHERE registration_id = $1 AND offering_id = $2`
	res, err := target(r.db, exec).ExecContext(ctx, query, registrationID, offeringID)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return expectOneRow(res, "delete assignment")
}

// ListOfferingPrices returns the price of each assigned offering.
func (r *AssignmentRepository) ListOfferingPrices(ctx context.Context, exec sqlx.ExtContext, registrationID string) ([]decimal.Decimal, error) {
	const query = `SELECT o.price FROM assignments a JOIN offerings o ON o.id = a.offering_id WHERE a.registration_id = $1`
	var prices []decimal.Decimal
	if err := sqlx.SelectContext(ctx, target(r.db, exec), &prices, query, registrationID); err != nil {
		return nil, fmt.Errorf("list assigned offering prices: %w", err)
	}
	return prices, nil
}
