package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

// BindAssignment appends one assignment to a registration. The offering row is
// locked before occupancy is counted, so concurrent binds for the last seat
// serialize and only one of them commits.
//
// Every assignment write locks the registration before any offering, and
// offerings in id order, so writers on one registration never deadlock.
func (s *BindingService) BindAssignment(ctx context.Context, registrationID string, req AssignmentRequest) (result *models.Assignment, err error) {
	defer func() { s.record(KindAssignment, ModeAppend, err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, s.validationError(err)
	}

	err = s.withWriteTx(ctx, "bind_assignment", func(tx *sqlx.Tx) error {
		if _, err := s.registrations.LockByID(ctx, tx, registrationID); err != nil {
			return notFoundOr(err, "registration")
		}
		existing, err := s.assignments.FindByRegistrationOffering(ctx, tx, registrationID, req.OfferingID)
		if err == nil && existing != nil {
			return appErrors.Clone(appErrors.ErrConflict, "registration is already assigned to offering")
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		result, err = s.createAssignment(ctx, tx, registrationID, req)
		return err
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to bind assignment")
	}

	s.capacity.Invalidate(ctx, req.OfferingID)
	s.logger.Info("assignment bound",
		zap.String("registration_id", registrationID),
		zap.String("offering_id", req.OfferingID),
		zap.Ints("periods", []int(result.Periods)))
	return result, nil
}

// ReplaceAssignments swaps every assignment of a registration for reqs in one
// transaction. Any rejected row aborts the whole replace and the previous set
// stays in place.
func (s *BindingService) ReplaceAssignments(ctx context.Context, registrationID string, reqs []AssignmentRequest) (result []models.Assignment, err error) {
	defer func() { s.record(KindAssignment, ModeReplace, err) }()

	seen := make(map[string]struct{}, len(reqs))
	ids := make([]string, 0, len(reqs))
	for i, req := range reqs {
		if err := s.validator.Struct(req); err != nil {
			return nil, bulkFailure(i, req.OfferingID, s.validationError(err))
		}
		if _, dup := seen[req.OfferingID]; dup {
			return nil, bulkFailure(i, req.OfferingID, appErrors.Clone(appErrors.ErrValidation, "offering listed more than once"))
		}
		seen[req.OfferingID] = struct{}{}
		ids = append(ids, req.OfferingID)
	}

	var previous []string
	err = s.withWriteTx(ctx, "replace_assignments", func(tx *sqlx.Tx) error {
		if _, err := s.registrations.LockByID(ctx, tx, registrationID); err != nil {
			return notFoundOr(err, "registration")
		}

		current, err := s.assignments.ListByRegistration(ctx, tx, registrationID)
		if err != nil {
			return err
		}
		toLock := append([]string(nil), ids...)
		for _, a := range current {
			if _, ok := seen[a.OfferingID]; !ok {
				toLock = append(toLock, a.OfferingID)
			}
		}

		// Offerings being vacated are locked too so the delete below cannot
		// interleave with a requirement fan-out on them.
		locked := make(map[string]*models.Offering, len(ids))
		for _, id := range sortedOfferingIDs(toLock) {
			offering, err := s.offerings.LockByID(ctx, tx, id)
			if _, requested := seen[id]; !requested {
				if err != nil && !errors.Is(err, sql.ErrNoRows) {
					return err
				}
				continue
			}
			if err != nil {
				return bulkFailure(indexOfOffering(reqs, id), id, notFoundOr(err, "offering"))
			}
			locked[id] = offering
		}

		if previous, err = s.assignments.DeleteByRegistration(ctx, tx, registrationID); err != nil {
			return err
		}

		result = make([]models.Assignment, 0, len(reqs))
		for i, req := range reqs {
			assignment, err := s.insertAssignment(ctx, tx, registrationID, locked[req.OfferingID], req.Periods)
			if err != nil {
				return bulkFailure(i, req.OfferingID, err)
			}
			result = append(result, *assignment)
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to replace assignments")
	}

	s.capacity.Invalidate(ctx, append(previous, ids...)...)
	s.logger.Info("assignments replaced",
		zap.String("registration_id", registrationID),
		zap.Int("removed", len(previous)),
		zap.Int("created", len(result)))
	return result, nil
}

// UpdateAssignmentPeriods moves an assignment to new periods. Capacity is
// re-checked against everyone else only when the periods actually change.
func (s *BindingService) UpdateAssignmentPeriods(ctx context.Context, registrationID, offeringID string, req UpdatePeriodsRequest) (result *models.Assignment, err error) {
	defer func() { s.record(KindAssignment, ModeUpdate, err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, s.validationError(err)
	}

	changed := false
	err = s.withWriteTx(ctx, "update_assignment_periods", func(tx *sqlx.Tx) error {
		if _, err := s.registrations.LockByID(ctx, tx, registrationID); err != nil {
			return notFoundOr(err, "registration")
		}
		offering, err := s.offerings.LockByID(ctx, tx, offeringID)
		if err != nil {
			return notFoundOr(err, "offering")
		}
		assignment, err := s.assignments.FindByRegistrationOffering(ctx, tx, registrationID, offeringID)
		if err != nil {
			return notFoundOr(err, "assignment")
		}
		next := models.Periods(req.Periods).Normalize()
		result = assignment
		if assignment.Periods.Equal(next) {
			return nil
		}
		if err := s.capacity.Admit(ctx, tx, offering, next, assignment.ID); err != nil {
			return err
		}
		if err := s.assignments.UpdatePeriods(ctx, tx, assignment.ID, next); err != nil {
			return notFoundOr(err, "assignment")
		}
		assignment.Periods = next
		changed = true
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to update assignment periods")
	}
	if changed {
		s.capacity.Invalidate(ctx, offeringID)
	}
	return result, nil
}

// UpdateAssignmentCompletions marks requirements of an assignment done or not
// done. Names outside the offering's requirement list are rejected.
func (s *BindingService) UpdateAssignmentCompletions(ctx context.Context, registrationID, offeringID string, req UpdateCompletionsRequest) (result *models.Assignment, err error) {
	defer func() { s.record(KindAssignment, ModeUpdate, err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, s.validationError(err)
	}

	err = s.withWriteTx(ctx, "update_assignment_completions", func(tx *sqlx.Tx) error {
		if _, err := s.registrations.LockByID(ctx, tx, registrationID); err != nil {
			return notFoundOr(err, "registration")
		}
		// Lock the offering so a concurrent requirement change cannot
		// interleave with this read-modify-write.
		offering, err := s.offerings.LockByID(ctx, tx, offeringID)
		if err != nil {
			return notFoundOr(err, "offering")
		}
		assignment, err := s.assignments.FindByRegistrationOffering(ctx, tx, registrationID, offeringID)
		if err != nil {
			return notFoundOr(err, "assignment")
		}

		next := ReconcileCompletions(offering.Requirements, assignment.Completions)
		for name, done := range req.Completions {
			if _, ok := next[name]; !ok {
				return appErrors.WithDetail(appErrors.ErrUnknownRequirement, "requirement", name)
			}
			next[name] = done
		}
		if err := s.assignments.UpdateCompletions(ctx, tx, assignment.ID, next); err != nil {
			return notFoundOr(err, "assignment")
		}
		assignment.Completions = next
		result = assignment
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to update completions")
	}
	return result, nil
}

// RemoveAssignment deletes one assignment, freeing its seats.
func (s *BindingService) RemoveAssignment(ctx context.Context, registrationID, offeringID string) (err error) {
	defer func() { s.record(KindAssignment, ModeRemove, err) }()

	if err := s.assignments.Delete(ctx, nil, registrationID, offeringID); err != nil {
		return translateStoreError(notFoundOr(err, "assignment"), "failed to remove assignment")
	}
	s.capacity.Invalidate(ctx, offeringID)
	return nil
}

// ListAssignments returns the assignments of a registration.
func (s *BindingService) ListAssignments(ctx context.Context, registrationID string) ([]models.Assignment, error) {
	if _, err := s.registrations.FindByID(ctx, nil, registrationID); err != nil {
		return nil, translateStoreError(notFoundOr(err, "registration"), "failed to load registration")
	}
	assignments, err := s.assignments.ListByRegistration(ctx, nil, registrationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// createAssignment locks the offering and inserts one assignment.
func (s *BindingService) createAssignment(ctx context.Context, tx sqlx.ExtContext, registrationID string, req AssignmentRequest) (*models.Assignment, error) {
	offering, err := s.offerings.LockByID(ctx, tx, req.OfferingID)
	if err != nil {
		return nil, notFoundOr(err, "offering")
	}
	return s.insertAssignment(ctx, tx, registrationID, offering, req.Periods)
}

// insertAssignment admits periods against a locked offering and writes the
// row with a completion map seeded from the offering's requirements.
func (s *BindingService) insertAssignment(ctx context.Context, tx sqlx.ExtContext, registrationID string, offering *models.Offering, periods []int) (*models.Assignment, error) {
	normalized := models.Periods(periods).Normalize()
	if err := s.capacity.Admit(ctx, tx, offering, normalized, ""); err != nil {
		return nil, err
	}
	assignment := &models.Assignment{
		RegistrationID: registrationID,
		OfferingID:     offering.ID,
		Periods:        normalized,
		Completions:    ReconcileCompletions(offering.Requirements, nil),
	}
	if err := s.assignments.Create(ctx, tx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func indexOfOffering(reqs []AssignmentRequest, offeringID string) int {
	for i, req := range reqs {
		if req.OfferingID == offeringID {
			return i
		}
	}
	return -1
}
