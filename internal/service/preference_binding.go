package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/dmurtari/mbu-online-sub002/internal/models"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

// AppendPreference records one ranked preference. Preferences are not subject
// to capacity.
func (s *BindingService) AppendPreference(ctx context.Context, registrationID string, req PreferenceRequest) (result *models.Preference, err error) {
	defer func() { s.record(KindPreference, ModeAppend, err) }()

	if err := s.validator.Struct(req); err != nil {
		return nil, s.validationError(err)
	}

	err = s.withWriteTx(ctx, "append_preference", func(tx *sqlx.Tx) error {
		if _, err := s.registrations.FindByID(ctx, tx, registrationID); err != nil {
			return notFoundOr(err, "registration")
		}
		pref, err := s.insertPreference(ctx, tx, registrationID, req)
		result = pref
		return err
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to record preference")
	}
	return result, nil
}

// ReplacePreferences swaps the full preference list of a registration. A
// rejected row leaves the previous list untouched.
func (s *BindingService) ReplacePreferences(ctx context.Context, registrationID string, reqs []PreferenceRequest) (result []models.Preference, err error) {
	defer func() { s.record(KindPreference, ModeReplace, err) }()

	seen := make(map[string]struct{}, len(reqs))
	for i, req := range reqs {
		if err := s.validator.Struct(req); err != nil {
			return nil, bulkFailure(i, req.OfferingID, s.validationError(err))
		}
		if _, dup := seen[req.OfferingID]; dup {
			return nil, bulkFailure(i, req.OfferingID, appErrors.Clone(appErrors.ErrValidation, "offering listed more than once"))
		}
		seen[req.OfferingID] = struct{}{}
	}

	var removed int64
	err = s.withWriteTx(ctx, "replace_preferences", func(tx *sqlx.Tx) error {
		if _, err := s.registrations.LockByID(ctx, tx, registrationID); err != nil {
			return notFoundOr(err, "registration")
		}
		var err error
		if removed, err = s.preferences.DeleteByRegistration(ctx, tx, registrationID); err != nil {
			return err
		}
		result = make([]models.Preference, 0, len(reqs))
		for i, req := range reqs {
			pref, err := s.insertPreference(ctx, tx, registrationID, req)
			if err != nil {
				return bulkFailure(i, req.OfferingID, err)
			}
			result = append(result, *pref)
		}
		return nil
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to replace preferences")
	}

	s.logger.Info("preferences replaced",
		zap.String("registration_id", registrationID),
		zap.Int64("removed", removed),
		zap.Int("created", len(result)))
	return result, nil
}

// RemovePreference deletes one preference.
func (s *BindingService) RemovePreference(ctx context.Context, registrationID, offeringID string) (err error) {
	defer func() { s.record(KindPreference, ModeRemove, err) }()

	if err := s.preferences.Delete(ctx, nil, registrationID, offeringID); err != nil {
		return translateStoreError(notFoundOr(err, "preference"), "failed to remove preference")
	}
	return nil
}

// ListPreferences returns the preferences of a registration ordered by rank.
func (s *BindingService) ListPreferences(ctx context.Context, registrationID string) ([]models.Preference, error) {
	if _, err := s.registrations.FindByID(ctx, nil, registrationID); err != nil {
		return nil, translateStoreError(notFoundOr(err, "registration"), "failed to load registration")
	}
	prefs, err := s.preferences.ListByRegistration(ctx, nil, registrationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list preferences")
	}
	return prefs, nil
}

func (s *BindingService) insertPreference(ctx context.Context, tx sqlx.ExtContext, registrationID string, req PreferenceRequest) (*models.Preference, error) {
	if _, err := s.offerings.FindByID(ctx, tx, req.OfferingID); err != nil {
		return nil, notFoundOr(err, "offering")
	}
	pref := &models.Preference{
		RegistrationID: registrationID,
		OfferingID:     req.OfferingID,
		Rank:           req.Rank,
	}
	if err := s.preferences.Create(ctx, tx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}
