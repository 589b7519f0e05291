package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmurtari/mbu-online-sub002/pkg/database"
	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

// txProvider starts transactions; satisfied by *sqlx.DB.
type txProvider = database.TxBeginner

// translateStoreError maps driver failures onto engine error codes. Errors that
// are already typed pass through untouched.
func translateStoreError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case database.IsContention(err):
		contention := appErrors.Wrap(err, appErrors.ErrContention.Code, appErrors.ErrContention.Status, appErrors.ErrContention.Message)
		contention.Retryable = true
		return contention
	case database.IsUniqueViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message+": already exists")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return err
}

// bulkFailure names the row that aborted a replace and wraps its cause.
func bulkFailure(index int, offeringID string, cause error) error {
	cause = translateStoreError(cause, "store row")
	wrapped := appErrors.Wrap(cause, appErrors.ErrBulkReplace.Code, appErrors.ErrBulkReplace.Status,
		fmt.Sprintf("row %d (offering %s) rejected", index, offeringID))
	wrapped.Retryable = appErrors.IsRetryable(cause)
	wrapped.Details = map[string]interface{}{
		"index":       index,
		"offering_id": offeringID,
	}
	if inner := appErrors.FromError(cause); inner != nil {
		wrapped.Details["cause"] = inner.Code
	}
	return wrapped
}
