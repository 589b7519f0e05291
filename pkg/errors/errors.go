package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Status    int                    `json:"status"`
	Retryable bool                   `json:"retryable,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Err       error                  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so callers can compare against the
// predefined values even after Clone or Wrap. A specialised code also matches
// its parent, so EVENT_MISSING is a NOT_FOUND.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	if e.Code == t.Code {
		return true
	}
	parent, ok := parentCodes[e.Code]
	return ok && parent == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrInvalidShape        = New("INVALID_OFFERING_SHAPE", http.StatusBadRequest, "offering duration does not match its periods")
	ErrCapacityExceeded    = &Error{Code: "CAPACITY_EXCEEDED", Status: http.StatusConflict, Message: "offering period is full", Retryable: true}
	ErrContention          = &Error{Code: "CONTENTION", Status: http.StatusConflict, Message: "concurrent update, retry the request", Retryable: true}
	ErrBulkReplace         = New("BULK_REPLACE_FAILED", http.StatusUnprocessableEntity, "bulk replace rejected")
	ErrReconciliation      = &Error{Code: "RECONCILIATION_FAILED", Status: http.StatusInternalServerError, Message: "requirement reconciliation failed", Retryable: true}
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrUnknownRequirement  = New("UNKNOWN_REQUIREMENT", http.StatusBadRequest, "requirement not part of offering")
	ErrEventIntegrityFault = New("EVENT_MISSING", http.StatusNotFound, "event for registration not found")
)

var parentCodes = map[string]string{
	ErrEventIntegrityFault.Code: ErrNotFound.Code,
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	if err.Details != nil {
		clone.Details = make(map[string]interface{}, len(err.Details))
		for k, v := range err.Details {
			clone.Details[k] = v
		}
	}
	return &clone
}

// WithDetail returns a copy of err carrying an additional detail entry.
func WithDetail(err *Error, key string, value interface{}) *Error {
	clone := Clone(err, "")
	if clone == nil {
		return nil
	}
	if clone.Details == nil {
		clone.Details = make(map[string]interface{})
	}
	clone.Details[key] = value
	return clone
}

// IsRetryable reports whether err is a contention failure the caller may retry,
// as opposed to bad input.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Retryable
}
