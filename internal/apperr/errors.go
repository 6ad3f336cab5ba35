// Package apperr is the error taxonomy shared by services and handlers.
package apperr

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound          = errors.New("workspace: resource not found")
	ErrValidation        = errors.New("workspace: validation failed")
	ErrStaleReference    = errors.New("workspace: stale field reference")
	ErrPermissionDenied  = errors.New("workspace: permission denied")
	ErrInvalidTransition = errors.New("workspace: invalid status transition")
	ErrConflict          = errors.New("workspace: concurrent modification")
	ErrTransaction       = errors.New("workspace: transaction failed")
	ErrDatabase          = errors.New("workspace: database error")
)

const (
	CodeNotFound          = "not_found"
	CodeValidation        = "validation_error"
	CodeStaleReference    = "stale_reference"
	CodePermissionDenied  = "permission_denied"
	CodeInvalidTransition = "invalid_transition"
	CodeConflict          = "conflict"
	CodeTransaction       = "transaction_failed"
	CodeDatabase          = "database_error"
	CodeInternal          = "internal_error"
)

type kind struct {
	sentinel error
	code     string
	status   int
	message  string
}

// Checked in order; the first matching mark wins.
var kinds = []kind{
	{ErrValidation, CodeValidation, http.StatusBadRequest, "Validation failed"},
	{ErrNotFound, CodeNotFound, http.StatusNotFound, "Not found"},
	{ErrPermissionDenied, CodePermissionDenied, http.StatusForbidden, "Permission denied"},
	{ErrInvalidTransition, CodeInvalidTransition, http.StatusConflict, "Invalid status transition"},
	{ErrConflict, CodeConflict, http.StatusConflict, "The resource was changed by another request"},
	{ErrStaleReference, CodeStaleReference, http.StatusUnprocessableEntity, "Unknown field"},
	{ErrTransaction, CodeTransaction, http.StatusInternalServerError, "The change could not be saved"},
	{ErrDatabase, CodeDatabase, http.StatusInternalServerError, "Internal server error"},
}

func lookup(err error) (kind, bool) {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k, true
		}
	}
	return kind{}, false
}

// Known reports whether err carries one of the taxonomy marks.
func Known(err error) bool {
	_, ok := lookup(err)
	return ok
}

func Code(err error) string {
	if k, ok := lookup(err); ok {
		return k.code
	}
	return CodeInternal
}

func HTTPStatus(err error) int {
	if k, ok := lookup(err); ok {
		return k.status
	}
	return http.StatusInternalServerError
}

// Message is the text safe to return to a client. Server-side failures never
// leak their hints.
func Message(err error) string {
	k, ok := lookup(err)
	if !ok {
		return "Internal server error"
	}
	if k.status >= http.StatusInternalServerError {
		return k.message
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	return k.message
}

// Details returns the field-level details attached with WithDetails.
func Details(err error) map[string]any {
	var d *detailedError
	if errors.As(err, &d) {
		return d.details
	}
	return nil
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

func NotFound(resource string) error {
	return NewError(resource + " not found").
		WithHintf("%s not found", resource).
		Mark(ErrNotFound)
}

func Validation(hint string, details map[string]any) error {
	return NewError(hint).
		WithHint(hint).
		WithDetails(details).
		Mark(ErrValidation)
}

func PermissionDenied(hint string) error {
	return NewError("permission denied").
		WithHint(hint).
		Mark(ErrPermissionDenied)
}

func InvalidTransition(resource, from, to string) error {
	return NewError("invalid status transition").
		WithHintf("%s cannot move from %s to %s", resource, from, to).
		Mark(ErrInvalidTransition)
}

// Conflict reports a guarded write that matched no row because the row was
// archived or rewritten after it was read.
func Conflict(resource string) error {
	return NewError("concurrent modification").
		WithHintf("%s was changed by another request, reload and try again", resource).
		Mark(ErrConflict)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func Database(err error, op string) error {
	return WithError(err).
		WithMessage(op).
		Mark(ErrDatabase)
}

// Transaction wraps a failure that aborted a multi-row write. Errors that
// already belong to the taxonomy (other than raw database errors) pass through
// so callers keep their 4xx meaning.
func Transaction(err error) error {
	if err == nil {
		return nil
	}
	if k, ok := lookup(err); ok && k.sentinel != ErrDatabase {
		return err
	}
	return WithError(err).
		WithMessage("rolled back").
		Mark(ErrTransaction)
}
