package errors

import (
	"errors"

	"radarcli/internal/session"
	"radarcli/internal/sources"
)

// FromDomainError maps the sentinel errors of the session and sources
// packages to API errors. The original message becomes the details so the
// caller sees which dimension or series was rejected. ok is false when err
// is not a known domain error.
func FromDomainError(err error) (*APIError, bool) {
	var base *APIError
	switch {
	case errors.Is(err, session.ErrNotFound):
		base = ErrSessionNotFound
	case errors.Is(err, session.ErrUnknownDimension):
		base = ErrDimensionNotFound
	case errors.Is(err, session.ErrUnknownSeries):
		base = ErrSeriesNotFound
	case errors.Is(err, session.ErrInvalidColor), errors.Is(err, session.ErrInvalidField):
		base = ErrValidationFailed
	case errors.Is(err, sources.ErrNoTable):
		base = ErrNoTable
	case errors.Is(err, sources.ErrTooLarge):
		base = ErrPayloadTooLarge
	case errors.Is(err, sources.ErrInvalidWorkbook):
		base = ErrInvalidWorkbook
	case errors.Is(err, sources.ErrSheetNotFound):
		base = ErrSheetNotFound
	default:
		return nil, false
	}
	return NewWithDetails(base.StatusCode, base.ErrorCode, base.Message, err.Error()), true
}
