package session

import "errors"

var (
	// ErrNotFound is returned by the Store for an unknown session id.
	ErrNotFound = errors.New("session not found")
	// ErrUnknownDimension is returned when an edit names a dimension that is
	// not part of the current model.
	ErrUnknownDimension = errors.New("unknown dimension")
	// ErrUnknownSeries is returned when a color edit names a series that is
	// not part of the current model.
	ErrUnknownSeries = errors.New("unknown series")
	// ErrInvalidColor is returned for a color override that is not "#rrggbb".
	ErrInvalidColor = errors.New("invalid color")
	// ErrInvalidField is returned for a range field other than min or max.
	ErrInvalidField = errors.New("invalid range field")
)
