package errors

import "errors"

var (
	ErrNotFound = errors.New("unit not found")

	ErrInvalidID = errors.New("invalid unit ID format")

	// ErrDuplicate is returned when the unit number is already taken for its kind.
	ErrDuplicate = errors.New("unit number already exists")
)
