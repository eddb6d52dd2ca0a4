package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrDuplicate = errors.New("reservation already exists")

	// ErrHoldNotActive is returned when a conditional hold update matched nothing:
	// the hold was swept, released, confirmed or expired in between.
	ErrHoldNotActive = errors.New("hold is no longer active")

	// ErrStatusChanged is returned when the status moved since it was read.
	ErrStatusChanged = errors.New("reservation status changed concurrently")

	// ErrLockHeld is returned when another request holds the unit's slot lock.
	ErrLockHeld = errors.New("unit is locked by another request")
)
