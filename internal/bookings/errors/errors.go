package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStaleState is returned when a conditional update matched nothing
	// because another request changed the booking first.
	ErrStaleState = errors.New("booking was modified concurrently")

	ErrLockHeld = errors.New("inventory unit is locked")

	ErrSeatsUnavailable = errors.New("not enough seats left in fare class")

	ErrResourceNotFound = errors.New("booked resource not found")
)
