package errors

import "errors"

var (
	ErrNotFound  = errors.New("review not found")
	ErrInvalidID = errors.New("invalid review id")
	// ErrDuplicate is returned when the booking already has a review.
	ErrDuplicate = errors.New("review already exists for booking")
)
