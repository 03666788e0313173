package errors

import "errors"

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrInvalidID        = errors.New("invalid property id")
)
