package errors

import "errors"

var (
	ErrNotFound = errors.New("discount code not found")

	ErrDuplicateCode = errors.New("discount code already exists")
)
