package errors

import "errors"

var (
	ErrNotFound              = errors.New("user not found")
	ErrInvalidID             = errors.New("invalid user id")
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
)
