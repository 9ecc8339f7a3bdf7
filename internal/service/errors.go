package service

import "errors"

// Sentinel errors returned by the services. Handlers match them with
// errors.Is and map them to HTTP statuses; every failure is recoverable by
// the caller adjusting its input or selection.
var (
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("not found")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNoValidSelection  = errors.New("no valid selection")
)
