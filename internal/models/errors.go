package models

import "errors"

var (
	// ErrSenderNotRegistered is returned when the sourceEmail does not belong
	// to an active account in the user registry.
	ErrSenderNotRegistered = errors.New("email not registered")

	// ErrProductNotFound is returned for lookups, updates and deletes of
	// unknown product IDs.
	ErrProductNotFound = errors.New("product not found")

	// ErrProductExists is returned by the single-record pre-check when a
	// product with the same normalized code or name already exists.
	ErrProductExists = errors.New("product with this code or name already exists")
)

// ValidationError reports which candidate record and which constraint failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
