// Package errors provides custom error types for catalog operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when a lookup by code or id yields no row.
	ErrProductNotFound = errors.New("product not found")

	// ErrProductCodeExists is returned when a create or update would violate
	// the uniqueness of the product code. The database constraint is the
	// authoritative source; the service pre-check only produces a friendlier
	// message for the common case.
	ErrProductCodeExists = errors.New("product code already exists")

	// ErrRateUnavailable is returned when the exchange rate source cannot be reached
	// or returns an unusable response.
	ErrRateUnavailable = errors.New("exchange rate source unavailable")

	// ErrPaymentUnavailable is returned when the payment gateway cannot be reached
	// or rejects the request.
	ErrPaymentUnavailable = errors.New("payment gateway unavailable")
)
