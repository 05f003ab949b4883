// Package apperr defines the error taxonomy shared by all services. Services
// wrap these sentinels with context; handlers map them to HTTP status codes
// with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound: the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a uniqueness constraint would be violated.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized: a bad, missing or expired credential or token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden: authenticated but not entitled to act on this resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientFunds: the operation would overdraw the sender's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInternal: a persistence or downstream-service failure.
	ErrInternal = errors.New("internal error")
)
