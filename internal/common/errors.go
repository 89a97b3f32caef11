// Package common defines shared constants and sentinel errors used across
// FlightGuard components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Contract violations. These indicate a programming error in the caller,
	// not bad input data, and are never retried.
	ErrValidationInProgress = errors.New("another validation run is already in progress")
	ErrMissingRunState      = errors.New("required run state is not available")

	// Input-boundary errors.
	ErrorEmptyInput   = errors.New("no input received on stdin")
	ErrorInvalidInput = errors.New("invalid JSON input")
)
