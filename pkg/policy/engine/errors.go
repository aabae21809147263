package engine

import (
	"errors"
	"fmt"
)

// ErrNoActivePolicy indicates evaluation was attempted with no policy
// loaded. Callers must treat this as deny.
var ErrNoActivePolicy = errors.New("no active policy")

// ValidationError indicates a malformed decision request. The request is
// rejected before any rule is consulted; callers may retry with corrected
// input.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: field %q: %s", e.Field, e.Message)
}

// NoActivePolicyError indicates no policy snapshot is loaded for the
// tenant. This is operational, not a caller mistake, and fails closed.
type NoActivePolicyError struct {
	Tenant string
}

// Error returns the error message.
func (e *NoActivePolicyError) Error() string {
	if e.Tenant == "" {
		return "no active policy loaded"
	}
	return fmt.Sprintf("no active policy loaded for tenant %q", e.Tenant)
}

// Unwrap returns the sentinel so errors.Is(err, ErrNoActivePolicy) holds.
func (e *NoActivePolicyError) Unwrap() error {
	return ErrNoActivePolicy
}
