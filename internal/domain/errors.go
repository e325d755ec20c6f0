package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for consistent error handling across the BFA.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a malformed request (bad query parameter, undecodable body).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the caller's role lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrConflict indicates the upstream already holds the resource (e.g. a replayed idempotency key).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrUpstreamRejected indicates the ERP refused a request as invalid (4xx).
// These are never retried.
type ErrUpstreamRejected struct {
	Service string
	Status  int
	Message string
}

func (e *ErrUpstreamRejected) Error() string {
	return fmt.Sprintf("%s rejected request [%d]: %s", e.Service, e.Status, e.Message)
}

// ErrDraftInvalid carries the field violations that block a transaction submit.
type ErrDraftInvalid struct {
	Violations []Violation
}

func (e *ErrDraftInvalid) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Kind))
	}
	return "transaction draft invalid: " + strings.Join(parts, ", ")
}

// ErrConfiguration is a programming error: a known operation kind has no rule.
type ErrConfiguration struct {
	Kind OperationKind
	Err  error
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("configuration error for operation %q: %v", e.Kind, e.Err)
}

func (e *ErrConfiguration) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether an upstream failure may succeed on retry.
// Client-side rejections, auth failures and missing resources never do.
func IsRetryable(err error) bool {
	var (
		notFound     *ErrNotFound
		unauthorized *ErrUnauthorized
		forbidden    *ErrForbidden
		rejected     *ErrUpstreamRejected
		conflict     *ErrConflict
	)
	switch {
	case errors.As(err, &notFound),
		errors.As(err, &unauthorized),
		errors.As(err, &forbidden),
		errors.As(err, &rejected),
		errors.As(err, &conflict):
		return false
	}
	return true
}
