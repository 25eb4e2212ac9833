/*
errors.go - Centralized error types for the PTO core

PURPOSE:
  All error kinds in one place. Callers classify with errors.Is / errors.As
  and the helpers below; the HTTP layer maps classes to status codes.

ERROR KINDS:
  Validation       - bad range, inactive employee, overlap, insufficient balance
  InvalidTransition - illegal status change; not retried
  Conflict         - serialization failure; safe to retry the transaction
  NotFound         - unknown employee or request

SEE ALSO:
  - engine.go:    Produces ValidationError
  - lifecycle.go: Produces InvalidTransitionError, retries on Conflict
  - api/handlers.go: Status-code mapping
*/
package pto

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRequestNotFound is returned when a referenced PTO request doesn't exist.
	ErrRequestNotFound = errors.New("pto request not found")

	// ErrValidation is the base of every request-validation failure.
	ErrValidation = errors.New("request validation failed")

	// ErrInvalidTransition is returned on an illegal status change.
	// The caller must not retry without operator intervention.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflict is returned when a concurrent writer interfered with a
	// check-then-act sequence. Retrying the whole transaction is safe.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrInitialAlreadyGranted is returned on a second initial-allowance
	// grant for the same employee. The grant is idempotent: the ledger
	// holds at most one initial entry per employee.
	ErrInitialAlreadyGranted = errors.New("initial allowance already granted")

	// ErrLedgerImmutable is returned by stores on any attempt to update or
	// delete a ledger entry.
	ErrLedgerImmutable = errors.New("ledger entries are append-only")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// Validation failure codes, stable across the API boundary.
const (
	CodeBadDateRange        = "bad_date_range"
	CodeInvalidAmount       = "invalid_amount"
	CodeInactiveEmployee    = "inactive_employee"
	CodeOverlappingRequest  = "overlapping_request"
	CodeInsufficientBalance = "insufficient_balance"
)

// ValidationError reports why a request was rejected.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientBalanceError is the balance-check failure with amounts attached.
type InsufficientBalanceError struct {
	EmployeeID EmployeeID
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: available %s hours, requested %s hours",
		CodeInsufficientBalance, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrValidation }

// InvalidTransitionError reports an illegal state-machine move.
type InvalidTransitionError struct {
	RequestID RequestID
	From      RequestStatus
	To        RequestStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("request %s: cannot transition %s -> %s", e.RequestID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if re-running the whole transaction might succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInitialAlreadyGranted)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}
