/*
engine.go - Balance reconciliation and request validation

PURPOSE:
  The Engine derives an employee's balance from the ledger and decides
  whether a proposed request is acceptable. It is stateless between calls:
  every balance check re-reads the ledger, so there is no cached balance
  to go stale.

VALIDATION RULES (in order):
  1. end >= start
  2. Employee exists and is active
  3. No overlap with an existing pending or approved request
  4. Business hours of the range <= current balance
     (advisory when the balance-override flag is set: logged, not blocking)

Overlapping pendings are rejected at creation time and the whole rule set
is re-run at approval time, since the balance may have moved in between.

SEE ALSO:
  - calendar.go:  Business-hour math
  - lifecycle.go: Runs validation inside the approval transaction
*/
package pto

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Engine computes balances and validates requests against a Store.
type Engine struct {
	Store       Store
	HoursPerDay decimal.Decimal

	// AllowBalanceOverride turns the insufficient-balance rejection into a
	// logged warning, letting the balance go negative.
	AllowBalanceOverride bool

	Log *logrus.Logger
}

func NewEngine(store Store) *Engine {
	return &Engine{
		Store:       store,
		HoursPerDay: DefaultHoursPerDay,
		Log:         logrus.StandardLogger(),
	}
}

// WithStore returns a copy of the engine bound to a different store,
// used to run validation against a transaction-scoped store.
func (e *Engine) WithStore(s Store) *Engine {
	scoped := *e
	scoped.Store = s
	return &scoped
}

// =============================================================================
// BALANCE RECONCILIATION
// =============================================================================

// ComputeBalance sums all ledger entries for the employee with
// TransactionDate <= asOf. Returns zero when no entries exist.
// Decimal arithmetic throughout; insertion order does not matter.
func (e *Engine) ComputeBalance(ctx context.Context, employeeID EmployeeID, asOf time.Time) (decimal.Decimal, error) {
	entries, err := e.Store.ListEntries(ctx, employeeID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load ledger: %w", err)
	}

	balance := decimal.Zero
	for _, entry := range entries {
		if entry.TransactionDate.After(asOf) {
			continue
		}
		balance = balance.Add(entry.ChangeHours)
	}
	return balance.Round(2), nil
}

// BusinessHours computes the working-hour cost of [start, end], excluding
// weekends and recorded holidays.
func (e *Engine) BusinessHours(ctx context.Context, start, end Date) (decimal.Decimal, error) {
	holidays, err := e.Store.ListHolidays(ctx, &start, &end)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load holidays: %w", err)
	}
	cal := NewCalendar(e.HoursPerDay, holidays)
	return cal.BusinessHours(start, end), nil
}

// =============================================================================
// REQUEST VALIDATION
// =============================================================================

// ValidateRequest checks whether [start, end] is an acceptable new request
// (or an acceptable approval) for the employee. Returns nil on Ok, a
// ValidationError / InsufficientBalanceError on rejection.
//
// excludeRequest, when non-empty, is left out of the overlap check so an
// existing pending request doesn't conflict with itself at approval time.
func (e *Engine) ValidateRequest(ctx context.Context, employeeID EmployeeID, start, end Date, excludeRequest RequestID) error {
	if end.Before(start) {
		return &ValidationError{
			Code:    CodeBadDateRange,
			Message: fmt.Sprintf("end date %s is before start date %s", end, start),
		}
	}

	emp, err := e.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to load employee: %w", err)
	}
	if emp == nil {
		return ErrEmployeeNotFound
	}
	if !emp.Active {
		return &ValidationError{
			Code:    CodeInactiveEmployee,
			Message: fmt.Sprintf("employee %s is inactive", employeeID),
		}
	}

	if err := e.checkOverlap(ctx, employeeID, start, end, excludeRequest); err != nil {
		return err
	}

	return e.checkBalance(ctx, employeeID, start, end)
}

// checkOverlap rejects when [start, end] intersects any pending or approved
// request for the employee. Rejected and cancelled requests never conflict.
func (e *Engine) checkOverlap(ctx context.Context, employeeID EmployeeID, start, end Date, exclude RequestID) error {
	existing, err := e.Store.ListRequests(ctx, RequestFilter{EmployeeID: &employeeID})
	if err != nil {
		return fmt.Errorf("failed to list requests: %w", err)
	}

	for _, r := range existing {
		if r.ID == exclude {
			continue
		}
		if r.Status != StatusPending && r.Status != StatusApproved {
			continue
		}
		if r.Overlaps(start, end) {
			return &ValidationError{
				Code: CodeOverlappingRequest,
				Message: fmt.Sprintf("range %s..%s overlaps %s request %s (%s..%s)",
					start, end, r.Status, r.ID, r.StartDate, r.EndDate),
			}
		}
	}
	return nil
}

func (e *Engine) checkBalance(ctx context.Context, employeeID EmployeeID, start, end Date) error {
	hours, err := e.BusinessHours(ctx, start, end)
	if err != nil {
		return err
	}

	balance, err := e.ComputeBalance(ctx, employeeID, time.Now().UTC())
	if err != nil {
		return err
	}

	if hours.GreaterThan(balance) {
		if e.AllowBalanceOverride {
			e.log().WithFields(logrus.Fields{
				"employee_id": employeeID,
				"available":   balance.StringFixed(2),
				"requested":   hours.StringFixed(2),
			}).Warn("balance check overridden; balance will go negative")
			return nil
		}
		return &InsufficientBalanceError{
			EmployeeID: employeeID,
			Available:  balance,
			Requested:  hours,
		}
	}
	return nil
}

func (e *Engine) log() *logrus.Logger {
	if e.Log != nil {
		return e.Log
	}
	return logrus.StandardLogger()
}
