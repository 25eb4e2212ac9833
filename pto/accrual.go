/*
accrual.go - Non-request ledger operations

PURPOSE:
  Credits and corrections that are not tied to a request transition:
  the one-time hire allowance, periodic accruals, balance resets, and
  manual corrections. All of them go through the same append-only ledger
  as usage entries, so ComputeBalance needs no special cases.

IDEMPOTENCE:
  GrantInitialAllowance is idempotent per employee: the ledger holds at
  most one initial entry, enforced here since the schema has no per-type
  uniqueness constraint.

SEE ALSO:
  - lifecycle.go: Request-driven entries (usage, adjustment)
  - api/scheduler.go: Periodic caller of ApplyAccrual
*/
package pto

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// GrantInitialAllowance appends the one-time initial entry at hire.
// A second call for the same employee fails with ErrInitialAlreadyGranted
// and leaves the ledger unchanged.
func (lc *Lifecycle) GrantInitialAllowance(ctx context.Context, employeeID EmployeeID, hours decimal.Decimal) (*LedgerEntry, error) {
	if hours.IsNegative() {
		return nil, &ValidationError{Code: CodeInvalidAmount, Message: "initial allowance must be >= 0"}
	}

	var entry *LedgerEntry
	err := lc.withRetry(ctx, func(s Store) error {
		if err := lc.requireEmployee(ctx, s, employeeID); err != nil {
			return err
		}

		exists, err := s.HasEntryOfType(ctx, employeeID, EntryInitial)
		if err != nil {
			return err
		}
		if exists {
			return ErrInitialAlreadyGranted
		}

		e := newEntry(employeeID, hours, EntryInitial, "initial PTO allowance at hire")
		if err := s.AppendEntry(ctx, e); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}

	lc.log().WithFields(logrus.Fields{
		"employee_id": employeeID,
		"hours":       hours.StringFixed(2),
	}).Info("initial allowance granted")
	return entry, nil
}

// ApplyAccrual appends a periodic accrual credit. Called by the accrual
// scheduler, one employee per transaction.
func (lc *Lifecycle) ApplyAccrual(ctx context.Context, employeeID EmployeeID, hours decimal.Decimal, periodDescription string) (*LedgerEntry, error) {
	var entry *LedgerEntry
	err := lc.withRetry(ctx, func(s Store) error {
		if err := lc.requireEmployee(ctx, s, employeeID); err != nil {
			return err
		}
		e := newEntry(employeeID, hours, EntryAccrual, periodDescription)
		if err := s.AppendEntry(ctx, e); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ResetBalance appends a reset entry whose delta brings the computed
// balance to exactly newBalance.
func (lc *Lifecycle) ResetBalance(ctx context.Context, employeeID EmployeeID, newBalance decimal.Decimal, reason string) (*LedgerEntry, error) {
	var entry *LedgerEntry
	err := lc.withRetry(ctx, func(s Store) error {
		if err := lc.requireEmployee(ctx, s, employeeID); err != nil {
			return err
		}

		current, err := lc.Engine.WithStore(s).ComputeBalance(ctx, employeeID, time.Now().UTC())
		if err != nil {
			return err
		}

		e := newEntry(employeeID, newBalance.Sub(current), EntryReset, reason)
		if err := s.AppendEntry(ctx, e); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}

	lc.log().WithFields(logrus.Fields{
		"employee_id": employeeID,
		"new_balance": newBalance.StringFixed(2),
	}).Info("balance reset")
	return entry, nil
}

// Correct appends a signed manual correction, e.g. to reverse an approval
// after the fact (reopening a request is done by filing a new one).
func (lc *Lifecycle) Correct(ctx context.Context, employeeID EmployeeID, hours decimal.Decimal, reason string) (*LedgerEntry, error) {
	var entry *LedgerEntry
	err := lc.withRetry(ctx, func(s Store) error {
		if err := lc.requireEmployee(ctx, s, employeeID); err != nil {
			return err
		}
		e := newEntry(employeeID, hours, EntryCorrection, reason)
		if err := s.AppendEntry(ctx, e); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (lc *Lifecycle) requireEmployee(ctx context.Context, s Store, id EmployeeID) error {
	emp, err := s.GetEmployee(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load employee: %w", err)
	}
	if emp == nil {
		return ErrEmployeeNotFound
	}
	return nil
}

func newEntry(employeeID EmployeeID, hours decimal.Decimal, t EntryType, description string) LedgerEntry {
	now := time.Now().UTC()
	return LedgerEntry{
		ID:              EntryID(uuid.NewString()),
		EmployeeID:      employeeID,
		ChangeHours:     hours.Round(2),
		Type:            t,
		Description:     description,
		TransactionDate: now,
		CreatedAt:       now,
	}
}
