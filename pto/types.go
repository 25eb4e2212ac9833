/*
Package pto implements the core PTO accounting model.

PURPOSE:
  This package contains the domain types and algorithms for paid-time-off
  tracking: the append-only ledger, balance reconciliation, request
  validation, and the request lifecycle state machine. The HTTP layer and
  the conversational agent are thin callers into this package.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee:     Identity, hire date, initial allowance, active flag
  - Holiday:      Company-wide non-working date
  - Request:      A PTO request over a closed date range with a status
  - LedgerEntry:  An immutable, signed balance change for one employee

DESIGN PRINCIPLES:
  1. Immutability: Ledger entries are never modified, only compensated
  2. Precision: Uses decimal.Decimal for hours, never float64
  3. Derivation: Balance is always recomputed from the ledger, never cached

SEE ALSO:
  - ledger.go:    Balance computation from entries
  - engine.go:    Request validation rules
  - lifecycle.go: Status transitions and the entries they produce
*/
package pto

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type RequestID string
type EntryID string

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is the owner of requests and ledger entries.
// Email is globally unique. Employees are deactivated, never deleted,
// while ledger entries reference them.
type Employee struct {
	ID                    EmployeeID
	Name                  string
	Email                 string
	HireDate              Date
	InitialAllowanceHours decimal.Decimal // >= 0, granted once at hire
	Active                bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// =============================================================================
// HOLIDAY
// =============================================================================

// Holiday is a company-wide non-working date, unique per date.
// Holidays are excluded from business-hour totals; nothing else about
// working-time policy lives in the schema.
type Holiday struct {
	ID        string
	Date      Date
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// REQUEST
// =============================================================================

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// ValidStatus reports whether s is one of the four legal statuses.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Request is a PTO request over the closed range [StartDate, EndDate].
// EndDate >= StartDate always; a single-day request has both equal.
//
// Lifecycle: created pending, then exactly one of approved / rejected /
// cancelled. An approved request may still be cancelled (future trip
// called off), which produces a compensating adjustment entry.
type Request struct {
	ID          RequestID
	EmployeeID  EmployeeID
	StartDate   Date
	EndDate     Date
	Status      RequestStatus
	Notes       string
	RequestedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Overlaps reports whether the request's range intersects [start, end].
// Standard interval test: two closed ranges overlap iff s1 <= e2 && s2 <= e1.
func (r Request) Overlaps(start, end Date) bool {
	return !r.StartDate.After(end) && !start.After(r.EndDate)
}

// =============================================================================
// LEDGER ENTRY
// =============================================================================

type EntryType string

const (
	EntryInitial    EntryType = "initial"    // One-time hire allowance
	EntryAccrual    EntryType = "accrual"    // Periodic accrual credit
	EntryUsage      EntryType = "usage"      // Approved request debit
	EntryAdjustment EntryType = "adjustment" // Compensating credit (e.g. cancelled approval)
	EntryReset      EntryType = "reset"      // Delta bringing balance to an exact target
	EntryCorrection EntryType = "correction" // Manual admin fix-up
)

// ValidEntryType reports whether t is one of the six legal entry types.
func ValidEntryType(t EntryType) bool {
	switch t {
	case EntryInitial, EntryAccrual, EntryUsage, EntryAdjustment, EntryReset, EntryCorrection:
		return true
	}
	return false
}

// LedgerEntry is one immutable, signed balance change for an employee.
// Positive ChangeHours credit the balance, negative debit it.
//
// INVARIANTS:
//   - Append-only: entries are never updated or deleted
//   - RequestID is set exactly when Type == EntryUsage (and on the
//     compensating adjustment for a cancelled approval)
//   - ChangeHours carries two-decimal-place scale
type LedgerEntry struct {
	ID              EntryID
	EmployeeID      EmployeeID
	RequestID       *RequestID
	ChangeHours     decimal.Decimal
	Type            EntryType
	Description     string
	TransactionDate time.Time
	CreatedAt       time.Time
}
