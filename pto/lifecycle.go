/*
lifecycle.go - Request status state machine

PURPOSE:
  The Lifecycle manager is the only writer of request statuses and the
  ledger entries each transition produces. Centralizing the writes here
  keeps the cross-table invariants (status <-> ledger linkage, explicit
  updated_at) in one place instead of scattered across call sites.

STATE MACHINE:
  pending  -> approved   validate, then status + one usage entry (atomic)
  pending  -> rejected   status only
  pending  -> cancelled  status only
  approved -> cancelled  status + compensating adjustment entry (atomic)
  anything else          InvalidTransition

Every transition runs inside a single store transaction: if the ledger
append fails the status update rolls back with it. Approval re-validates,
since the balance may have moved since submission. A transition that hits
a serialization conflict is retried automatically a bounded number of
times; all other failures surface to the caller.

LEDGER LINKAGE:
  Only usage entries carry the request id. The compensating adjustment
  for a cancelled approval references the request in its description, so
  the usage entries linked to a request always sum to its debited hours.

SEE ALSO:
  - engine.go:  Validation re-run at approval time
  - accrual.go: Non-request ledger operations (initial, accrual, reset)
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

// maxConflictRetries bounds automatic re-runs after ErrConflict.
const maxConflictRetries = 2

// Lifecycle orchestrates request transitions over a transactional store.
type Lifecycle struct {
	Store  TxStore
	Engine *Engine
	Log    *logrus.Logger
}

func NewLifecycle(store TxStore) *Lifecycle {
	return &Lifecycle{
		Store:  store,
		Engine: NewEngine(store),
		Log:    logrus.StandardLogger(),
	}
}

// =============================================================================
// CREATION
// =============================================================================

// CreateRequest validates and persists a new pending request.
// Overlap against existing pending and approved requests is rejected here,
// at creation time, not deferred to approval.
func (lc *Lifecycle) CreateRequest(ctx context.Context, employeeID EmployeeID, start, end Date, notes string) (*Request, error) {
	var created *Request
	err := lc.withRetry(ctx, func(s Store) error {
		if err := lc.Engine.WithStore(s).ValidateRequest(ctx, employeeID, start, end, ""); err != nil {
			return err
		}

		now := time.Now().UTC()
		req := Request{
			ID:          RequestID(uuid.NewString()),
			EmployeeID:  employeeID,
			StartDate:   start,
			EndDate:     end,
			Status:      StatusPending,
			Notes:       notes,
			RequestedAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.SaveRequest(ctx, req); err != nil {
			return err
		}
		created = &req
		return nil
	})
	if err != nil {
		return nil, err
	}

	lc.log().WithFields(logrus.Fields{
		"request_id":  created.ID,
		"employee_id": employeeID,
		"range":       fmt.Sprintf("%s..%s", start, end),
	}).Info("pto request created")
	return created, nil
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Approve moves a pending request to approved and debits the ledger.
// Validation is re-run inside the transaction: the balance may have
// changed since the request was submitted.
func (lc *Lifecycle) Approve(ctx context.Context, requestID RequestID, approvedBy string) (*Request, error) {
	var approved *Request
	err := lc.withRetry(ctx, func(s Store) error {
		req, err := lc.loadRequest(ctx, s, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return &InvalidTransitionError{RequestID: requestID, From: req.Status, To: StatusApproved}
		}

		engine := lc.Engine.WithStore(s)
		if err := engine.ValidateRequest(ctx, req.EmployeeID, req.StartDate, req.EndDate, req.ID); err != nil {
			return err
		}

		hours, err := engine.BusinessHours(ctx, req.StartDate, req.EndDate)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		req.Status = StatusApproved
		req.UpdatedAt = now
		if err := s.SaveRequest(ctx, *req); err != nil {
			return err
		}

		entry := LedgerEntry{
			ID:              EntryID(uuid.NewString()),
			EmployeeID:      req.EmployeeID,
			RequestID:       &req.ID,
			ChangeHours:     hours.Neg(),
			Type:            EntryUsage,
			Description:     fmt.Sprintf("PTO %s..%s approved by %s", req.StartDate, req.EndDate, approvedBy),
			TransactionDate: now,
			CreatedAt:       now,
		}
		if err := s.AppendEntry(ctx, entry); err != nil {
			return err
		}

		approved = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	lc.log().WithFields(logrus.Fields{
		"request_id":  approved.ID,
		"employee_id": approved.EmployeeID,
		"approved_by": approvedBy,
	}).Info("pto request approved")
	return approved, nil
}

// Reject moves a pending request to rejected. No ledger effect.
func (lc *Lifecycle) Reject(ctx context.Context, requestID RequestID, reason string) (*Request, error) {
	return lc.statusOnly(ctx, requestID, StatusRejected, reason)
}

// Cancel moves a pending or approved request to cancelled.
// Cancelling an approval appends a compensating adjustment entry that
// restores exactly the hours the approval debited.
func (lc *Lifecycle) Cancel(ctx context.Context, requestID RequestID) (*Request, error) {
	var cancelled *Request
	err := lc.withRetry(ctx, func(s Store) error {
		req, err := lc.loadRequest(ctx, s, requestID)
		if err != nil {
			return err
		}

		switch req.Status {
		case StatusPending:
			// No ledger effect while still pending.
		case StatusApproved:
			// Compensate the exact debit recorded for this request rather
			// than recomputing business hours, which could have drifted if
			// the holiday table changed since approval.
			debited, err := lc.debitedHours(ctx, s, requestID)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			entry := LedgerEntry{
				ID:              EntryID(uuid.NewString()),
				EmployeeID:      req.EmployeeID,
				ChangeHours:     debited,
				Type:            EntryAdjustment,
				Description:     fmt.Sprintf("cancellation of approved request %s", req.ID),
				TransactionDate: now,
				CreatedAt:       now,
			}
			if err := s.AppendEntry(ctx, entry); err != nil {
				return err
			}
		default:
			return &InvalidTransitionError{RequestID: requestID, From: req.Status, To: StatusCancelled}
		}

		req.Status = StatusCancelled
		req.UpdatedAt = time.Now().UTC()
		if err := s.SaveRequest(ctx, *req); err != nil {
			return err
		}
		cancelled = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	lc.log().WithField("request_id", cancelled.ID).Info("pto request cancelled")
	return cancelled, nil
}

// statusOnly performs a pending-only transition with no ledger effect.
func (lc *Lifecycle) statusOnly(ctx context.Context, requestID RequestID, to RequestStatus, reason string) (*Request, error) {
	var updated *Request
	err := lc.withRetry(ctx, func(s Store) error {
		req, err := lc.loadRequest(ctx, s, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusPending {
			return &InvalidTransitionError{RequestID: requestID, From: req.Status, To: to}
		}

		req.Status = to
		req.UpdatedAt = time.Now().UTC()
		if reason != "" {
			if req.Notes != "" {
				req.Notes += "; "
			}
			req.Notes += reason
		}
		if err := s.SaveRequest(ctx, *req); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	lc.log().WithFields(logrus.Fields{
		"request_id": updated.ID,
		"status":     to,
	}).Info("pto request transitioned")
	return updated, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// debitedHours returns the positive total the request's usage entries debited.
func (lc *Lifecycle) debitedHours(ctx context.Context, s Store, requestID RequestID) (decimal.Decimal, error) {
	entries, err := s.ListEntriesByRequest(ctx, requestID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, entry := range entries {
		if entry.Type == EntryUsage {
			total = total.Add(entry.ChangeHours)
		}
	}
	return total.Neg(), nil
}

func (lc *Lifecycle) loadRequest(ctx context.Context, s Store, id RequestID) (*Request, error) {
	req, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// withRetry runs fn inside a transaction, re-running it on ErrConflict.
func (lc *Lifecycle) withRetry(ctx context.Context, fn func(Store) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = lc.Store.WithTx(ctx, fn)
		if err == nil || !IsRetryable(err) || attempt >= maxConflictRetries {
			return err
		}
		lc.log().WithField("attempt", attempt+1).WithError(err).Warn("retrying after serialization conflict")
	}
}

func (lc *Lifecycle) log() *logrus.Logger {
	if lc.Log != nil {
		return lc.Log
	}
	return logrus.StandardLogger()
}
