/*
scheduler.go - Automated monthly accrual scheduler

PURPOSE:
  Periodically credits each active employee's monthly PTO accrual.
  Each credit is an ordinary accrual ledger entry, so the balance
  engine needs no awareness of the scheduler.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - One employee per transaction, so a failure for one employee never
    blocks the rest
  - Idempotent per month: the accrual entry description carries the
    period ("monthly accrual 2026-08") and is checked before crediting

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - MonthlyHours:  Hours credited per month per active employee

USAGE:
  scheduler := NewAccrualScheduler(store, lifecycle, hours)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - pto/accrual.go: ApplyAccrual
  - handlers.go: ApplyAccrual endpoint (manual credits)
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/pto-tracker/pto"
)

// AccrualScheduler credits monthly accruals in the background.
type AccrualScheduler struct {
	Store         pto.TxStore
	Lifecycle     *pto.Lifecycle
	MonthlyHours  decimal.Decimal
	CheckInterval time.Duration
	Log           *logrus.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAccrualScheduler creates a scheduler crediting monthlyHours per
// active employee per calendar month.
func NewAccrualScheduler(store pto.TxStore, lc *pto.Lifecycle, monthlyHours decimal.Decimal) *AccrualScheduler {
	return &AccrualScheduler{
		Store:         store,
		Lifecycle:     lc,
		MonthlyHours:  monthlyHours,
		CheckInterval: 1 * time.Hour,
		Log:           logrus.StandardLogger(),
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler. Accruals disabled entirely when
// MonthlyHours is zero or negative.
func (as *AccrualScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.MonthlyHours.IsPositive() {
		as.Log.Info("accrual scheduler disabled, monthly hours not positive")
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.wg.Add(1)
	go as.run()

	as.Log.WithField("interval", as.CheckInterval).Info("accrual scheduler started")
}

// Stop stops the scheduler and waits for an in-flight pass to finish.
func (as *AccrualScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		as.ticker = nil
		as.Log.Info("accrual scheduler stopped")
	}
}

func (as *AccrualScheduler) run() {
	defer as.wg.Done()

	// Run immediately on start
	as.checkAndProcess()

	for {
		select {
		case <-as.ticker.C:
			as.checkAndProcess()
		case <-as.stop:
			return
		}
	}
}

func (as *AccrualScheduler) checkAndProcess() {
	ctx := context.Background()
	period := monthlyPeriod(time.Now().UTC())

	employees, err := as.Store.ListEmployees(ctx)
	if err != nil {
		as.Log.WithError(err).Error("accrual pass failed to list employees")
		return
	}

	credited := 0
	skipped := 0
	for _, emp := range employees {
		if !emp.Active {
			continue
		}

		done, err := as.alreadyCredited(ctx, emp.ID, period)
		if err != nil {
			as.Log.WithError(err).WithField("employee_id", emp.ID).Error("accrual check failed")
			continue
		}
		if done {
			skipped++
			continue
		}

		if _, err := as.Lifecycle.ApplyAccrual(ctx, emp.ID, as.MonthlyHours, period); err != nil {
			as.Log.WithError(err).WithField("employee_id", emp.ID).Error("accrual credit failed")
			continue
		}
		credited++
	}

	if credited > 0 {
		as.Log.WithFields(logrus.Fields{
			"period":   period,
			"credited": credited,
			"skipped":  skipped,
		}).Info("accrual pass completed")
	}
}

// alreadyCredited reports whether an accrual entry for the period exists.
func (as *AccrualScheduler) alreadyCredited(ctx context.Context, employeeID pto.EmployeeID, period string) (bool, error) {
	entries, err := as.Store.ListEntries(ctx, employeeID)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Type == pto.EntryAccrual && e.Description == period {
			return true, nil
		}
	}
	return false, nil
}

// RunNow triggers an immediate pass (for testing/admin).
func (as *AccrualScheduler) RunNow() {
	as.checkAndProcess()
}

// monthlyPeriod returns the idempotence key for a month's accrual.
func monthlyPeriod(t time.Time) string {
	return fmt.Sprintf("monthly accrual %s", t.Format("2006-01"))
}
