/*
seed.go - Deterministic demo dataset

PURPOSE:
  Loads a small, reproducible dataset for demos and manual testing:
  US federal holidays for a range of years, a handful of employees with
  initial allowances and accrual history, and a few requests in every
  lifecycle state. All writes go through the lifecycle manager so the
  seeded ledger obeys the same rules as live traffic.

IDEMPOTENCE:
  Seeding is safe to repeat. Holidays upsert by date, employees are
  skipped when their email already exists, and the initial allowance
  grant refuses duplicates on its own.

SEE ALSO:
  - handlers.go: POST /api/seed
  - pto/lifecycle.go: The operations used to build the dataset
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/pto-tracker/pto"
)

const (
	seedHolidayStartYear = 2015
	seedHolidayEndYear   = 2028
)

// SeedSummary reports what a seeding pass created.
type SeedSummary struct {
	Holidays  int `json:"holidays"`
	Employees int `json:"employees"`
	Requests  int `json:"requests"`
}

type seedEmployee struct {
	name      string
	email     string
	hireDate  pto.Date
	allowance string
}

type seedRequest struct {
	email     string
	startDate pto.Date
	endDate   pto.Date
	notes     string
	// target lifecycle state after seeding
	status pto.RequestStatus
}

// Seed loads the demo dataset through the lifecycle manager.
func Seed(ctx context.Context, store pto.TxStore, lc *pto.Lifecycle) (*SeedSummary, error) {
	summary := &SeedSummary{}

	for year := seedHolidayStartYear; year <= seedHolidayEndYear; year++ {
		for _, h := range usFederalHolidays(year) {
			if err := store.SaveHoliday(ctx, h); err != nil {
				return nil, fmt.Errorf("failed to seed holiday %s: %w", h.Date, err)
			}
			summary.Holidays++
		}
	}

	employees := []seedEmployee{
		{"Ada Moreno", "ada.moreno@example.com", pto.NewDate(2019, time.March, 4), "120.00"},
		{"Bashir Khan", "bashir.khan@example.com", pto.NewDate(2021, time.July, 12), "96.00"},
		{"Clara Nilsen", "clara.nilsen@example.com", pto.NewDate(2023, time.January, 9), "80.00"},
		{"Diego Fuentes", "diego.fuentes@example.com", pto.NewDate(2024, time.September, 2), "80.00"},
	}

	byEmail := make(map[string]pto.EmployeeID, len(employees))
	for _, se := range employees {
		id, created, err := seedOneEmployee(ctx, store, lc, se)
		if err != nil {
			return nil, err
		}
		byEmail[se.email] = id
		if created {
			summary.Employees++
		}
	}

	// Requests around a fixed reference window so the dataset reads the
	// same every run. Approved and cancelled ones exercise the ledger.
	requests := []seedRequest{
		{"ada.moreno@example.com", pto.NewDate(2026, time.June, 15), pto.NewDate(2026, time.June, 19), "summer trip", pto.StatusApproved},
		{"ada.moreno@example.com", pto.NewDate(2026, time.November, 23), pto.NewDate(2026, time.November, 25), "thanksgiving week", pto.StatusPending},
		{"bashir.khan@example.com", pto.NewDate(2026, time.August, 3), pto.NewDate(2026, time.August, 7), "family visit", pto.StatusApproved},
		{"bashir.khan@example.com", pto.NewDate(2026, time.October, 12), pto.NewDate(2026, time.October, 16), "conference, cancelled", pto.StatusCancelled},
		{"clara.nilsen@example.com", pto.NewDate(2026, time.September, 14), pto.NewDate(2026, time.September, 14), "moving day", pto.StatusPending},
		{"diego.fuentes@example.com", pto.NewDate(2026, time.December, 21), pto.NewDate(2026, time.December, 31), "year-end, rejected", pto.StatusRejected},
	}

	for _, sr := range requests {
		created, err := seedOneRequest(ctx, store, lc, byEmail[sr.email], sr)
		if err != nil {
			return nil, err
		}
		if created {
			summary.Requests++
		}
	}

	return summary, nil
}

func seedOneEmployee(ctx context.Context, store pto.TxStore, lc *pto.Lifecycle, se seedEmployee) (pto.EmployeeID, bool, error) {
	existing, err := store.GetEmployeeByEmail(ctx, se.email)
	if err != nil {
		return "", false, fmt.Errorf("failed to look up %s: %w", se.email, err)
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	allowance, err := decimal.NewFromString(se.allowance)
	if err != nil {
		return "", false, err
	}

	now := time.Now().UTC()
	emp := pto.Employee{
		ID:                    pto.EmployeeID(uuid.NewString()),
		Name:                  se.name,
		Email:                 se.email,
		HireDate:              se.hireDate,
		InitialAllowanceHours: allowance,
		Active:                true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := store.SaveEmployee(ctx, emp); err != nil {
		return "", false, fmt.Errorf("failed to seed employee %s: %w", se.email, err)
	}

	if _, err := lc.GrantInitialAllowance(ctx, emp.ID, allowance); err != nil {
		return "", false, fmt.Errorf("failed to grant allowance for %s: %w", se.email, err)
	}

	// Annual accruals from the year after hire up to this year.
	for year := se.hireDate.Time().Year() + 1; year <= now.Year(); year++ {
		period := fmt.Sprintf("annual accrual for %d", year)
		if _, err := lc.ApplyAccrual(ctx, emp.ID, decimal.NewFromInt(120), period); err != nil {
			return "", false, fmt.Errorf("failed to seed accrual for %s: %w", se.email, err)
		}
	}

	return emp.ID, true, nil
}

func seedOneRequest(ctx context.Context, store pto.TxStore, lc *pto.Lifecycle, employeeID pto.EmployeeID, sr seedRequest) (bool, error) {
	if employeeID == "" {
		return false, fmt.Errorf("no seeded employee for %s", sr.email)
	}

	// Skip if an identical request already exists from a previous pass.
	existing, err := store.ListRequests(ctx, pto.RequestFilter{EmployeeID: &employeeID})
	if err != nil {
		return false, err
	}
	for _, r := range existing {
		if r.StartDate.Equal(sr.startDate) && r.EndDate.Equal(sr.endDate) {
			return false, nil
		}
	}

	req, err := lc.CreateRequest(ctx, employeeID, sr.startDate, sr.endDate, sr.notes)
	if err != nil {
		return false, fmt.Errorf("failed to seed request for %s: %w", sr.email, err)
	}

	switch sr.status {
	case pto.StatusApproved:
		_, err = lc.Approve(ctx, req.ID, "seed")
	case pto.StatusRejected:
		_, err = lc.Reject(ctx, req.ID, "seeded rejection")
	case pto.StatusCancelled:
		if _, err = lc.Approve(ctx, req.ID, "seed"); err == nil {
			_, err = lc.Cancel(ctx, req.ID)
		}
	case pto.StatusPending:
		// Leave as created.
	}
	if err != nil {
		return false, fmt.Errorf("failed to transition seeded request for %s: %w", sr.email, err)
	}
	return true, nil
}

// usFederalHolidays returns the federal holidays for a year, using the
// statutory weekday rules for the floating ones.
func usFederalHolidays(year int) []pto.Holiday {
	mk := func(d pto.Date, name string) pto.Holiday {
		now := time.Now().UTC()
		return pto.Holiday{
			ID:        uuid.NewString(),
			Date:      d,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	holidays := []pto.Holiday{
		mk(pto.NewDate(year, time.January, 1), "New Year's Day"),
		mk(nthWeekday(year, time.January, time.Monday, 3), "Martin Luther King, Jr. Day"),
		mk(nthWeekday(year, time.February, time.Monday, 3), "Washington's Birthday"),
		mk(lastWeekday(year, time.May, time.Monday), "Memorial Day"),
		mk(pto.NewDate(year, time.July, 4), "Independence Day"),
		mk(nthWeekday(year, time.September, time.Monday, 1), "Labor Day"),
		mk(nthWeekday(year, time.October, time.Monday, 2), "Columbus Day"),
		mk(pto.NewDate(year, time.November, 11), "Veterans Day"),
		mk(nthWeekday(year, time.November, time.Thursday, 4), "Thanksgiving Day"),
		mk(pto.NewDate(year, time.December, 25), "Christmas Day"),
	}
	if year >= 2021 {
		holidays = append(holidays, mk(pto.NewDate(year, time.June, 19), "Juneteenth National Independence Day"))
	}
	return holidays
}

// nthWeekday returns the nth given weekday of a month (n starts at 1).
func nthWeekday(year int, month time.Month, day time.Weekday, n int) pto.Date {
	first := pto.NewDate(year, month, 1)
	offset := (int(day) - int(first.Weekday()) + 7) % 7
	return first.AddDays(offset + (n-1)*7)
}

// lastWeekday returns the last given weekday of a month.
func lastWeekday(year int, month time.Month, day time.Weekday) pto.Date {
	last := pto.NewDate(year, month+1, 1).AddDays(-1)
	offset := (int(last.Weekday()) - int(day) + 7) % 7
	return last.AddDays(-offset)
}
