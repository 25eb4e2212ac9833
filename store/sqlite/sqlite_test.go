/*
sqlite_test.go - Tests for the SQLite store

CORE DESIGN:
- Every test runs against a fresh :memory: database
- Schema constraints (unique email, status set, date order) are exercised
  directly, not just through the domain layer
- WithTx must be all-or-nothing
*/
package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pto-tracker/pto"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEmployee(email string) pto.Employee {
	now := time.Now().UTC().Truncate(time.Second)
	return pto.Employee{
		ID:                    pto.EmployeeID(uuid.NewString()),
		Name:                  "Test Employee",
		Email:                 email,
		HireDate:              pto.NewDate(2024, time.January, 8),
		InitialAllowanceHours: decimal.RequireFromString("80.50"),
		Active:                true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func testRequest(employeeID pto.EmployeeID, start, end pto.Date, status pto.RequestStatus) pto.Request {
	now := time.Now().UTC().Truncate(time.Second)
	return pto.Request{
		ID:          pto.RequestID(uuid.NewString()),
		EmployeeID:  employeeID,
		StartDate:   start,
		EndDate:     end,
		Status:      status,
		Notes:       "some notes",
		RequestedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func testEntry(employeeID pto.EmployeeID, hours string, entryType pto.EntryType) pto.LedgerEntry {
	now := time.Now().UTC().Truncate(time.Second)
	return pto.LedgerEntry{
		ID:              pto.EntryID(uuid.NewString()),
		EmployeeID:      employeeID,
		ChangeHours:     decimal.RequireFromString(hours),
		Type:            entryType,
		Description:     "test entry",
		TransactionDate: now,
		CreatedAt:       now,
	}
}

// =============================================================================
// EMPLOYEE TESTS
// =============================================================================

func TestEmployee_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))

	got, err := store.GetEmployee(ctx, emp.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, emp.Name, got.Name)
	assert.Equal(t, emp.Email, got.Email)
	assert.Equal(t, "2024-01-08", got.HireDate.String())
	// Decimal survives the round trip exactly.
	assert.Equal(t, "80.50", got.InitialAllowanceHours.StringFixed(2))
	assert.True(t, got.Active)
}

func TestEmployee_GetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetEmployee(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmployee_GetByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))

	got, err := store.GetEmployeeByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, emp.ID, got.ID)

	none, err := store.GetEmployeeByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestEmployee_UniqueEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, testEmployee("dup@example.com")))
	err := store.SaveEmployee(ctx, testEmployee("dup@example.com"))
	assert.Error(t, err)
}

func TestEmployee_UpsertUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))

	emp.Active = false
	emp.UpdatedAt = emp.UpdatedAt.Add(time.Minute)
	require.NoError(t, store.SaveEmployee(ctx, emp))

	got, err := store.GetEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestEmployee_ListOrderedByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmployee(ctx, testEmployee("zoe@example.com")))
	require.NoError(t, store.SaveEmployee(ctx, testEmployee("ada@example.com")))

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "ada@example.com", employees[0].Email)
	assert.Equal(t, "zoe@example.com", employees[1].Email)
}

// =============================================================================
// HOLIDAY TESTS
// =============================================================================

func TestHoliday_UpsertByDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	h := pto.Holiday{
		ID: uuid.NewString(), Date: pto.NewDate(2026, time.July, 4),
		Name: "Independence Day", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, store.SaveHoliday(ctx, h))

	// Same date, new name: updates in place instead of violating UNIQUE.
	h2 := h
	h2.ID = uuid.NewString()
	h2.Name = "July 4th"
	require.NoError(t, store.SaveHoliday(ctx, h2))

	holidays, err := store.ListHolidays(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "July 4th", holidays[0].Name)
}

func TestHoliday_RangeFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, d := range []pto.Date{
		pto.NewDate(2026, time.January, 1),
		pto.NewDate(2026, time.July, 4),
		pto.NewDate(2026, time.December, 25),
	} {
		require.NoError(t, store.SaveHoliday(ctx, pto.Holiday{
			ID: uuid.NewString(), Date: d, Name: "Holiday", CreatedAt: now, UpdatedAt: now,
		}))
	}

	from := pto.NewDate(2026, time.June, 1)
	to := pto.NewDate(2026, time.August, 31)
	holidays, err := store.ListHolidays(ctx, &from, &to)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "2026-07-04", holidays[0].Date.String())
}

// =============================================================================
// REQUEST TESTS
// =============================================================================

func TestRequest_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))

	req := testRequest(emp.ID, pto.NewDate(2026, time.June, 15), pto.NewDate(2026, time.June, 19), pto.StatusPending)
	require.NoError(t, store.SaveRequest(ctx, req))

	got, err := store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, req.EmployeeID, got.EmployeeID)
	assert.Equal(t, "2026-06-15", got.StartDate.String())
	assert.Equal(t, "2026-06-19", got.EndDate.String())
	assert.Equal(t, pto.StatusPending, got.Status)
	assert.Equal(t, "some notes", got.Notes)
}

func TestRequest_DateOrderConstraint(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))

	req := testRequest(emp.ID, pto.NewDate(2026, time.June, 19), pto.NewDate(2026, time.June, 15), pto.StatusPending)
	err := store.SaveRequest(ctx, req)
	assert.Error(t, err, "end_date before start_date must violate the schema check")
}

func TestRequest_StatusConstraint(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))

	req := testRequest(emp.ID, pto.NewDate(2026, time.June, 15), pto.NewDate(2026, time.June, 19), "escalated")
	err := store.SaveRequest(ctx, req)
	assert.Error(t, err)
}

func TestRequest_ListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))
	other := testEmployee("zoe@example.com")
	require.NoError(t, store.SaveEmployee(ctx, other))

	require.NoError(t, store.SaveRequest(ctx, testRequest(emp.ID,
		pto.NewDate(2026, time.June, 15), pto.NewDate(2026, time.June, 19), pto.StatusPending)))
	require.NoError(t, store.SaveRequest(ctx, testRequest(emp.ID,
		pto.NewDate(2026, time.August, 3), pto.NewDate(2026, time.August, 7), pto.StatusApproved)))
	require.NoError(t, store.SaveRequest(ctx, testRequest(other.ID,
		pto.NewDate(2026, time.June, 15), pto.NewDate(2026, time.June, 19), pto.StatusPending)))

	// By employee
	byEmployee, err := store.ListRequests(ctx, pto.RequestFilter{EmployeeID: &emp.ID})
	require.NoError(t, err)
	assert.Len(t, byEmployee, 2)
	// Newest start date first
	assert.Equal(t, "2026-08-03", byEmployee[0].StartDate.String())

	// By status
	pending := pto.StatusPending
	byStatus, err := store.ListRequests(ctx, pto.RequestFilter{EmployeeID: &emp.ID, Status: &pending})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, pto.StatusPending, byStatus[0].Status)

	// By start window
	from := pto.NewDate(2026, time.July, 1)
	windowed, err := store.ListRequests(ctx, pto.RequestFilter{EmployeeID: &emp.ID, StartFrom: &from})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, "2026-08-03", windowed[0].StartDate.String())

	// Limit and offset
	paged, err := store.ListRequests(ctx, pto.RequestFilter{EmployeeID: &emp.ID, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "2026-06-15", paged[0].StartDate.String())
}

// =============================================================================
// LEDGER TESTS
// =============================================================================

func TestLedger_AppendAndQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))

	req := testRequest(emp.ID, pto.NewDate(2026, time.June, 15), pto.NewDate(2026, time.June, 19), pto.StatusApproved)
	require.NoError(t, store.SaveRequest(ctx, req))

	require.NoError(t, store.AppendEntry(ctx, testEntry(emp.ID, "80", pto.EntryInitial)))

	usage := testEntry(emp.ID, "-40", pto.EntryUsage)
	usage.RequestID = &req.ID
	require.NoError(t, store.AppendEntry(ctx, usage))

	all, err := store.ListEntries(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	linked, err := store.ListEntriesByRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "-40.00", linked[0].ChangeHours.StringFixed(2))
	require.NotNil(t, linked[0].RequestID)
	assert.Equal(t, req.ID, *linked[0].RequestID)
}

func TestLedger_TypeConstraint(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))

	entry := testEntry(emp.ID, "10", "bonus")
	err := store.AppendEntry(ctx, entry)
	assert.Error(t, err)
}

func TestLedger_ForeignKeyToEmployee(t *testing.T) {
	store := newTestStore(t)

	entry := testEntry("ghost", "10", pto.EntryAccrual)
	err := store.AppendEntry(context.Background(), entry)
	assert.Error(t, err)
}

func TestLedger_HasEntryOfType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))
	require.NoError(t, store.AppendEntry(ctx, testEntry(emp.ID, "80", pto.EntryInitial)))

	has, err := store.HasEntryOfType(ctx, emp.ID, pto.EntryInitial)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = store.HasEntryOfType(ctx, emp.ID, pto.EntryUsage)
	require.NoError(t, err)
	assert.False(t, has)
}

// =============================================================================
// TRANSACTION TESTS
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s pto.Store) error {
		if err := s.AppendEntry(ctx, testEntry(emp.ID, "80", pto.EntryInitial)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	entries, err := store.ListEntries(ctx, emp.ID)
	require.NoError(t, err)
	assert.Empty(t, entries, "rolled-back entry must not be visible")
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))

	err := store.WithTx(ctx, func(s pto.Store) error {
		if err := s.AppendEntry(ctx, testEntry(emp.ID, "80", pto.EntryInitial)); err != nil {
			return err
		}
		req := testRequest(emp.ID, pto.NewDate(2026, time.June, 15), pto.NewDate(2026, time.June, 19), pto.StatusPending)
		return s.SaveRequest(ctx, req)
	})
	require.NoError(t, err)

	entries, err := store.ListEntries(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	requests, err := store.ListRequests(ctx, pto.RequestFilter{EmployeeID: &emp.ID})
	require.NoError(t, err)
	assert.Len(t, requests, 1)
}

func TestWithTx_ReadsSeeUncommittedWrites(t *testing.T) {
	// A check-then-act sequence inside one transaction must see its own writes.
	store := newTestStore(t)
	ctx := context.Background()

	emp := testEmployee("ada@example.com")
	require.NoError(t, store.SaveEmployee(ctx, emp))

	err := store.WithTx(ctx, func(s pto.Store) error {
		if err := s.AppendEntry(ctx, testEntry(emp.ID, "80", pto.EntryInitial)); err != nil {
			return err
		}
		has, err := s.HasEntryOfType(ctx, emp.ID, pto.EntryInitial)
		if err != nil {
			return err
		}
		if !has {
			return errors.New("expected uncommitted entry to be visible in-tx")
		}
		return nil
	})
	assert.NoError(t, err)
}
