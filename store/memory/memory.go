// Package memory provides an in-memory pto.TxStore for tests and development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory holds all state in maps. Safe for concurrent use.
// WithTx is simulated with a snapshot + restore on error, which matches
// the all-or-nothing contract the lifecycle manager depends on.
type Memory struct {
	mu        sync.RWMutex
	employees map[pto.EmployeeID]pto.Employee
	holidays  map[string]pto.Holiday // keyed by date string
	requests  map[pto.RequestID]pto.Request
	entries   []pto.LedgerEntry
}

func New() *Memory {
	return &Memory{
		employees: make(map[pto.EmployeeID]pto.Employee),
		holidays:  make(map[string]pto.Holiday),
		requests:  make(map[pto.RequestID]pto.Request),
	}
}

var _ pto.TxStore = (*Memory)(nil)

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id pto.EmployeeID) (*pto.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getEmployeeLocked(id), nil
}

func (m *Memory) getEmployeeLocked(id pto.EmployeeID) *pto.Employee {
	if e, ok := m.employees[id]; ok {
		copy := e
		return &copy
	}
	return nil
}

func (m *Memory) GetEmployeeByEmail(_ context.Context, email string) (*pto.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.employees {
		if e.Email == email {
			copy := e
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]pto.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]pto.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

func (m *Memory) SaveEmployee(_ context.Context, e pto.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveEmployeeLocked(e)
}

func (m *Memory) saveEmployeeLocked(e pto.Employee) error {
	m.employees[e.ID] = e
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) ListHolidays(_ context.Context, from, to *pto.Date) ([]pto.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listHolidaysLocked(from, to), nil
}

func (m *Memory) listHolidaysLocked(from, to *pto.Date) []pto.Holiday {
	var result []pto.Holiday
	for _, h := range m.holidays {
		if from != nil && h.Date.Before(*from) {
			continue
		}
		if to != nil && h.Date.After(*to) {
			continue
		}
		result = append(result, h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result
}

func (m *Memory) SaveHoliday(_ context.Context, h pto.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.Date.String()] = h
	return nil
}

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Memory) GetRequest(_ context.Context, id pto.RequestID) (*pto.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getRequestLocked(id), nil
}

func (m *Memory) getRequestLocked(id pto.RequestID) *pto.Request {
	if r, ok := m.requests[id]; ok {
		copy := r
		return &copy
	}
	return nil
}

func (m *Memory) ListRequests(_ context.Context, filter pto.RequestFilter) ([]pto.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listRequestsLocked(filter), nil
}

func (m *Memory) listRequestsLocked(filter pto.RequestFilter) []pto.Request {
	var result []pto.Request
	for _, r := range m.requests {
		if filter.EmployeeID != nil && r.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.StartFrom != nil && r.StartDate.Before(*filter.StartFrom) {
			continue
		}
		if filter.StartTo != nil && r.StartDate.After(*filter.StartTo) {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[j].StartDate.Before(result[i].StartDate) })

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result
}

func (m *Memory) SaveRequest(_ context.Context, r pto.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveRequestLocked(r)
}

func (m *Memory) saveRequestLocked(r pto.Request) error {
	m.requests[r.ID] = r
	return nil
}

// =============================================================================
// LEDGER (append-only)
// =============================================================================

func (m *Memory) AppendEntry(_ context.Context, entry pto.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendEntryLocked(entry)
}

func (m *Memory) appendEntryLocked(entry pto.LedgerEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *Memory) ListEntries(_ context.Context, employeeID pto.EmployeeID) ([]pto.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listEntriesLocked(employeeID), nil
}

func (m *Memory) listEntriesLocked(employeeID pto.EmployeeID) []pto.LedgerEntry {
	var result []pto.LedgerEntry
	for _, e := range m.entries {
		if e.EmployeeID == employeeID {
			result = append(result, e)
		}
	}
	return result
}

func (m *Memory) ListEntriesByRequest(_ context.Context, requestID pto.RequestID) ([]pto.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listEntriesByRequestLocked(requestID), nil
}

func (m *Memory) listEntriesByRequestLocked(requestID pto.RequestID) []pto.LedgerEntry {
	var result []pto.LedgerEntry
	for _, e := range m.entries {
		if e.RequestID != nil && *e.RequestID == requestID {
			result = append(result, e)
		}
	}
	return result
}

func (m *Memory) HasEntryOfType(_ context.Context, employeeID pto.EmployeeID, t pto.EntryType) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasEntryOfTypeLocked(employeeID, t), nil
}

func (m *Memory) hasEntryOfTypeLocked(employeeID pto.EmployeeID, t pto.EntryType) bool {
	for _, e := range m.entries {
		if e.EmployeeID == employeeID && e.Type == t {
			return true
		}
	}
	return false
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn against a view of the store, restoring the pre-call
// snapshot if fn fails. The store lock is held for the whole call, which
// also serializes concurrent check-then-act sequences.
func (m *Memory) WithTx(_ context.Context, fn func(pto.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshotLocked()
	if err := fn(&txView{parent: m}); err != nil {
		m.restoreLocked(snap)
		return err
	}
	return nil
}

type snapshot struct {
	employees map[pto.EmployeeID]pto.Employee
	holidays  map[string]pto.Holiday
	requests  map[pto.RequestID]pto.Request
	entries   []pto.LedgerEntry
}

func (m *Memory) snapshotLocked() snapshot {
	s := snapshot{
		employees: make(map[pto.EmployeeID]pto.Employee, len(m.employees)),
		holidays:  make(map[string]pto.Holiday, len(m.holidays)),
		requests:  make(map[pto.RequestID]pto.Request, len(m.requests)),
		entries:   append([]pto.LedgerEntry(nil), m.entries...),
	}
	for k, v := range m.employees {
		s.employees[k] = v
	}
	for k, v := range m.holidays {
		s.holidays[k] = v
	}
	for k, v := range m.requests {
		s.requests[k] = v
	}
	return s
}

func (m *Memory) restoreLocked(s snapshot) {
	m.employees = s.employees
	m.holidays = s.holidays
	m.requests = s.requests
	m.entries = s.entries
}

// txView routes Store calls to the locked internals of its parent.
// It must only be used from within WithTx, which holds the lock.
type txView struct {
	parent *Memory
}

func (v *txView) GetEmployee(_ context.Context, id pto.EmployeeID) (*pto.Employee, error) {
	return v.parent.getEmployeeLocked(id), nil
}

func (v *txView) GetEmployeeByEmail(_ context.Context, email string) (*pto.Employee, error) {
	for _, e := range v.parent.employees {
		if e.Email == email {
			copy := e
			return &copy, nil
		}
	}
	return nil, nil
}

func (v *txView) ListEmployees(ctx context.Context) ([]pto.Employee, error) {
	result := make([]pto.Employee, 0, len(v.parent.employees))
	for _, e := range v.parent.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

func (v *txView) SaveEmployee(_ context.Context, e pto.Employee) error {
	return v.parent.saveEmployeeLocked(e)
}

func (v *txView) ListHolidays(_ context.Context, from, to *pto.Date) ([]pto.Holiday, error) {
	return v.parent.listHolidaysLocked(from, to), nil
}

func (v *txView) SaveHoliday(_ context.Context, h pto.Holiday) error {
	v.parent.holidays[h.Date.String()] = h
	return nil
}

func (v *txView) GetRequest(_ context.Context, id pto.RequestID) (*pto.Request, error) {
	return v.parent.getRequestLocked(id), nil
}

func (v *txView) ListRequests(_ context.Context, filter pto.RequestFilter) ([]pto.Request, error) {
	return v.parent.listRequestsLocked(filter), nil
}

func (v *txView) SaveRequest(_ context.Context, r pto.Request) error {
	return v.parent.saveRequestLocked(r)
}

func (v *txView) AppendEntry(_ context.Context, entry pto.LedgerEntry) error {
	return v.parent.appendEntryLocked(entry)
}

func (v *txView) ListEntries(_ context.Context, employeeID pto.EmployeeID) ([]pto.LedgerEntry, error) {
	return v.parent.listEntriesLocked(employeeID), nil
}

func (v *txView) ListEntriesByRequest(_ context.Context, requestID pto.RequestID) ([]pto.LedgerEntry, error) {
	return v.parent.listEntriesByRequestLocked(requestID), nil
}

func (v *txView) HasEntryOfType(_ context.Context, employeeID pto.EmployeeID, t pto.EntryType) (bool, error) {
	return v.parent.hasEntryOfTypeLocked(employeeID, t), nil
}
