/*
store.go - Persistence interface for the PTO core

PURPOSE:
  The boundary between domain logic and the database. Implementations:
  store/sqlite (production) and store/memory (tests).

APPEND-ONLY CONTRACT:
  The ledger surface is AppendEntry + reads. There is no update or delete
  for ledger entries; corrections go through compensating entries.

TRANSACTIONS:
  TxStore.WithTx runs a function against a transaction-scoped Store.
  Every lifecycle transition (validate + status write + ledger append)
  executes inside one WithTx so the check-then-act sequence is atomic.

SEE ALSO:
  - lifecycle.go:          The only writer of requests and usage entries
  - store/sqlite/sqlite.go: Production implementation
  - store/memory/memory.go: Test implementation
*/
package pto

import "context"

// RequestFilter narrows ListRequests. Nil fields are ignored.
type RequestFilter struct {
	EmployeeID *EmployeeID
	Status     *RequestStatus
	StartFrom  *Date // requests with StartDate >= StartFrom
	StartTo    *Date // requests with StartDate <= StartTo
	Limit      int   // 0 = no limit
	Offset     int
}

// Store handles persistence of employees, holidays, requests, and the ledger.
//
// Mutating writes on employees, holidays, and requests must set UpdatedAt
// explicitly; there are no database triggers.
type Store interface {
	// Employees
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error) // nil, nil when absent
	GetEmployeeByEmail(ctx context.Context, email string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	SaveEmployee(ctx context.Context, e Employee) error

	// Holidays
	ListHolidays(ctx context.Context, from, to *Date) ([]Holiday, error)
	SaveHoliday(ctx context.Context, h Holiday) error

	// Requests
	GetRequest(ctx context.Context, id RequestID) (*Request, error) // nil, nil when absent
	ListRequests(ctx context.Context, filter RequestFilter) ([]Request, error)
	SaveRequest(ctx context.Context, r Request) error

	// Ledger (append-only)
	AppendEntry(ctx context.Context, entry LedgerEntry) error
	ListEntries(ctx context.Context, employeeID EmployeeID) ([]LedgerEntry, error)
	ListEntriesByRequest(ctx context.Context, requestID RequestID) ([]LedgerEntry, error)
	HasEntryOfType(ctx context.Context, employeeID EmployeeID, t EntryType) (bool, error)
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
