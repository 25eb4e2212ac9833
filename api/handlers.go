/*
handlers.go - HTTP handlers for the PTO tracker

PURPOSE:
  Exposes the PTO core over REST. Handles request/response plumbing and
  delegates every decision to pto.Engine / pto.Lifecycle; no business
  rules live here.

ENDPOINTS:
  Employee-facing (identity from override_employee_id or X-Employee-ID):
    GET    /me/pto/balance
    POST   /me/pto/requests
    GET    /me/pto/requests
    GET    /me/pto/requests/{id}
    PATCH  /me/pto/requests/{id}/cancel
    GET    /holidays

  Admin:
    POST   /api/employees                      Create + grant initial allowance
    GET    /api/employees
    GET    /api/employees/{id}
    POST   /api/employees/{id}/deactivate
    GET    /api/employees/{id}/balance
    GET    /api/employees/{id}/ledger
    POST   /api/employees/{id}/accrual
    POST   /api/employees/{id}/reset
    POST   /api/employees/{id}/correction
    GET    /api/requests
    POST   /api/requests/{id}/approve
    POST   /api/requests/{id}/reject
    POST   /api/holidays
    POST   /api/seed

ERROR MAPPING:
  400 validation, 404 not found (including foreign ownership, which is
  hidden as 404), 409 invalid transition / conflict / duplicate initial
  grant, 500 otherwise.

SEE ALSO:
  - dto.go:    JSON shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// HANDLER
// =============================================================================

// Options configures the handler's policy knobs.
type Options struct {
	AllowBalanceOverride bool
	HoursPerDay          decimal.Decimal
}

// Handler holds all dependencies for the HTTP handlers.
type Handler struct {
	Store     pto.TxStore
	Engine    *pto.Engine
	Lifecycle *pto.Lifecycle
	Log       *logrus.Logger
}

// NewHandler wires the engine and lifecycle manager over the given store.
func NewHandler(store pto.TxStore, opts Options) *Handler {
	engine := pto.NewEngine(store)
	engine.AllowBalanceOverride = opts.AllowBalanceOverride
	if !opts.HoursPerDay.IsZero() {
		engine.HoursPerDay = opts.HoursPerDay
	}

	lc := pto.NewLifecycle(store)
	lc.Engine = engine

	return &Handler{
		Store:     store,
		Engine:    engine,
		Lifecycle: lc,
		Log:       logrus.StandardLogger(),
	}
}

// currentEmployeeID resolves the caller's employee identity.
// There is no real authentication; the id comes from the
// override_employee_id query parameter (used by the agent) or the
// X-Employee-ID header.
func currentEmployeeID(r *http.Request) pto.EmployeeID {
	if id := r.URL.Query().Get("override_employee_id"); id != "" {
		return pto.EmployeeID(id)
	}
	return pto.EmployeeID(r.Header.Get("X-Employee-ID"))
}

// =============================================================================
// EMPLOYEE-FACING ENDPOINTS
// =============================================================================

// GetMyBalance returns the caller's available PTO balance.
// GET /me/pto/balance
func (h *Handler) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := currentEmployeeID(r)
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "employee identity required", nil)
		return
	}

	asOf := time.Now().UTC()
	balance, err := h.Engine.ComputeBalance(r.Context(), employeeID, asOf)
	if err != nil {
		h.writeDomainError(w, "failed to compute balance", err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceDTO{
		EmployeeID:     string(employeeID),
		AvailableHours: balance.StringFixed(2),
		AsOf:           asOf.Format(time.RFC3339),
	})
}

// SubmitMyRequest creates a new pending request for the caller.
// POST /me/pto/requests
func (h *Handler) SubmitMyRequest(w http.ResponseWriter, r *http.Request) {
	employeeID := currentEmployeeID(r)
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "employee identity required", nil)
		return
	}

	var payload CreateRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	start, err := pto.ParseDate(payload.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date", err)
		return
	}
	end, err := pto.ParseDate(payload.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date", err)
		return
	}

	req, err := h.Lifecycle.CreateRequest(r.Context(), employeeID, start, end, payload.Notes)
	if err != nil {
		h.writeDomainError(w, "failed to create request", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestDTO(*req))
}

// ListMyRequests lists the caller's requests with optional filters.
// GET /me/pto/requests?status=&start_date=&end_date=&limit=&offset=
func (h *Handler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	employeeID := currentEmployeeID(r)
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "employee identity required", nil)
		return
	}

	filter, err := parseRequestFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err)
		return
	}
	filter.EmployeeID = &employeeID

	requests, err := h.Store.ListRequests(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list requests", err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// GetMyRequest returns one of the caller's requests.
// Foreign requests are reported as 404 to hide their existence.
// GET /me/pto/requests/{id}
func (h *Handler) GetMyRequest(w http.ResponseWriter, r *http.Request) {
	employeeID := currentEmployeeID(r)
	req, err := h.ownRequest(w, r, employeeID)
	if err != nil {
		return // response already written
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

// CancelMyRequest cancels one of the caller's requests.
// PATCH /me/pto/requests/{id}/cancel
func (h *Handler) CancelMyRequest(w http.ResponseWriter, r *http.Request) {
	employeeID := currentEmployeeID(r)
	req, err := h.ownRequest(w, r, employeeID)
	if err != nil {
		return
	}

	cancelled, err := h.Lifecycle.Cancel(r.Context(), req.ID)
	if err != nil {
		h.writeDomainError(w, "failed to cancel request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*cancelled))
}

// ownRequest loads the path request and checks ownership, writing the
// error response itself on failure.
func (h *Handler) ownRequest(w http.ResponseWriter, r *http.Request, employeeID pto.EmployeeID) (*pto.Request, error) {
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "employee identity required", nil)
		return nil, pto.ErrRequestNotFound
	}

	id := pto.RequestID(chi.URLParam(r, "id"))
	req, err := h.Store.GetRequest(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get request", err)
		return nil, err
	}
	if req == nil || req.EmployeeID != employeeID {
		writeError(w, http.StatusNotFound, "PTO request not found", nil)
		return nil, pto.ErrRequestNotFound
	}
	return req, nil
}

// ListHolidays returns company holidays, optionally date-filtered.
// GET /holidays?start_date=&end_date=
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	var from, to *pto.Date
	if s := r.URL.Query().Get("start_date"); s != "" {
		d, err := pto.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date", err)
			return
		}
		from = &d
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		d, err := pto.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date", err)
			return
		}
		to = &d
	}

	holidays, err := h.Store.ListHolidays(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = HolidayDTO{Date: hol.Date.String(), Name: hol.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN: EMPLOYEES
// =============================================================================

// CreateEmployee creates an employee and grants the initial allowance.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload CreateEmployeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	hireDate, err := pto.ParseDate(payload.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hire_date", err)
		return
	}

	allowance := decimal.Zero
	if payload.InitialAllowanceHours != "" {
		if allowance, err = decimal.NewFromString(payload.InitialAllowanceHours); err != nil {
			writeError(w, http.StatusBadRequest, "invalid initial_pto_allowance_hours", err)
			return
		}
	}
	if allowance.IsNegative() {
		writeError(w, http.StatusBadRequest, "initial_pto_allowance_hours must be >= 0", nil)
		return
	}

	existing, err := h.Store.GetEmployeeByEmail(r.Context(), payload.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check email", err)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already in use", nil)
		return
	}

	now := time.Now().UTC()
	emp := pto.Employee{
		ID:                    pto.EmployeeID(uuid.NewString()),
		Name:                  payload.Name,
		Email:                 payload.Email,
		HireDate:              hireDate,
		InitialAllowanceHours: allowance.Round(2),
		Active:                true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create employee", err)
		return
	}

	if allowance.IsPositive() {
		if _, err := h.Lifecycle.GrantInitialAllowance(r.Context(), emp.ID, allowance); err != nil {
			h.writeDomainError(w, "failed to grant initial allowance", err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// DeactivateEmployee flags an employee inactive. Employees referenced by
// ledger entries are never hard-deleted.
// POST /api/employees/{id}/deactivate
func (h *Handler) DeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	emp.Active = false
	emp.UpdatedAt = time.Now().UTC()
	if err := h.Store.SaveEmployee(r.Context(), *emp); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to deactivate employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// GetEmployeeBalance returns an employee's balance, optionally as of a
// given RFC3339 timestamp.
// GET /api/employees/{id}/balance?as_of=
func (h *Handler) GetEmployeeBalance(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	asOf := time.Now().UTC()
	if s := r.URL.Query().Get("as_of"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of (use RFC3339)", err)
			return
		}
		asOf = t.UTC()
	}

	balance, err := h.Engine.ComputeBalance(r.Context(), emp.ID, asOf)
	if err != nil {
		h.writeDomainError(w, "failed to compute balance", err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceDTO{
		EmployeeID:     string(emp.ID),
		AvailableHours: balance.StringFixed(2),
		AsOf:           asOf.Format(time.RFC3339),
	})
}

// GetEmployeeLedger returns the full audit trail for an employee.
// GET /api/employees/{id}/ledger
func (h *Handler) GetEmployeeLedger(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	entries, err := h.Store.ListEntries(r.Context(), emp.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list ledger entries", err)
		return
	}

	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toLedgerEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApplyAccrual appends an accrual credit for an employee.
// POST /api/employees/{id}/accrual
func (h *Handler) ApplyAccrual(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var payload AccrualPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	hours, err := decimal.NewFromString(payload.Hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hours", err)
		return
	}

	entry, err := h.Lifecycle.ApplyAccrual(r.Context(), emp.ID, hours, payload.Period)
	if err != nil {
		h.writeDomainError(w, "failed to apply accrual", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLedgerEntryDTO(*entry))
}

// ResetEmployeeBalance appends a reset entry bringing the balance to an
// exact target.
// POST /api/employees/{id}/reset
func (h *Handler) ResetEmployeeBalance(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var payload ResetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	target, err := decimal.NewFromString(payload.NewBalance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid new_balance", err)
		return
	}

	entry, err := h.Lifecycle.ResetBalance(r.Context(), emp.ID, target, payload.Reason)
	if err != nil {
		h.writeDomainError(w, "failed to reset balance", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLedgerEntryDTO(*entry))
}

// ApplyCorrection appends a signed manual correction entry.
// POST /api/employees/{id}/correction
func (h *Handler) ApplyCorrection(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var payload CorrectionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	hours, err := decimal.NewFromString(payload.Hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hours", err)
		return
	}

	entry, err := h.Lifecycle.Correct(r.Context(), emp.ID, hours, payload.Reason)
	if err != nil {
		h.writeDomainError(w, "failed to apply correction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLedgerEntryDTO(*entry))
}

func (h *Handler) loadEmployee(w http.ResponseWriter, r *http.Request) (*pto.Employee, bool) {
	id := pto.EmployeeID(chi.URLParam(r, "id"))
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get employee", err)
		return nil, false
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "employee not found", nil)
		return nil, false
	}
	return emp, true
}

// =============================================================================
// ADMIN: REQUESTS
// =============================================================================

// ListRequests lists requests across all employees with optional filters.
// GET /api/requests?status=&employee_id=
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRequestFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err)
		return
	}
	if id := r.URL.Query().Get("employee_id"); id != "" {
		eid := pto.EmployeeID(id)
		filter.EmployeeID = &eid
	}

	requests, err := h.Store.ListRequests(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

// ApproveRequest transitions a pending request to approved.
// POST /api/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	// Body is optional: an empty or missing body approves as "admin".
	var payload ApprovePayload
	_ = json.NewDecoder(r.Body).Decode(&payload)
	if payload.ApprovedBy == "" {
		payload.ApprovedBy = "admin"
	}

	id := pto.RequestID(chi.URLParam(r, "id"))
	req, err := h.Lifecycle.Approve(r.Context(), id, payload.ApprovedBy)
	if err != nil {
		h.writeDomainError(w, "failed to approve request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

// RejectRequest transitions a pending request to rejected.
// POST /api/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var payload RejectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	id := pto.RequestID(chi.URLParam(r, "id"))
	req, err := h.Lifecycle.Reject(r.Context(), id, payload.Reason)
	if err != nil {
		h.writeDomainError(w, "failed to reject request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

// =============================================================================
// ADMIN: HOLIDAYS AND SEED DATA
// =============================================================================

// CreateHoliday records a company holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var payload CreateHolidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	date, err := pto.ParseDate(payload.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid holiday_date", err)
		return
	}

	now := time.Now().UTC()
	hol := pto.Holiday{
		ID:        uuid.NewString(),
		Date:      date,
		Name:      payload.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Store.SaveHoliday(r.Context(), hol); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, HolidayDTO{Date: hol.Date.String(), Name: hol.Name})
}

// SeedDemoData loads the deterministic demo dataset.
// POST /api/seed
func (h *Handler) SeedDemoData(w http.ResponseWriter, r *http.Request) {
	summary, err := Seed(r.Context(), h.Store, h.Lifecycle)
	if err != nil {
		h.writeDomainError(w, "failed to seed demo data", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseRequestFilter(r *http.Request) (pto.RequestFilter, error) {
	filter := pto.RequestFilter{Limit: 20}
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		status := pto.RequestStatus(s)
		if !pto.ValidStatus(status) {
			return filter, errors.New("unknown status " + s)
		}
		filter.Status = &status
	}
	if s := q.Get("start_date"); s != "" {
		d, err := pto.ParseDate(s)
		if err != nil {
			return filter, err
		}
		filter.StartFrom = &d
	}
	if s := q.Get("end_date"); s != "" {
		d, err := pto.ParseDate(s)
		if err != nil {
			return filter, err
		}
		filter.StartTo = &d
	}
	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > 100 {
			return filter, errors.New("limit must be 1..100")
		}
		filter.Limit = limit
	}
	if s := q.Get("offset"); s != "" {
		offset, err := strconv.Atoi(s)
		if err != nil || offset < 0 {
			return filter, errors.New("offset must be >= 0")
		}
		filter.Offset = offset
	}
	return filter, nil
}

// writeDomainError maps domain error kinds to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case pto.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, pto.ErrInvalidTransition),
		errors.Is(err, pto.ErrInitialAlreadyGranted),
		errors.Is(err, pto.ErrConflict):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, pto.ErrValidation):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.log().WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func (h *Handler) log() *logrus.Logger {
	if h.Log != nil {
		return h.Log
	}
	return logrus.StandardLogger()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
