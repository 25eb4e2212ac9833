/*
handlers_test.go - HTTP surface tests over the in-memory store

CORE DESIGN:
- Full router via httptest, no network
- Error mapping: 400 validation, 404 not found / foreign ownership,
  409 invalid transition or duplicate initial grant
- Balances travel as fixed two-decimal strings
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pto-tracker/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := NewHandler(memory.New(), Options{})
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	h.Log = log
	h.Lifecycle.Log = log
	h.Engine.Log = log

	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, payload any) (*http.Response, []byte) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(buf)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), "body: %s", data)
	return v
}

// createTestEmployee provisions an employee with an 80h allowance and
// returns its id.
func createTestEmployee(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees", CreateEmployeePayload{
		Name:                  "Test Employee",
		Email:                 email,
		HireDate:              "2024-01-08",
		InitialAllowanceHours: "80",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	return decode[EmployeeDTO](t, body).ID
}

// =============================================================================
// EMPLOYEE ADMIN TESTS
// =============================================================================

func TestCreateEmployee_GrantsInitialAllowance(t *testing.T) {
	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/employees/"+id+"/balance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balance := decode[BalanceDTO](t, body)
	assert.Equal(t, "80.00", balance.AvailableHours)
	assert.Equal(t, id, balance.EmployeeID)
}

func TestCreateEmployee_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	createTestEmployee(t, srv, "dup@example.com")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/employees", CreateEmployeePayload{
		Name: "Other", Email: "dup@example.com", HireDate: "2024-01-08",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateEmployee_BadHireDate(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/employees", CreateEmployeePayload{
		Name: "Bad", Email: "bad@example.com", HireDate: "08/01/2024",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeactivateEmployee_BlocksNewRequests(t *testing.T) {
	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees/"+id+"/deactivate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[EmployeeDTO](t, body).Active)

	resp, _ = doJSON(t, http.MethodPost,
		srv.URL+"/me/pto/requests?override_employee_id="+id,
		CreateRequestPayload{StartDate: "2026-06-15", EndDate: "2026-06-19"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetEmployee_NotFound(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/employees/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// SELF-SERVICE REQUEST TESTS
// =============================================================================

func TestRequestFlow_SubmitApproveBalance(t *testing.T) {
	// GIVEN: An employee with 80h
	// WHEN: Submitting Mon-Fri and approving it
	// THEN: Request goes pending -> approved and 40h are debited

	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	resp, body := doJSON(t, http.MethodPost,
		srv.URL+"/me/pto/requests?override_employee_id="+id,
		CreateRequestPayload{StartDate: "2026-06-15", EndDate: "2026-06-19", Notes: "vacation"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	created := decode[RequestDTO](t, body)
	assert.Equal(t, "pending", created.Status)

	resp, body = doJSON(t, http.MethodPost,
		srv.URL+"/api/requests/"+created.ID+"/approve",
		ApprovePayload{ApprovedBy: "manager"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	assert.Equal(t, "approved", decode[RequestDTO](t, body).Status)

	resp, body = doJSON(t, http.MethodGet,
		srv.URL+"/me/pto/balance?override_employee_id="+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "40.00", decode[BalanceDTO](t, body).AvailableHours)
}

func TestSubmitRequest_MissingIdentity(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/me/pto/requests",
		CreateRequestPayload{StartDate: "2026-06-15", EndDate: "2026-06-19"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitRequest_IdentityViaHeader(t *testing.T) {
	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	buf, _ := json.Marshal(CreateRequestPayload{StartDate: "2026-06-15", EndDate: "2026-06-19"})
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/me/pto/requests", bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Employee-ID", id)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestSubmitRequest_Overlap(t *testing.T) {
	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	resp, _ := doJSON(t, http.MethodPost,
		srv.URL+"/me/pto/requests?override_employee_id="+id,
		CreateRequestPayload{StartDate: "2026-06-10", EndDate: "2026-06-12"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost,
		srv.URL+"/me/pto/requests?override_employee_id="+id,
		CreateRequestPayload{StartDate: "2026-06-12", EndDate: "2026-06-16"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "overlap")
}

func TestSubmitRequest_InsufficientBalance(t *testing.T) {
	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	// 80h available; three full weeks cost 120h.
	resp, _ := doJSON(t, http.MethodPost,
		srv.URL+"/me/pto/requests?override_employee_id="+id,
		CreateRequestPayload{StartDate: "2026-06-01", EndDate: "2026-06-19"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRequest_ForeignOwnershipHiddenAs404(t *testing.T) {
	srv := newTestServer(t)
	owner := createTestEmployee(t, srv, "ada@example.com")
	intruder := createTestEmployee(t, srv, "zoe@example.com")

	_, body := doJSON(t, http.MethodPost,
		srv.URL+"/me/pto/requests?override_employee_id="+owner,
		CreateRequestPayload{StartDate: "2026-06-15", EndDate: "2026-06-19"})
	created := decode[RequestDTO](t, body)

	resp, _ := doJSON(t, http.MethodGet,
		srv.URL+"/me/pto/requests/"+created.ID+"?override_employee_id="+intruder, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet,
		srv.URL+"/me/pto/requests/"+created.ID+"?override_employee_id="+owner, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCancelRequest_ApprovedRefunds(t *testing.T) {
	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	_, body := doJSON(t, http.MethodPost,
		srv.URL+"/me/pto/requests?override_employee_id="+id,
		CreateRequestPayload{StartDate: "2026-06-15", EndDate: "2026-06-19"})
	created := decode[RequestDTO](t, body)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/requests/"+created.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPatch,
		srv.URL+"/me/pto/requests/"+created.ID+"/cancel?override_employee_id="+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	assert.Equal(t, "cancelled", decode[RequestDTO](t, body).Status)

	_, body = doJSON(t, http.MethodGet,
		srv.URL+"/me/pto/balance?override_employee_id="+id, nil)
	assert.Equal(t, "80.00", decode[BalanceDTO](t, body).AvailableHours)
}

func TestRejectThenCancel_Conflict(t *testing.T) {
	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	_, body := doJSON(t, http.MethodPost,
		srv.URL+"/me/pto/requests?override_employee_id="+id,
		CreateRequestPayload{StartDate: "2026-06-15", EndDate: "2026-06-19"})
	created := decode[RequestDTO](t, body)

	resp, _ := doJSON(t, http.MethodPost,
		srv.URL+"/api/requests/"+created.ID+"/reject", RejectPayload{Reason: "blackout"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPatch,
		srv.URL+"/me/pto/requests/"+created.ID+"/cancel?override_employee_id="+id, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestListMyRequests_StatusFilter(t *testing.T) {
	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	for i, window := range [][2]string{
		{"2026-06-15", "2026-06-16"},
		{"2026-07-06", "2026-07-07"},
	} {
		resp, body := doJSON(t, http.MethodPost,
			srv.URL+"/me/pto/requests?override_employee_id="+id,
			CreateRequestPayload{StartDate: window[0], EndDate: window[1]})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "request %d: %s", i, body)
	}

	resp, body := doJSON(t, http.MethodGet,
		srv.URL+"/me/pto/requests?override_employee_id="+id+"&status=pending", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]RequestDTO](t, body), 2)

	resp, _ = doJSON(t, http.MethodGet,
		srv.URL+"/me/pto/requests?override_employee_id="+id+"&status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// LEDGER ADMIN TESTS
// =============================================================================

func TestLedgerEndpoints_AccrualResetCorrection(t *testing.T) {
	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	resp, body := doJSON(t, http.MethodPost,
		srv.URL+"/api/employees/"+id+"/accrual",
		AccrualPayload{Hours: "10", Period: "monthly accrual 2026-08"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	resp, body = doJSON(t, http.MethodPost,
		srv.URL+"/api/employees/"+id+"/correction",
		CorrectionPayload{Hours: "-2.25", Reason: "timesheet fix"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

	_, body = doJSON(t, http.MethodGet, srv.URL+"/api/employees/"+id+"/balance", nil)
	assert.Equal(t, "87.75", decode[BalanceDTO](t, body).AvailableHours)

	resp, body = doJSON(t, http.MethodPost,
		srv.URL+"/api/employees/"+id+"/reset",
		ResetPayload{NewBalance: "120", Reason: "annual reset"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entry := decode[LedgerEntryDTO](t, body)
	assert.Equal(t, "reset", entry.TransactionType)
	assert.Equal(t, "32.25", entry.ChangeHours)

	_, body = doJSON(t, http.MethodGet, srv.URL+"/api/employees/"+id+"/ledger", nil)
	entries := decode[[]LedgerEntryDTO](t, body)
	assert.Len(t, entries, 4) // initial, accrual, correction, reset
}

func TestApplyAccrual_BadHours(t *testing.T) {
	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	resp, body := doJSON(t, http.MethodPost,
		srv.URL+"/api/employees/"+id+"/accrual",
		AccrualPayload{Hours: "not-a-number", Period: "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", body)
}

// =============================================================================
// HOLIDAY TESTS
// =============================================================================

func TestHolidays_CreateAndRangeList(t *testing.T) {
	srv := newTestServer(t)

	for _, h := range []CreateHolidayPayload{
		{Date: "2026-01-01", Name: "New Year's Day"},
		{Date: "2026-07-04", Name: "Independence Day"},
		{Date: "2026-12-25", Name: "Christmas Day"},
	} {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/holidays", h)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodGet,
		srv.URL+"/holidays?start_date=2026-06-01&end_date=2026-08-31", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	holidays := decode[[]HolidayDTO](t, body)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Independence Day", holidays[0].Name)
}

func TestHolidays_ReduceRequestCost(t *testing.T) {
	srv := newTestServer(t)
	id := createTestEmployee(t, srv, "ada@example.com")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/holidays",
		CreateHolidayPayload{Date: "2026-06-17", Name: "Company Day"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body := doJSON(t, http.MethodPost,
		srv.URL+"/me/pto/requests?override_employee_id="+id,
		CreateRequestPayload{StartDate: "2026-06-15", EndDate: "2026-06-19"})
	created := decode[RequestDTO](t, body)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/requests/"+created.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = doJSON(t, http.MethodGet,
		srv.URL+"/me/pto/balance?override_employee_id="+id, nil)
	// 80 - 4 workdays * 8h
	assert.Equal(t, "48.00", decode[BalanceDTO](t, body).AvailableHours)
}

// =============================================================================
// SEED TESTS
// =============================================================================

func TestSeed_Idempotent(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/seed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	first := decode[SeedSummary](t, body)
	assert.Equal(t, 4, first.Employees)
	assert.Equal(t, 6, first.Requests)
	assert.Greater(t, first.Holidays, 100)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/seed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	second := decode[SeedSummary](t, body)
	assert.Zero(t, second.Employees)
	assert.Zero(t, second.Requests)
}

func TestSeed_LedgersObeyLifecycleRules(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/seed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := doJSON(t, http.MethodGet, srv.URL+"/api/employees", nil)
	employees := decode[[]EmployeeDTO](t, body)
	require.Len(t, employees, 4)

	for _, emp := range employees {
		resp, body := doJSON(t, http.MethodGet,
			fmt.Sprintf("%s/api/employees/%s/ledger", srv.URL, emp.ID), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		entries := decode[[]LedgerEntryDTO](t, body)

		initials := 0
		for _, e := range entries {
			if e.TransactionType == "initial" {
				initials++
			}
		}
		assert.Equal(t, 1, initials, "employee %s must have exactly one initial grant", emp.Email)
	}
}
