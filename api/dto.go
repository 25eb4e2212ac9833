/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes for the HTTP surface, decoupled from the domain types.
  Dates travel as YYYY-MM-DD strings, hours as fixed two-decimal strings
  to avoid float drift on the wire.

NAMING CONVENTION:
  - *DTO:     Response types returned to clients
  - *Payload: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID                    string `json:"employee_id"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	HireDate              string `json:"hire_date"`
	InitialAllowanceHours string `json:"initial_pto_allowance_hours"`
	Active                bool   `json:"is_active"`
	CreatedAt             string `json:"created_at,omitempty"`
	UpdatedAt             string `json:"updated_at,omitempty"`
}

type CreateEmployeePayload struct {
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	HireDate              string `json:"hire_date"`
	InitialAllowanceHours string `json:"initial_pto_allowance_hours"`
}

func toEmployeeDTO(e pto.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:                    string(e.ID),
		Name:                  e.Name,
		Email:                 e.Email,
		HireDate:              e.HireDate.String(),
		InitialAllowanceHours: e.InitialAllowanceHours.StringFixed(2),
		Active:                e.Active,
		CreatedAt:             e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             e.UpdatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// BALANCE
// =============================================================================

type BalanceDTO struct {
	EmployeeID     string `json:"employee_id"`
	AvailableHours string `json:"available_hours"`
	AsOf           string `json:"as_of"`
}

// =============================================================================
// REQUESTS
// =============================================================================

type RequestDTO struct {
	ID          string `json:"request_id"`
	EmployeeID  string `json:"employee_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
	RequestedAt string `json:"requested_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type CreateRequestPayload struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Notes     string `json:"notes,omitempty"`
}

type ApprovePayload struct {
	ApprovedBy string `json:"approved_by"`
}

type RejectPayload struct {
	Reason string `json:"reason"`
}

func toRequestDTO(r pto.Request) RequestDTO {
	return RequestDTO{
		ID:          string(r.ID),
		EmployeeID:  string(r.EmployeeID),
		StartDate:   r.StartDate.String(),
		EndDate:     r.EndDate.String(),
		Status:      string(r.Status),
		Notes:       r.Notes,
		RequestedAt: r.RequestedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
}

func toRequestDTOs(requests []pto.Request) []RequestDTO {
	dtos := make([]RequestDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toRequestDTO(r)
	}
	return dtos
}

// =============================================================================
// HOLIDAYS
// =============================================================================

type HolidayDTO struct {
	Date string `json:"holiday_date"`
	Name string `json:"holiday_name"`
}

type CreateHolidayPayload struct {
	Date string `json:"holiday_date"`
	Name string `json:"holiday_name"`
}

// =============================================================================
// LEDGER
// =============================================================================

type LedgerEntryDTO struct {
	ID              string `json:"ledger_id"`
	EmployeeID      string `json:"employee_id"`
	RequestID       string `json:"request_id,omitempty"`
	ChangeHours     string `json:"change_hours"`
	TransactionType string `json:"transaction_type"`
	Description     string `json:"description,omitempty"`
	TransactionDate string `json:"transaction_date"`
}

type AccrualPayload struct {
	Hours  string `json:"hours"`
	Period string `json:"period"`
}

type ResetPayload struct {
	NewBalance string `json:"new_balance"`
	Reason     string `json:"reason"`
}

type CorrectionPayload struct {
	Hours  string `json:"hours"`
	Reason string `json:"reason"`
}

func toLedgerEntryDTO(e pto.LedgerEntry) LedgerEntryDTO {
	dto := LedgerEntryDTO{
		ID:              string(e.ID),
		EmployeeID:      string(e.EmployeeID),
		ChangeHours:     e.ChangeHours.StringFixed(2),
		TransactionType: string(e.Type),
		Description:     e.Description,
		TransactionDate: e.TransactionDate.Format(time.RFC3339),
	}
	if e.RequestID != nil {
		dto.RequestID = string(*e.RequestID)
	}
	return dto
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
