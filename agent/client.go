/*
client.go - HTTP client for the PTO tracker API

PURPOSE:
  Thin typed wrapper over the server's REST endpoints, used by the
  assistant's tools. Identity is passed per call as the
  override_employee_id query parameter, mirroring how the self-service
  routes resolve the caller.

SEE ALSO:
  - tools.go: The functions exposed to the model
  - api/dto.go: The wire shapes decoded here
*/
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/warp/pto-tracker/api"
)

// Client talks to a running PTO tracker server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Balance fetches the available balance for an employee.
func (c *Client) Balance(ctx context.Context, employeeID string) (*api.BalanceDTO, error) {
	var out api.BalanceDTO
	err := c.do(ctx, http.MethodGet, "/me/pto/balance", employeeID, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitRequest files a new PTO request for an employee.
func (c *Client) SubmitRequest(ctx context.Context, employeeID, startDate, endDate, notes string) (*api.RequestDTO, error) {
	payload := api.CreateRequestPayload{StartDate: startDate, EndDate: endDate, Notes: notes}
	var out api.RequestDTO
	err := c.do(ctx, http.MethodPost, "/me/pto/requests", employeeID, payload, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRequests lists an employee's requests, optionally by status.
func (c *Client) ListRequests(ctx context.Context, employeeID, status string) ([]api.RequestDTO, error) {
	path := "/me/pto/requests"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out []api.RequestDTO
	err := c.do(ctx, http.MethodGet, path, employeeID, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelRequest cancels one of an employee's requests.
func (c *Client) CancelRequest(ctx context.Context, employeeID, requestID string) (*api.RequestDTO, error) {
	path := fmt.Sprintf("/me/pto/requests/%s/cancel", url.PathEscape(requestID))
	var out api.RequestDTO
	err := c.do(ctx, http.MethodPatch, path, employeeID, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListHolidays lists company holidays, optionally date-filtered
// (YYYY-MM-DD, either bound may be empty).
func (c *Client) ListHolidays(ctx context.Context, startDate, endDate string) ([]api.HolidayDTO, error) {
	q := url.Values{}
	if startDate != "" {
		q.Set("start_date", startDate)
	}
	if endDate != "" {
		q.Set("end_date", endDate)
	}
	path := "/holidays"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []api.HolidayDTO
	err := c.do(ctx, http.MethodGet, path, "", nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// do performs one request, attaching the employee identity and decoding
// either the success body into out or the server's error envelope.
func (c *Client) do(ctx context.Context, method, path, employeeID string, payload, out any) error {
	u := c.BaseURL + path
	if employeeID != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + "override_employee_id=" + url.QueryEscape(employeeID)
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp api.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			if errResp.Details != "" {
				return fmt.Errorf("API returned %d: %s (%s)", resp.StatusCode, errResp.Error, errResp.Details)
			}
			return fmt.Errorf("API returned %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("API returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
