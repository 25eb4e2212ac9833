/*
tools.go - Tool functions exposed to the HR assistant model

PURPOSE:
  The function library the assistant can call: PTO balance, request
  submission and management, the holiday calendar, and small date
  helpers so the model never guesses weekdays or offsets.

  Every API-backed tool requires employee_id explicitly; the system
  prompt tells the model to ask the user for it rather than invent one.

SEE ALSO:
  - client.go: The HTTP calls behind these tools
  - assistant.go: Wires the library into the chat
*/
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Tools builds the full function library over an API client.
func Tools(c *Client) []Function {
	return []Function{
		getBalanceTool(c),
		submitRequestTool(c),
		listRequestsTool(c),
		cancelRequestTool(c),
		listHolidaysTool(c),
		currentDateTool(),
		dayOfWeekTool(),
		dateAddTool(),
	}
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}

func requiredArg(args map[string]any, key string) (string, error) {
	s, err := stringArg(args, key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("argument %q is required", key)
	}
	return s, nil
}

func dateSchema(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeString,
		Description: description + " Format: YYYY-MM-DD.",
	}
}

func getBalanceTool(c *Client) Function {
	const name = "get_pto_balance"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Retrieves the current available PTO balance in hours for an employee.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"employee_id": {Type: genai.TypeString, Description: "The employee's ID."},
				},
				Required: []string{"employee_id"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A sentence stating the available hours.",
			},
		},
		Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			employeeID, err := requiredArg(args, "employee_id")
			if err != nil {
				return failure(id, name, err)
			}
			balance, err := c.Balance(ctx, employeeID)
			if err != nil {
				return failure(id, name, err)
			}
			out := fmt.Sprintf("Employee %s has %s hours of PTO available as of %s.",
				employeeID, balance.AvailableHours, balance.AsOf)
			return success(id, name, out)
		},
	}
}

func submitRequestTool(c *Client) Function {
	const name = "submit_pto_request"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `Submits a new PTO request for an employee. The request starts in
pending status and still needs manager approval. Weekends and company
holidays inside the range cost no hours.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"employee_id": {Type: genai.TypeString, Description: "The employee's ID."},
					"start_date":  dateSchema("First day off, inclusive."),
					"end_date":    dateSchema("Last day off, inclusive."),
					"notes":       {Type: genai.TypeString, Description: "Optional free-form note for the approver."},
				},
				Required: []string{"employee_id", "start_date", "end_date"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "Confirmation with the new request's ID and status.",
			},
		},
		Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			employeeID, err := requiredArg(args, "employee_id")
			if err != nil {
				return failure(id, name, err)
			}
			startDate, err := requiredArg(args, "start_date")
			if err != nil {
				return failure(id, name, err)
			}
			endDate, err := requiredArg(args, "end_date")
			if err != nil {
				return failure(id, name, err)
			}
			notes, err := stringArg(args, "notes")
			if err != nil {
				return failure(id, name, err)
			}

			req, err := c.SubmitRequest(ctx, employeeID, startDate, endDate, notes)
			if err != nil {
				return failure(id, name, err)
			}
			out := fmt.Sprintf("Submitted PTO request %s for %s to %s. Status is %s.",
				req.ID, req.StartDate, req.EndDate, req.Status)
			return success(id, name, out)
		},
	}
}

func listRequestsTool(c *Client) Function {
	const name = "list_pto_requests"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Lists an employee's PTO requests, optionally filtered by status (pending, approved, rejected, cancelled).",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"employee_id": {Type: genai.TypeString, Description: "The employee's ID."},
					"status":      {Type: genai.TypeString, Description: "Optional status filter."},
				},
				Required: []string{"employee_id"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A line per request with ID, dates, and status.",
			},
		},
		Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			employeeID, err := requiredArg(args, "employee_id")
			if err != nil {
				return failure(id, name, err)
			}
			status, err := stringArg(args, "status")
			if err != nil {
				return failure(id, name, err)
			}

			requests, err := c.ListRequests(ctx, employeeID, status)
			if err != nil {
				return failure(id, name, err)
			}
			if len(requests) == 0 {
				return success(id, name, "No PTO requests found.")
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Found %d request(s):\n", len(requests))
			for _, r := range requests {
				fmt.Fprintf(&b, "- ID: %s, Dates: %s to %s, Status: %s\n", r.ID, r.StartDate, r.EndDate, r.Status)
			}
			return success(id, name, strings.TrimRight(b.String(), "\n"))
		},
	}
}

func cancelRequestTool(c *Client) Function {
	const name = "cancel_pto_request"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `Cancels one of an employee's PTO requests. Pending requests are
simply withdrawn; cancelling an approved request refunds the debited hours.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"employee_id": {Type: genai.TypeString, Description: "The employee's ID."},
					"request_id":  {Type: genai.TypeString, Description: "The ID of the request to cancel."},
				},
				Required: []string{"employee_id", "request_id"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "Confirmation of the cancellation.",
			},
		},
		Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			employeeID, err := requiredArg(args, "employee_id")
			if err != nil {
				return failure(id, name, err)
			}
			requestID, err := requiredArg(args, "request_id")
			if err != nil {
				return failure(id, name, err)
			}

			req, err := c.CancelRequest(ctx, employeeID, requestID)
			if err != nil {
				return failure(id, name, err)
			}
			out := fmt.Sprintf("Cancelled PTO request %s. Status is now %s.", req.ID, req.Status)
			return success(id, name, out)
		},
	}
}

func listHolidaysTool(c *Client) Function {
	const name = "list_holidays"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Lists company holidays, optionally within a date range. Use this instead of guessing holiday dates.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_date": dateSchema("Optional lower bound, inclusive."),
					"end_date":   dateSchema("Optional upper bound, inclusive."),
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A line per holiday with date and name.",
			},
		},
		Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			startDate, err := stringArg(args, "start_date")
			if err != nil {
				return failure(id, name, err)
			}
			endDate, err := stringArg(args, "end_date")
			if err != nil {
				return failure(id, name, err)
			}

			holidays, err := c.ListHolidays(ctx, startDate, endDate)
			if err != nil {
				return failure(id, name, err)
			}
			if len(holidays) == 0 {
				return success(id, name, "No holidays found.")
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Found %d holiday(s):\n", len(holidays))
			for _, h := range holidays {
				fmt.Fprintf(&b, "- %s: %s\n", h.Date, h.Name)
			}
			return success(id, name, strings.TrimRight(b.String(), "\n"))
		},
	}
}

func currentDateTool() Function {
	const name = "get_current_date"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Returns today's date. Use this to resolve relative dates like 'next Friday'.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "Today's date and weekday.",
			},
		},
		Fn: func(_ context.Context, id string, _ map[string]any) *genai.FunctionResponse {
			now := time.Now()
			return success(id, name, fmt.Sprintf("Today is %s, %s.", now.Weekday(), now.Format("2006-01-02")))
		},
	}
}

func dayOfWeekTool() Function {
	const name = "get_day_of_week"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Returns the day of the week for a given date.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date": dateSchema("The date to check."),
				},
				Required: []string{"date"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The weekday name.",
			},
		},
		Fn: func(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
			s, err := requiredArg(args, "date")
			if err != nil {
				return failure(id, name, err)
			}
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return failure(id, name, fmt.Errorf("date must be YYYY-MM-DD: %w", err))
			}
			return success(id, name, t.Weekday().String())
		},
	}
}

func dateAddTool() Function {
	const name = "date_add"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Adds days to a date. Use a negative number of days to subtract.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date":     dateSchema("The starting date."),
					"num_days": {Type: genai.TypeInteger, Description: "Days to add (negative to subtract)."},
				},
				Required: []string{"date", "num_days"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The resulting date in YYYY-MM-DD.",
			},
		},
		Fn: func(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
			s, err := requiredArg(args, "date")
			if err != nil {
				return failure(id, name, err)
			}
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return failure(id, name, fmt.Errorf("date must be YYYY-MM-DD: %w", err))
			}
			n, ok := args["num_days"].(float64)
			if !ok {
				return failure(id, name, fmt.Errorf("argument \"num_days\" must be a number, got %T", args["num_days"]))
			}
			return success(id, name, t.AddDate(0, 0, int(n)).Format("2006-01-02"))
		},
	}
}
