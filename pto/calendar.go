/*
calendar.go - Dates and business-hour arithmetic

PURPOSE:
  Day-granularity Date type plus the working-time math used by request
  validation: which days count as business days (Mon-Fri, not a recorded
  holiday) and how many hours a date range costs.

BUSINESS HOURS:
  businessHours(range) = workdays in [start, end] x HoursPerDay.
  Weekends and holiday-table dates are excluded. The range is closed on
  both ends, so a single-day request costs exactly one workday.

SEE ALSO:
  - engine.go: Uses Calendar for validation and debit amounts
*/
package pto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Day granularity, always UTC
// =============================================================================

// Date is a calendar date without a time-of-day component.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date (in UTC).
func DateOf(t time.Time) Date {
	return NewDate(t.UTC().Year(), t.UTC().Month(), t.UTC().Day())
}

func Today() Date { return DateOf(time.Now()) }

// ParseDate parses the wire format YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) Time() time.Time       { return d.t }
func (d Date) String() string        { return d.t.Format("2006-01-02") }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// RangesOverlap is the standard closed-interval intersection test:
// [s1,e1] and [s2,e2] overlap iff s1 <= e2 AND s2 <= e1.
func RangesOverlap(s1, e1, s2, e2 Date) bool {
	return !s1.After(e2) && !s2.After(e1)
}

// =============================================================================
// CALENDAR - Workday and business-hour computation
// =============================================================================

// Calendar answers "how many working hours does this range cost"
// against a fixed holiday set.
type Calendar struct {
	HoursPerDay decimal.Decimal
	holidays    map[string]bool // keyed by Date.String()
}

// DefaultHoursPerDay is the standard 8-hour workday.
var DefaultHoursPerDay = decimal.NewFromInt(8)

func NewCalendar(hoursPerDay decimal.Decimal, holidays []Holiday) *Calendar {
	set := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		set[h.Date.String()] = true
	}
	if hoursPerDay.IsZero() {
		hoursPerDay = DefaultHoursPerDay
	}
	return &Calendar{HoursPerDay: hoursPerDay, holidays: set}
}

// IsWorkday reports whether d is a business day: Mon-Fri and not a holiday.
func (c *Calendar) IsWorkday(d Date) bool {
	if d.IsWeekend() {
		return false
	}
	return !c.holidays[d.String()]
}

// BusinessDays counts workdays in the closed range [start, end].
// Returns 0 when end < start.
func (c *Calendar) BusinessDays(start, end Date) int {
	days := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		if c.IsWorkday(d) {
			days++
		}
	}
	return days
}

// BusinessHours returns BusinessDays x HoursPerDay with two-decimal scale.
func (c *Calendar) BusinessHours(start, end Date) decimal.Decimal {
	return c.HoursPerDay.Mul(decimal.NewFromInt(int64(c.BusinessDays(start, end)))).Round(2)
}
