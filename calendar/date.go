/*
Package calendar provides day-granularity dates and holiday lookup.

PURPOSE:
  Scheduling works in whole calendar days: a schedule exists for a date,
  not an instant. This package wraps time.Time into a Date type that only
  ever carries day precision (UTC midnight), so comparisons and range
  iteration cannot be skewed by clock components or timezones.

KEY CONCEPTS:
  - Date:  A single calendar day. Formats as "2006-01-02".
  - Range: An inclusive [start, end] span of days.
  - Holiday / Source: Public-holiday lookup (see holiday.go).

SEE ALSO:
  - holiday.go: Holiday entries and the external calendar source
  - dayoff/client.go: HTTP adapter for the public day-off API
*/
package calendar

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - A single calendar day (UTC, day granularity)
// =============================================================================

const dateLayout = "2006-01-02"

type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date ("2006-01-02").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

func EndOfYear(year int) Date {
	return NewDate(year, time.December, 31)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) DayName() string       { return d.t.Weekday().String() }
func (d Date) IsZero() bool          { return d.t.IsZero() }

func (d Date) IsWeekend() bool {
	wd := d.t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.t.Format(dateLayout) }

// =============================================================================
// RANGE - Inclusive [start, end] span of days
// =============================================================================

type Range struct {
	Start Date
	End   Date
}

func NewRange(start, end Date) Range { return Range{Start: start, End: end} }

func (r Range) Valid() bool { return r.Start.BeforeOrEqual(r.End) }

// Len returns the number of days in the range, inclusive of both ends.
func (r Range) Len() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.t.Sub(r.Start.t).Hours()/24) + 1
}

// Days enumerates every date in the range in calendar order.
func (r Range) Days() []Date {
	if !r.Valid() {
		return nil
	}
	days := make([]Date, 0, r.Len())
	for d := r.Start; d.BeforeOrEqual(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Years returns the distinct calendar years the range spans, in order.
func (r Range) Years() []int {
	if !r.Valid() {
		return nil
	}
	years := make([]int, 0, 2)
	for y := r.Start.Year(); y <= r.End.Year(); y++ {
		years = append(years, y)
	}
	return years
}

func (r Range) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.Start, r.End) }
