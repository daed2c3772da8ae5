/*
Package schedule implements the schedule-and-billing engine: date-range
expansion against weekend/holiday/existing-schedule exclusions, and the
ledger that creates and deletes per-day schedule records while debiting
and crediting the company balance.

KEY CONCEPTS:
  - Record:    One schedule day for a company, with its attendance roster.
               At most one record per (company, date).
  - Expansion: The classification of every date in a requested range into
               workday / off day / already scheduled. The three buckets
               partition the range: each date lands in exactly one.
  - Ledger:    The billable create/delete operations. Balance mutation,
               record mutations, and the audit entry commit as one unit.

SEE ALSO:
  - expander.go: Classification algorithm
  - ledger.go: Create/Delete/List operations
  - billing: Money, balance guards, audit entries
*/
package schedule

import (
	"github.com/warp/attendance-engine/billing"
	"github.com/warp/attendance-engine/calendar"
)

// =============================================================================
// RECORD - One schedule day for a company
// =============================================================================

// Record is a per-day schedule entry. (Username, Date) is a unique
// composite key; Day is the weekday name derived from Date.
type Record struct {
	Username   string
	Date       calendar.Date
	Day        string
	Attendance []string
}

// NewRecord creates an empty-attendance record for a workday.
func NewRecord(username string, date calendar.Date) Record {
	return Record{
		Username:   username,
		Date:       date,
		Day:        date.DayName(),
		Attendance: []string{},
	}
}

// =============================================================================
// EXPANSION - Range classification result
// =============================================================================

// OffDay is a weekend or holiday date excluded from billable creation.
// Detail carries the holiday description; empty for plain weekends.
type OffDay struct {
	Day    string
	Date   calendar.Date
	Detail string
}

// Expansion partitions a date range. Every date of the range appears in
// exactly one of the three buckets, in calendar order.
type Expansion struct {
	Workdays []calendar.Date
	OffDays  []OffDay
	Existing []calendar.Date
}

// TotalDays is the number of classified dates across all buckets.
func (e Expansion) TotalDays() int {
	return len(e.Workdays) + len(e.OffDays) + len(e.Existing)
}

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// CreateResult reports a successful schedule creation.
type CreateResult struct {
	Charge   billing.Money
	Created  []calendar.Date
	OffDays  []OffDay
	Existing []calendar.Date
}

// DeleteResult reports a successful schedule deletion. Charge is the
// amount credited back to the balance.
type DeleteResult struct {
	Charge  billing.Money
	Deleted []calendar.Date
}
