/*
validate.go - Date-range validation for ledger operations

PURPOSE:
  Creation ranges are constrained to [tomorrow, Dec 31 of the current
  year]: schedules are prepaid, so they cannot start today or in the
  past, and the billing year closes at year end. Deletion ranges only
  need to be well-formed. Violations are billing.ValidationError values
  with human-readable messages; nothing is mutated.
*/
package schedule

import (
	"github.com/warp/attendance-engine/billing"
	"github.com/warp/attendance-engine/calendar"
)

func parseRange(startDate, endDate string) (calendar.Range, error) {
	if startDate == "" {
		return calendar.Range{}, billing.Invalidf("start_date is required")
	}
	if endDate == "" {
		return calendar.Range{}, billing.Invalidf("end_date is required")
	}
	start, err := calendar.ParseDate(startDate)
	if err != nil {
		return calendar.Range{}, billing.Invalidf("start_date must be in the format YYYY-MM-DD")
	}
	end, err := calendar.ParseDate(endDate)
	if err != nil {
		return calendar.Range{}, billing.Invalidf("end_date must be in the format YYYY-MM-DD")
	}
	if end.Before(start) {
		return calendar.Range{}, billing.Invalidf("end_date must be greater than or equal to start_date")
	}
	return calendar.NewRange(start, end), nil
}

// parseCreateRange additionally bounds the range to [tomorrow, Dec 31
// of today's year].
func parseCreateRange(startDate, endDate string, today calendar.Date) (calendar.Range, error) {
	r, err := parseRange(startDate, endDate)
	if err != nil {
		return calendar.Range{}, err
	}

	tomorrow := today.AddDays(1)
	yearEnd := calendar.EndOfYear(today.Year())

	if r.Start.Before(tomorrow) {
		return calendar.Range{}, billing.Invalidf("start_date must be greater than or equal to %s", tomorrow)
	}
	if r.Start.After(yearEnd) {
		return calendar.Range{}, billing.Invalidf("start_date must be less than or equal to %s", yearEnd)
	}
	if r.End.After(yearEnd) {
		return calendar.Range{}, billing.Invalidf("end_date must be less than or equal to %s", yearEnd)
	}
	return r, nil
}

// ListFilter narrows and paginates schedule listings. Start and end are
// optional but must be provided together; limit defaults to 10. Offset
// is a 1-based page number; zero means unset (first page).
type ListFilter struct {
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

func (f ListFilter) rangeAndPage() (*calendar.Range, int, int, error) {
	var r *calendar.Range
	switch {
	case f.StartDate != "" && f.EndDate != "":
		parsed, err := parseRange(f.StartDate, f.EndDate)
		if err != nil {
			return nil, 0, 0, err
		}
		r = &parsed
	case f.StartDate != "" || f.EndDate != "":
		return nil, 0, 0, billing.Invalidf("both start_date and end_date must be provided together, or neither")
	}

	limit := f.Limit
	if limit == 0 {
		limit = 10
	}
	if limit < 1 {
		return nil, 0, 0, billing.Invalidf("limit must be greater than or equal to 1")
	}
	// zero is "unset"; anything else must be a valid 1-based page
	if f.Offset != 0 && f.Offset < 1 {
		return nil, 0, 0, billing.Invalidf("offset must be greater than or equal to 1")
	}
	if f.Offset > 0 && f.Limit == 0 {
		return nil, 0, 0, billing.Invalidf("limit is required when offset is provided")
	}
	return r, limit, f.Offset, nil
}
