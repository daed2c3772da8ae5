/*
expander.go - Date-range expansion and per-day classification

PURPOSE:
  Given an inclusive date range, the set of holidays for the years it
  spans, and the dates already scheduled, classify every date as exactly
  one of:

    off day   - Saturday/Sunday or a public holiday (holiday wins the
                detail text when both apply)
    existing  - a schedule record already exists for the date
    workday   - everything else; these are the billable dates

  Classification precedence is off > existing > workday, so the buckets
  are disjoint and cover the range. The expansion is pure: callers fetch
  holidays and existing dates up front, which keeps the holiday call out
  of the store transaction.

DETERMINISM:
  Output order follows calendar order of the input range; identical
  inputs always produce identical expansions.
*/
package schedule

import (
	"github.com/warp/attendance-engine/calendar"
)

// Expand classifies every date in the range. holidays must cover every
// year the range spans; scheduled holds the dates that already have a
// record for the company.
func Expand(r calendar.Range, holidays []calendar.Holiday, scheduled []calendar.Date) Expansion {
	holidayByDate := make(map[string]calendar.Holiday, len(holidays))
	for _, h := range holidays {
		holidayByDate[h.Date.String()] = h
	}
	scheduledSet := make(map[string]bool, len(scheduled))
	for _, d := range scheduled {
		scheduledSet[d.String()] = true
	}

	var exp Expansion
	for _, date := range r.Days() {
		holiday, isHoliday := holidayByDate[date.String()]

		switch {
		case date.IsWeekend() || isHoliday:
			exp.OffDays = append(exp.OffDays, OffDay{
				Day:    date.DayName(),
				Date:   date,
				Detail: holiday.Description,
			})
		case scheduledSet[date.String()]:
			exp.Existing = append(exp.Existing, date)
		default:
			exp.Workdays = append(exp.Workdays, date)
		}
	}
	return exp
}
