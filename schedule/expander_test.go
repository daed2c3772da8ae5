package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/calendar"
	"github.com/warp/attendance-engine/schedule"
)

func date(day int) calendar.Date {
	return calendar.NewDate(2025, time.June, day)
}

func weekRange() calendar.Range {
	// Mon 2025-06-02 .. Sun 2025-06-08
	return calendar.NewRange(date(2), date(8))
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestExpand_PlainWeek(t *testing.T) {
	// GIVEN: A Monday-to-Sunday week with no holidays and nothing scheduled
	// WHEN: Expanding the range
	// THEN: Mon-Fri are workdays, Sat+Sun are off days

	exp := schedule.Expand(weekRange(), nil, nil)

	require.Len(t, exp.Workdays, 5)
	assert.Equal(t, "2025-06-02", exp.Workdays[0].String())
	assert.Equal(t, "2025-06-06", exp.Workdays[4].String())

	require.Len(t, exp.OffDays, 2)
	assert.Equal(t, "Saturday", exp.OffDays[0].Day)
	assert.Equal(t, "Sunday", exp.OffDays[1].Day)
	assert.Empty(t, exp.OffDays[0].Detail, "plain weekends carry no detail")

	assert.Empty(t, exp.Existing)
}

func TestExpand_HolidayOnWeekday(t *testing.T) {
	// GIVEN: Friday 2025-06-06 is a public holiday
	// WHEN: Expanding the week
	// THEN: The Friday moves from workdays to off days with its description

	holidays := []calendar.Holiday{
		{Date: date(6), Description: "Hari Raya Idul Adha"},
	}

	exp := schedule.Expand(weekRange(), holidays, nil)

	require.Len(t, exp.Workdays, 4)
	require.Len(t, exp.OffDays, 3)
	assert.Equal(t, "2025-06-06", exp.OffDays[0].Date.String())
	assert.Equal(t, "Friday", exp.OffDays[0].Day)
	assert.Equal(t, "Hari Raya Idul Adha", exp.OffDays[0].Detail)
}

func TestExpand_HolidayOnWeekend_DetailWins(t *testing.T) {
	// A holiday falling on a Saturday is one off day, not two, and the
	// holiday description wins over the bare weekend.
	holidays := []calendar.Holiday{
		{Date: date(7), Description: "Tahun Baru Islam"},
	}

	exp := schedule.Expand(weekRange(), holidays, nil)

	require.Len(t, exp.OffDays, 2)
	assert.Equal(t, "Tahun Baru Islam", exp.OffDays[0].Detail)
	assert.Empty(t, exp.OffDays[1].Detail)
}

func TestExpand_ExistingSchedules(t *testing.T) {
	scheduled := []calendar.Date{date(3), date(4)}

	exp := schedule.Expand(weekRange(), nil, scheduled)

	require.Len(t, exp.Workdays, 3)
	require.Len(t, exp.Existing, 2)
	assert.Equal(t, "2025-06-03", exp.Existing[0].String())
	assert.Equal(t, "2025-06-04", exp.Existing[1].String())
}

func TestExpand_ExistingOnOffDay_OffWins(t *testing.T) {
	// A date that is both scheduled and a weekend classifies as off, so the
	// buckets stay disjoint.
	scheduled := []calendar.Date{date(7)}

	exp := schedule.Expand(weekRange(), nil, scheduled)

	assert.Empty(t, exp.Existing)
	require.Len(t, exp.OffDays, 2)
}

func TestExpand_PartitionsRange(t *testing.T) {
	// Every date lands in exactly one bucket regardless of overlap between
	// holidays, weekends, and existing schedules.
	holidays := []calendar.Holiday{
		{Date: date(2), Description: "Hari Lahir Pancasila (substitute)"},
		{Date: date(8), Description: "Tahun Baru Islam"},
	}
	scheduled := []calendar.Date{date(2), date(3), date(7)}

	exp := schedule.Expand(weekRange(), holidays, scheduled)

	assert.Equal(t, weekRange().Len(), exp.TotalDays())

	seen := map[string]int{}
	for _, d := range exp.Workdays {
		seen[d.String()]++
	}
	for _, d := range exp.OffDays {
		seen[d.Date.String()]++
	}
	for _, d := range exp.Existing {
		seen[d.String()]++
	}
	for _, day := range weekRange().Days() {
		assert.Equal(t, 1, seen[day.String()], "date %s must appear exactly once", day)
	}
}

func TestExpand_AllExcluded(t *testing.T) {
	// Weekend-only range yields zero workdays; the ledger turns this into
	// a rejection before anything is charged.
	r := calendar.NewRange(date(7), date(8))

	exp := schedule.Expand(r, nil, nil)

	assert.Empty(t, exp.Workdays)
	assert.Len(t, exp.OffDays, 2)
}

func TestExpand_Deterministic(t *testing.T) {
	holidays := []calendar.Holiday{{Date: date(6), Description: "Holiday"}}
	scheduled := []calendar.Date{date(3)}

	a := schedule.Expand(weekRange(), holidays, scheduled)
	b := schedule.Expand(weekRange(), holidays, scheduled)

	assert.Equal(t, a, b)
}
