package schedule

import "errors"

// Sentinel errors for ledger operations. Use with errors.Is().
var (
	// ErrNoWorkdays is returned when every date in a creation range is a
	// holiday, weekend, or already scheduled. Nothing is charged or written.
	ErrNoWorkdays = errors.New("no schedules were created as all dates are either holidays, weekends, or already scheduled")

	// ErrNoSchedulesInRange is returned when a deletion range matches no
	// existing records.
	ErrNoSchedulesInRange = errors.New("no schedules found within the specified date range")
)
