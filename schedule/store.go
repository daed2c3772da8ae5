package schedule

import (
	"context"

	"github.com/warp/attendance-engine/billing"
	"github.com/warp/attendance-engine/calendar"
)

// Store extends the billing store with schedule-record persistence.
// Inside a WithTx closure the transaction-bound billing.Store is
// type-asserted back to this interface; a store that cannot provide it
// yields billing.ErrStoreRequired.
type Store interface {
	billing.Store

	// ScheduledDates returns the dates in the range that already have a
	// record for the company, in calendar order. One batch query, not
	// per-day lookups.
	ScheduledDates(ctx context.Context, username string, r calendar.Range) ([]calendar.Date, error)

	// InsertSchedule persists a record. Fails if (username, date) exists.
	InsertSchedule(ctx context.Context, rec Record) error

	// DeleteSchedules removes every record in the range and returns what
	// was removed, in calendar order.
	DeleteSchedules(ctx context.Context, username string, r calendar.Range) ([]Record, error)

	// ListSchedules returns records ordered by date, optionally narrowed
	// to a range, with limit/offset pagination.
	ListSchedules(ctx context.Context, username string, r *calendar.Range, limit, offset int) ([]Record, error)
}
