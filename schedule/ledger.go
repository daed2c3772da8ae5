/*
ledger.go - Billable schedule creation and deletion

PURPOSE:
  The Ledger is the only writer of schedule records. Creation charges the
  company balance per workday; deletion credits it back symmetrically.

CRITICAL INVARIANTS:
  1. The holiday fetch happens BEFORE the store transaction opens. An
     unreachable calendar aborts the operation with no debit; a failed
     fetch is never treated as a holiday-free year.
  2. Debit, record writes, and the audit entry are one store transaction.
     If any record write fails, the debit rolls back with it - the
     balance is never charged for schedules that don't exist.
  3. Zero workdays in the range aborts before any state change.

CONCURRENCY:
  The store serializes transactions, and the UNIQUE (username, date)
  index rejects a double-create racing past the batch existence check;
  the losing transaction rolls back, leaving the balance untouched.

SEE ALSO:
  - expander.go: Pure range classification
  - billing/transaction.go: Audit entry constructors
  - store/sqlite: WithTx implementation
*/
package schedule

import (
	"context"

	"github.com/warp/attendance-engine/billing"
	"github.com/warp/attendance-engine/calendar"
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger executes schedule operations against the store.
type Ledger struct {
	Store    Store
	Holidays calendar.Source

	// Today is injectable for tests; defaults to the wall clock.
	Today func() calendar.Date
}

func NewLedger(store Store, holidays calendar.Source) *Ledger {
	return &Ledger{
		Store:    store,
		Holidays: holidays,
		Today:    calendar.Today,
	}
}

// holidaysForRange fetches holidays for every distinct year the range
// spans. The upstream is consulted once per year per client cache.
func (l *Ledger) holidaysForRange(ctx context.Context, r calendar.Range) ([]calendar.Holiday, error) {
	var holidays []calendar.Holiday
	for _, year := range r.Years() {
		hs, err := l.Holidays.Holidays(ctx, year)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, hs...)
	}
	return holidays, nil
}

// Create expands [startDate, endDate], charges the balance for every
// workday, writes one record per workday, and appends a "Create
// schedules" audit entry - all in one store transaction.
func (l *Ledger) Create(ctx context.Context, username, startDate, endDate string) (*CreateResult, error) {
	r, err := parseCreateRange(startDate, endDate, l.Today())
	if err != nil {
		return nil, err
	}

	// Fetch before the transaction: a calendar failure must abort with
	// nothing debited, and the fetch must not be retried after commit.
	holidays, err := l.holidaysForRange(ctx, r)
	if err != nil {
		return nil, err
	}

	var result *CreateResult
	err = l.Store.WithTx(ctx, func(s billing.Store) error {
		ss, ok := s.(Store)
		if !ok {
			return billing.ErrStoreRequired
		}

		scheduled, err := ss.ScheduledDates(ctx, username, r)
		if err != nil {
			return err
		}

		exp := Expand(r, holidays, scheduled)
		if len(exp.Workdays) == 0 {
			return ErrNoWorkdays
		}
		charge := billing.ChargeForDays(len(exp.Workdays))

		company, err := ss.Company(ctx, username)
		if err != nil {
			return err
		}
		if err := company.Debit(charge); err != nil {
			return err
		}
		if err := ss.UpdateCompanyBalance(ctx, username, company.Balance); err != nil {
			return err
		}

		created := make([]string, 0, len(exp.Workdays))
		for _, date := range exp.Workdays {
			if err := ss.InsertSchedule(ctx, NewRecord(username, date)); err != nil {
				return err
			}
			created = append(created, date.String())
		}

		entry := billing.NewScheduleCreateEntry(username, r.Start.String(), r.End.String(), charge, created)
		if err := ss.AppendEntry(ctx, entry); err != nil {
			return err
		}

		result = &CreateResult{
			Charge:   charge,
			Created:  exp.Workdays,
			OffDays:  exp.OffDays,
			Existing: exp.Existing,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes every record in [startDate, endDate], credits the
// balance by count x daily rate, and appends a "Delete schedules" audit
// entry - all in one store transaction. The audit entry preserves the
// deleted dates; attendance rosters are discarded with the records.
func (l *Ledger) Delete(ctx context.Context, username, startDate, endDate string) (*DeleteResult, error) {
	r, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	var result *DeleteResult
	err = l.Store.WithTx(ctx, func(s billing.Store) error {
		ss, ok := s.(Store)
		if !ok {
			return billing.ErrStoreRequired
		}

		removed, err := ss.DeleteSchedules(ctx, username, r)
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			return ErrNoSchedulesInRange
		}

		refund := billing.ChargeForDays(len(removed))
		company, err := ss.Company(ctx, username)
		if err != nil {
			return err
		}
		company.Credit(refund)
		if err := ss.UpdateCompanyBalance(ctx, username, company.Balance); err != nil {
			return err
		}

		deleted := make([]calendar.Date, 0, len(removed))
		deletedStrs := make([]string, 0, len(removed))
		for _, rec := range removed {
			deleted = append(deleted, rec.Date)
			deletedStrs = append(deletedStrs, rec.Date.String())
		}

		if err := ss.AppendEntry(ctx, billing.NewScheduleDeleteEntry(username, refund, deletedStrs)); err != nil {
			return err
		}

		result = &DeleteResult{Charge: refund, Deleted: deleted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns a company's schedule records, optionally narrowed to a
// range, paginated. Read-only.
func (l *Ledger) List(ctx context.Context, username string, filter ListFilter) ([]Record, error) {
	r, limit, page, err := filter.rangeAndPage()
	if err != nil {
		return nil, err
	}

	offset := 0
	if page > 0 {
		offset = limit * (page - 1)
	}
	return l.Store.ListSchedules(ctx, username, r, limit, offset)
}
