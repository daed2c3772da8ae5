/*
transaction.go - Append-only audit entries for billable actions

PURPOSE:
  Every action that moves money leaves an Entry: schedule creation and
  deletion, plan upgrades, approved top-ups. Entries are immutable once
  written; the store exposes no update or delete for them.

WHY APPEND-ONLY?
  - Audit trail: balance history is always explainable
  - Debugging: "why is the balance X?" -> read the entries
  - Correctness: no partial update can corrupt history
*/
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ENTRY - One immutable audit record
// =============================================================================

// Entry types. Free-text by contract, but all writers use these.
const (
	TxCreateSchedules = "Create schedules"
	TxDeleteSchedules = "Delete schedules"
	TxTopUp           = "Top up"
)

// entryTimeLayout is the wire format for entry timestamps: "YYYY-MM-DD HH:mm".
const entryTimeLayout = "2006-01-02 15:04"

// Entry is an immutable audit record of a billable action.
type Entry struct {
	ID       string
	Username string
	Type     string
	Date     string // "YYYY-MM-DD HH:mm"
	Charge   Money
	Metadata map[string]any
}

// Recorder appends audit entries. Append-only: no update, no delete.
type Recorder interface {
	AppendEntry(ctx context.Context, e Entry) error
}

// Timestamp formats an instant the way entries record it.
func Timestamp(t time.Time) string {
	return t.Format(entryTimeLayout)
}

func newEntry(username, entryType string, charge Money, metadata map[string]any) Entry {
	return Entry{
		ID:       uuid.NewString(),
		Username: username,
		Type:     entryType,
		Date:     Timestamp(time.Now()),
		Charge:   charge,
		Metadata: metadata,
	}
}

// NewScheduleCreateEntry records a schedule creation: the requested range,
// the charge, and exactly which dates were created.
func NewScheduleCreateEntry(username, startDate, endDate string, charge Money, created []string) Entry {
	return newEntry(username, TxCreateSchedules, charge, map[string]any{
		"start_date":          startDate,
		"end_date":            endDate,
		"number_of_schedules": len(created),
		"schedules":           created,
	})
}

// NewScheduleDeleteEntry records a schedule deletion and the refunded charge.
func NewScheduleDeleteEntry(username string, charge Money, deleted []string) Entry {
	return newEntry(username, TxDeleteSchedules, charge, map[string]any{
		"number_of_deleted_schedules": len(deleted),
		"deleted_schedules":           deleted,
	})
}

// NewPlanUpgradeEntry records a plan upgrade and its cost.
func NewPlanUpgradeEntry(username string, from, to PlanTier, cost Money) Entry {
	return newEntry(username, fmt.Sprintf("Upgrade plan type from %s to %s", from, to), cost, nil)
}

// NewTopUpEntry records an approved top-up credit.
func NewTopUpEntry(username string, amount Money, topupID int64) Entry {
	return newEntry(username, TxTopUp, amount, map[string]any{
		"topup_id": topupID,
	})
}
