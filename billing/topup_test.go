package billing_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/billing"
	"github.com/warp/attendance-engine/store/sqlite"
)

// newFileStore backs the store with a real file so concurrent access
// goes through SQLite's locking rather than per-connection memory.
func newFileStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestTopUps_Submit(t *testing.T) {
	store := newTestStore(t)
	seedCompany(t, store, "acme", 0, billing.PlanFree)

	topups := billing.NewTopUps(store)
	req, err := topups.Submit(context.Background(), "acme", 25.50)
	require.NoError(t, err)

	assert.Equal(t, int64(1), req.ID)
	assert.Equal(t, "25.50", req.Amount.String())
	assert.Equal(t, billing.TopUpPending, req.Status)
	assert.NotEmpty(t, req.Created)
}

func TestTopUps_Submit_AmountBounds(t *testing.T) {
	store := newTestStore(t)
	seedCompany(t, store, "acme", 0, billing.PlanFree)
	topups := billing.NewTopUps(store)

	for _, amount := range []float64{4.99, 1000.01, 0, -5} {
		_, err := topups.Submit(context.Background(), "acme", amount)
		assert.Error(t, err, "amount %v should be rejected", amount)
	}

	// boundaries are inclusive
	_, err := topups.Submit(context.Background(), "acme", 5)
	assert.NoError(t, err)
}

func TestTopUps_Submit_TooManyDecimals(t *testing.T) {
	store := newTestStore(t)
	seedCompany(t, store, "acme", 0, billing.PlanFree)
	topups := billing.NewTopUps(store)

	_, err := topups.Submit(context.Background(), "acme", 10.555)

	var vErr *billing.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestTopUps_Submit_OnePendingAtATime(t *testing.T) {
	// GIVEN: A company with an unresolved top-up
	// WHEN: Submitting another
	// THEN: The second is rejected until the first resolves

	store := newTestStore(t)
	seedCompany(t, store, "acme", 0, billing.PlanFree)
	topups := billing.NewTopUps(store)

	first, err := topups.Submit(context.Background(), "acme", 100)
	require.NoError(t, err)

	_, err = topups.Submit(context.Background(), "acme", 50)
	assert.ErrorIs(t, err, billing.ErrPendingTopUp)

	// resolve the first, then a new submission goes through
	_, err = topups.Resolve(context.Background(), first.ID, false)
	require.NoError(t, err)

	_, err = topups.Submit(context.Background(), "acme", 50)
	assert.NoError(t, err)
}

func TestTopUps_Submit_SequentialIDs(t *testing.T) {
	store := newTestStore(t)
	seedCompany(t, store, "acme", 0, billing.PlanFree)
	seedCompany(t, store, "globex", 0, billing.PlanFree)
	topups := billing.NewTopUps(store)

	a, err := topups.Submit(context.Background(), "acme", 10)
	require.NoError(t, err)
	b, err := topups.Submit(context.Background(), "globex", 10)
	require.NoError(t, err)

	assert.Equal(t, a.ID+1, b.ID)
}

func TestTopUps_Submit_UnknownCompany(t *testing.T) {
	store := newTestStore(t)
	topups := billing.NewTopUps(store)

	_, err := topups.Submit(context.Background(), "ghost", 10)
	assert.ErrorIs(t, err, billing.ErrCompanyNotFound)
}

func TestTopUps_Submit_ConcurrentSameCompany(t *testing.T) {
	// GIVEN: Simultaneous submissions for one company
	// WHEN: They race the one-pending gate
	// THEN: Exactly one wins; every other sees ErrPendingTopUp

	store := newFileStore(t)
	seedCompany(t, store, "acme", 0, billing.PlanFree)
	topups := billing.NewTopUps(store)

	const n = 8
	start := make(chan struct{})
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := topups.Submit(context.Background(), "acme", 10)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var succeeded, gated int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, billing.ErrPendingTopUp):
			gated++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, gated)

	pending, err := store.PendingTopUp(context.Background(), "acme")
	require.NoError(t, err)
	require.NotNil(t, pending)
}

func TestTopUps_Submit_ConcurrentIDsUnique(t *testing.T) {
	// GIVEN: Several companies submitting at once
	// WHEN: They race the shared MAX+1 ID allocation
	// THEN: Every request gets a distinct ID and none fails

	store := newFileStore(t)
	const n = 8
	for i := 0; i < n; i++ {
		seedCompany(t, store, fmt.Sprintf("company-%d", i), 0, billing.PlanFree)
	}
	topups := billing.NewTopUps(store)

	start := make(chan struct{})
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			req, err := topups.Submit(context.Background(), fmt.Sprintf("company-%d", i), 10)
			if err != nil {
				t.Errorf("submit failed for company-%d: %v", i, err)
				return
			}
			ids <- req.ID
		}()
	}
	close(start)
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "id %d allocated twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

// =============================================================================
// RESOLUTION
// =============================================================================

func TestTopUps_Resolve_ApproveCreditsBalance(t *testing.T) {
	// GIVEN: A pending 100 top-up on a 12.30 balance
	// WHEN: Approving it
	// THEN: The balance becomes 112.30 and a "Top up" entry is appended

	store := newTestStore(t)
	seedCompany(t, store, "acme", 12.30, billing.PlanFree)
	topups := billing.NewTopUps(store)

	req, err := topups.Submit(context.Background(), "acme", 100)
	require.NoError(t, err)

	resolved, err := topups.Resolve(context.Background(), req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, billing.TopUpApproved, resolved.Status)

	c := loadCompany(t, store, "acme")
	assert.Equal(t, "112.30", c.Balance.String())

	entries, err := store.EntriesByCompany(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, billing.TxTopUp, entries[0].Type)
}

func TestTopUps_Resolve_RejectLeavesBalance(t *testing.T) {
	store := newTestStore(t)
	seedCompany(t, store, "acme", 12.30, billing.PlanFree)
	topups := billing.NewTopUps(store)

	req, err := topups.Submit(context.Background(), "acme", 100)
	require.NoError(t, err)

	resolved, err := topups.Resolve(context.Background(), req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, billing.TopUpRejected, resolved.Status)

	c := loadCompany(t, store, "acme")
	assert.Equal(t, "12.30", c.Balance.String())

	entries, err := store.EntriesByCompany(context.Background(), "acme")
	require.NoError(t, err)
	assert.Empty(t, entries, "rejection must not leave an audit entry")
}

func TestTopUps_Resolve_NotPending(t *testing.T) {
	store := newTestStore(t)
	seedCompany(t, store, "acme", 0, billing.PlanFree)
	topups := billing.NewTopUps(store)

	req, err := topups.Submit(context.Background(), "acme", 10)
	require.NoError(t, err)

	_, err = topups.Resolve(context.Background(), req.ID, true)
	require.NoError(t, err)

	// second resolution of the same request
	_, err = topups.Resolve(context.Background(), req.ID, true)
	assert.ErrorIs(t, err, billing.ErrTopUpNotPending)
}

func TestTopUps_Resolve_NotFound(t *testing.T) {
	store := newTestStore(t)
	topups := billing.NewTopUps(store)

	_, err := topups.Resolve(context.Background(), 999, true)
	assert.ErrorIs(t, err, billing.ErrTopUpNotFound)
}
