package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/attendance-engine/billing"
	"github.com/warp/attendance-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedCompany(t *testing.T, store *sqlite.Store, username string, balance float64, plan billing.PlanTier) {
	t.Helper()
	err := store.SaveCompany(context.Background(), billing.Company{
		Username: username,
		Balance:  billing.NewMoney(balance),
		Plan:     plan,
	})
	require.NoError(t, err)
}

func loadCompany(t *testing.T, store *sqlite.Store, username string) *billing.Company {
	t.Helper()
	c, err := store.Company(context.Background(), username)
	require.NoError(t, err)
	return c
}

// =============================================================================
// COST TABLE
// =============================================================================

func TestUpgradeCost_Table(t *testing.T) {
	cases := []struct {
		from, to billing.PlanTier
		want     string
	}{
		{billing.PlanFree, billing.PlanStandard, "30.00"},
		{billing.PlanFree, billing.PlanPremium, "50.00"},
		{billing.PlanStandard, billing.PlanPremium, "30.00"},
	}

	for _, tc := range cases {
		cost, err := billing.UpgradeCost(tc.from, tc.to)
		require.NoError(t, err, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.want, cost.String())
	}
}

func TestUpgradeCost_FromPremium(t *testing.T) {
	// The top tier rejects every target, including itself.
	for _, target := range []billing.PlanTier{billing.PlanStandard, billing.PlanPremium} {
		_, err := billing.UpgradeCost(billing.PlanPremium, target)
		assert.ErrorIs(t, err, billing.ErrMaxPlanReached)
	}
}

func TestUpgradeCost_SameTier(t *testing.T) {
	_, err := billing.UpgradeCost(billing.PlanStandard, billing.PlanStandard)

	var alreadyErr *billing.AlreadyOnPlanError
	require.ErrorAs(t, err, &alreadyErr)
	assert.Equal(t, billing.PlanStandard, alreadyErr.Plan)
}

func TestParsePlanTier(t *testing.T) {
	for _, valid := range []string{"standard", "premium"} {
		tier, err := billing.ParsePlanTier(valid)
		require.NoError(t, err)
		assert.Equal(t, billing.PlanTier(valid), tier)
	}

	// free is the starting tier, never an upgrade target
	for _, invalid := range []string{"free", "gold", "", "Standard"} {
		_, err := billing.ParsePlanTier(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}

// =============================================================================
// UPGRADE ENGINE
// =============================================================================

func TestPlanEngine_Upgrade_FreeToPremium(t *testing.T) {
	// GIVEN: A free company with exactly 50
	// WHEN: Upgrading to premium
	// THEN: The plan flips and the balance drains to zero

	store := newTestStore(t)
	seedCompany(t, store, "acme", 50, billing.PlanFree)

	engine := billing.NewPlanEngine(store)
	cost, err := engine.Upgrade(context.Background(), "acme", billing.PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, "50.00", cost.String())

	c := loadCompany(t, store, "acme")
	assert.Equal(t, billing.PlanPremium, c.Plan)
	assert.True(t, c.Balance.IsZero())
}

func TestPlanEngine_Upgrade_InsufficientBalance(t *testing.T) {
	// GIVEN: A free company one cent short of the premium cost
	// WHEN: Upgrading to premium
	// THEN: The upgrade fails and plan and balance are untouched

	store := newTestStore(t)
	seedCompany(t, store, "acme", 49.99, billing.PlanFree)

	engine := billing.NewPlanEngine(store)
	_, err := engine.Upgrade(context.Background(), "acme", billing.PlanPremium)
	assert.ErrorIs(t, err, billing.ErrInsufficientBalance)

	c := loadCompany(t, store, "acme")
	assert.Equal(t, billing.PlanFree, c.Plan)
	assert.Equal(t, "49.99", c.Balance.String())
}

func TestPlanEngine_Upgrade_StandardToPremium(t *testing.T) {
	store := newTestStore(t)
	seedCompany(t, store, "acme", 100, billing.PlanStandard)

	engine := billing.NewPlanEngine(store)
	cost, err := engine.Upgrade(context.Background(), "acme", billing.PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, "30.00", cost.String())

	c := loadCompany(t, store, "acme")
	assert.Equal(t, billing.PlanPremium, c.Plan)
	assert.Equal(t, "70.00", c.Balance.String())
}

func TestPlanEngine_Upgrade_InvalidBeforeBalance(t *testing.T) {
	// GIVEN: A premium company with a zero balance
	// WHEN: Upgrading again
	// THEN: The lattice rejection wins; the error is never "insufficient balance"

	store := newTestStore(t)
	seedCompany(t, store, "acme", 0, billing.PlanPremium)

	engine := billing.NewPlanEngine(store)
	_, err := engine.Upgrade(context.Background(), "acme", billing.PlanPremium)

	assert.ErrorIs(t, err, billing.ErrMaxPlanReached)
	assert.NotErrorIs(t, err, billing.ErrInsufficientBalance)
}

func TestPlanEngine_Upgrade_AppendsEntry(t *testing.T) {
	store := newTestStore(t)
	seedCompany(t, store, "acme", 50, billing.PlanFree)

	engine := billing.NewPlanEngine(store)
	_, err := engine.Upgrade(context.Background(), "acme", billing.PlanStandard)
	require.NoError(t, err)

	entries, err := store.EntriesByCompany(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Upgrade plan type from free to standard", entries[0].Type)
	assert.Equal(t, "30.00", entries[0].Charge.String())
}

func TestPlanEngine_Upgrade_UnknownCompany(t *testing.T) {
	store := newTestStore(t)

	engine := billing.NewPlanEngine(store)
	_, err := engine.Upgrade(context.Background(), "ghost", billing.PlanStandard)

	assert.ErrorIs(t, err, billing.ErrCompanyNotFound)
}
