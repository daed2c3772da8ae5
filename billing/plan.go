/*
plan.go - Plan tier lattice and the upgrade engine

PURPOSE:
  Companies sit on one of three plan tiers and may only move forward:

      free ──30──> standard ──30──> premium
        └──────────────50──────────────┘

  No downgrade transition exists. Upgrades debit the balance by the
  fixed table cost and are recorded in the transaction log.

ORDER OF CHECKS:
  1. Top tier?            -> ErrMaxPlanReached
  2. Same tier?           -> AlreadyOnPlanError
  3. Not in cost table?   -> ErrInvalidTransition
  4. Balance < cost?      -> InsufficientBalanceError
  The transition is validated before the balance is ever consulted, so an
  invalid request never reads as "not enough money".
*/
package billing

import "context"

// =============================================================================
// PLAN TIERS
// =============================================================================

type PlanTier string

const (
	PlanFree     PlanTier = "free"
	PlanStandard PlanTier = "standard"
	PlanPremium  PlanTier = "premium"
)

// ParsePlanTier validates an upgrade target. Only standard and premium are
// valid targets; free is the starting tier, never a destination.
func ParsePlanTier(s string) (PlanTier, error) {
	switch PlanTier(s) {
	case PlanStandard, PlanPremium:
		return PlanTier(s), nil
	default:
		return "", Invalidf("plan_type must be one of [standard, premium]")
	}
}

type transition struct {
	from, to PlanTier
}

// upgradeCosts is the complete set of legal transitions. Anything absent
// is rejected outright.
var upgradeCosts = map[transition]Money{
	{PlanFree, PlanStandard}:    NewMoneyFromInt(30),
	{PlanFree, PlanPremium}:     NewMoneyFromInt(50),
	{PlanStandard, PlanPremium}: NewMoneyFromInt(30),
}

// UpgradeCost returns the cost of moving from one tier to another,
// rejecting impossible transitions before any balance concern.
func UpgradeCost(from, to PlanTier) (Money, error) {
	if from == PlanPremium {
		return Money{}, ErrMaxPlanReached
	}
	if from == to {
		return Money{}, &AlreadyOnPlanError{Plan: from}
	}
	cost, ok := upgradeCosts[transition{from, to}]
	if !ok {
		return Money{}, ErrInvalidTransition
	}
	return cost, nil
}

// =============================================================================
// PLAN ENGINE
// =============================================================================

// PlanEngine executes plan upgrades against the store.
type PlanEngine struct {
	Store Store
}

func NewPlanEngine(store Store) *PlanEngine {
	return &PlanEngine{Store: store}
}

// Upgrade moves a company to the target tier, debiting the upgrade cost
// and appending an audit entry. Balance mutation, tier change, and the
// audit entry commit as one unit or not at all.
func (e *PlanEngine) Upgrade(ctx context.Context, username string, target PlanTier) (Money, error) {
	var cost Money
	err := e.Store.WithTx(ctx, func(s Store) error {
		company, err := s.Company(ctx, username)
		if err != nil {
			return err
		}

		cost, err = UpgradeCost(company.Plan, target)
		if err != nil {
			return err
		}

		if err := company.Debit(cost); err != nil {
			return err
		}

		from := company.Plan
		company.Plan = target
		if err := s.UpdateCompanyPlan(ctx, username, target, company.Balance); err != nil {
			return err
		}

		return s.AppendEntry(ctx, NewPlanUpgradeEntry(username, from, target, cost))
	})
	if err != nil {
		return Money{}, err
	}
	return cost, nil
}
