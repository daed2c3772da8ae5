/*
errors.go - Centralized error types for billing operations

PURPOSE:
  All billing error types in one place. The API layer maps these onto
  HTTP statuses; nothing in this package knows about HTTP.

ERROR CATEGORIES:
  1. Validation errors - malformed client input, no state mutated
  2. Guard errors      - business rule violations (balance, plan lattice)
  3. Store errors      - persistence-level failures

USAGE:
  if errors.Is(err, billing.ErrInsufficientBalance) { ... }

  var insufficientErr *billing.InsufficientBalanceError
  if errors.As(err, &insufficientErr) { ... insufficientErr.Shortfall ... }
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientBalance is returned when a debit exceeds the balance.
	// The operation aborts with no state mutated.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrCompanyNotFound is returned when a referenced company doesn't exist.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrAlreadyOnPlan is returned when an upgrade targets the current tier.
	ErrAlreadyOnPlan = errors.New("already on plan")

	// ErrMaxPlanReached is returned when upgrading from the top tier.
	ErrMaxPlanReached = errors.New("has reached max plan type")

	// ErrInvalidTransition is returned for plan transitions absent from the
	// cost table. Checked BEFORE any balance check.
	ErrInvalidTransition = errors.New("invalid plan transition")

	// ErrPendingTopUp is returned when a company already has an unresolved
	// top-up request.
	ErrPendingTopUp = errors.New("top-up request already pending")

	// ErrTopUpNotFound is returned when a referenced top-up doesn't exist.
	ErrTopUpNotFound = errors.New("top-up request not found")

	// ErrTopUpNotPending is returned when resolving an already-resolved top-up.
	ErrTopUpNotPending = errors.New("top-up request is not pending")

	// ErrStoreRequired is returned when an operation needs a store capability
	// the bound store does not provide.
	ErrStoreRequired = errors.New("operation requires extended store interface")

	// ErrTransactionFailed is returned when an audit entry cannot be persisted.
	ErrTransactionFailed = errors.New("transaction failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports malformed client input. No state is mutated.
// Shared by the schedule package for date-range validation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Invalidf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientBalanceError provides details about a balance shortage.
type InsufficientBalanceError struct {
	Username  string
	Available Money
	Requested Money
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, requested %s",
		e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// Shortfall is the amount missing to cover the requested debit.
func (e *InsufficientBalanceError) Shortfall() Money {
	return e.Requested.Sub(e.Available)
}

// AlreadyOnPlanError reports a same-tier upgrade request.
type AlreadyOnPlanError struct {
	Plan PlanTier
}

func (e *AlreadyOnPlanError) Error() string {
	return fmt.Sprintf("already on %s plan", e.Plan)
}

func (e *AlreadyOnPlanError) Unwrap() error { return ErrAlreadyOnPlan }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or a business-rule rejection (HTTP 400 family).
func IsClientError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrAlreadyOnPlan) ||
		errors.Is(err, ErrMaxPlanReached) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrPendingTopUp) ||
		errors.Is(err, ErrTopUpNotPending)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrTopUpNotFound)
}
