/*
Package billing holds the monetary core: fixed-point money, the company
balance account, the plan-tier upgrade rules, and the append-only
transaction recorder.

PURPOSE:
  Every billable action in the system flows through this package. The
  balance is the single source of truth debited by schedule creation and
  plan upgrades and credited by schedule deletion and approved top-ups.

KEY CONCEPTS:
  - Money:    2-decimal fixed point on decimal.Decimal. Every arithmetic
              result is rounded half-up to 2 digits, so repeated charges
              can never accumulate float drift ("penny drift").
  - Company:  The billable account (balance, plan, employees, invite code).
  - Entry:    Immutable audit record of a billable action.

DESIGN PRINCIPLES:
  1. Precision: decimal semantics, never float64 arithmetic
  2. Guarded mutation: debits fail closed on insufficient balance
  3. Auditability: every balance change has a transaction entry

SEE ALSO:
  - account.go: Balance debit/credit guards
  - plan.go: Tier lattice and upgrade costs
  - transaction.go: Audit entries
*/
package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point currency amount (2 fractional digits)
// =============================================================================

// Money is a currency amount with exactly 2 fractional digits.
// The zero value is $0.00 and ready to use.
type Money struct {
	d decimal.Decimal
}

// dailyScheduleRate is the fixed charge per scheduled workday.
var dailyScheduleRate = decimal.RequireFromString("0.1")

func NewMoney(value float64) Money {
	return Money{d: decimal.NewFromFloat(value).Round(2)}
}

func NewMoneyFromInt(value int) Money {
	return Money{d: decimal.NewFromInt(int64(value))}
}

// ParseMoney parses a decimal string, rejecting more than 2 fractional digits.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -2 {
		return Money{}, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return Money{d: d}, nil
}

// HasCentPrecision reports whether a float carries at most 2 decimal places.
// Used to validate client-supplied amounts before they become Money.
func HasCentPrecision(value float64) bool {
	d := decimal.NewFromFloat(value)
	return d.Equal(d.Round(2))
}

// ChargeForDays returns the charge for n scheduled workdays at the fixed
// daily rate, rounded to 2 decimals.
func ChargeForDays(n int) Money {
	return Money{d: dailyScheduleRate.Mul(decimal.NewFromInt(int64(n))).Round(2)}
}

// Arithmetic. Every result is rounded to 2 decimals immediately so that
// chains of operations stay on the cent grid.
func (m Money) Add(other Money) Money { return Money{d: m.d.Add(other.d).Round(2)} }
func (m Money) Sub(other Money) Money { return Money{d: m.d.Sub(other.d).Round(2)} }

// Comparison
func (m Money) LessThan(other Money) bool    { return m.d.LessThan(other.d) }
func (m Money) GreaterThan(other Money) bool { return m.d.GreaterThan(other.d) }
func (m Money) Equal(other Money) bool       { return m.d.Equal(other.d) }
func (m Money) IsNegative() bool             { return m.d.IsNegative() }
func (m Money) IsZero() bool                 { return m.d.IsZero() }

// String renders with exactly 2 decimals, e.g. "0.50".
func (m Money) String() string { return m.d.StringFixed(2) }

// Display renders for API responses, e.g. "$0.50".
func (m Money) Display() string { return "$" + m.d.StringFixed(2) }

func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}
