package billing

// =============================================================================
// COMPANY - The billable account
// =============================================================================

// Company is a tenant account. Balance is the prepaid funds every billable
// action draws from; it never goes negative. Employees holds the usernames
// associated with the company via invitation codes.
type Company struct {
	Username        string
	Balance         Money
	Plan            PlanTier
	Employees       []string
	InvitationCode  string
	InvitationLimit int
}

// Debit subtracts amount from the balance. Fails closed with
// InsufficientBalanceError when the balance cannot cover it; the caller
// must abort before persisting anything.
func (c *Company) Debit(amount Money) error {
	if c.Balance.LessThan(amount) {
		return &InsufficientBalanceError{
			Username:  c.Username,
			Available: c.Balance,
			Requested: amount,
		}
	}
	c.Balance = c.Balance.Sub(amount)
	return nil
}

// Credit adds amount to the balance. No upper bound is enforced.
func (c *Company) Credit(amount Money) {
	c.Balance = c.Balance.Add(amount)
}
