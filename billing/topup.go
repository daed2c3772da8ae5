/*
topup.go - Prepaid balance top-up requests

PURPOSE:
  Companies fund their balance by submitting a top-up request, which an
  admin later approves or rejects. Only the request lifecycle and the
  approved credit live here; the admin-facing HTTP workflow is provided
  elsewhere.

RULES:
  - Amount between 5 and 1000, at most 2 decimal places
  - One pending request per company at a time
  - Sequential integer IDs
  - Approval credits the balance and appends a "Top up" entry atomically
*/
package billing

import (
	"context"
	"time"
)

// =============================================================================
// TOP-UP REQUESTS
// =============================================================================

type TopUpStatus string

const (
	TopUpPending  TopUpStatus = "pending"
	TopUpApproved TopUpStatus = "approved"
	TopUpRejected TopUpStatus = "rejected"
)

type TopUpRequest struct {
	ID       int64
	Username string
	Amount   Money
	Status   TopUpStatus
	Created  string // "YYYY-MM-DD HH:mm"
}

var (
	minTopUp = NewMoneyFromInt(5)
	maxTopUp = NewMoneyFromInt(1000)
)

// TopUps manages the top-up request lifecycle.
type TopUps struct {
	Store TopUpStore
}

func NewTopUps(store TopUpStore) *TopUps {
	return &TopUps{Store: store}
}

// Submit creates a pending top-up request for the company. The pending
// gate, ID allocation, and insert run in one store transaction so
// concurrent submits can neither slip past the one-pending rule nor
// collide on the shared sequential ID.
func (t *TopUps) Submit(ctx context.Context, username string, amount float64) (*TopUpRequest, error) {
	if !HasCentPrecision(amount) {
		return nil, Invalidf("amount must have at most two decimal places")
	}
	m := NewMoney(amount)
	if m.LessThan(minTopUp) || m.GreaterThan(maxTopUp) {
		return nil, Invalidf("amount must be between %s and %s", minTopUp, maxTopUp)
	}

	var req TopUpRequest
	err := t.Store.WithTx(ctx, func(s Store) error {
		ts, ok := s.(TopUpStore)
		if !ok {
			return ErrStoreRequired
		}

		if _, err := ts.Company(ctx, username); err != nil {
			return err
		}

		pending, err := ts.PendingTopUp(ctx, username)
		if err != nil {
			return err
		}
		if pending != nil {
			return ErrPendingTopUp
		}

		id, err := ts.NextTopUpID(ctx)
		if err != nil {
			return err
		}

		req = TopUpRequest{
			ID:       id,
			Username: username,
			Amount:   m,
			Status:   TopUpPending,
			Created:  Timestamp(time.Now()),
		}
		return ts.InsertTopUp(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Resolve approves or rejects a pending request. Approval credits the
// company balance and appends a "Top up" entry in the same transaction.
func (t *TopUps) Resolve(ctx context.Context, id int64, approve bool) (*TopUpRequest, error) {
	var resolved *TopUpRequest
	err := t.Store.WithTx(ctx, func(s Store) error {
		ts, ok := s.(TopUpStore)
		if !ok {
			return ErrStoreRequired
		}

		req, err := ts.TopUp(ctx, id)
		if err != nil {
			return err
		}
		if req.Status != TopUpPending {
			return ErrTopUpNotPending
		}

		if !approve {
			req.Status = TopUpRejected
			resolved = req
			return ts.SetTopUpStatus(ctx, id, TopUpRejected)
		}

		company, err := ts.Company(ctx, req.Username)
		if err != nil {
			return err
		}
		company.Credit(req.Amount)
		if err := ts.UpdateCompanyBalance(ctx, req.Username, company.Balance); err != nil {
			return err
		}
		if err := ts.SetTopUpStatus(ctx, id, TopUpApproved); err != nil {
			return err
		}
		req.Status = TopUpApproved
		resolved = req
		return ts.AppendEntry(ctx, NewTopUpEntry(req.Username, req.Amount, req.ID))
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}
