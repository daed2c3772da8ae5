/*
store.go - Persistence interface for billing state

PURPOSE:
  Defines the contract between billing logic and the database. A single
  pooled store client is injected into every engine; there is no global
  database handle and no per-request connect/close.

TRANSACTIONAL BOUNDARY:
  WithTx wraps each billable operation: either all of {balance mutation,
  record mutations, entry append} commit, or none do. A debit can never
  survive a failed record write.

EXTENDED CAPABILITIES:
  Operations that need more than the base interface (schedule records,
  top-ups) type-assert the store handed to the WithTx closure. A store
  lacking the capability yields ErrStoreRequired.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
*/
package billing

import "context"

// Store is the base persistence interface for billing operations.
type Store interface {
	Recorder

	// Company loads a company account. Returns ErrCompanyNotFound if absent.
	Company(ctx context.Context, username string) (*Company, error)

	// UpdateCompanyBalance persists a new balance.
	UpdateCompanyBalance(ctx context.Context, username string, balance Money) error

	// UpdateCompanyPlan persists a new plan tier together with the balance
	// remaining after the upgrade debit.
	UpdateCompanyPlan(ctx context.Context, username string, plan PlanTier, balance Money) error

	// SetInvitationCode overwrites the invitation code and its use limit.
	// The previous code becomes immediately invalid.
	SetInvitationCode(ctx context.Context, username, code string, limit int) error

	// EntriesByCompany returns a company's audit entries, newest first.
	EntriesByCompany(ctx context.Context, username string) ([]Entry, error)

	// WithTx executes fn within a database transaction. If fn returns an
	// error the transaction is rolled back, otherwise committed. The Store
	// passed to fn is bound to the transaction.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// TopUpStore extends Store with top-up request persistence.
type TopUpStore interface {
	Store

	// PendingTopUp returns the company's pending request, or nil.
	PendingTopUp(ctx context.Context, username string) (*TopUpRequest, error)

	// NextTopUpID allocates the next sequential top-up identifier.
	NextTopUpID(ctx context.Context) (int64, error)

	// InsertTopUp persists a new request.
	InsertTopUp(ctx context.Context, req TopUpRequest) error

	// TopUp loads a request by ID. Returns ErrTopUpNotFound if absent.
	TopUp(ctx context.Context, id int64) (*TopUpRequest, error)

	// SetTopUpStatus moves a request to a terminal status.
	SetTopUpStatus(ctx context.Context, id int64, status TopUpStatus) error
}
