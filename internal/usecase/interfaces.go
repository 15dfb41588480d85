package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/domain"
)

// AccountRepository defines data access for accounts (the account directory).
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id, ownerID string) (*domain.Account, error)
	// GetByIDsForUpdate locks the account rows FOR UPDATE. Callers must pass
	// ids in ascending order so concurrent transfers acquire locks in the
	// same order and cannot deadlock.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ownerID string, ids []string) ([]*domain.Account, error)
	// ApplyBalanceDelta adds delta to both the current and available balance
	// as a single conditional update, never read-modify-write.
	ApplyBalanceDelta(ctx context.Context, tx Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error
	SetBalances(ctx context.Context, tx Transaction, id string, current, available decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error)
}

// EntryPair is a resolved transfer pair with the account names needed to
// build a transfer result, already ordered debit-first.
type EntryPair struct {
	Debit           *domain.Entry
	Credit          *domain.Entry
	FromAccountName string
	ToAccountName   string
}

// TransferFilter restricts transfer listing. All predicates combine with
// AND; the same filter drives both the page query and the total count.
type TransferFilter struct {
	OwnerID       string
	AccountID     string // matches either side, overrides From/To
	FromAccountID string // debit-side account
	ToAccountID   string // credit-side account
	DateFrom      *time.Time
	DateTo        *time.Time
	AmountMin     *decimal.Decimal
	AmountMax     *decimal.Decimal
	Limit         int
	Offset        int
	SortBy        string
	SortDesc      bool
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	// SetLinkedEntry patches the linkage pointer, closing the mutual link of
	// a pair after both entries exist.
	SetLinkedEntry(ctx context.Context, tx Transaction, id, linkedID string) error
	// GetPair resolves a live transfer-category entry together with its live
	// linked counterpart, scoped to the owner. Either entry ID of a pair
	// resolves it. Returns domain.ErrTransferNotFound on any miss.
	GetPair(ctx context.Context, id, ownerID string) (found, linked *domain.Entry, err error)
	GetPairForUpdate(ctx context.Context, tx Transaction, id, ownerID string) (found, linked *domain.Entry, err error)
	// ListPairs returns a page of transfer pairs plus the total count over
	// the identical predicate.
	ListPairs(ctx context.Context, filter TransferFilter) ([]*EntryPair, int64, error)
	SoftDelete(ctx context.Context, tx Transaction, ids []string, deletedAt time.Time, deletedBy string) error
	ListByAccount(ctx context.Context, accountID, ownerID string, limit, offset int) ([]*domain.Entry, error)
	// SumLiveByAccount returns the signed sum of all live entries touching
	// the account (debits negative, credits positive).
	SumLiveByAccount(ctx context.Context, tx Transaction, accountID string) (decimal.Decimal, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// CheckConsistency returns the totals of live debit and credit entries
	// and the number of transfer entries whose linkage is broken (missing,
	// dangling, or pointing at a dead counterpart).
	CheckConsistency(ctx context.Context) (totalDebits, totalCredits decimal.Decimal, brokenLinks int64, err error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation on transient failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
