package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/domain"
	"github.com/famstack/famledger/internal/usecase"
)

// MockAccountRepository is an in-memory AccountRepository. Each method can
// be overridden through its Func field; otherwise the map-backed default
// applies.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id, ownerID string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ownerID string, ids []string) ([]*domain.Account, error)
	ApplyBalanceDeltaFunc func(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error
	SetBalancesFunc       func(ctx context.Context, tx usecase.Transaction, id string, current, available decimal.Decimal, updatedAt time.Time) error
	ListFunc              func(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed inserts an account directly, bypassing any override.
func (m *MockAccountRepository) Seed(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

// Account returns the stored account, for assertions.
func (m *MockAccountRepository) Account(id string) *domain.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accounts[id]
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id, ownerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok && acc.OwnerID == ownerID {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ownerID string, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ownerID, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok && acc.OwnerID == ownerID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) ApplyBalanceDelta(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error {
	if m.ApplyBalanceDeltaFunc != nil {
		return m.ApplyBalanceDeltaFunc(ctx, tx, id, delta, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.CurrentBalance = acc.CurrentBalance.Add(delta)
	acc.AvailableBalance = acc.AvailableBalance.Add(delta)
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) SetBalances(ctx context.Context, tx usecase.Transaction, id string, current, available decimal.Decimal, updatedAt time.Time) error {
	if m.SetBalancesFunc != nil {
		return m.SetBalancesFunc(ctx, tx, id, current, available, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.CurrentBalance = current
	acc.AvailableBalance = available
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.OwnerID == ownerID {
			accounts = append(accounts, acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// MockEntryRepository is an in-memory EntryRepository. AccountNames feeds
// the names ListPairs needs for its result rows.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry

	AccountNames map[string]string

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	SetLinkedEntryFunc   func(ctx context.Context, tx usecase.Transaction, id, linkedID string) error
	GetPairFunc          func(ctx context.Context, id, ownerID string) (*domain.Entry, *domain.Entry, error)
	GetPairForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id, ownerID string) (*domain.Entry, *domain.Entry, error)
	ListPairsFunc        func(ctx context.Context, filter usecase.TransferFilter) ([]*usecase.EntryPair, int64, error)
	SoftDeleteFunc       func(ctx context.Context, tx usecase.Transaction, ids []string, deletedAt time.Time, deletedBy string) error
	ListByAccountFunc    func(ctx context.Context, accountID, ownerID string, limit, offset int) ([]*domain.Entry, error)
	SumLiveByAccountFunc func(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries:      make(map[string]*domain.Entry),
		AccountNames: make(map[string]string),
	}
}

// Entry returns the stored entry, for assertions.
func (m *MockEntryRepository) Entry(id string) *domain.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[id]
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *entry
	m.entries[entry.ID] = &stored
	return nil
}

func (m *MockEntryRepository) SetLinkedEntry(ctx context.Context, tx usecase.Transaction, id, linkedID string) error {
	if m.SetLinkedEntryFunc != nil {
		return m.SetLinkedEntryFunc(ctx, tx, id, linkedID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	entry.LinkedEntryID = &linkedID
	return nil
}

func (m *MockEntryRepository) GetPair(ctx context.Context, id, ownerID string) (*domain.Entry, *domain.Entry, error) {
	if m.GetPairFunc != nil {
		return m.GetPairFunc(ctx, id, ownerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolvePair(id, ownerID)
}

func (m *MockEntryRepository) GetPairForUpdate(ctx context.Context, tx usecase.Transaction, id, ownerID string) (*domain.Entry, *domain.Entry, error) {
	if m.GetPairForUpdateFunc != nil {
		return m.GetPairForUpdateFunc(ctx, tx, id, ownerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolvePair(id, ownerID)
}

func (m *MockEntryRepository) resolvePair(id, ownerID string) (*domain.Entry, *domain.Entry, error) {
	found, ok := m.entries[id]
	if !ok || found.OwnerID != ownerID || found.Category != domain.CategoryTransfer ||
		!found.IsLive() || found.LinkedEntryID == nil {
		return nil, nil, domain.ErrTransferNotFound
	}
	linked, ok := m.entries[*found.LinkedEntryID]
	if !ok || !linked.IsLive() {
		return nil, nil, domain.ErrTransferNotFound
	}
	return found, linked, nil
}

func (m *MockEntryRepository) ListPairs(ctx context.Context, filter usecase.TransferFilter) ([]*usecase.EntryPair, int64, error) {
	if m.ListPairsFunc != nil {
		return m.ListPairsFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*usecase.EntryPair
	for _, e := range m.entries {
		if e.Direction != domain.DirectionDebit || e.OwnerID != filter.OwnerID ||
			e.Category != domain.CategoryTransfer || !e.IsLive() || e.LinkedEntryID == nil {
			continue
		}
		if !matchesFilter(e, filter) {
			continue
		}
		credit, ok := m.entries[*e.LinkedEntryID]
		if !ok || !credit.IsLive() {
			continue
		}
		matched = append(matched, &usecase.EntryPair{
			Debit:           e,
			Credit:          credit,
			FromAccountName: m.AccountNames[e.AccountID],
			ToAccountName:   m.AccountNames[credit.AccountID],
		})
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].Debit, matched[j].Debit
		var less bool
		if filter.SortBy == usecase.SortByAmount {
			less = a.Amount.LessThan(b.Amount)
		} else {
			less = a.Date.Before(b.Date)
		}
		if filter.SortDesc {
			return !less
		}
		return less
	})

	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[filter.Offset:end], total, nil
}

func matchesFilter(debit *domain.Entry, filter usecase.TransferFilter) bool {
	if filter.AccountID != "" {
		if debit.AccountID != filter.AccountID && debit.CounterAccountID != filter.AccountID {
			return false
		}
	} else {
		if filter.FromAccountID != "" && debit.AccountID != filter.FromAccountID {
			return false
		}
		if filter.ToAccountID != "" && debit.CounterAccountID != filter.ToAccountID {
			return false
		}
	}
	if filter.DateFrom != nil && debit.Date.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && debit.Date.After(*filter.DateTo) {
		return false
	}
	if filter.AmountMin != nil && debit.Amount.LessThan(*filter.AmountMin) {
		return false
	}
	if filter.AmountMax != nil && debit.Amount.GreaterThan(*filter.AmountMax) {
		return false
	}
	return true
}

func (m *MockEntryRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, ids []string, deletedAt time.Time, deletedBy string) error {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, tx, ids, deletedAt, deletedBy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		entry, ok := m.entries[id]
		if !ok {
			return domain.ErrEntryNotFound
		}
		entry.Status = domain.EntryStatusDeleted
		at := deletedAt
		by := deletedBy
		entry.DeletedAt = &at
		entry.DeletedBy = &by
	}
	return nil
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID, ownerID string, limit, offset int) ([]*domain.Entry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, ownerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, e := range m.entries {
		if e.AccountID == accountID && e.OwnerID == ownerID && e.IsLive() {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	return entries, nil
}

func (m *MockEntryRepository) SumLiveByAccount(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	if m.SumLiveByAccountFunc != nil {
		return m.SumLiveByAccountFunc(ctx, tx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.AccountID == accountID && e.IsLive() {
			sum = sum.Add(e.SignedAmount())
		}
	}
	return sum, nil
}

// MockTransaction is a no-op transaction that records its outcome.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out MockTransactions.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// MockIDGenerator generates sequential IDs.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%04d", m.counter)
}

// MockRetrier invokes the operation once, without backoff.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
