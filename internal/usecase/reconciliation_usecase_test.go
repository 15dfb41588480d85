package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/domain"
	"github.com/famstack/famledger/internal/usecase"
	"github.com/famstack/famledger/internal/usecase/mocks"
)

type reconciliationFixture struct {
	uc          *usecase.ReconciliationUseCase
	accountRepo *mocks.MockAccountRepository
	entryRepo   *mocks.MockEntryRepository
}

func newReconciliationFixture() *reconciliationFixture {
	f := &reconciliationFixture{
		accountRepo: mocks.NewMockAccountRepository(),
		entryRepo:   mocks.NewMockEntryRepository(),
	}

	f.uc = usecase.NewReconciliationUseCase(
		mocks.NewMockTransactionManager(),
		f.accountRepo,
		f.entryRepo,
		mocks.NewMockRetrier(),
	)

	return f
}

func seedDriftedAccount(f *reconciliationFixture, recorded string) *domain.Account {
	account := &domain.Account{
		ID:               "acc-1",
		OwnerID:          testOwner,
		Name:             "Checking",
		Type:             domain.AccountTypeChecking,
		OpeningBalance:   decimal.RequireFromString("100.00"),
		CurrentBalance:   decimal.RequireFromString(recorded),
		AvailableBalance: decimal.RequireFromString(recorded),
	}
	f.accountRepo.Seed(account)
	return account
}

func seedEntry(f *reconciliationFixture, id string, direction domain.Direction, amount string, status domain.EntryStatus) {
	linked := id + "-peer"
	f.entryRepo.Create(context.Background(), nil, &domain.Entry{
		ID:            id,
		OwnerID:       testOwner,
		AccountID:     "acc-1",
		LinkedEntryID: &linked,
		Direction:     direction,
		Category:      domain.CategoryTransfer,
		Amount:        decimal.RequireFromString(amount),
		Date:          time.Now().UTC(),
		Status:        status,
	})
}

func TestRecalculateBalance_NoDrift(t *testing.T) {
	f := newReconciliationFixture()
	seedDriftedAccount(f, "70.00")
	seedEntry(f, "e1", domain.DirectionDebit, "30.00", domain.EntryStatusActive)

	result, err := f.uc.RecalculateBalance(context.Background(), "acc-1", testOwner)
	if err != nil {
		t.Fatalf("RecalculateBalance() error = %v", err)
	}

	if result.Adjusted {
		t.Error("expected no adjustment for a consistent balance")
	}

	if !result.Difference.IsZero() {
		t.Errorf("difference = %s, want 0", result.Difference)
	}
}

func TestRecalculateBalance_RepairsDrift(t *testing.T) {
	f := newReconciliationFixture()
	seedDriftedAccount(f, "999.00")
	seedEntry(f, "e1", domain.DirectionDebit, "30.00", domain.EntryStatusActive)
	seedEntry(f, "e2", domain.DirectionCredit, "10.00", domain.EntryStatusActive)
	// Soft-deleted entries do not count.
	seedEntry(f, "e3", domain.DirectionCredit, "500.00", domain.EntryStatusDeleted)

	result, err := f.uc.RecalculateBalance(context.Background(), "acc-1", testOwner)
	if err != nil {
		t.Fatalf("RecalculateBalance() error = %v", err)
	}

	// opening 100 - 30 + 10 = 80
	want := decimal.RequireFromString("80.00")

	if !result.Adjusted {
		t.Error("expected adjustment")
	}

	if !result.CalculatedBalance.Equal(want) {
		t.Errorf("calculated = %s, want %s", result.CalculatedBalance, want)
	}

	account := f.accountRepo.Account("acc-1")
	if !account.CurrentBalance.Equal(want) {
		t.Errorf("stored balance = %s, want %s", account.CurrentBalance, want)
	}

	// Running the pass again is a no-op: the write is absolute.
	again, err := f.uc.RecalculateBalance(context.Background(), "acc-1", testOwner)
	if err != nil {
		t.Fatalf("second RecalculateBalance() error = %v", err)
	}

	if again.Adjusted {
		t.Error("second pass must not adjust again")
	}

	if !f.accountRepo.Account("acc-1").CurrentBalance.Equal(want) {
		t.Error("second pass changed the balance")
	}
}

func TestRecalculateBalance_UnknownAccount(t *testing.T) {
	f := newReconciliationFixture()

	_, err := f.uc.RecalculateBalance(context.Background(), "acc-missing", testOwner)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("RecalculateBalance() error = %v, want ErrAccountNotFound", err)
	}
}
