package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/domain"
)

// ReconciliationUseCase recomputes account balances from the ledger.
//
// The transfer engine maintains balances incrementally inside each
// transaction; this use case is the repair pass for drift (manual database
// edits, interrupted migrations). Recalculation writes the recomputed value
// absolutely, so running it twice never double-adjusts.
type ReconciliationUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	retrier     Retrier
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	retrier Retrier,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		retrier:     retrier,
	}
}

// ReconciliationResult reports recorded versus recalculated balance.
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	Adjusted          bool
	CheckedAt         time.Time
}

// RecalculateBalance recomputes an account's current balance as opening
// balance plus the signed sum of its live entries, and writes it back when
// it drifted. The pass runs under retry so a serialization failure never
// silently drops the recompute.
func (uc *ReconciliationUseCase) RecalculateBalance(ctx context.Context, accountID, ownerID string) (*ReconciliationResult, error) {
	var result *ReconciliationResult

	err := uc.retrier.Retry(ctx, func() error {
		var err error

		result, err = uc.recalculate(ctx, accountID, ownerID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *ReconciliationUseCase) recalculate(ctx context.Context, accountID, ownerID string) (*ReconciliationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ownerID, []string{accountID})
	if err != nil {
		return nil, err
	}

	if len(accounts) != 1 {
		return nil, domain.ErrAccountNotFound
	}

	account := accounts[0]

	sum, err := uc.entryRepo.SumLiveByAccount(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	calculated := account.OpeningBalance.Add(sum)
	difference := calculated.Sub(account.CurrentBalance)

	result := &ReconciliationResult{
		AccountID:         accountID,
		RecordedBalance:   account.CurrentBalance,
		CalculatedBalance: calculated,
		Difference:        difference,
		Adjusted:          !difference.IsZero(),
		CheckedAt:         time.Now().UTC(),
	}

	if difference.IsZero() {
		return result, tx.Commit(ctx)
	}

	// Available balance drifts by the same delta as current balance; the
	// sign rule is uniform across account types.
	available := account.AvailableBalance.Add(difference)

	if err := uc.accountRepo.SetBalances(ctx, tx, accountID, calculated, available, time.Now().UTC()); err != nil {
		return nil, err
	}

	return result, tx.Commit(ctx)
}
