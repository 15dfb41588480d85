package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/domain"
)

// TransferUseCase orchestrates inter-account transfers as paired ledger
// entries: a debit on the source account and a credit on the destination,
// mutually linked, created and cancelled both-or-neither.
type TransferUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
	logger      zerolog.Logger
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
		logger:      logger,
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	OwnerID       string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Date          *time.Time
	Description   string
	Notes         string
}

// CreateTransfer moves Amount from the source account to the destination
// account inside one database transaction. Balances are mutated in the same
// transaction as the entry writes, so a failure anywhere leaves no entries
// and no balance change.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*domain.Transfer, error) {
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	description, err := domain.NormalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateNotes(input.Notes); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock both accounts in ascending ID order regardless of which is the
	// source, so concurrent A->B and B->A transfers cannot deadlock.
	ids := []string{input.FromAccountID, input.ToAccountID}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, input.OwnerID, ids)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	var from, to *domain.Account
	for _, a := range accounts {
		switch a.ID {
		case input.FromAccountID:
			from = a
		case input.ToAccountID:
			to = a
		}
	}

	if from == nil || to == nil {
		return nil, domain.ErrAccountNotFound
	}

	if err := from.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	date := now
	if input.Date != nil {
		date = input.Date.UTC()
	}

	// Two-phase linkage: the debit is created without a link, the credit is
	// created pointing at the debit, then the debit is patched to point back.
	// Both entries need each other's ID and neither exists first.
	debit := &domain.Entry{
		ID:               uc.idGen.Generate(),
		OwnerID:          input.OwnerID,
		AccountID:        from.ID,
		CounterAccountID: to.ID,
		Direction:        domain.DirectionDebit,
		Category:         domain.CategoryTransfer,
		Subcategory:      "To: " + to.Name,
		Description:      description,
		Notes:            input.Notes,
		Amount:           input.Amount,
		Date:             date,
		Status:           domain.EntryStatusActive,
		CreatedAt:        now,
	}

	if err := uc.entryRepo.Create(ctx, tx, debit); err != nil {
		return nil, uc.internal(err, "create debit entry", input.OwnerID)
	}

	credit := &domain.Entry{
		ID:               uc.idGen.Generate(),
		OwnerID:          input.OwnerID,
		AccountID:        to.ID,
		CounterAccountID: from.ID,
		LinkedEntryID:    &debit.ID,
		Direction:        domain.DirectionCredit,
		Category:         domain.CategoryTransfer,
		Subcategory:      "From: " + from.Name,
		Description:      description,
		Notes:            input.Notes,
		Amount:           input.Amount,
		Date:             date,
		Status:           domain.EntryStatusActive,
		CreatedAt:        now,
	}

	if err := uc.entryRepo.Create(ctx, tx, credit); err != nil {
		return nil, uc.internal(err, "create credit entry", input.OwnerID)
	}

	if err := uc.entryRepo.SetLinkedEntry(ctx, tx, debit.ID, credit.ID); err != nil {
		return nil, uc.internal(err, "link entry pair", input.OwnerID)
	}

	debit.LinkedEntryID = &credit.ID

	if err := uc.accountRepo.ApplyBalanceDelta(ctx, tx, from.ID, input.Amount.Neg(), now); err != nil {
		return nil, uc.internal(err, "debit source balance", input.OwnerID)
	}

	if err := uc.accountRepo.ApplyBalanceDelta(ctx, tx, to.ID, input.Amount, now); err != nil {
		return nil, uc.internal(err, "credit destination balance", input.OwnerID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, uc.internal(err, "commit transfer", input.OwnerID)
	}

	return domain.NewTransferFromPair(debit, credit, from.Name, to.Name), nil
}

// GetTransfer resolves a transfer by either entry ID of its pair. The debit
// entry defines the source side by direction, not by which ID was looked up,
// so both IDs return the same logical transfer.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id, ownerID string) (*domain.Transfer, error) {
	found, linked, err := uc.entryRepo.GetPair(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	debit, credit := domain.OrderPair(found, linked)

	from, err := uc.accountRepo.GetByID(ctx, debit.AccountID, ownerID)
	if err != nil {
		return nil, err
	}

	to, err := uc.accountRepo.GetByID(ctx, credit.AccountID, ownerID)
	if err != nil {
		return nil, err
	}

	return domain.NewTransferFromPair(debit, credit, from.Name, to.Name), nil
}

// ListTransfersInput represents filters for listing transfers.
type ListTransfersInput struct {
	OwnerID       string
	AccountID     string
	FromAccountID string
	ToAccountID   string
	DateFrom      *time.Time
	DateTo        *time.Time
	AmountMin     *decimal.Decimal
	AmountMax     *decimal.Decimal
	Page          int
	Limit         int
	SortBy        string
	SortDesc      bool
}

// TransferPage is one page of transfers plus the total count over the same
// filter predicate.
type TransferPage struct {
	Transfers []*domain.Transfer
	Total     int64
	Page      int
	Limit     int
}

// ListTransfers lists the caller's live transfers. The single-account filter
// matches either side of a pair and overrides the from/to filters.
func (uc *TransferUseCase) ListTransfers(ctx context.Context, input ListTransfersInput) (*TransferPage, error) {
	if input.Page < 1 {
		input.Page = 1
	}

	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}

	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}

	if input.SortBy != SortByAmount {
		input.SortBy = SortByDate
	}

	filter := TransferFilter{
		OwnerID:       input.OwnerID,
		AccountID:     input.AccountID,
		FromAccountID: input.FromAccountID,
		ToAccountID:   input.ToAccountID,
		DateFrom:      input.DateFrom,
		DateTo:        input.DateTo,
		AmountMin:     input.AmountMin,
		AmountMax:     input.AmountMax,
		Limit:         input.Limit,
		Offset:        (input.Page - 1) * input.Limit,
		SortBy:        input.SortBy,
		SortDesc:      input.SortDesc,
	}

	pairs, total, err := uc.entryRepo.ListPairs(ctx, filter)
	if err != nil {
		return nil, err
	}

	transfers := make([]*domain.Transfer, 0, len(pairs))
	for _, p := range pairs {
		transfers = append(transfers, domain.NewTransferFromPair(p.Debit, p.Credit, p.FromAccountName, p.ToAccountName))
	}

	return &TransferPage{
		Transfers: transfers,
		Total:     total,
		Page:      input.Page,
		Limit:     input.Limit,
	}, nil
}

// DeleteTransfer cancels a transfer: both entries of the pair are
// soft-deleted and the balance effect is reversed, all inside one
// transaction. Cancelling an already-cancelled transfer returns
// domain.ErrTransferNotFound.
func (uc *TransferUseCase) DeleteTransfer(ctx context.Context, id, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	found, linked, err := uc.entryRepo.GetPairForUpdate(ctx, tx, id, ownerID)
	if err != nil {
		return err
	}

	debit, credit := domain.OrderPair(found, linked)

	ids := []string{debit.AccountID, credit.AccountID}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ownerID, ids)
	if err != nil {
		return err
	}

	if len(accounts) != len(ids) {
		return domain.ErrAccountNotFound
	}

	now := time.Now().UTC()

	if err := uc.entryRepo.SoftDelete(ctx, tx, []string{debit.ID, credit.ID}, now, ownerID); err != nil {
		return uc.internal(err, "soft delete entry pair", ownerID)
	}

	// Exact inverse of creation: the source account gets the amount back,
	// the destination gives it up.
	if err := uc.accountRepo.ApplyBalanceDelta(ctx, tx, debit.AccountID, debit.Amount, now); err != nil {
		return uc.internal(err, "restore source balance", ownerID)
	}

	if err := uc.accountRepo.ApplyBalanceDelta(ctx, tx, credit.AccountID, credit.Amount.Neg(), now); err != nil {
		return uc.internal(err, "restore destination balance", ownerID)
	}

	if err := tx.Commit(ctx); err != nil {
		return uc.internal(err, "commit cancellation", ownerID)
	}

	return nil
}

// internal records the original persistence failure with context before it
// is surfaced; the API layer replaces it with an opaque message.
func (uc *TransferUseCase) internal(err error, op, ownerID string) error {
	uc.logger.Error().
		Err(err).
		Str("operation", op).
		Str("owner_id", ownerID).
		Msg("transfer persistence failure")

	return err
}
