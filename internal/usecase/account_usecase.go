package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/domain"
)

// AccountUseCase handles account directory operations.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	OwnerID        string
	Name           string
	Type           domain.AccountType
	OpeningBalance decimal.Decimal
}

// CreateAccount creates a new account. Current and available balances start
// at the opening balance; every later change flows through ledger entries.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if !domain.ValidAccountType(input.Type) {
		return nil, domain.ErrInvalidAccountType
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:               uc.idGen.Generate(),
		OwnerID:          input.OwnerID,
		Name:             strings.TrimSpace(input.Name),
		Type:             input.Type,
		OpeningBalance:   input.OpeningBalance,
		CurrentBalance:   input.OpeningBalance,
		AvailableBalance: input.OpeningBalance,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID, scoped to its owner.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id, ownerID string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id, ownerID)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	OwnerID string
	Limit   int
	Offset  int
}

// ListAccounts lists the caller's accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}

	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}

	if input.Offset < 0 {
		input.Offset = 0
	}

	return uc.accountRepo.List(ctx, input.OwnerID, input.Limit, input.Offset)
}
