package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/domain"
	"github.com/famstack/famledger/internal/usecase"
	"github.com/famstack/famledger/internal/usecase/mocks"
)

func TestCreateAccount(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.CreateAccountInput
		wantErr error
	}{
		{
			name: "valid checking account",
			input: usecase.CreateAccountInput{
				OwnerID:        testOwner,
				Name:           "Joint Checking",
				Type:           domain.AccountTypeChecking,
				OpeningBalance: decimal.RequireFromString("2500.00"),
			},
		},
		{
			name: "empty name",
			input: usecase.CreateAccountInput{
				OwnerID: testOwner,
				Name:    "   ",
				Type:    domain.AccountTypeChecking,
			},
			wantErr: domain.ErrInvalidAccountName,
		},
		{
			name: "unknown type",
			input: usecase.CreateAccountInput{
				OwnerID: testOwner,
				Name:    "Mystery",
				Type:    domain.AccountType("offshore"),
			},
			wantErr: domain.ErrInvalidAccountType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockAccountRepository()
			uc := usecase.NewAccountUseCase(repo, mocks.NewMockIDGenerator())

			account, err := uc.CreateAccount(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateAccount() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("CreateAccount() error = %v", err)
			}

			if account.ID == "" {
				t.Error("expected generated ID")
			}

			if !account.CurrentBalance.Equal(tt.input.OpeningBalance) ||
				!account.AvailableBalance.Equal(tt.input.OpeningBalance) {
				t.Error("balances must start at the opening balance")
			}

			stored, err := uc.GetAccount(context.Background(), account.ID, testOwner)
			if err != nil {
				t.Fatalf("GetAccount() error = %v", err)
			}

			if stored.Name != "Joint Checking" {
				t.Errorf("stored name = %q", stored.Name)
			}
		})
	}
}

func TestGetAccount_ScopedToOwner(t *testing.T) {
	repo := mocks.NewMockAccountRepository()
	repo.Seed(&domain.Account{ID: "acc-1", OwnerID: testOwner, Name: "Checking"})

	uc := usecase.NewAccountUseCase(repo, mocks.NewMockIDGenerator())

	_, err := uc.GetAccount(context.Background(), "acc-1", "owner-2")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("GetAccount() error = %v, want ErrAccountNotFound", err)
	}
}

func TestListAccounts_LimitClamped(t *testing.T) {
	repo := mocks.NewMockAccountRepository()

	var gotLimit int
	repo.ListFunc = func(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error) {
		gotLimit = limit
		return nil, nil
	}

	uc := usecase.NewAccountUseCase(repo, mocks.NewMockIDGenerator())

	if _, err := uc.ListAccounts(context.Background(), usecase.ListAccountsInput{
		OwnerID: testOwner,
		Limit:   9999,
	}); err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}

	if gotLimit != usecase.MaxPageSize {
		t.Errorf("limit = %d, want %d", gotLimit, usecase.MaxPageSize)
	}
}
