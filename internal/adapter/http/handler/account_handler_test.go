package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/adapter/http/dto"
	"github.com/famstack/famledger/internal/domain"
	"github.com/famstack/famledger/internal/usecase"
)

type accountServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn    func(ctx context.Context, id, ownerID string) (*domain.Account, error)
	listFn   func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id, ownerID string) (*domain.Account, error) {
	return s.getFn(ctx, id, ownerID)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

type entryServiceStub struct {
	listFn func(ctx context.Context, input usecase.ListEntriesByAccountInput) ([]*domain.Entry, error)
}

func (s *entryServiceStub) ListEntriesByAccount(ctx context.Context, input usecase.ListEntriesByAccountInput) ([]*domain.Entry, error) {
	return s.listFn(ctx, input)
}

type reconciliationServiceStub struct {
	recalcFn func(ctx context.Context, accountID, ownerID string) (*usecase.ReconciliationResult, error)
}

func (s *reconciliationServiceStub) RecalculateBalance(ctx context.Context, accountID, ownerID string) (*usecase.ReconciliationResult, error) {
	return s.recalcFn(ctx, accountID, ownerID)
}

func TestAccountHandler_Create(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			if input.OwnerID != "owner-1" {
				t.Fatalf("owner = %q", input.OwnerID)
			}
			return &domain.Account{
				ID:             "acc-1",
				Name:           input.Name,
				Type:           input.Type,
				CurrentBalance: input.OpeningBalance,
			}, nil
		},
	}, nil, nil)

	body, _ := json.Marshal(dto.CreateAccountRequest{
		Name:           "Checking",
		Type:           "checking",
		OpeningBalance: decimal.NewFromInt(500),
	})

	req := asOwner(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)), "owner-1")
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" || resp.Type != "checking" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAccountHandler_Create_InvalidType(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrInvalidAccountType
		},
	}, nil, nil)

	body, _ := json.Marshal(dto.CreateAccountRequest{Name: "X", Type: "offshore"})

	req := asOwner(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)), "owner-1")
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_ListEntries(t *testing.T) {
	h := NewAccountHandler(nil, &entryServiceStub{
		listFn: func(ctx context.Context, input usecase.ListEntriesByAccountInput) ([]*domain.Entry, error) {
			if input.AccountID != "acc-1" || input.OwnerID != "owner-1" {
				t.Fatalf("unexpected input %+v", input)
			}
			return []*domain.Entry{
				{ID: "e1", Direction: domain.DirectionDebit, Amount: decimal.NewFromInt(30)},
			}, nil
		},
	}, nil)

	req := asOwner(httptest.NewRequest(http.MethodGet, "/accounts/acc-1/entries", nil), "owner-1")
	req = withURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	h.ListEntries(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp) != 1 || !resp[0].SignedAmount.Equal(decimal.NewFromInt(-30)) {
		t.Fatalf("unexpected entries %+v", resp)
	}
}

func TestAccountHandler_Recalculate(t *testing.T) {
	h := NewAccountHandler(nil, nil, &reconciliationServiceStub{
		recalcFn: func(ctx context.Context, accountID, ownerID string) (*usecase.ReconciliationResult, error) {
			return &usecase.ReconciliationResult{
				AccountID:         accountID,
				RecordedBalance:   decimal.NewFromInt(999),
				CalculatedBalance: decimal.NewFromInt(80),
				Difference:        decimal.NewFromInt(-919),
				Adjusted:          true,
			}, nil
		},
	})

	req := asOwner(httptest.NewRequest(http.MethodPost, "/accounts/acc-1/recalculate", nil), "owner-1")
	req = withURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	h.Recalculate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ReconciliationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.Adjusted || resp.AccountID != "acc-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}
