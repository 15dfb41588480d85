package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/famstack/famledger/internal/adapter/http/dto"
	"github.com/famstack/famledger/internal/adapter/http/middleware"
	"github.com/famstack/famledger/internal/domain"
	"github.com/famstack/famledger/internal/usecase"
)

// AccountService is the account directory surface the handler needs.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id, ownerID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
}

// EntryService lists ledger entries for statement views.
type EntryService interface {
	ListEntriesByAccount(ctx context.Context, input usecase.ListEntriesByAccountInput) ([]*domain.Entry, error)
}

// ReconciliationService recomputes account balances.
type ReconciliationService interface {
	RecalculateBalance(ctx context.Context, accountID, ownerID string) (*usecase.ReconciliationResult, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accounts       AccountService
	entries        EntryService
	reconciliation ReconciliationService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService, entries EntryService, reconciliation ReconciliationService) *AccountHandler {
	return &AccountHandler{
		accounts:       accounts,
		entries:        entries,
		reconciliation: reconciliation,
	}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req.ToUseCaseInput(middleware.OwnerID(r.Context())))
	if err != nil {
		writeDomainError(w, err, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), id, middleware.OwnerID(r.Context()))
	if err != nil {
		writeDomainError(w, err, "failed to get account")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists the caller's accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context(), usecase.ListAccountsInput{
		OwnerID: middleware.OwnerID(r.Context()),
		Limit:   parseIntQuery(r, "limit", 0),
		Offset:  parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list accounts")
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// ListEntries lists live entries for an account, newest first.
func (h *AccountHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	entries, err := h.entries.ListEntriesByAccount(r.Context(), usecase.ListEntriesByAccountInput{
		AccountID: id,
		OwnerID:   middleware.OwnerID(r.Context()),
		Limit:     parseIntQuery(r, "limit", 0),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list entries")
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Recalculate recomputes the account balance from its entries.
func (h *AccountHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.reconciliation.RecalculateBalance(r.Context(), id, middleware.OwnerID(r.Context()))
	if err != nil {
		writeDomainError(w, err, "failed to recalculate balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}
