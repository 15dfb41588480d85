package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/domain"
	"github.com/famstack/famledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	OpeningBalance   decimal.Decimal `json:"opening_balance"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:               a.ID,
		Name:             a.Name,
		Type:             string(a.Type),
		OpeningBalance:   a.OpeningBalance,
		CurrentBalance:   a.CurrentBalance,
		AvailableBalance: a.AvailableBalance,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// EntryRefResponse identifies one side of a transfer pair.
type EntryRefResponse struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Direction string          `json:"direction"`
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID              string           `json:"id"`
	FromAccountID   string           `json:"from_account_id"`
	ToAccountID     string           `json:"to_account_id"`
	FromAccountName string           `json:"from_account_name"`
	ToAccountName   string           `json:"to_account_name"`
	Amount          decimal.Decimal  `json:"amount"`
	Date            time.Time        `json:"date"`
	Description     string           `json:"description"`
	Notes           string           `json:"notes,omitempty"`
	FromEntry       EntryRefResponse `json:"from_entry"`
	ToEntry         EntryRefResponse `json:"to_entry"`
	CreatedAt       time.Time        `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:              t.ID,
		FromAccountID:   t.FromAccountID,
		ToAccountID:     t.ToAccountID,
		FromAccountName: t.FromAccountName,
		ToAccountName:   t.ToAccountName,
		Amount:          t.Amount,
		Date:            t.Date,
		Description:     t.Description,
		Notes:           t.Notes,
		FromEntry:       entryRefFromDomain(t.FromEntry),
		ToEntry:         entryRefFromDomain(t.ToEntry),
		CreatedAt:       t.CreatedAt,
	}
}

func entryRefFromDomain(ref domain.EntryRef) EntryRefResponse {
	return EntryRefResponse{
		ID:        ref.ID,
		AccountID: ref.AccountID,
		Amount:    ref.Amount,
		Direction: string(ref.Direction),
	}
}

// TransferListResponse is one page of transfers.
type TransferListResponse struct {
	Transfers []*TransferResponse `json:"transfers"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Limit     int                 `json:"limit"`
}

// TransferPageFromUseCase converts a use case page to a response.
func TransferPageFromUseCase(page *usecase.TransferPage) *TransferListResponse {
	transfers := make([]*TransferResponse, len(page.Transfers))
	for i, t := range page.Transfers {
		transfers[i] = TransferFromDomain(t)
	}
	return &TransferListResponse{
		Transfers: transfers,
		Total:     page.Total,
		Page:      page.Page,
		Limit:     page.Limit,
	}
}

// EntryResponse represents a ledger entry in statement views.
type EntryResponse struct {
	ID               string          `json:"id"`
	AccountID        string          `json:"account_id"`
	CounterAccountID string          `json:"counter_account_id"`
	Direction        string          `json:"direction"`
	Category         string          `json:"category"`
	Subcategory      string          `json:"subcategory,omitempty"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	SignedAmount     decimal.Decimal `json:"signed_amount"`
	Date             time.Time       `json:"date"`
	CreatedAt        time.Time       `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:               e.ID,
		AccountID:        e.AccountID,
		CounterAccountID: e.CounterAccountID,
		Direction:        string(e.Direction),
		Category:         e.Category,
		Subcategory:      e.Subcategory,
		Description:      e.Description,
		Amount:           e.Amount,
		SignedAmount:     e.SignedAmount(),
		Date:             e.Date,
		CreatedAt:        e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ReconciliationResponse reports a balance recalculation.
type ReconciliationResponse struct {
	AccountID         string          `json:"account_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	Adjusted          bool            `json:"adjusted"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to a response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		Adjusted:          r.Adjusted,
		CheckedAt:         r.CheckedAt,
	}
}

// ConsistencyResponse reports a ledger-wide consistency check.
type ConsistencyResponse struct {
	Consistent bool   `json:"consistent"`
	Detail     string `json:"detail,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
