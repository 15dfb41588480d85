package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/famstack/famledger/internal/adapter/http/dto"
	"github.com/famstack/famledger/internal/adapter/http/middleware"
	"github.com/famstack/famledger/internal/domain"
	"github.com/famstack/famledger/internal/infrastructure/metrics"
	"github.com/famstack/famledger/internal/usecase"
)

// TransferService is the transfer engine surface the handler needs.
type TransferService interface {
	CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error)
	GetTransfer(ctx context.Context, id, ownerID string) (*domain.Transfer, error)
	ListTransfers(ctx context.Context, input usecase.ListTransfersInput) (*usecase.TransferPage, error)
	DeleteTransfer(ctx context.Context, id, ownerID string) error
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transfers TransferService
	metrics   *metrics.Metrics
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transfers TransferService, m *metrics.Metrics) *TransferHandler {
	return &TransferHandler{transfers: transfers, metrics: m}
}

// Create creates a new transfer.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput(middleware.OwnerID(r.Context()))

	transfer, err := h.transfers.CreateTransfer(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to create transfer")
		return
	}

	h.metrics.TransfersCreated.Inc()
	h.metrics.TransferAmount.Observe(transfer.Amount.InexactFloat64())

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(transfer))
}

// Get retrieves a transfer by either entry ID of its pair.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	transfer, err := h.transfers.GetTransfer(r.Context(), id, middleware.OwnerID(r.Context()))
	if err != nil {
		writeDomainError(w, err, "failed to get transfer")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// List lists transfers with filters and pagination.
func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	input := usecase.ListTransfersInput{
		OwnerID:       middleware.OwnerID(r.Context()),
		AccountID:     q.Get("account_id"),
		FromAccountID: q.Get("from_account_id"),
		ToAccountID:   q.Get("to_account_id"),
		DateFrom:      parseTimeQuery(r, "date_from"),
		DateTo:        parseTimeQuery(r, "date_to"),
		AmountMin:     parseDecimalQuery(r, "amount_min"),
		AmountMax:     parseDecimalQuery(r, "amount_max"),
		Page:          parseIntQuery(r, "page", 1),
		Limit:         parseIntQuery(r, "limit", 0),
		SortBy:        q.Get("sort_by"),
		SortDesc:      q.Get("order") != "asc",
	}

	page, err := h.transfers.ListTransfers(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to list transfers")
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferPageFromUseCase(page))
}

// Delete cancels a transfer: both entries are tombstoned and the balance
// effect is reversed.
func (h *TransferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	if err := h.transfers.DeleteTransfer(r.Context(), id, middleware.OwnerID(r.Context())); err != nil {
		writeDomainError(w, err, "failed to delete transfer")
		return
	}

	h.metrics.TransfersCancelled.Inc()

	w.WriteHeader(http.StatusNoContent)
}
