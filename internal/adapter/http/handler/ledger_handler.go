package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/famstack/famledger/internal/adapter/http/dto"
	"github.com/famstack/famledger/internal/usecase"
)

// LedgerService runs ledger-wide checks.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (bool, error)
}

// LedgerHandler handles ledger-wide HTTP requests.
type LedgerHandler struct {
	ledger LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Consistency reports whether the ledger balances and all pair links hold.
// An inconsistent ledger is a 200 with consistent=false; only a failed check
// is an error.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	ok, err := h.ledger.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) {
			writeJSON(w, http.StatusOK, dto.ConsistencyResponse{
				Consistent: false,
				Detail:     err.Error(),
			})

			return
		}

		writeError(w, http.StatusInternalServerError, "failed to check consistency", "")

		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{Consistent: ok})
}
