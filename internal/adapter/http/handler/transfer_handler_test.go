package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/famstack/famledger/internal/adapter/http/dto"
	"github.com/famstack/famledger/internal/adapter/http/middleware"
	"github.com/famstack/famledger/internal/domain"
	"github.com/famstack/famledger/internal/infrastructure/metrics"
	"github.com/famstack/famledger/internal/usecase"
)

type transferServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error)
	getFn    func(ctx context.Context, id, ownerID string) (*domain.Transfer, error)
	listFn   func(ctx context.Context, input usecase.ListTransfersInput) (*usecase.TransferPage, error)
	deleteFn func(ctx context.Context, id, ownerID string) error
}

func (s *transferServiceStub) CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
	return s.createFn(ctx, input)
}

func (s *transferServiceStub) GetTransfer(ctx context.Context, id, ownerID string) (*domain.Transfer, error) {
	return s.getFn(ctx, id, ownerID)
}

func (s *transferServiceStub) ListTransfers(ctx context.Context, input usecase.ListTransfersInput) (*usecase.TransferPage, error) {
	return s.listFn(ctx, input)
}

func (s *transferServiceStub) DeleteTransfer(ctx context.Context, id, ownerID string) error {
	return s.deleteFn(ctx, id, ownerID)
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asOwner attaches the owner the middleware would have set.
func asOwner(r *http.Request, owner string) *http.Request {
	return r.WithContext(middleware.WithOwner(r.Context(), owner))
}

func TestTransferHandler_Create_Success(t *testing.T) {
	transfer := &domain.Transfer{ID: "tx-1", Amount: decimal.NewFromInt(100)}
	var captured usecase.CreateTransferInput

	h := NewTransferHandler(&transferServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
			captured = input
			return transfer, nil
		},
	}, metrics.New())

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        decimal.NewFromInt(100),
	})

	req := asOwner(httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body)), "owner-1")
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if captured.FromAccountID != "acc-1" || captured.ToAccountID != "acc-2" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	if captured.OwnerID != "owner-1" {
		t.Fatalf("expected owner from context, got %q", captured.OwnerID)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "tx-1" {
		t.Fatalf("expected transfer ID tx-1, got %s", resp.ID)
	}
}

func TestTransferHandler_Create_InvalidBody(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
			t.Fatal("CreateTransfer should not be called")
			return nil, nil
		},
	}, metrics.New())

	req := asOwner(httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString("{bad json")), "owner-1")
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Create_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail bool
	}{
		{
			name:       "validation error carries detail",
			err:        domain.ErrSameAccount,
			wantStatus: http.StatusBadRequest,
			wantDetail: true,
		},
		{
			name: "insufficient funds carries amounts",
			err: &domain.InsufficientFundsError{
				AccountID: "acc-1",
				Available: decimal.NewFromInt(50),
				Required:  decimal.NewFromInt(100),
			},
			wantStatus: http.StatusBadRequest,
			wantDetail: true,
		},
		{
			name:       "missing account is 404",
			err:        domain.ErrAccountNotFound,
			wantStatus: http.StatusNotFound,
			wantDetail: true,
		},
		{
			name:       "internal error is opaque",
			err:        errors.New("pq: connection refused to db-host:5432"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTransferHandler(&transferServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
					return nil, tt.err
				},
			}, metrics.New())

			body, _ := json.Marshal(dto.CreateTransferRequest{
				FromAccountID: "acc-1",
				ToAccountID:   "acc-2",
				Amount:        decimal.NewFromInt(100),
			})

			req := asOwner(httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body)), "owner-1")
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}

			var resp dto.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if tt.wantDetail && resp.Message == "" {
				t.Error("expected error detail in response")
			}

			if !tt.wantDetail && resp.Message != "" {
				t.Errorf("internal detail leaked to client: %q", resp.Message)
			}
		})
	}
}

func TestTransferHandler_Get(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{
		getFn: func(ctx context.Context, id, ownerID string) (*domain.Transfer, error) {
			if id != "tx-1" || ownerID != "owner-1" {
				t.Fatalf("unexpected lookup %s/%s", id, ownerID)
			}
			return &domain.Transfer{ID: "tx-1"}, nil
		},
	}, metrics.New())

	req := asOwner(httptest.NewRequest(http.MethodGet, "/transfers/tx-1", nil), "owner-1")
	req = withURLParam(req, "id", "tx-1")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTransferHandler_Get_NotFound(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{
		getFn: func(ctx context.Context, id, ownerID string) (*domain.Transfer, error) {
			return nil, domain.ErrTransferNotFound
		},
	}, metrics.New())

	req := asOwner(httptest.NewRequest(http.MethodGet, "/transfers/tx-gone", nil), "owner-1")
	req = withURLParam(req, "id", "tx-gone")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTransferHandler_List_QueryParams(t *testing.T) {
	var captured usecase.ListTransfersInput

	h := NewTransferHandler(&transferServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransfersInput) (*usecase.TransferPage, error) {
			captured = input
			return &usecase.TransferPage{Page: input.Page, Limit: input.Limit}, nil
		},
	}, metrics.New())

	url := "/transfers?account_id=acc-1&date_from=2025-01-01T00:00:00Z&amount_min=10.50&page=2&limit=25&sort_by=amount&order=asc"
	req := asOwner(httptest.NewRequest(http.MethodGet, url, nil), "owner-1")
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if captured.AccountID != "acc-1" || captured.Page != 2 || captured.Limit != 25 {
		t.Fatalf("unexpected input %+v", captured)
	}

	if captured.DateFrom == nil || captured.AmountMin == nil {
		t.Fatal("expected date_from and amount_min to parse")
	}

	if captured.SortBy != "amount" || captured.SortDesc {
		t.Fatalf("unexpected sort %q desc=%v", captured.SortBy, captured.SortDesc)
	}
}

func TestTransferHandler_Delete(t *testing.T) {
	deleted := false

	h := NewTransferHandler(&transferServiceStub{
		deleteFn: func(ctx context.Context, id, ownerID string) error {
			deleted = true
			return nil
		},
	}, metrics.New())

	req := asOwner(httptest.NewRequest(http.MethodDelete, "/transfers/tx-1", nil), "owner-1")
	req = withURLParam(req, "id", "tx-1")
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	if !deleted {
		t.Fatal("expected DeleteTransfer to be called")
	}
}

func TestTransferHandler_Delete_AlreadyCancelled(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{
		deleteFn: func(ctx context.Context, id, ownerID string) error {
			return domain.ErrTransferNotFound
		},
	}, metrics.New())

	req := asOwner(httptest.NewRequest(http.MethodDelete, "/transfers/tx-1", nil), "owner-1")
	req = withURLParam(req, "id", "tx-1")
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
