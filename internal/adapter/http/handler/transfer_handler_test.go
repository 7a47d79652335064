package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/dto"
	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

type transferServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateTransferInput) (*usecase.TransferResult, error)
	getFn    func(ctx context.Context, ownerID, entryID string) (*usecase.TransferResult, error)
}

func (s *transferServiceStub) CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*usecase.TransferResult, error) {
	return s.createFn(ctx, input)
}

func (s *transferServiceStub) GetPair(ctx context.Context, ownerID, entryID string) (*usecase.TransferResult, error) {
	return s.getFn(ctx, ownerID, entryID)
}

func strptr(s string) *string { return &s }

func TestTransferHandler_Create_Success(t *testing.T) {
	result := &usecase.TransferResult{
		FromEntry: &domain.Transaction{
			ID:                   "txn-1",
			Amount:               decimal.NewFromInt(200),
			MovementType:         domain.MovementTransfer,
			FromAccountID:        strptr("acc-1"),
			ToAccountID:          strptr("acc-2"),
			BalanceImpact:        decimal.NewFromInt(-200),
			RelatedTransactionID: strptr("txn-2"),
		},
		ToEntry: &domain.Transaction{
			ID:                   "txn-2",
			Amount:               decimal.NewFromInt(200),
			MovementType:         domain.MovementTransfer,
			FromAccountID:        strptr("acc-1"),
			ToAccountID:          strptr("acc-2"),
			BalanceImpact:        decimal.NewFromInt(200),
			RelatedTransactionID: strptr("txn-1"),
		},
	}

	var captured usecase.CreateTransferInput
	h := NewTransferHandler(&transferServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*usecase.TransferResult, error) {
			captured = input
			return result, nil
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        decimal.NewFromInt(200),
	})

	rec := httptest.NewRecorder()
	h.Create(rec, ownedRequest(http.MethodPost, "/api/v1/transfers", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.OwnerID != "owner-1" || captured.FromAccountID != "acc-1" || captured.ToAccountID != "acc-2" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.FromEntry.ID != "txn-1" || resp.ToEntry.ID != "txn-2" {
		t.Fatalf("expected linked pair in response, got %+v", resp)
	}
}

func TestTransferHandler_Create_InsufficientFunds(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*usecase.TransferResult, error) {
			return nil, domain.ErrInsufficientFunds
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-2",
		Amount:        decimal.NewFromInt(9999),
	})

	rec := httptest.NewRecorder()
	h.Create(rec, ownedRequest(http.MethodPost, "/api/v1/transfers", body))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestTransferHandler_Create_SelfTransfer(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*usecase.TransferResult, error) {
			return nil, domain.ErrSelfTransfer
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: "acc-1",
		ToAccountID:   "acc-1",
		Amount:        decimal.NewFromInt(10),
	})

	rec := httptest.NewRecorder()
	h.Create(rec, ownedRequest(http.MethodPost, "/api/v1/transfers", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_Get_NotFound(t *testing.T) {
	h := NewTransferHandler(&transferServiceStub{
		getFn: func(ctx context.Context, ownerID, entryID string) (*usecase.TransferResult, error) {
			return nil, domain.ErrTransactionNotFound
		},
	})

	req := setChiURLParam(ownedRequest(http.MethodGet, "/api/v1/transfers/txn-9", nil), "id", "txn-9")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
