package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

type reconciliationServiceStub struct {
	reconcileFn     func(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error)
	reconcileCardFn func(ctx context.Context, ownerID, cardID string) (*usecase.ReconciliationResult, error)
	reconcileAllFn  func(ctx context.Context, ownerID string) ([]*usecase.ReconciliationResult, error)
	fixFn           func(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error)
}

func (s *reconciliationServiceStub) Reconcile(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error) {
	return s.reconcileFn(ctx, ownerID, accountID)
}

func (s *reconciliationServiceStub) ReconcileCard(ctx context.Context, ownerID, cardID string) (*usecase.ReconciliationResult, error) {
	return s.reconcileCardFn(ctx, ownerID, cardID)
}

func (s *reconciliationServiceStub) ReconcileAll(ctx context.Context, ownerID string) ([]*usecase.ReconciliationResult, error) {
	return s.reconcileAllFn(ctx, ownerID)
}

func (s *reconciliationServiceStub) FixDiscrepancy(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error) {
	return s.fixFn(ctx, ownerID, accountID)
}

func TestReconciliationHandler_Reconcile_ReportsDrift(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		reconcileFn: func(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error) {
			return &usecase.ReconciliationResult{
				AccountID:         accountID,
				CachedBalance:     decimal.NewFromInt(100),
				CalculatedBalance: decimal.NewFromInt(70),
				Discrepancy:       decimal.NewFromInt(30),
				IsBalanced:        false,
				CheckedAt:         time.Now().UTC(),
			}, nil
		},
	})

	req := setChiURLParam(ownedRequest(http.MethodPost, "/api/v1/accounts/acc-1/reconcile", nil), "id", "acc-1")
	rec := httptest.NewRecorder()
	h.Reconcile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp usecase.ReconciliationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.IsBalanced || !resp.Discrepancy.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected discrepancy 30, got %+v", resp)
	}
}

func TestReconciliationHandler_Reconcile_Forbidden(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		reconcileFn: func(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error) {
			return nil, domain.ErrOwnershipViolation
		},
	})

	req := setChiURLParam(ownedRequest(http.MethodPost, "/api/v1/accounts/acc-1/reconcile", nil), "id", "acc-1")
	rec := httptest.NewRecorder()
	h.Reconcile(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestReconciliationHandler_ReconcileAll(t *testing.T) {
	h := NewReconciliationHandler(&reconciliationServiceStub{
		reconcileAllFn: func(ctx context.Context, ownerID string) ([]*usecase.ReconciliationResult, error) {
			return []*usecase.ReconciliationResult{
				{AccountID: "acc-1", IsBalanced: true},
				{AccountID: "acc-2", IsBalanced: false},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.ReconcileAll(rec, ownedRequest(http.MethodPost, "/api/v1/accounts/reconcile", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*usecase.ReconciliationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp))
	}
}

func TestReconciliationHandler_Fix(t *testing.T) {
	var fixed string
	h := NewReconciliationHandler(&reconciliationServiceStub{
		fixFn: func(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error) {
			fixed = accountID
			return &usecase.ReconciliationResult{AccountID: accountID, IsBalanced: true}, nil
		},
	})

	req := setChiURLParam(ownedRequest(http.MethodPost, "/api/v1/accounts/acc-1/reconcile/fix", nil), "id", "acc-1")
	rec := httptest.NewRecorder()
	h.Fix(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fixed != "acc-1" {
		t.Fatalf("expected fix on acc-1, got %q", fixed)
	}
}
