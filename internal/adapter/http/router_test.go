package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/dto"
	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/handler"
	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/middleware"
	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

type routerAccountStub struct{}

func (routerAccountStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return &domain.Account{ID: "acc-1", OwnerID: input.OwnerID}, nil
}

func (routerAccountStub) GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	return &domain.Account{ID: id, OwnerID: ownerID}, nil
}

func (routerAccountStub) ListAccounts(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error) {
	return []*domain.Account{{ID: "acc-1", OwnerID: ownerID}}, nil
}

func (routerAccountStub) DeactivateAccount(ctx context.Context, ownerID, id string) error {
	return nil
}

func newTestRouter() stdhttp.Handler {
	return NewRouter(RouterConfig{
		AccountHandler: handler.NewAccountHandler(routerAccountStub{}),
		HealthHandler:  handler.NewHealthHandler(nil, nil),
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(stdhttp.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterRejectsMissingOwnerHeader(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(stdhttp.MethodGet, "/api/v1/accounts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("expected 401 without %s, got %d", middleware.OwnerIDHeader, rec.Code)
	}
}

func TestRouterScopesRequestsToOwner(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(stdhttp.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set(middleware.OwnerIDHeader, "owner-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(resp.Accounts))
	}
}

func TestRouterServesMetrics(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(stdhttp.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
