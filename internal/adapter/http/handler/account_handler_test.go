package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/dto"
	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/middleware"
	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

type accountServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn        func(ctx context.Context, ownerID, id string) (*domain.Account, error)
	listFn       func(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error)
	deactivateFn func(ctx context.Context, ownerID, id string) error
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error) {
	return s.getFn(ctx, ownerID, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error) {
	return s.listFn(ctx, ownerID, limit, offset)
}

func (s *accountServiceStub) DeactivateAccount(ctx context.Context, ownerID, id string) error {
	return s.deactivateFn(ctx, ownerID, id)
}

func ownedRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	}
	return req.WithContext(middleware.WithOwner(req.Context(), "owner-1"))
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:       "acc-1",
		OwnerID:  "owner-1",
		Name:     "Checking",
		Kind:     domain.AccountChecking,
		Currency: "USD",
		Balance:  decimal.NewFromInt(100),
		Active:   true,
	}

	var captured usecase.CreateAccountInput
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		Name:           "Checking",
		Kind:           "checking",
		Currency:       "USD",
		OpeningBalance: decimal.NewFromInt(100),
	})

	rec := httptest.NewRecorder()
	h.Create(rec, ownedRequest(http.MethodPost, "/api/v1/accounts", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.OwnerID != "owner-1" || captured.Name != "Checking" || captured.Kind != domain.AccountChecking {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
	if !captured.OpeningBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected opening balance 100, got %s", captured.OpeningBalance)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Create(rec, ownedRequest(http.MethodPost, "/api/v1/accounts", []byte("{invalid json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_ValidationError(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrInvalidCurrency
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{Name: "Checking", Kind: "checking", Currency: "XXX"})
	rec := httptest.NewRecorder()
	h.Create(rec, ownedRequest(http.MethodPost, "/api/v1/accounts", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Kind != "invalid_currency" {
		t.Fatalf("expected kind invalid_currency, got %s", resp.Kind)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, ownerID, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := setChiURLParam(ownedRequest(http.MethodGet, "/api/v1/accounts/acc-1", nil), "id", "acc-1")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_ScopesToOwner(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, ownerID, id string) (*domain.Account, error) {
			if ownerID != "owner-1" {
				t.Fatalf("expected owner-1, got %s", ownerID)
			}
			if id != "acc-1" {
				t.Fatalf("expected id acc-1, got %s", id)
			}
			return &domain.Account{ID: "acc-1", OwnerID: ownerID}, nil
		},
	})

	req := setChiURLParam(ownedRequest(http.MethodGet, "/api/v1/accounts/acc-1", nil), "id", "acc-1")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAccountHandler_List(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Account, error) {
			if limit != 5 || offset != 2 {
				t.Fatalf("expected limit=5 offset=2, got limit=%d offset=%d", limit, offset)
			}
			return []*domain.Account{{ID: "acc-1"}, {ID: "acc-2"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, ownedRequest(http.MethodGet, "/api/v1/accounts?limit=5&offset=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(resp.Accounts))
	}
}

func TestAccountHandler_Deactivate(t *testing.T) {
	var deactivated string
	h := NewAccountHandler(&accountServiceStub{
		deactivateFn: func(ctx context.Context, ownerID, id string) error {
			deactivated = id
			return nil
		},
	})

	req := setChiURLParam(ownedRequest(http.MethodDelete, "/api/v1/accounts/acc-1", nil), "id", "acc-1")
	rec := httptest.NewRecorder()
	h.Deactivate(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deactivated != "acc-1" {
		t.Fatalf("expected acc-1 to be deactivated, got %q", deactivated)
	}
}
