package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/dto"
	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Create(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	CreateBulk(ctx context.Context, input usecase.CreateBulkInput) ([]*domain.Transaction, error)
	CreateSkipErrors(ctx context.Context, inputs []usecase.CreateTransactionInput) *usecase.BulkResult
	GetTransaction(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, input usecase.ListByAccountInput) ([]*domain.Transaction, error)
}

// TransactionHandler handles ledger entry HTTP requests.
type TransactionHandler struct {
	entryUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(entryUC TransactionService) *TransactionHandler {
	return &TransactionHandler{entryUC: entryUC}
}

// Create records a single transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_body")
		return
	}

	entry, err := h.entryUC.Create(r.Context(), req.ToUseCaseInput(ownerID(r)))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(entry))
}

// CreateBulk records multiple transactions. The default mode is atomic:
// one bad row rejects the whole batch. With skip_errors each row is applied
// independently and per-row outcomes are returned.
func (h *TransactionHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBulkTransactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "invalid_body")
		return
	}

	inputs := req.ToUseCaseInputs(ownerID(r))

	if req.SkipErrors {
		result := h.entryUC.CreateSkipErrors(r.Context(), inputs)
		writeJSON(w, http.StatusOK, dto.BulkFromResult(result))
		return
	}

	entries, err := h.entryUC.CreateBulk(r.Context(), usecase.CreateBulkInput{Transactions: inputs})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(entries),
		Total:        int64(len(entries)),
	})
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "invalid_body")
		return
	}

	entry, err := h.entryUC.GetTransaction(r.Context(), ownerID(r), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(entry))
}

// ListByAccount lists an account's ledger entries, most recent first.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "invalid_body")
		return
	}

	entries, err := h.entryUC.ListByAccount(r.Context(), usecase.ListByAccountInput{
		OwnerID:   ownerID(r),
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(entries),
		Total:        int64(len(entries)),
	})
}
