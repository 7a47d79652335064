package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	Reconcile(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error)
	ReconcileCard(ctx context.Context, ownerID, cardID string) (*usecase.ReconciliationResult, error)
	ReconcileAll(ctx context.Context, ownerID string) ([]*usecase.ReconciliationResult, error)
	FixDiscrepancy(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error)
}

// ReconciliationHandler serves balance consistency checks and fixes.
type ReconciliationHandler struct {
	reconcileUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconcileUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconcileUC: reconcileUC}
}

// Reconcile checks one account's cached balance against the ledger sum.
// Read-only; a discrepancy is reported, never fixed.
func (h *ReconciliationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "invalid_body")
		return
	}

	result, err := h.reconcileUC.Reconcile(r.Context(), ownerID(r), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ReconcileCard checks one card's outstanding debt against the ledger sum.
func (h *ReconciliationHandler) ReconcileCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")
	if cardID == "" {
		writeError(w, http.StatusBadRequest, "missing credit card ID", "invalid_body")
		return
	}

	result, err := h.reconcileUC.ReconcileCard(r.Context(), ownerID(r), cardID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ReconcileAll checks every account the owner holds.
func (h *ReconciliationHandler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.reconcileUC.ReconcileAll(r.Context(), ownerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// Fix overwrites the account's cached balance with the recalculated ledger
// sum and records the correction in the audit trail.
func (h *ReconciliationHandler) Fix(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "invalid_body")
		return
	}

	result, err := h.reconcileUC.FixDiscrepancy(r.Context(), ownerID(r), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
