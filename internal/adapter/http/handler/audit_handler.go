package handler

import (
	"context"
	"net/http"

	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/dto"
	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
)

// AuditService defines the behavior needed by AuditHandler.
type AuditService interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// AuditHandler serves the audit trail.
type AuditHandler struct {
	auditRepo AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditRepo AuditService) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// List returns the owner's audit log entries, most recent first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.auditRepo.List(r.Context(), domain.AuditFilter{
		OwnerID:      ownerID(r),
		Action:       r.URL.Query().Get("action"),
		ResourceType: r.URL.Query().Get("resource_type"),
		ResourceID:   r.URL.Query().Get("resource_id"),
		Limit:        parseIntQuery(r, "limit", 100),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
