package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/dto"
	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// TimelineService defines the behavior needed by TimelineHandler.
type TimelineService interface {
	GetTimeline(ctx context.Context, input usecase.GetTimelineInput) (*usecase.TimelineResult, error)
	GetBalanceAt(ctx context.Context, ownerID, accountID string, asOf time.Time) (decimal.Decimal, error)
	ForceRecompute(ctx context.Context, ownerID, accountID string) (domain.PointStatus, error)
}

// TimelineHandler serves historical balance queries.
type TimelineHandler struct {
	timelineUC TimelineService
}

// NewTimelineHandler creates a new TimelineHandler.
func NewTimelineHandler(timelineUC TimelineService) *TimelineHandler {
	return &TimelineHandler{timelineUC: timelineUC}
}

// GetTimeline returns one balance point per day in [start, end]. Defaults
// to the last 30 days when the range is omitted.
func (h *TimelineHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "invalid_body")
		return
	}

	end, ok := parseDateQuery(r, "end")
	if !ok {
		end = time.Now().UTC()
	}
	start, ok := parseDateQuery(r, "start")
	if !ok {
		start = end.AddDate(0, 0, -30)
	}

	result, err := h.timelineUC.GetTimeline(r.Context(), usecase.GetTimelineInput{
		OwnerID:   ownerID(r),
		AccountID: accountID,
		Start:     start,
		End:       end,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TimelineFromResult(accountID, result))
}

// GetBalanceAt returns the account's balance as of the end of a given day.
func (h *TimelineHandler) GetBalanceAt(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "invalid_body")
		return
	}

	asOf, ok := parseDateQuery(r, "as_of")
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or malformed as_of date", "invalid_date_range")
		return
	}

	balance, err := h.timelineUC.GetBalanceAt(r.Context(), ownerID(r), accountID, asOf)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceAtResponse{
		AccountID: accountID,
		AsOf:      asOf.Format("2006-01-02"),
		Balance:   balance,
	})
}

// Recompute drains any pending balance-point recomputation for the account
// synchronously instead of waiting for the background worker.
func (h *TimelineHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "invalid_body")
		return
	}

	status, err := h.timelineUC.ForceRecompute(r.Context(), ownerID(r), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RecomputeResponse{
		AccountID: accountID,
		Status:    string(status),
	})
}
