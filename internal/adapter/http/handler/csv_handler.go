package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mariobrusarosco/better-call-buffet/internal/usecase"
)

// CSVService defines the behavior needed by CSVHandler.
type CSVService interface {
	Export(ctx context.Context, ownerID string, w io.Writer) (int, error)
	Import(ctx context.Context, ownerID string, r io.Reader, skipErrors bool) (*usecase.ImportSummary, error)
}

// CSVHandler serves ledger export and import.
type CSVHandler struct {
	csvUC CSVService
}

// NewCSVHandler creates a new CSVHandler.
func NewCSVHandler(csvUC CSVService) *CSVHandler {
	return &CSVHandler{csvUC: csvUC}
}

// Export streams the owner's full ledger as a CSV download.
func (h *CSVHandler) Export(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("ledger-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if _, err := h.csvUC.Export(r.Context(), ownerID(r), w); err != nil {
		// Headers are already sent; the truncated body is the best signal left.
		return
	}
}

// Import appends CSV rows to the owner's ledger. With ?skip_errors=true
// bad rows are reported and skipped instead of aborting the run.
func (h *CSVHandler) Import(w http.ResponseWriter, r *http.Request) {
	skipErrors := r.URL.Query().Get("skip_errors") == "true"

	summary, err := h.csvUC.Import(r.Context(), ownerID(r), r.Body, skipErrors)
	if err != nil {
		if summary != nil {
			writeJSON(w, http.StatusUnprocessableEntity, summary)
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
