package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/dto"
	"github.com/mariobrusarosco/better-call-buffet/internal/adapter/http/middleware"
	"github.com/mariobrusarosco/better-call-buffet/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error: message,
		Kind:  kind,
	})
}

// writeDomainError maps a domain error to a status code and writes it.
func writeDomainError(w http.ResponseWriter, err error) {
	kind := domain.Kind(err)
	writeError(w, statusForKind(kind), err.Error(), kind)
}

// statusForKind maps stable domain error kinds to HTTP status codes.
func statusForKind(kind string) int {
	switch kind {
	case "account_not_found", "credit_card_not_found", "transaction_not_found":
		return http.StatusNotFound
	case "ownership_violation":
		return http.StatusForbidden
	case "invalid_amount", "amount_too_large", "invalid_name", "invalid_currency",
		"invalid_transaction_shape", "invalid_date_range",
		"transaction_too_old", "account_inactive":
		return http.StatusBadRequest
	case "insufficient_funds", "credit_limit_exceeded":
		return http.StatusUnprocessableEntity
	case "discrepancy_detected":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ownerID returns the acting owner extracted by the owner middleware.
func ownerID(r *http.Request) string {
	return middleware.OwnerID(r.Context())
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDateQuery parses a YYYY-MM-DD query parameter.
func parseDateQuery(r *http.Request, key string) (time.Time, bool) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
