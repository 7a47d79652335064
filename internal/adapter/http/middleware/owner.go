package middleware

import (
	"context"
	"net/http"
)

// OwnerIDHeader carries the acting owner's identity. Every ledger route
// is scoped to exactly one owner; requests without the header are
// rejected before any handler runs.
const OwnerIDHeader = "X-Owner-ID"

type ownerKey struct{}

// RequireOwner extracts the owner ID header into the request context.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get(OwnerIDHeader)
		if ownerID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing ` + OwnerIDHeader + ` header"}`))
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey{}, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithOwner returns a context carrying ownerID, as RequireOwner would
// have stored it.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerID returns the owner ID stored by RequireOwner, or "" when the
// middleware did not run.
func OwnerID(ctx context.Context) string {
	ownerID, _ := ctx.Value(ownerKey{}).(string)
	return ownerID
}
