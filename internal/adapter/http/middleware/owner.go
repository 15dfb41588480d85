package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const ownerKey contextKey = "owner"

// OwnerHeader carries the authenticated user's ID, set by the edge proxy.
const OwnerHeader = "X-User-ID"

// Owner rejects requests without an owner and stores the owner ID in the
// request context. Every data access below this point is scoped to it.
func Owner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get(OwnerHeader)
		if owner == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing user identity"}`))

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, owner)))
	})
}

// OwnerID returns the owner stored by the Owner middleware.
func OwnerID(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}

// WithOwner returns a context carrying the owner ID, for tests.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}
