// Package middleware provides HTTP middleware for matter scoping and
// request identification.
package middleware

import (
	"context"
	"net/http"
)

const headerMatterID = "X-Matter-ID"

type matterCtxKey struct{}

// MatterID is middleware that extracts the matter ID from the
// X-Matter-ID header and stores it in the request context. There is no
// default: a request without a matter is rejected downstream when the
// orchestrator validates the execution request.
func MatterID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), matterCtxKey{}, r.Header.Get(headerMatterID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MatterIDFromContext returns the matter ID stored in ctx, or "" if absent.
func MatterIDFromContext(ctx context.Context) string {
	if mid, ok := ctx.Value(matterCtxKey{}).(string); ok {
		return mid
	}
	return ""
}
