package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lexforge/lexforge/internal/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID is middleware that ensures every request carries a request
// ID: incoming X-Request-ID is honored, otherwise a new UUID is
// generated. The ID is stored in the context and echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
