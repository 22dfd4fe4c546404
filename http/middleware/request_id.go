package middleware

import (
	"context"
	"net/http"

	"github.com/beconnected/beconnected"
	"github.com/google/uuid"
)

// RequestIDHeader echoes the request ID back to the client.
const RequestIDHeader = "X-Request-Id"

// RequestID stashes a fresh UUID under beconnected.RequestIDKey
// and sets it on the response's RequestIDHeader.
func RequestID() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), beconnected.RequestIDKey, id)
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
