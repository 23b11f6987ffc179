package middleware

import (
	"net/http"

	"vidsage/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// Trace assigns every request an ID, propagates it through the context for
// logging and echoes it back in the response headers.
func Trace() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = observability.GenerateRequestID()
			}

			ctx := observability.WithRequestID(r.Context(), requestID)
			w.Header().Set(requestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
