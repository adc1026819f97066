// Package middleware holds the HTTP middleware shared by the server.
package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"fintrack/pkg/requestcontext"
)

// RequestIDHeader carries the caller-supplied request id, when present.
const RequestIDHeader = "X-Request-Id"

// RequestMeta stamps every request with an id and a request-scoped time.
// The id is taken from the inbound header or generated, and echoed back so
// callers can correlate logs with audit entries.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now().UTC())

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
