package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/platform/middleware"
	"fintrack/pkg/requestcontext"
)

func TestRequestMeta(t *testing.T) {
	t.Run("generates an id when the header is missing", func(t *testing.T) {
		var seen string
		handler := middleware.RequestMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("keeps the caller-supplied id", func(t *testing.T) {
		var seen string
		handler := middleware.RequestMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", seen)
		assert.Equal(t, "req-42", rec.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("stamps a request time", func(t *testing.T) {
		var sawTime bool
		handler := middleware.RequestMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawTime = !requestcontext.Now(r.Context()).IsZero()
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, sawTime)
	})
}
