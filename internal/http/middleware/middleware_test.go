package middleware_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/barcode-server/internal/http/middleware"
	"github.com/tuanvumaihuynh/barcode-server/pkg/correlationid"
)

func TestRecoverer(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "internal server error", body["message"])
}

func TestCorrelationID(t *testing.T) {
	var seen string
	r := chi.NewRouter()
	r.Use(middleware.CorrelationID())
	r.Get("/", func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = correlationid.FromContext(r.Context())
	})

	t.Run("Should keep the caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(correlationid.Header, "req-1")
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, "req-1", seen)
		assert.Equal(t, "req-1", resp.Header().Get(correlationid.Header))
	})

	t.Run("Should generate an id", func(t *testing.T) {
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, seen, 36)
		assert.Equal(t, seen, resp.Header().Get(correlationid.Header))
	})
}

func TestEscapedPath(t *testing.T) {
	var seen string
	r := chi.NewRouter()
	r.Use(middleware.EscapedPath())
	r.Route("/api", func(r chi.Router) {
		r.Get("/value/{value}", func(_ http.ResponseWriter, r *http.Request) {
			seen = chi.URLParam(r, "value")
		})
	})

	tests := []struct {
		target string
		want   string
	}{
		{"/api/value/plain", "plain"},
		{"/api/value/a%2Fb", "a%2Fb"},
		{"/api/value/50%25", "50%25"},
		{"/api/value/a%20b", "a%20b"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, tt.want, seen)
		})
	}
}
