package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/h44z/wg-portal-routeros/internal/domain"
)

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"Message":"Internal Server Error"}`, w.Body.String())
}

func TestRecovery_NoPanic(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestTracing(t *testing.T) {
	var ctxId string
	handler := Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxId = domain.GetRequestId(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, ctxId)
	assert.Equal(t, ctxId, w.Header().Get(RequestIdHeader))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIdHeader, "upstream-1")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, "upstream-1", ctxId)
	assert.Equal(t, "upstream-1", w.Header().Get(RequestIdHeader))
}

func TestLogging_RecordsStatus(t *testing.T) {
	var seen *statusWriter
	handler := Logging(slog.LevelDebug)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.(*statusWriter)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, seen.status)
	assert.Equal(t, 4, seen.written)
}

func TestClientIp(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", clientIp(r))

	r.Header.Set("X-Forwarded-For", "198.51.100.3")
	assert.Equal(t, "198.51.100.3", clientIp(r))
}

func TestCors(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Cors(CorsOptions{AllowedOrigins: []string{"https://*.example.com", "http://localhost:5173"}})(next)

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
	}{
		{"no origin", http.MethodGet, "", http.StatusOK, ""},
		{"exact origin", http.MethodGet, "http://localhost:5173", http.StatusOK, "http://localhost:5173"},
		{"wildcard origin", http.MethodGet, "https://portal.example.com", http.StatusOK, "https://portal.example.com"},
		{"foreign origin", http.MethodGet, "https://evil.test", http.StatusOK, ""},
		{"preflight", http.MethodOptions, "https://portal.example.com", http.StatusNoContent, "https://portal.example.com"},
		{"foreign preflight", http.MethodOptions, "https://evil.test", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "/api/v1/health", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				r.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllowed, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.method == http.MethodOptions && tt.wantAllowed != "" {
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
			}
		})
	}
}

func TestCorsOptions_AllowAll(t *testing.T) {
	assert.True(t, CorsOptions{AllowedOrigins: []string{"*"}}.isAllowed("https://anything.test"))
	assert.False(t, CorsOptions{}.isAllowed("https://anything.test"))
	assert.False(t, CorsOptions{AllowedOrigins: []string{"https://*.example.com"}}.isAllowed("https://example.com"))
}
