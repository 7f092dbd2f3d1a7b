package restapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("test response"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	securityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test response", rec.Body.String())

	for name, value := range staticSecurityHeaders {
		assert.Equal(t, value, rec.Header().Get(name), name)
	}
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("X-XSS-Protection"))
}

func TestSecurityHeadersCORS(t *testing.T) {
	t.Run("set when Origin is present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := httptest.NewRecorder()

		securityHeaders(okHandler()).ServeHTTP(rec, req)

		h := rec.Header()
		assert.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, OPTIONS", h.Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", h.Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "86400", h.Get("Access-Control-Max-Age"))
	})

	t.Run("absent without Origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		securityHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		h := rec.Header()
		assert.Empty(t, h.Get("Access-Control-Allow-Origin"))
		assert.Empty(t, h.Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	})
}

func TestSecurityHeadersPreflight(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called for OPTIONS")
	})

	req := httptest.NewRequest(http.MethodOptions, "/bus/singapore/list", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()

	securityHeaders(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWithSecurityHeaders(t *testing.T) {
	api := createTestApi(t)

	secureHandler := api.WithSecurityHeaders(okHandler())
	require.NotNil(t, secureHandler)

	rec := httptest.NewRecorder()
	secureHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
