package restapi

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bustime.org/internal/logging"
)

func TestRequestLoggingMiddleware(t *testing.T) {
	t.Run("logs request details", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("test response"))
		}))

		req := httptest.NewRequest(http.MethodGet, "/bus/singapore/list", nil)
		req.Header.Set("User-Agent", "test-client/1.0")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "test response", rec.Body.String())

		output := buf.String()
		assert.Contains(t, output, `"level":"INFO"`)
		assert.Contains(t, output, `"msg":"http_request"`)
		assert.Contains(t, output, `"method":"GET"`)
		assert.Contains(t, output, `"path":"/bus/singapore/list"`)
		assert.Contains(t, output, `"status":200`)
		assert.Contains(t, output, `"bytes":13`)
		assert.Contains(t, output, `"user_agent":"test-client/1.0"`)
		assert.Contains(t, output, `"duration_ms":`)
		assert.Contains(t, output, `"component":"http_server"`)
	})

	t.Run("records explicit status codes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bus/singapore/nothing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, buf.String(), `"status":404`)
		assert.Contains(t, buf.String(), `"bytes":0`)
	})

	t.Run("never logs the query string", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/bus/singapore/12/predict_trip_range?key=secret&start_stop=1&end_stop=2", nil))

		output := buf.String()
		assert.Contains(t, output, `"path":"/bus/singapore/12/predict_trip_range"`)
		assert.NotContains(t, output, "secret")
		assert.NotContains(t, output, "start_stop")
		assert.Len(t, strings.Split(strings.TrimSpace(output), "\n"), 1)
	})

	t.Run("logger is available in request context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxLogger := logging.FromContext(r.Context())
			require.NotNil(t, ctxLogger)
			ctxLogger.Info("handler called", slog.String("test", "value"))
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		output := buf.String()
		assert.Contains(t, output, `"msg":"handler called"`)
		assert.Contains(t, output, `"test":"value"`)
		assert.Contains(t, output, `"msg":"http_request"`)
	})
}

func TestRequestLoggingIntegration(t *testing.T) {
	var buf bytes.Buffer
	api := createTestApi(t, withKeys("TEST"), withLogger(logging.NewStructuredLogger(&buf, slog.LevelInfo)))
	handler := api.Handler()

	t.Run("successful request", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bus/singapore/list?key=TEST", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":200`)
		assert.Contains(t, buf.String(), `"path":"/bus/singapore/list"`)
		assert.Contains(t, buf.String(), `"status":200`)
	})

	t.Run("rejected API key", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bus/singapore/list", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, buf.String(), `"status":401`)
	})
}
