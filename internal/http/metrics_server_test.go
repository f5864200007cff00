package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/inspecta/internal/metrics"
)

func newTestMetricsServer(t *testing.T, logs *bytes.Buffer) *MetricsServer {
	t.Helper()

	provider, err := metrics.NewProvider("metrics_server_test")
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), provider.Namespace())
	require.NoError(t, err)
	bm.RecordOperation(context.Background(), "mutation", "report_create", "success")

	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return NewMetricsServer("localhost", 0, logger, provider)
}

func TestMetricsServer_Endpoints(t *testing.T) {
	t.Run("Success_ScrapeExposesBusinessMetrics", func(t *testing.T) {
		var logs bytes.Buffer
		server := newTestMetricsServer(t, &logs)

		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Regexp(t,
			`metrics_server_test_operations_total\{[^}]*operation="report_create"[^}]*\} 1`,
			w.Body.String())
		assert.Empty(t, logs.String(), "scrapes are logged below info")
	})

	t.Run("Success_Health", func(t *testing.T) {
		var logs bytes.Buffer
		server := newTestMetricsServer(t, &logs)

		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","namespace":"metrics_server_test"}`, w.Body.String())
	})

	t.Run("Error_UnknownPathLoggedAtWarn", func(t *testing.T) {
		var logs bytes.Buffer
		server := newTestMetricsServer(t, &logs)

		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/access/me", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, logs.String(), "level=WARN")
		assert.Contains(t, logs.String(), "path=/v1/access/me")
	})
}
