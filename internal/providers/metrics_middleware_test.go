package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	noopMetrics
	endpoints []string
	statuses  []int
	observed  int
}

func (r *recordingMetrics) IncRequestsTotal(endpoint string, status int) {
	r.endpoints = append(r.endpoints, endpoint)
	r.statuses = append(r.statuses, status)
}

func (r *recordingMetrics) ObserveRequestDuration(_ string, _ time.Duration) {
	r.observed++
}

func TestMetricsMiddleware_RecordsStatusAndDuration(t *testing.T) {
	metrics := &recordingMetrics{}
	handler := MetricsMiddleware(metrics, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/seed", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, metrics.statuses, 1)
	assert.Equal(t, http.StatusNotFound, metrics.statuses[0])
	assert.Equal(t, 1, metrics.observed)
}

func TestMetricsMiddleware_LabelsByRoutePattern(t *testing.T) {
	metrics := &recordingMetrics{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /seed", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	handler := MetricsMiddleware(metrics, mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/seed", nil))

	require.Len(t, metrics.endpoints, 1)
	assert.Equal(t, "GET /seed", metrics.endpoints[0])
	require.Len(t, metrics.statuses, 1)
	assert.Equal(t, http.StatusOK, metrics.statuses[0])
}

func TestMetricsMiddleware_UnmatchedPathsShareOneLabel(t *testing.T) {
	metrics := &recordingMetrics{}
	handler := MetricsMiddleware(metrics, http.NewServeMux())

	for _, path := range []string{"/probe-1", "/probe-2", "/admin.php"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, []string{unmatchedEndpoint, unmatchedEndpoint, unmatchedEndpoint}, metrics.endpoints)
}
