package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supplychain-dashboard/internal/application/dashboard"
	"github.com/jhoicas/supplychain-dashboard/internal/application/run"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
	"github.com/jhoicas/supplychain-dashboard/internal/infrastructure/backend"
	"github.com/jhoicas/supplychain-dashboard/internal/infrastructure/metrics"
)

var (
	_ run.Recorder            = (*metrics.Metrics)(nil)
	_ dashboard.FetchObserver = (*metrics.Metrics)(nil)
	_ backend.BreakerObserver = (*metrics.Metrics)(nil)
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_CicloDeEjecucion(t *testing.T) {
	m := metrics.New(metrics.DefaultConfig())

	m.RunStarted()
	m.LogLineReceived()
	m.LogLineReceived()
	m.RunFinished(entity.RunStatusSettled, 2*time.Second)
	m.Reconciled("pull", nil)
	m.Reconciled("push", errors.New("payload incompleto"))

	out := scrape(t, m)
	assert.Contains(t, out, "supplychain_dashboard_runs_started_total 1")
	assert.Contains(t, out, "supplychain_dashboard_run_log_lines_total 2")
	assert.Contains(t, out, `supplychain_dashboard_runs_finished_total{status="settled"} 1`)
	assert.Contains(t, out, "supplychain_dashboard_run_in_progress 0")
	assert.Contains(t, out, `supplychain_dashboard_reconciliations_total{result="error",strategy="push"} 1`)
}

func TestMetrics_ConsultasYBreakers(t *testing.T) {
	m := metrics.New(metrics.DefaultConfig())

	m.ObserveFetch("inventory", 30*time.Millisecond, nil)
	m.ObserveFetch("inventory", 10*time.Millisecond, errors.New("HTTP 500"))
	m.BreakerStateChanged("inventory", 2)
	m.RecordHTTPRequest(http.MethodGet, "/api/dashboard", http.StatusOK, time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `supplychain_dashboard_backend_fetches_total{resource="inventory",result="success"} 1`)
	assert.Contains(t, out, `supplychain_dashboard_backend_fetches_total{resource="inventory",result="error"} 1`)
	assert.Contains(t, out, `supplychain_dashboard_circuit_breaker_state{resource="inventory"} 2`)
	assert.Contains(t, out, `supplychain_dashboard_http_requests_total{method="GET",route="/api/dashboard",status="200"} 1`)
}
