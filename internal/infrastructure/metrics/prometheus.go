// Package metrics expone las métricas Prometheus del dashboard: ejecuciones, líneas de log,
// consultas al backend, reconciliaciones, circuit breakers y peticiones HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

// Metrics métricas del proceso con registro propio.
type Metrics struct {
	registry *prometheus.Registry

	RunsStarted      prometheus.Counter
	RunsFinished     *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	RunInProgress    prometheus.Gauge
	LogLines         prometheus.Counter
	Reconciliations  *prometheus.CounterVec
	BackendFetches   *prometheus.CounterVec
	BackendFetchTime *prometheus.HistogramVec
	BreakerState     *prometheus.GaugeVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// Config espacio de nombres de las métricas.
type Config struct {
	Namespace string
}

// DefaultConfig namespace "supplychain_dashboard".
func DefaultConfig() Config {
	return Config{Namespace: "supplychain_dashboard"}
}

// New crea y registra todas las métricas.
func New(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ns := cfg.Namespace
	m := &Metrics{registry: registry}

	m.RunsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Name: "runs_started_total",
		Help: "Ejecuciones iniciadas",
	})
	m.RunsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Name: "runs_finished_total",
		Help: "Ejecuciones terminadas por estado final",
	}, []string{"status"})
	m.RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: ns, Name: "run_duration_seconds",
		Help:    "Duración de la ejecución desde el inicio hasta el evento terminal",
		Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})
	m.RunInProgress = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns, Name: "run_in_progress",
		Help: "1 mientras hay una ejecución Running",
	})
	m.LogLines = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns, Name: "run_log_lines_total",
		Help: "Líneas de log recibidas por el stream",
	})
	m.Reconciliations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Name: "reconciliations_total",
		Help: "Reconciliaciones de los modelos de lectura",
	}, []string{"strategy", "result"})
	m.BackendFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Name: "backend_fetches_total",
		Help: "Consultas de recursos al backend",
	}, []string{"resource", "result"})
	m.BackendFetchTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Name: "backend_fetch_duration_seconds",
		Help:    "Duración de las consultas de recursos",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"resource"})
	m.BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns, Name: "circuit_breaker_state",
		Help: "Estado del circuit breaker (0=closed, 1=half-open, 2=open)",
	}, []string{"resource"})
	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Name: "http_requests_total",
		Help: "Peticiones HTTP atendidas",
	}, []string{"method", "route", "status"})
	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Name: "http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "route"})

	registry.MustRegister(
		m.RunsStarted, m.RunsFinished, m.RunDuration, m.RunInProgress, m.LogLines,
		m.Reconciliations, m.BackendFetches, m.BackendFetchTime, m.BreakerState,
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
	)
	return m
}

// Handler handler HTTP para /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry registro interno.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ── run.Recorder ─────────────────────────────────────────────────────────────

func (m *Metrics) RunStarted() {
	m.RunsStarted.Inc()
	m.RunInProgress.Set(1)
}

func (m *Metrics) LogLineReceived() {
	m.LogLines.Inc()
}

func (m *Metrics) RunFinished(status entity.RunStatus, elapsed time.Duration) {
	m.RunInProgress.Set(0)
	m.RunsFinished.WithLabelValues(string(status)).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) Reconciled(strategy string, err error) {
	m.Reconciliations.WithLabelValues(strategy, result(err)).Inc()
}

// ── dashboard.FetchObserver ──────────────────────────────────────────────────

func (m *Metrics) ObserveFetch(resource string, elapsed time.Duration, err error) {
	m.BackendFetches.WithLabelValues(resource, result(err)).Inc()
	m.BackendFetchTime.WithLabelValues(resource).Observe(elapsed.Seconds())
}

// ── backend.BreakerObserver ──────────────────────────────────────────────────

// BreakerStateChanged state sigue la numeración de gobreaker.State.
func (m *Metrics) BreakerStateChanged(resource string, state int) {
	m.BreakerState.WithLabelValues(resource).Set(float64(state))
}

// RecordHTTPRequest registra una petición atendida por el servidor del dashboard.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
