package obs

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks application metrics using atomic counters.
type Metrics struct {
	requests        atomic.Int64
	catalogHits     atomic.Int64
	locationLookups atomic.Int64
	tokenRefreshes  atomic.Int64
	authFailures    atomic.Int64
	providerErrors  atomic.Int64
	registry        *prometheus.Registry
	logger          *slog.Logger
}

// NewMetrics creates a new Metrics instance with its own registry holding
// the service counters plus the Go runtime and process collectors.
func NewMetrics(logger *slog.Logger) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logger:   logger,
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, c := range m.counters() {
		m.registry.MustRegister(prometheus.NewCounterFunc(
			prometheus.CounterOpts{Name: c.name, Help: c.help},
			func() float64 { return float64(c.value.Load()) },
		))
	}
	return m
}

// IncRequests increments the total API request counter.
func (m *Metrics) IncRequests() {
	m.requests.Add(1)
}

// IncCatalogHits counts location searches answered from the static city table.
func (m *Metrics) IncCatalogHits() {
	m.catalogHits.Add(1)
}

// IncLocationLookups counts remote location searches.
func (m *Metrics) IncLocationLookups() {
	m.locationLookups.Add(1)
}

// IncTokenRefreshes counts client-credentials exchanges.
func (m *Metrics) IncTokenRefreshes() {
	m.tokenRefreshes.Add(1)
}

// IncAuthFailures counts 401 responses and failed token exchanges.
func (m *Metrics) IncAuthFailures() {
	m.authFailures.Add(1)
}

// IncProviderErrors increments the provider errors counter.
func (m *Metrics) IncProviderErrors() {
	m.providerErrors.Add(1)
}

// Snapshot returns current metric values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Requests:        m.requests.Load(),
		CatalogHits:     m.catalogHits.Load(),
		LocationLookups: m.locationLookups.Load(),
		TokenRefreshes:  m.tokenRefreshes.Load(),
		AuthFailures:    m.authFailures.Load(),
		ProviderErrors:  m.providerErrors.Load(),
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	Requests        int64
	CatalogHits     int64
	LocationLookups int64
	TokenRefreshes  int64
	AuthFailures    int64
	ProviderErrors  int64
}

type counter struct {
	name  string
	help  string
	value *atomic.Int64
}

func (m *Metrics) counters() []counter {
	return []counter{
		{"requests_total", "Total number of API requests", &m.requests},
		{"location_catalog_hits_total", "Location searches answered from the city table", &m.catalogHits},
		{"location_lookups_total", "Remote location searches", &m.locationLookups},
		{"token_refreshes_total", "Client-credentials token exchanges", &m.tokenRefreshes},
		{"auth_failures_total", "Provider authentication failures", &m.authFailures},
		{"provider_errors_total", "Total number of provider errors", &m.providerErrors},
	}
}

// HealthHandler returns a handler for /healthz requests.
func HealthHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health response", "error", err)
		}
	}
}

// MetricsHandler returns a handler for /metrics requests in Prometheus format.
func (m *Metrics) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(m.logger.Handler(), slog.LevelError),
	})
}
