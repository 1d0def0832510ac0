// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics tracks request counts and latencies per route and status.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers HTTP metrics under the given namespace
func NewHTTPMetrics(namespace string) *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// statusRecorder captures the response status for metric labels
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware records request count and latency for every request
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		m.requests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(recorder.status)).Inc()
		m.duration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// BusinessMetrics tracks journal domain activity.
type BusinessMetrics struct {
	entriesCreated  prometheus.Counter
	analysesRun     *prometheus.CounterVec
	analysisSeconds prometheus.Histogram
}

// NewBusinessMetrics registers domain metrics under the given namespace
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	return &BusinessMetrics{
		entriesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_created_total",
			Help:      "Total journal entries created.",
		}),
		analysesRun: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total content analyses by trigger (request or task).",
		}, []string{"trigger"}),
		analysisSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Content analysis latency.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
	}
}

// EntryCreated counts a new journal entry
func (m *BusinessMetrics) EntryCreated() {
	m.entriesCreated.Inc()
}

// AnalysisRun counts one analysis and its duration; trigger is "request"
// for synchronous API calls and "task" for queue workers
func (m *BusinessMetrics) AnalysisRun(trigger string, elapsed time.Duration) {
	m.analysesRun.WithLabelValues(trigger).Inc()
	m.analysisSeconds.Observe(elapsed.Seconds())
}

// DatabaseMetrics exposes sql.DBStats as gauges.
type DatabaseMetrics struct {
	openConnections prometheus.Gauge
	inUse           prometheus.Gauge
	idle            prometheus.Gauge
	waitCount       prometheus.Gauge
}

// NewDatabaseMetrics registers database pool metrics under the namespace
func NewDatabaseMetrics(namespace string) *DatabaseMetrics {
	return &DatabaseMetrics{
		openConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_open_connections",
			Help:      "Open database connections.",
		}),
		inUse: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_in_use_connections",
			Help:      "Database connections currently in use.",
		}),
		idle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_idle_connections",
			Help:      "Idle database connections.",
		}),
		waitCount: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_wait_count",
			Help:      "Total connections waited for.",
		}),
	}
}

// UpdateDBStats refreshes the gauges from the connection pool
func (m *DatabaseMetrics) UpdateDBStats(db *sql.DB) {
	stats := db.Stats()
	m.openConnections.Set(float64(stats.OpenConnections))
	m.inUse.Set(float64(stats.InUse))
	m.idle.Set(float64(stats.Idle))
	m.waitCount.Set(float64(stats.WaitCount))
}
