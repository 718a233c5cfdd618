// Package metrics provides Prometheus metrics for the lucky draw service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "luckydraw"
	subsystem = "draw"
)

// httpDurationBuckets are in milliseconds, 1ms to 5s.
var httpDurationBuckets = []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // bucket layout

// Manager owns the draw metrics and the registry they live in.
type Manager struct {
	registry *prometheus.Registry

	drawsStarted       prometheus.Counter
	drawsCompleted     prometheus.Counter
	drawsReset         prometheus.Counter
	duplicateFallbacks prometheus.Counter
	eligiblePool       prometheus.Gauge
	participants       prometheus.Gauge

	importRows     *prometheus.CounterVec
	importsDropped prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Custom registry to avoid default Go metrics.
var globalManager = NewManager(prometheus.NewRegistry()) //nolint:gochecknoglobals // singleton metrics manager

// NewManager registers all metrics on registry.
func NewManager(registry *prometheus.Registry) *Manager {
	auto := promauto.With(registry)
	m := &Manager{registry: registry}

	m.drawsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "started_total",
		Help: "Draws that entered the spinning phase",
	})
	m.drawsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "completed_total",
		Help: "Draws that committed a winner",
	})
	m.drawsReset = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "reset_total",
		Help: "Draws abandoned before a winner was committed",
	})
	m.duplicateFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "duplicate_fallback_total",
		Help: "Draws that accepted an already-recorded winner because nobody else was left",
	})
	m.eligiblePool = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "eligible_participants",
		Help: "Participants currently allowed to be drawn",
	})
	m.participants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: subsystem,
		Name: "participants",
		Help: "Participants in the saved set",
	})

	m.importRows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "import",
		Name: "rows_total",
		Help: "Imported data rows by outcome",
	}, []string{"result"})
	m.importsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "import",
		Name: "files_rejected_total",
		Help: "Uploaded files rejected as a whole",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "http",
		Name: "requests_total",
		Help: "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http",
		Name:    "request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: httpDurationBuckets,
	}, []string{"route", "method", "status_code"})

	return m
}

// Handler exposes the global registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(globalManager.registry, promhttp.HandlerOpts{})
}

// GetRegistry returns the registry behind the global manager.
func GetRegistry() *prometheus.Registry { return globalManager.registry }

func RecordDrawStarted()       { globalManager.drawsStarted.Inc() }
func RecordDrawCompleted()     { globalManager.drawsCompleted.Inc() }
func RecordDrawReset()         { globalManager.drawsReset.Inc() }
func RecordDuplicateFallback() { globalManager.duplicateFallbacks.Inc() }

// UpdatePool sets the eligible and total participant gauges.
func UpdatePool(eligible, total int) {
	globalManager.eligiblePool.Set(float64(eligible))
	globalManager.participants.Set(float64(total))
}

// RecordImport counts the outcome of one parsed upload.
func RecordImport(valid, invalid int, rejected bool) {
	if rejected {
		globalManager.importsDropped.Inc()
		return
	}
	globalManager.importRows.WithLabelValues("valid").Add(float64(valid))
	globalManager.importRows.WithLabelValues("invalid").Add(float64(invalid))
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(route, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(route, method, statusCode).Observe(durationMs)
}
