package app

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"toggl-assistant/internal/usecase"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

// Metrics holds the collectors exposed on /metrics. Each instance owns its
// registry so several apps can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	outboundTotal   *prometheus.CounterVec
	outboundLatency *prometheus.HistogramVec
	syncRuns        *prometheus.CounterVec
	syncedEntries   prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "toggl_assistant",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of processed HTTP requests",
	}, []string{"method", "route", "status"})

	m.requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "toggl_assistant",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution of HTTP handlers",
		Buckets:   histogramBuckets,
	}, []string{"method", "route", "status"})

	m.outboundTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "toggl_assistant",
		Subsystem: "toggl",
		Name:      "api_requests_total",
		Help:      "Requests sent to the Toggl API",
	}, []string{"code", "method"})

	m.outboundLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "toggl_assistant",
		Subsystem: "toggl",
		Name:      "api_request_duration_seconds",
		Help:      "Latency distribution of Toggl API calls",
		Buckets:   histogramBuckets,
	}, []string{"code", "method"})

	m.syncRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "toggl_assistant",
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "Sync runs by result",
	}, []string{"result"})

	m.syncedEntries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "toggl_assistant",
		Subsystem: "sync",
		Name:      "entries_total",
		Help:      "Time entries written to the sink",
	})

	m.registry.MustRegister(
		m.requestTotal, m.requestLatency,
		m.outboundTotal, m.outboundLatency,
		m.syncRuns, m.syncedEntries,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// HTTPClient returns a client whose transport records every Toggl call.
func (m *Metrics) HTTPClient(timeout time.Duration) *http.Client {
	rt := promhttp.InstrumentRoundTripperCounter(m.outboundTotal,
		promhttp.InstrumentRoundTripperDuration(m.outboundLatency, http.DefaultTransport))
	return &http.Client{Timeout: timeout, Transport: rt}
}

func (m *Metrics) recordRequest(method, route string, status int, d time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	m.requestTotal.With(labels).Inc()
	m.requestLatency.With(labels).Observe(d.Seconds())
}

func (m *Metrics) recordSync(err error) {
	result := "ok"
	switch {
	case errors.Is(err, usecase.ErrSyncRunning):
		result = "skipped"
	case err != nil:
		result = "error"
	}
	m.syncRuns.WithLabelValues(result).Inc()
}
