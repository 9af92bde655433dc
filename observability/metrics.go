package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Decision results recorded by DecisionsTotal.
const (
	DecisionAdmin   = "admin"
	DecisionGranted = "granted"
	DecisionDenied  = "denied"
	DecisionError   = "error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Authorization metrics
	DecisionsTotal    *prometheus.CounterVec
	TreeBuildDuration prometheus.Histogram

	// Structure provider metrics
	StructureFetchTotal    *prometheus.CounterVec
	StructureFetchDuration prometheus.Histogram

	// Permission store metrics
	PermissionWritesTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permissions_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "permissions_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permissions_grant_decisions_total",
				Help: "Total number of grant authorization decisions",
			},
			[]string{"result"},
		),
		TreeBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "permissions_tree_build_duration_seconds",
				Help:    "Time spent building permission trees, including snapshot loading",
				Buckets: prometheus.DefBuckets,
			},
		),

		StructureFetchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permissions_structure_fetch_total",
				Help: "Total number of structure lookups by source and status",
			},
			[]string{"source", "status"},
		),
		StructureFetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "permissions_structure_fetch_duration_seconds",
				Help:    "Structure provider request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		PermissionWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permissions_record_writes_total",
				Help: "Total number of permission record mutations by outcome",
			},
			[]string{"status"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DecisionsTotal,
		m.TreeBuildDuration,
		m.StructureFetchTotal,
		m.StructureFetchDuration,
		m.PermissionWritesTotal,
	)

	return m
}

// The Record* helpers accept a nil receiver so components can run without metrics.

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordDecision(result string) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordTreeBuild(duration time.Duration) {
	if m == nil {
		return
	}
	m.TreeBuildDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordStructureFetch(source, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.StructureFetchTotal.WithLabelValues(source, status).Inc()
	if source == "provider" {
		m.StructureFetchDuration.Observe(duration.Seconds())
	}
}

func (m *Metrics) RecordPermissionWrite(status string) {
	if m == nil {
		return
	}
	m.PermissionWritesTotal.WithLabelValues(status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
