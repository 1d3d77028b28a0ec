package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	xpAwarded *prometheus.CounterVec
	awards    *prometheus.CounterVec
	levelUps  prometheus.Counter
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		xpAwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questlog_xp_awarded_total",
				Help: "Total XP credited to users",
			},
			[]string{"operation"},
		),
		awards: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questlog_awards_total",
				Help: "Number of XP awards by operation",
			},
			[]string{"operation"},
		),
		levelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "questlog_level_ups_total",
			Help: "Number of level ups",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.xpAwarded,
		m.awards,
		m.levelUps,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one served HTTP request. path should be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordAward records an XP award.
func (m *Metrics) RecordAward(operation string, xp int64, leveledUp bool) {
	m.awards.WithLabelValues(operation).Inc()
	if xp > 0 {
		m.xpAwarded.WithLabelValues(operation).Add(float64(xp))
	}
	if leveledUp {
		m.levelUps.Inc()
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
