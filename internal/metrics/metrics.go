// Package metrics counts rendered fragments.
//
// Registers:
//
//	#snexviz_fragments_total{fragment,outcome}
//	#snexviz_fragment_duration_seconds{fragment,outcome}
//	#go_* and process_* system metrics
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fragment outcomes
const (
	OutcomeOK         = "ok"
	OutcomeBadRequest = "bad_request"
	OutcomeNotFound   = "not_found"
	OutcomeError      = "error"
)

// Metrics holds the fragment metrics on a private registry
type Metrics struct {
	registry  *prometheus.Registry
	fragments *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New creates the metrics and registers them with the Go and process
// collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fragments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snexviz_fragments_total",
				Help: "Number of rendered fragments",
			},
			[]string{"fragment", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "snexviz_fragment_duration_seconds",
				Help:    "Time spent building and rendering a fragment",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"fragment", "outcome"},
		),
	}
	m.registry.MustRegister(
		m.fragments,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one fragment request
func (m *Metrics) Observe(fragment, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fragments.WithLabelValues(fragment, outcome).Inc()
	m.duration.WithLabelValues(fragment, outcome).Observe(elapsed.Seconds())
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
