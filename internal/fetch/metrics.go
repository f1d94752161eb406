package fetch

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the fetch counters and the registry they are exported from.
type Metrics struct {
	registry *prometheus.Registry
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics with its own registry, so tests and multiple
// servers in one process do not collide on the global one.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailybrief_fetch_total",
			Help: "Document fetches by document kind and outcome.",
		}, []string{"document", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dailybrief_fetch_duration_seconds",
			Help:    "Document fetch latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"document"}),
	}
	reg.MustRegister(
		m.fetches,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type instrumented struct {
	src     Source
	metrics *Metrics
}

// Instrumented wraps src so every fetch is counted and timed.
func Instrumented(src Source, m *Metrics) Source {
	if m == nil {
		return src
	}
	return &instrumented{src: src, metrics: m}
}

func (i *instrumented) Fetch(ctx context.Context, p string) ([]byte, error) {
	doc := DocumentKind(p)
	start := time.Now()
	data, err := i.src.Fetch(ctx, p)
	i.metrics.duration.WithLabelValues(doc).Observe(time.Since(start).Seconds())
	i.metrics.fetches.WithLabelValues(doc, outcome(err)).Inc()
	return data, err
}

// DocumentKind maps a document path to a low-cardinality label: archived
// briefs collapse to "archive", everything else uses its base name.
func DocumentKind(p string) string {
	base := path.Base(p)
	if strings.HasPrefix(base, "brief_") {
		return "archive"
	}
	return strings.TrimSuffix(base, ".json")
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNotFound(err):
		return "not_found"
	case errors.Is(err, ErrHTTP):
		return "http_error"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	default:
		return "error"
	}
}
