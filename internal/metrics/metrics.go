package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records context builds on a private registry (the default one is left alone).
type Metrics struct {
	registry *prometheus.Registry

	buildsTotal    *prometheus.CounterVec
	buildDuration  *prometheus.HistogramVec
	logoFetches    *prometheus.CounterVec
	degradedFields *prometheus.CounterVec
	findings       prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.buildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportctx_builds_total",
			Help: "Report context builds by outcome (ok, not_found, error)",
		},
		[]string{"outcome"},
	)
	m.buildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reportctx_build_duration_seconds",
			Help:    "Time spent building a report context",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	m.logoFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportctx_logo_fetches_total",
			Help: "Client logo inlining attempts by outcome (ok, failed, skipped)",
		},
		[]string{"outcome"},
	)
	m.degradedFields = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportctx_degraded_fields_total",
			Help: "Fields that fell back to a degraded rendition",
		},
		[]string{"field"},
	)
	m.findings = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reportctx_findings_per_report",
		Help:    "Number of findings in built report contexts",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})

	m.registry.MustRegister(
		m.buildsTotal, m.buildDuration, m.logoFetches, m.degradedFields, m.findings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) BuildCompleted(outcome string, d time.Duration, findings int) {
	m.buildsTotal.WithLabelValues(outcome).Inc()
	m.buildDuration.WithLabelValues(outcome).Observe(d.Seconds())
	if outcome == "ok" {
		m.findings.Observe(float64(findings))
	}
}

func (m *Metrics) LogoFetched(outcome string) {
	m.logoFetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) FieldDegraded(field string) {
	m.degradedFields.WithLabelValues(field).Inc()
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
