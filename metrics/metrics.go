// Package metrics exposes prometheus instrumentation for analyses and HTTP traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analysis outcomes
const (
	OutcomeSuccess      = "success"
	OutcomeInvalidURL   = "invalid_url"
	OutcomeFetchFailure = "fetch_failure"
	OutcomeError        = "error"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	analysesTotal       *prometheus.CounterVec
	fetchDuration       prometheus.Histogram
	extractDuration     prometheus.Histogram
	linksExtracted      *prometheus.CounterVec
	imagesMissingAlt    prometheus.Counter
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry together with the Go and
// process collectors.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(namespace, registry, registry)
}

// NewWithRegistry registers the collectors on registerer and serves gatherer
func NewWithRegistry(namespace string, registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{gatherer: gatherer}

	m.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of page analyses by outcome",
		},
		[]string{"outcome"},
	)

	m.fetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time taken to retrieve page HTML",
			Buckets:   prometheus.DefBuckets,
		},
	)

	m.extractDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_duration_seconds",
			Help:      "Time taken to extract SEO metadata from HTML",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		},
	)

	m.linksExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_extracted_total",
			Help:      "Total number of links extracted by classification",
		},
		[]string{"kind"},
	)

	m.imagesMissingAlt = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_missing_alt_total",
			Help:      "Total number of extracted images without alt text",
		},
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	registerer.MustRegister(
		m.analysesTotal,
		m.fetchDuration,
		m.extractDuration,
		m.linksExtracted,
		m.imagesMissingAlt,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

// RecordAnalysis counts one analysis with the given outcome
func (m *Metrics) RecordAnalysis(outcome string) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(outcome).Inc()
}

// RecordFetch observes the duration of one retrieval
func (m *Metrics) RecordFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}

// RecordExtraction observes one extraction and what it found
func (m *Metrics) RecordExtraction(d time.Duration, internal, external, missingAlt int) {
	if m == nil {
		return
	}
	m.extractDuration.Observe(d.Seconds())
	m.linksExtracted.WithLabelValues("internal").Add(float64(internal))
	m.linksExtracted.WithLabelValues("external").Add(float64(external))
	m.imagesMissingAlt.Add(float64(missingAlt))
}

// RecordRequest records one served HTTP request
func (m *Metrics) RecordRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
