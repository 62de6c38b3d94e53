// Package prometheus registers and exposes the engine's metrics. One Metrics
// value is shared by the scoring service, the citation validator, and the
// HTTP layer; it implements their respective instrumentation ports.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "proethica"

// Metrics holds every registered collector.
type Metrics struct {
	assessmentsTotal  *prometheus.CounterVec
	judgeDegraded     prometheus.Counter
	documentsScored   prometheus.Counter
	documentDuration  prometheus.Histogram
	documentPairs     prometheus.Histogram
	validationBatches prometheus.Counter
	validationFall    prometheus.Counter

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New registers the engine's metrics on the given registerer. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry to
// avoid duplicate-registration panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		assessmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Relevance assessments completed, by escalation outcome and relationship label.",
		}, []string{"escalated", "relationship"}),
		judgeDegraded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judge_degraded_total",
			Help:      "Assessments completed with a degraded (unavailable or unparseable) judge.",
		}),
		documentsScored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_scored_total",
			Help:      "Documents fully scored.",
		}),
		documentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_scoring_duration_seconds",
			Help:      "Wall-clock time to score one document.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		documentPairs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_scoring_pairs",
			Help:      "Section-statement pairs evaluated per document.",
			Buckets:   []float64{10, 50, 100, 500, 1000, 5000},
		}),
		validationBatches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "citation_validation_candidates_total",
			Help:      "Citation candidates submitted for validation.",
		}),
		validationFall: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "citation_validation_fallbacks_total",
			Help:      "Citation candidates that fell back to the unvalidated result.",
		}),
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
	}
}

// AssessmentCompleted implements relevance.Metrics.
func (m *Metrics) AssessmentCompleted(escalated bool, relationship string) {
	m.assessmentsTotal.WithLabelValues(strconv.FormatBool(escalated), relationship).Inc()
}

// JudgeDegraded implements relevance.Metrics.
func (m *Metrics) JudgeDegraded() {
	m.judgeDegraded.Inc()
}

// DocumentScored implements relevance.Metrics.
func (m *Metrics) DocumentScored(sections, pairs, escalations int, elapsed time.Duration) {
	m.documentsScored.Inc()
	m.documentDuration.Observe(elapsed.Seconds())
	m.documentPairs.Observe(float64(pairs))
}

// ValidationBatch implements citation.ValidatorMetrics.
func (m *Metrics) ValidationBatch(size int, fallbacks int) {
	m.validationBatches.Add(float64(size))
	m.validationFall.Add(float64(fallbacks))
}

// ObserveHTTPRequest records one handled HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
