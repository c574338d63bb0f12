// Package metrics exposes Prometheus metrics for the verification pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for the pipeline. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Model call latencies by task and outcome
	LLMLatency *prometheus.HistogramVec

	// Search latencies by tier
	SearchLatency *prometheus.HistogramVec

	// Per-claim verdicts, and whether they came from an authoritative override
	ClaimVerdicts *prometheus.CounterVec

	// Evidence items by temporal status
	EvidenceTemporal *prometheus.CounterVec

	// Items rejected by the pre-filter
	PreFiltered prometheus.Counter

	// Document outcomes by mode and level
	DocumentVerdicts *prometheus.CounterVec

	// Full document verification latency
	DocumentLatency prometheus.Histogram
}

// New creates a Metrics instance registered on its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		LLMLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credence_llm_duration_seconds",
			Help:    "Duration of language model calls by task",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"task", "outcome"}), // outcome: "ok", "error"

		SearchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credence_search_duration_seconds",
			Help:    "Duration of evidence searches by tier",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"tier"}),

		ClaimVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credence_claim_verdicts_total",
			Help: "Per-claim verdicts",
		}, []string{"verdict", "authoritative"}),

		EvidenceTemporal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credence_evidence_temporal_total",
			Help: "Evidence items by temporal status",
		}, []string{"status"}),

		PreFiltered: factory.NewCounter(prometheus.CounterOpts{
			Name: "credence_evidence_prefiltered_total",
			Help: "Evidence items rejected by the relevance pre-filter",
		}),

		DocumentVerdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credence_document_verdicts_total",
			Help: "Document verdicts by mode and level",
		}, []string{"mode", "verdict"}),

		DocumentLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "credence_document_duration_seconds",
			Help:    "Duration of full document verification",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLLM records one model call. Its signature matches llm.Observer.
func (m *Metrics) ObserveLLM(task string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.LLMLatency.WithLabelValues(task, outcome).Observe(d.Seconds())
}

// ObserveSearch records the duration of one search tier
func (m *Metrics) ObserveSearch(tier string, d time.Duration) {
	if m != nil {
		m.SearchLatency.WithLabelValues(tier).Observe(d.Seconds())
	}
}

// IncrementClaimVerdict records a per-claim verdict
func (m *Metrics) IncrementClaimVerdict(verdict string, authoritative bool) {
	if m == nil {
		return
	}
	label := "false"
	if authoritative {
		label = "true"
	}
	m.ClaimVerdicts.WithLabelValues(verdict, label).Inc()
}

// IncrementTemporal records the temporal status of one evidence item
func (m *Metrics) IncrementTemporal(status string) {
	if m != nil {
		m.EvidenceTemporal.WithLabelValues(status).Inc()
	}
}

// AddPreFiltered records items rejected by the pre-filter
func (m *Metrics) AddPreFiltered(n int) {
	if m != nil && n > 0 {
		m.PreFiltered.Add(float64(n))
	}
}

// IncrementDocument records a document verdict
func (m *Metrics) IncrementDocument(mode, verdict string) {
	if m != nil {
		m.DocumentVerdicts.WithLabelValues(mode, verdict).Inc()
	}
}

// ObserveDocumentLatency records the total verification duration
func (m *Metrics) ObserveDocumentLatency(d time.Duration) {
	if m != nil {
		m.DocumentLatency.Observe(d.Seconds())
	}
}
