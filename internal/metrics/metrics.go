// Package metrics exposes Prometheus collectors for the question-answering pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat outcomes
const (
	OutcomeAnswered  = "answered"
	OutcomeNoContext = "no_context"
	OutcomeFiltered  = "filtered"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// Index build results
const (
	IndexBuilt  = "built"
	IndexReused = "reused"
	IndexError  = "error"
)

// Recorder records pipeline metrics.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	chatRequests    *prometheus.CounterVec
	chatDuration    prometheus.Histogram
	indexBuilds     *prometheus.CounterVec
	moderationFlags *prometheus.CounterVec
	providerCalls   *prometheus.CounterVec
	uploads         *prometheus.CounterVec
}

// NewRecorder registers the collectors with reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		chatRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docqa_chat_requests_total",
			Help: "Chat requests by outcome.",
		}, []string{"outcome"}),
		chatDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "docqa_chat_duration_seconds",
			Help:    "End-to-end chat latency.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		indexBuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docqa_index_builds_total",
			Help: "Semantic index lookups by result.",
		}, []string{"result"}),
		moderationFlags: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docqa_moderation_flags_total",
			Help: "Texts flagged by the safety gate.",
		}, []string{"target"}),
		providerCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docqa_provider_calls_total",
			Help: "Calls to AI providers by result.",
		}, []string{"provider", "result"}),
		uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docqa_uploads_total",
			Help: "Document uploads by content type and result.",
		}, []string{"content_type", "result"}),
	}
}

// ChatCompleted records one finished chat request.
func (r *Recorder) ChatCompleted(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.chatRequests.WithLabelValues(outcome).Inc()
	r.chatDuration.Observe(elapsed.Seconds())
}

// IndexLookup records the result of an index get-or-build.
func (r *Recorder) IndexLookup(result string) {
	if r == nil {
		return
	}
	r.indexBuilds.WithLabelValues(result).Inc()
}

// Flagged records a text flagged by moderation. target is "question" or "answer".
func (r *Recorder) Flagged(target string) {
	if r == nil {
		return
	}
	r.moderationFlags.WithLabelValues(target).Inc()
}

// ProviderCall records an AI provider call.
func (r *Recorder) ProviderCall(provider string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.providerCalls.WithLabelValues(provider, result).Inc()
}

// ContentTypeUnsupported labels uploads whose media type has no extractor.
const ContentTypeUnsupported = "unsupported"

// Upload records a document upload. contentType must come from a bounded set.
func (r *Recorder) Upload(contentType string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.uploads.WithLabelValues(contentType, result).Inc()
}
