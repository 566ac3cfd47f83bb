// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "interview_assist"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Conversation turn metrics
	TurnsTotal   *prometheus.CounterVec
	EmptyResults *prometheus.CounterVec

	// Audio metrics
	AudioBytesReceived prometheus.Counter
	AudioUploads       *prometheus.CounterVec

	// Upstream AI metrics
	UpstreamLatency *prometheus.HistogramVec
	UpstreamErrors  *prometheus.CounterVec
	StreamChunks    prometheus.Counter

	// Interview prep metrics
	PrepResults *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance registered with the default registry.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"route"}),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		}),

		TurnsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversation_turns_total",
			Help:      "Total number of conversation turns processed, by outcome",
		}, []string{"outcome"}),
		EmptyResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_results_total",
			Help:      "Successful upstream calls that returned empty text",
		}, []string{"stage"}),

		AudioBytesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes received",
		}),
		AudioUploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_uploads_total",
			Help:      "Total audio uploads by detected MIME type",
		}, []string{"mime"}),

		UpstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_seconds",
			Help:      "Latency of upstream AI calls in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider", "stage"}),
		UpstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Total number of failed upstream AI calls",
		}, []string{"provider", "stage", "code"}),
		StreamChunks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_chunks_total",
			Help:      "Total number of streamed completion fragments delivered",
		}),

		PrepResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prep_results_total",
			Help:      "Interview prep generations by outcome",
		}, []string{"outcome"}),

		KafkaPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method, status string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(durationSeconds)
}

// RecordTurn records the outcome of a conversation turn.
func (m *Metrics) RecordTurn(outcome string) {
	m.TurnsTotal.WithLabelValues(outcome).Inc()
}

// RecordEmptyResult records a successful call that produced no text.
func (m *Metrics) RecordEmptyResult(stage string) {
	m.EmptyResults.WithLabelValues(stage).Inc()
}

// RecordAudioReceived records an accepted audio upload.
func (m *Metrics) RecordAudioReceived(bytes int, mime string) {
	m.AudioBytesReceived.Add(float64(bytes))
	m.AudioUploads.WithLabelValues(mime).Inc()
}

// RecordUpstream records an upstream call. code is only used when err is non-nil.
func (m *Metrics) RecordUpstream(provider, stage string, err error, code string, latencySeconds float64) {
	m.UpstreamLatency.WithLabelValues(provider, stage).Observe(latencySeconds)
	if err != nil {
		m.UpstreamErrors.WithLabelValues(provider, stage, code).Inc()
	}
}

// RecordStreamChunk records one streamed fragment.
func (m *Metrics) RecordStreamChunk() {
	m.StreamChunks.Inc()
}

// RecordPrep records the outcome of an interview prep generation.
func (m *Metrics) RecordPrep(outcome string) {
	m.PrepResults.WithLabelValues(outcome).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
