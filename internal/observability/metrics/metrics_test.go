package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordUpstream(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordUpstream("openai", "completion", nil, "", 0.2)
	m.RecordUpstream("openai", "completion", errors.New("boom"), "timeout", 30)

	if got := testutil.CollectAndCount(m.UpstreamLatency); got != 1 {
		t.Errorf("expected 1 latency series, got %d", got)
	}
	if got := testutil.ToFloat64(m.UpstreamErrors.WithLabelValues("openai", "completion", "timeout")); got != 1 {
		t.Errorf("expected 1 upstream error, got %v", got)
	}
}

func TestRecordAudioReceived(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordAudioReceived(1024, "audio/webm")
	m.RecordAudioReceived(2048, "audio/webm")

	if got := testutil.ToFloat64(m.AudioBytesReceived); got != 3072 {
		t.Errorf("expected 3072 bytes, got %v", got)
	}
	if got := testutil.ToFloat64(m.AudioUploads.WithLabelValues("audio/webm")); got != 2 {
		t.Errorf("expected 2 uploads, got %v", got)
	}
}

func TestRecordKafkaPublish(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordKafkaPublish("conversation.turns", "conversation.turn.completed", nil, 0.01)
	m.RecordKafkaPublish("conversation.turns", "conversation.turn.completed", errors.New("broker down"), 0.5)

	if got := testutil.ToFloat64(m.KafkaPublishTotal.WithLabelValues("conversation.turns", "conversation.turn.completed")); got != 2 {
		t.Errorf("expected 2 publishes, got %v", got)
	}
	if got := testutil.ToFloat64(m.KafkaPublishErrors.WithLabelValues("conversation.turns", "conversation.turn.completed")); got != 1 {
		t.Errorf("expected 1 publish error, got %v", got)
	}
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	// Registering twice on distinct registries must not panic.
	NewMetrics(prometheus.NewRegistry())
	NewMetrics(prometheus.NewRegistry())
}
