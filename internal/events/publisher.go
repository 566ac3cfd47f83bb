// Package events publishes turn and prep events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/syedarman1/screenme-sub001/internal/observability/metrics"
)

// Publisher publishes events to separate Kafka topics for turns and prep sets.
// When Kafka is disabled events are only logged.
type Publisher struct {
	writerTurns *kafka.Writer
	writerPrep  *kafka.Writer
	principal   string
	topicTurns  string
	topicPrep   string
	enabled     bool
	metrics     *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers    []string
	TopicTurns string
	TopicPrep  string
	Principal  string
	Enabled    bool

	// Metrics defaults to metrics.DefaultMetrics.
	Metrics *metrics.Metrics
}

// New creates a publisher. A nil config, a disabled config or an empty broker
// list yields a log-only publisher.
func New(cfg *Config) *Publisher {
	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{metrics: metrics.DefaultMetrics}
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.DefaultMetrics
	}

	p := &Publisher{
		principal:  cfg.Principal,
		topicTurns: cfg.TopicTurns,
		topicPrep:  cfg.TopicPrep,
		metrics:    m,
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return p
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	p.writerTurns = newWriter(cfg.Brokers, cfg.TopicTurns, transport)
	p.writerPrep = newWriter(cfg.Brokers, cfg.TopicPrep, transport)
	p.enabled = true

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicTurns", cfg.TopicTurns).
		Str("topicPrep", cfg.TopicPrep).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return p
}

func newWriter(brokers []string, topic string, transport *kafka.Transport) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}
}

// PublishTurn publishes a turn.completed or turn.failed event.
func (p *Publisher) PublishTurn(ctx context.Context, key, eventType string, event any) error {
	return p.publish(ctx, p.writerTurns, p.topicTurns, eventType, key, event)
}

// PublishPrep publishes a prep.generated event.
func (p *Publisher) PublishPrep(ctx context.Context, key, eventType string, event any) error {
	return p.publish(ctx, p.writerPrep, p.topicPrep, eventType, key, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("eventType", eventType).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerTurns != nil {
		if e := p.writerTurns.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing turns writer")
			err = e
		}
	}
	if p.writerPrep != nil {
		if e := p.writerPrep.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing prep writer")
			err = e
		}
	}
	return err
}
