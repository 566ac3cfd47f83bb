package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Reader is the subset of *kafka.Reader the consumer uses.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// NewReader opens a partition reader positioned at messages newer than since.
// Consumer groups are avoided so the tool works through a port-forward.
func NewReader(ctx context.Context, brokers []string, topic string, since time.Duration) (*kafka.Reader, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	if err := reader.SetOffsetAt(ctx, time.Now().Add(-since)); err != nil {
		reader.Close()
		return nil, err
	}
	return reader, nil
}

// Decode turns a Kafka message into a relayable Event. The eventType header
// wins over the payload field.
func Decode(msg kafka.Message) (Event, error) {
	if !json.Valid(msg.Value) {
		return Event{}, errors.New("message value is not JSON")
	}
	e := Event{Topic: msg.Topic, Payload: json.RawMessage(msg.Value)}
	for _, h := range msg.Headers {
		if h.Key == "eventType" {
			e.EventType = string(h.Value)
		}
	}
	if e.EventType == "" {
		var envelope struct {
			EventType string `json:"eventType"`
		}
		if err := json.Unmarshal(msg.Value, &envelope); err == nil {
			e.EventType = envelope.EventType
		}
	}
	return e, nil
}

// Consume reads until ctx is done, publishing every decodable message.
func Consume(ctx context.Context, reader Reader, hub *Hub) {
	defer reader.Close()
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("Kafka read failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		event, err := Decode(msg)
		if err != nil {
			log.Warn().Err(err).Str("topic", msg.Topic).Int64("offset", msg.Offset).Msg("Skipping message")
			continue
		}
		log.Debug().Str("topic", event.Topic).Str("eventType", event.EventType).Msg("Relaying event")
		hub.Publish(event)
	}
}
