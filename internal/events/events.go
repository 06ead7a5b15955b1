package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/GhadiSaab/savedfeast-client/internal/logging"
)

// Sink receives best-effort domain events (login, order placed, cart
// cleared). Publishing never fails the calling operation.
type Sink interface {
	Publish(ctx context.Context, eventType string, payload any)
	Close() error
}

type event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

func (s *KafkaSink) Publish(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		logging.FromContext(ctx).Warn("event marshal failed", "type", eventType, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(eventType),
		Value: data,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "type", eventType, "error", err)
	}
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// NopSink is used when no brokers are configured.
type NopSink struct{}

func (NopSink) Publish(context.Context, string, any) {}

func (NopSink) Close() error { return nil }

// ForConfig picks the kafka sink when brokers are set, the no-op otherwise.
func ForConfig(brokers []string, topic string) Sink {
	if len(brokers) == 0 {
		return NopSink{}
	}
	return NewKafkaSink(brokers, topic)
}
