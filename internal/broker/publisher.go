package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/zahid-01/Running-Tracker/internal/events"
)

// Header keys carried on every published message.
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Publisher encodes event envelopes as JSON and writes them to one topic.
type Publisher struct {
	writer messageWriter
	topic  string
	newID  func() string
}

// NewPublisher constructs a Publisher.
func NewPublisher(writer messageWriter, topic string) *Publisher {
	return &Publisher{writer: writer, topic: topic, newID: uuid.NewString}
}

// Publish implements tracker.Publisher.
func (p *Publisher) Publish(ctx context.Context, env events.Envelope) error {
	body, err := json.Marshal(env.Payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", env.Type, err)
	}

	occurred := env.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	msg := kafka.Message{
		Key:   []byte(env.Key),
		Value: body,
		Time:  occurred,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(env.Type)},
			{Key: HeaderEventID, Value: []byte(p.newID())},
		},
	}

	if err := p.writer.WriteMessages(ctx, p.topic, msg); err != nil {
		failedCounter.WithLabelValues(env.Type).Inc()
		return err
	}
	publishedCounter.WithLabelValues(env.Type).Inc()
	return nil
}
