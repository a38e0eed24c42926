// Package broker publishes workout events to Kafka.
package broker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrWriterClosed is returned by WriteMessages after Close.
var ErrWriterClosed = errors.New("event writer closed")

// WriterConfig tunes the Kafka writers that carry workout events.
type WriterConfig struct {
	Brokers      []string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

// DefaultWriterConfig flushes quickly: events come from interactive requests,
// one at a time, so waiting to fill a batch only adds latency.
func DefaultWriterConfig(brokers []string) WriterConfig {
	return WriterConfig{
		Brokers:      brokers,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
}

// EventWriter writes workout events with one kafka.Writer per topic.
// Messages are hashed on their key, the workout ID, so every event for a
// workout lands on the same partition in order.
type EventWriter struct {
	cfg WriterConfig

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	closed  bool
}

// NewEventWriter creates an EventWriter. Writers are opened on first use.
func NewEventWriter(cfg WriterConfig) *EventWriter {
	return &EventWriter{cfg: cfg, writers: make(map[string]*kafka.Writer)}
}

// WriteMessages writes msgs to topic.
func (w *EventWriter) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	writer, err := w.writerFor(topic)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, msgs...)
}

func (w *EventWriter) writerFor(topic string) (*kafka.Writer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWriterClosed
	}
	if writer, ok := w.writers[topic]; ok {
		return writer, nil
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(w.cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           w.cfg.BatchTimeout,
		WriteTimeout:           w.cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
	w.writers[topic] = writer
	return writer, nil
}

// Close flushes and closes every writer. Later writes fail with ErrWriterClosed.
func (w *EventWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	var errs []error
	for topic, writer := range w.writers {
		if err := writer.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(w.writers, topic)
	}
	return errors.Join(errs...)
}
