package broker

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestEventWriterReusesTopicWriter(t *testing.T) {
	w := NewEventWriter(DefaultWriterConfig([]string{"kafka-1:9092"}))
	t.Cleanup(func() { _ = w.Close() })

	first, err := w.writerFor("workout_events")
	require.NoError(t, err)
	second, err := w.writerFor("workout_events")
	require.NoError(t, err)
	require.Same(t, first, second)

	require.Equal(t, "workout_events", first.Topic)
	require.IsType(t, &kafka.Hash{}, first.Balancer)
	require.Equal(t, kafka.RequireAll, first.RequiredAcks)
	require.Equal(t, 10*time.Millisecond, first.BatchTimeout)
}

func TestEventWriterRejectsWritesAfterClose(t *testing.T) {
	w := NewEventWriter(DefaultWriterConfig([]string{"kafka-1:9092"}))
	_, err := w.writerFor("workout_events")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	err = w.WriteMessages(context.Background(), "workout_events", kafka.Message{Key: []byte("a1b2c3d4e5")})
	require.ErrorIs(t, err, ErrWriterClosed)
}
