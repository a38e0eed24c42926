//go:build integration

package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/zahid-01/Running-Tracker/internal/broker"
	"github.com/zahid-01/Running-Tracker/internal/events"
	"github.com/zahid-01/Running-Tracker/internal/testsupport"
)

func TestPublishedEventsReachEventLog(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	address := testsupport.StartKafka(ctx, t)
	pool := testsupport.StartPostgres(ctx, t)

	topic := "workout_events"
	conn, err := kafka.Dial("tcp", address)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))

	handler := NewPersistenceHandler(pool)
	require.NoError(t, handler.EnsureSchema(ctx))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{address},
		GroupID:     "workout-event-log-integration",
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	defer reader.Close()

	consumerCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		_ = NewProcessor(reader, handler).Run(consumerCtx)
	}()

	eventWriter := broker.NewEventWriter(broker.DefaultWriterConfig([]string{address}))
	defer eventWriter.Close()
	publisher := broker.NewPublisher(eventWriter, topic)

	now := time.Now().UTC()
	require.NoError(t, publisher.Publish(ctx, events.Envelope{
		Type:       events.TypeWorkoutCreated,
		Key:        "1234567890",
		OccurredAt: now,
		Payload: events.WorkoutCreated{
			WorkoutID:   "1234567890",
			Type:        "running",
			Description: "Running on May 1",
			DistanceKm:  5,
			DurationMin: 25,
			Cadence:     170,
			Metric:      "pace",
			MetricValue: 5,
			CreatedAt:   now,
		},
	}))

	require.Eventually(t, func() bool {
		var count int
		err := pool.QueryRow(ctx,
			`SELECT count(*) FROM workout_event_log WHERE workout_id = $1 AND event_type = $2`,
			"1234567890", events.TypeWorkoutCreated).Scan(&count)
		return err == nil && count == 1
	}, 60*time.Second, 500*time.Millisecond)
}
