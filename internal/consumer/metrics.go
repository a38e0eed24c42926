package consumer

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Event log outcomes.
const (
	outcomeStored = "stored"
	outcomeFailed = "failed"
)

var (
	eventLogEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "event_log",
		Name:      "workout_events_total",
		Help:      "Workout lifecycle events read from Kafka, by event type and whether they reached the event log.",
	}, []string{"event_type", "outcome"})

	eventLogRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "event_log",
		Name:      "rejected_messages_total",
		Help:      "Kafka messages dropped before reaching the event log, by reason.",
	}, []string{"reason"})

	eventLogLag = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workout_tracker",
		Subsystem: "event_log",
		Name:      "lag_seconds",
		Help:      "Seconds between the last stored workout event occurring and it being logged.",
	})
)

func init() {
	prometheus.MustRegister(eventLogEvents, eventLogRejected, eventLogLag)
}

func observeStored(event Message, now time.Time) {
	eventLogEvents.WithLabelValues(event.EventType, outcomeStored).Inc()
	if !event.Timestamp.IsZero() {
		eventLogLag.Set(now.Sub(event.Timestamp).Seconds())
	}
}

func observeFailed(event Message) {
	eventLogEvents.WithLabelValues(event.EventType, outcomeFailed).Inc()
}

func observeRejected(err error) {
	reason := "invalid_payload"
	if errors.Is(err, errMissingEventType) {
		reason = "missing_event_type"
	}
	eventLogRejected.WithLabelValues(reason).Inc()
}
