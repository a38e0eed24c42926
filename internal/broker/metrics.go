package broker

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "broker",
		Name:      "events_published_total",
		Help:      "Number of workout events written to Kafka, labeled by event type.",
	}, []string{"event_type"})

	failedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "broker",
		Name:      "events_failed_total",
		Help:      "Number of workout events that could not be written to Kafka.",
	}, []string{"event_type"})
)

func init() {
	prometheus.MustRegister(publishedCounter, failedCounter)
}
