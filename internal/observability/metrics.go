// Package observability holds the prometheus collectors shared by the tracker and its stores.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "tracker",
		Name:      "workouts_created_total",
		Help:      "Number of workouts created from form submissions, labeled by type.",
	}, []string{"type"})

	invalidSubmissions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "tracker",
		Name:      "invalid_submissions_total",
		Help:      "Number of form submissions rejected by validation.",
	})

	selections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "tracker",
		Name:      "workout_selections_total",
		Help:      "Number of list selections that matched a workout.",
	})

	sessionWorkouts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workout_tracker",
		Subsystem: "tracker",
		Name:      "workouts_in_session",
		Help:      "Number of workouts currently held in memory.",
	})

	snapshotWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "snapshot",
		Name:      "writes_total",
		Help:      "Snapshot writes labeled by result (ok, error).",
	}, []string{"result"})

	snapshotWriteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "workout_tracker",
		Subsystem: "snapshot",
		Name:      "write_duration_seconds",
		Help:      "Time spent encoding and storing a snapshot.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	snapshotPersistedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workout_tracker",
		Subsystem: "snapshot",
		Name:      "last_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful snapshot write.",
	})

	skippedRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workout_tracker",
		Subsystem: "snapshot",
		Name:      "skipped_records_total",
		Help:      "Persisted records dropped while loading because they could not be decoded.",
	})
)

func init() {
	prometheus.MustRegister(
		workoutsCreated,
		invalidSubmissions,
		selections,
		sessionWorkouts,
		snapshotWrites,
		snapshotWriteDuration,
		snapshotPersistedGauge,
		skippedRecords,
	)
}

// RecordWorkoutCreated counts a created workout of the given type.
func RecordWorkoutCreated(kind string) {
	workoutsCreated.WithLabelValues(kind).Inc()
}

// RecordInvalidSubmission counts a rejected form submission.
func RecordInvalidSubmission() {
	invalidSubmissions.Inc()
}

// RecordSelection counts a successful list selection.
func RecordSelection() {
	selections.Inc()
}

// SetSessionWorkouts updates the in-memory workout gauge.
func SetSessionWorkouts(n int) {
	sessionWorkouts.Set(float64(n))
}

// RecordSnapshotWrite observes one snapshot write.
func RecordSnapshotWrite(started time.Time, err error) {
	snapshotWriteDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		snapshotWrites.WithLabelValues("error").Inc()
		return
	}
	snapshotWrites.WithLabelValues("ok").Inc()
	snapshotPersistedGauge.Set(float64(time.Now().Unix()))
}

// RecordSkippedRecords counts persisted records dropped on load.
func RecordSkippedRecords(n int) {
	if n <= 0 {
		return
	}
	skippedRecords.Add(float64(n))
}
