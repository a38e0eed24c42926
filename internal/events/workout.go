// Package events defines the payloads emitted when the workout list changes.
package events

import "time"

const (
	TypeWorkoutCreated  = "workout.created"
	TypeWorkoutSelected = "workout.selected"
	TypeWorkoutsCleared = "workouts.cleared"
)

// Envelope wraps a payload with routing metadata.
type Envelope struct {
	Type       string
	Key        string
	OccurredAt time.Time
	Payload    interface{}
}

// WorkoutCreated is emitted after a form submission produced a new workout.
type WorkoutCreated struct {
	WorkoutID     string    `json:"workout_id"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	DistanceKm    float64   `json:"distance_km"`
	DurationMin   float64   `json:"duration_min"`
	Cadence       float64   `json:"cadence,omitempty"`
	ElevationGain float64   `json:"elevation_gain,omitempty"`
	Metric        string    `json:"metric"`
	MetricValue   int       `json:"metric_value"`
	CreatedAt     time.Time `json:"created_at"`
}

// WorkoutSelected tracks list selections.
type WorkoutSelected struct {
	WorkoutID        string    `json:"workout_id"`
	InteractionCount int       `json:"interaction_count"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// WorkoutsCleared is emitted when all stored workouts are discarded.
type WorkoutsCleared struct {
	Discarded  int       `json:"discarded"`
	OccurredAt time.Time `json:"occurred_at"`
}
