package api

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zahid-01/Running-Tracker/internal/domain"
)

// PositionRequest is the payload for POST /v1/position and /v1/map/click.
type PositionRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (r PositionRequest) coordinates() (domain.Coordinates, bool) {
	if r.Lat == nil || r.Lng == nil {
		return domain.Coordinates{}, false
	}
	lat, lng := *r.Lat, *r.Lng
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return domain.Coordinates{}, false
	}
	return domain.Coordinates{Lat: lat, Lng: lng}, true
}

// PositionErrorRequest is the payload for POST /v1/position/error.
type PositionErrorRequest struct {
	Message string `json:"message"`
}

// TypeRequest is the payload for POST /v1/form/type.
type TypeRequest struct {
	Type string `json:"type"`
}

// WorkoutView exposes a workout to API clients.
type WorkoutView struct {
	ID               string             `json:"id"`
	Type             string             `json:"type"`
	Description      string             `json:"description"`
	Coords           domain.Coordinates `json:"coords"`
	Distance         float64            `json:"distance"`
	Duration         float64            `json:"duration"`
	Cadence          *float64           `json:"cadence,omitempty"`
	Pace             *int               `json:"pace,omitempty"`
	ElevationGain    *float64           `json:"elevationGain,omitempty"`
	Speed            *int               `json:"speed,omitempty"`
	InteractionCount int                `json:"clicks"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items      []WorkoutView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// StateResponse describes the controller state after an interaction.
type StateResponse struct {
	State    string `json:"state"`
	MapReady bool   `json:"map_ready"`
}

func toWorkoutView(w domain.Workout) WorkoutView {
	view := WorkoutView{
		ID:               w.ID,
		Type:             string(w.Kind),
		Description:      w.Description,
		Coords:           w.Coords,
		Distance:         w.Distance,
		Duration:         w.Duration,
		InteractionCount: w.InteractionCount,
		CreatedAt:        w.CreatedAt,
	}
	switch w.Kind {
	case domain.KindRunning:
		cadence, pace := w.Cadence, w.Pace
		view.Cadence, view.Pace = &cadence, &pace
	case domain.KindCycling:
		gain, speed := w.ElevationGain, w.Speed
		view.ElevationGain, view.Speed = &gain, &speed
	}
	return view
}

// formValue parses a numeric form field the way a browser number input
// would: blank is zero, anything unparseable is NaN and fails validation.
func formValue(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// SubmitRequest is the JSON payload for POST /v1/workouts. Numeric fields are
// kept raw so numbers, numeric strings and garbage all reach validation.
type SubmitRequest struct {
	Type          string          `json:"type"`
	Distance      json.RawMessage `json:"distance"`
	Duration      json.RawMessage `json:"duration"`
	Cadence       json.RawMessage `json:"cadence"`
	ElevationGain json.RawMessage `json:"elevationGain"`
}

func (r SubmitRequest) formInput() domain.FormInput {
	return domain.FormInput{
		Type:          r.Type,
		Distance:      jsonValue(r.Distance),
		Duration:      jsonValue(r.Duration),
		Cadence:       jsonValue(r.Cadence),
		ElevationGain: jsonValue(r.ElevationGain),
	}
}

// jsonValue applies formValue rules to a raw JSON field: absent, null and
// blank strings are zero, numbers and numeric strings parse, the rest is NaN.
func jsonValue(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return formValue(str)
	}
	return math.NaN()
}
