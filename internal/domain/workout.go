// Package domain defines the workout records tracked by the application.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the workout variants.
type Kind string

const (
	KindRunning Kind = "running"
	KindCycling Kind = "cycling"
)

// ErrUnknownType is returned when a workout type is neither running nor cycling.
var ErrUnknownType = errors.New("unknown workout type")

// ParseKind normalises a user supplied workout type.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindRunning:
		return KindRunning, nil
	case KindCycling:
		return KindCycling, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
	}
}

// Title returns the capitalised kind, e.g. "Running".
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	s := string(k)
	return strings.ToUpper(s[:1]) + s[1:]
}

// idLength is the number of trailing digits of the creation timestamp used as id.
// Two workouts created within the same millisecond share an id.
const idLength = 10

// Coordinates is a latitude/longitude pair. It marshals as [lat, lng].
type Coordinates struct {
	Lat float64
	Lng float64
}

// MarshalJSON encodes the pair as a two element array.
func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lng})
}

// UnmarshalJSON accepts either [lat, lng] or {"lat":..,"lng":..}.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("coordinates: expected 2 values, got %d", len(pair))
		}
		c.Lat, c.Lng = pair[0], pair[1]
		return nil
	}
	var obj struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Lat == nil || obj.Lng == nil {
		return errors.New("coordinates: lat and lng are required")
	}
	c.Lat, c.Lng = *obj.Lat, *obj.Lng
	return nil
}

// Workout is a tagged union over the running and cycling variants.
// Cadence and Pace are only meaningful for KindRunning; ElevationGain and
// Speed only for KindCycling.
type Workout struct {
	ID               string
	Kind             Kind
	CreatedAt        time.Time
	Coords           Coordinates
	Distance         float64 // km
	Duration         float64 // min
	Description      string
	InteractionCount int

	Cadence       float64 // steps/min
	Pace          int     // min/km
	ElevationGain float64 // m
	Speed         int     // km/h
}

// Metric is the derived performance figure of a workout.
type Metric struct {
	Name  string
	Value int
	Unit  string
}

// NewRunning builds a running workout. Inputs are expected to be validated.
func NewRunning(now time.Time, coords Coordinates, distance, duration, cadence float64) Workout {
	w := newWorkout(now, KindRunning, coords, distance, duration)
	w.Cadence = cadence
	w.derive()
	return w
}

// NewCycling builds a cycling workout. Inputs are expected to be validated.
func NewCycling(now time.Time, coords Coordinates, distance, duration, elevationGain float64) Workout {
	w := newWorkout(now, KindCycling, coords, distance, duration)
	w.ElevationGain = elevationGain
	w.derive()
	return w
}

// New validates the form input and builds the matching variant.
func New(now time.Time, coords Coordinates, in FormInput) (Workout, error) {
	kind, err := in.Validate()
	if err != nil {
		return Workout{}, err
	}
	if kind == KindCycling {
		return NewCycling(now, coords, in.Distance, in.Duration, in.ElevationGain), nil
	}
	return NewRunning(now, coords, in.Distance, in.Duration, in.Cadence), nil
}

// Restore rebuilds a workout from persisted fields. The derived metric is
// recomputed and the description regenerated when empty.
func Restore(w Workout) (Workout, error) {
	switch w.Kind {
	case KindRunning, KindCycling:
	default:
		return Workout{}, fmt.Errorf("%w: %q", ErrUnknownType, w.Kind)
	}
	if !(w.Distance > 0) || !(w.Duration > 0) || math.IsInf(w.Distance, 0) || math.IsInf(w.Duration, 0) {
		return Workout{}, fmt.Errorf("%w: distance and duration must be positive", ErrInvalidInput)
	}
	if w.InteractionCount < 0 {
		w.InteractionCount = 0
	}
	if w.ID == "" && !w.CreatedAt.IsZero() {
		w.ID = idFromTime(w.CreatedAt)
	}
	if w.Description == "" && !w.CreatedAt.IsZero() {
		w.Description = describe(w.Kind, w.CreatedAt)
	}
	w.derive()
	return w, nil
}

// Metric reports pace for running and speed for cycling.
func (w Workout) Metric() Metric {
	if w.Kind == KindCycling {
		return Metric{Name: "speed", Value: w.Speed, Unit: "km/h"}
	}
	return Metric{Name: "pace", Value: w.Pace, Unit: "min/km"}
}

// Select records that the workout was picked from the list.
func (w *Workout) Select() {
	w.InteractionCount++
}

func newWorkout(now time.Time, kind Kind, coords Coordinates, distance, duration float64) Workout {
	return Workout{
		ID:          idFromTime(now),
		Kind:        kind,
		CreatedAt:   now,
		Coords:      coords,
		Distance:    distance,
		Duration:    duration,
		Description: describe(kind, now),
	}
}

func (w *Workout) derive() {
	switch w.Kind {
	case KindRunning:
		w.Pace = Pace(w.Distance, w.Duration)
		w.Speed = 0
	case KindCycling:
		w.Speed = Speed(w.Distance, w.Duration)
		w.Pace = 0
	}
}

// Pace is minutes per kilometre truncated toward zero.
func Pace(distance, duration float64) int {
	return truncate(duration / distance)
}

// Speed is kilometres per hour truncated toward zero.
func Speed(distance, duration float64) int {
	return truncate(distance / (duration / 60))
}

// truncate converts toward zero, saturating at the int32 range so restored
// records with extreme ratios never wrap around.
func truncate(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Trunc(v))
}

func describe(kind Kind, at time.Time) string {
	return fmt.Sprintf("%s on %s %d", kind.Title(), at.Month().String(), at.Day())
}

func idFromTime(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) > idLength {
		ms = ms[len(ms)-idLength:]
	}
	return ms
}
