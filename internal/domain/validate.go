package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks a rejected form submission.
var ErrInvalidInput = errors.New("invalid input")

// MinPositive is the lowest accepted distance, duration and cadence.
// Values in (0, 1) are rejected as well.
const MinPositive = 1.0

// MaxValue caps every numeric form field. With MinPositive as the floor,
// pace and speed stay below MaxValue*60 and always fit an int.
const MaxValue = 1e6

// FormInput carries the raw values of a workout form submission.
type FormInput struct {
	Type          string  `json:"type"`
	Distance      float64 `json:"distance"`
	Duration      float64 `json:"duration"`
	Cadence       float64 `json:"cadence,omitempty"`
	ElevationGain float64 `json:"elevationGain,omitempty"`
}

// Validate checks the input and returns the parsed workout kind.
// Every numeric field must be at most MaxValue.
// Running requires distance, duration and cadence >= MinPositive.
// Cycling requires distance and duration >= MinPositive and a finite,
// non-negative elevation gain.
func (in FormInput) Validate() (Kind, error) {
	kind, err := ParseKind(in.Type)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if !finite(in.Distance, in.Duration) {
		return "", fmt.Errorf("%w: distance and duration must be numbers", ErrInvalidInput)
	}
	if in.Distance < MinPositive || in.Duration < MinPositive {
		return "", fmt.Errorf("%w: distance and duration must be at least %g", ErrInvalidInput, MinPositive)
	}
	if in.Distance > MaxValue || in.Duration > MaxValue {
		return "", fmt.Errorf("%w: distance and duration must be at most %g", ErrInvalidInput, MaxValue)
	}

	switch kind {
	case KindRunning:
		if !finite(in.Cadence) || in.Cadence < MinPositive || in.Cadence > MaxValue {
			return "", fmt.Errorf("%w: cadence must be between %g and %g", ErrInvalidInput, MinPositive, MaxValue)
		}
	case KindCycling:
		if !finite(in.ElevationGain) || in.ElevationGain < 0 || in.ElevationGain > MaxValue {
			return "", fmt.Errorf("%w: elevation gain must be between 0 and %g", ErrInvalidInput, MaxValue)
		}
	}
	return kind, nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
