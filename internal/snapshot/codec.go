package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zahid-01/Running-Tracker/internal/domain"
)

// record is the persisted shape of one workout. The legacy names date,
// coords and click are accepted when reading.
type record struct {
	ID               string              `json:"id"`
	Type             string              `json:"type"`
	CreatedAt        *time.Time          `json:"createdAt,omitempty"`
	Coordinates      *domain.Coordinates `json:"coordinates,omitempty"`
	Distance         float64             `json:"distance"`
	Duration         float64             `json:"duration"`
	Description      string              `json:"description"`
	InteractionCount *int                `json:"interactionCount,omitempty"`
	Cadence          *float64            `json:"cadence,omitempty"`
	Pace             *int                `json:"pace,omitempty"`
	ElevationGain    *float64            `json:"elevationGain,omitempty"`
	Speed            *int                `json:"speed,omitempty"`

	Date   *time.Time          `json:"date,omitempty"`
	Coords *domain.Coordinates `json:"coords,omitempty"`
	Click  *int                `json:"click,omitempty"`
}

// Encode serialises the workouts as a JSON array.
func Encode(workouts []domain.Workout) ([]byte, error) {
	records := make([]record, 0, len(workouts))
	for _, w := range workouts {
		records = append(records, toRecord(w))
	}
	return json.Marshal(records)
}

// Decode parses a snapshot blob. Records that cannot be restored are skipped
// and counted; a blob that is not a JSON array yields no workouts and an error
// describing why.
func Decode(data []byte) ([]domain.Workout, int, error) {
	if len(data) == 0 {
		return nil, 0, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("snapshot is not a json array: %w", err)
	}

	workouts := make([]domain.Workout, 0, len(raw))
	skipped := 0
	for _, item := range raw {
		var rec record
		if err := json.Unmarshal(item, &rec); err != nil {
			skipped++
			continue
		}
		w, err := domain.Restore(fromRecord(rec))
		if err != nil {
			skipped++
			continue
		}
		workouts = append(workouts, w)
	}
	return workouts, skipped, nil
}

func toRecord(w domain.Workout) record {
	createdAt := w.CreatedAt
	coords := w.Coords
	clicks := w.InteractionCount
	rec := record{
		ID:               w.ID,
		Type:             string(w.Kind),
		CreatedAt:        &createdAt,
		Coordinates:      &coords,
		Distance:         w.Distance,
		Duration:         w.Duration,
		Description:      w.Description,
		InteractionCount: &clicks,
	}
	switch w.Kind {
	case domain.KindRunning:
		cadence, pace := w.Cadence, w.Pace
		rec.Cadence, rec.Pace = &cadence, &pace
	case domain.KindCycling:
		gain, speed := w.ElevationGain, w.Speed
		rec.ElevationGain, rec.Speed = &gain, &speed
	}
	return rec
}

func fromRecord(rec record) domain.Workout {
	w := domain.Workout{
		ID:          rec.ID,
		Kind:        domain.Kind(rec.Type),
		Distance:    rec.Distance,
		Duration:    rec.Duration,
		Description: rec.Description,
	}
	switch {
	case rec.CreatedAt != nil:
		w.CreatedAt = *rec.CreatedAt
	case rec.Date != nil:
		w.CreatedAt = *rec.Date
	}
	switch {
	case rec.Coordinates != nil:
		w.Coords = *rec.Coordinates
	case rec.Coords != nil:
		w.Coords = *rec.Coords
	}
	switch {
	case rec.InteractionCount != nil:
		w.InteractionCount = *rec.InteractionCount
	case rec.Click != nil:
		w.InteractionCount = *rec.Click
	}
	if rec.Cadence != nil {
		w.Cadence = *rec.Cadence
	}
	if rec.ElevationGain != nil {
		w.ElevationGain = *rec.ElevationGain
	}
	return w
}
