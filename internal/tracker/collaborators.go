package tracker

import (
	"context"

	"github.com/zahid-01/Running-Tracker/internal/domain"
	"github.com/zahid-01/Running-Tracker/internal/events"
)

// MapView is the map widget the controller draws on.
type MapView interface {
	Load(center domain.Coordinates, zoom int)
	AddMarker(w domain.Workout)
	Recenter(center domain.Coordinates, zoom int)
	Unload()
}

// ListView renders the workout list.
type ListView interface {
	Append(w domain.Workout)
	Clear()
}

// Form is the workout input form.
type Form interface {
	Show()
	Hide()
	Clear()
	ShowExtraField(kind domain.Kind)
}

// Notifier reports problems to the user.
type Notifier interface {
	Alert(message string)
}

// Views groups the visual collaborators.
type Views struct {
	Map      MapView
	List     ListView
	Form     Form
	Notifier Notifier
}

// Snapshots loads and stores the full workout sequence.
type Snapshots interface {
	Load(ctx context.Context) ([]domain.Workout, error)
	Save(ctx context.Context, workouts []domain.Workout) error
	Clear(ctx context.Context) error
}

// Publisher forwards change events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, env events.Envelope) error
}
