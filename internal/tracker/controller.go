// Package tracker drives the workout list in response to map, form and list events.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zahid-01/Running-Tracker/internal/domain"
	"github.com/zahid-01/Running-Tracker/internal/events"
	"github.com/zahid-01/Running-Tracker/internal/observability"
)

var (
	// ErrNoPendingLocation is returned when the form is submitted without a selected map location.
	ErrNoPendingLocation = errors.New("no map location selected")
	// ErrMapUnavailable is returned for map interactions before a position was acquired.
	ErrMapUnavailable = errors.New("map is not available")
	// ErrWorkoutNotFound is returned when a selection references an unknown workout.
	ErrWorkoutNotFound = errors.New("workout not found")
)

const (
	// DefaultZoom is the map zoom level used when loading and recentering.
	DefaultZoom = 13

	alertInvalidInput = "Inputs have to be positive numbers!"
	alertNoPosition   = "Could not get your position"
)

// State is the form state of the controller.
type State int

const (
	StateIdle State = iota
	StateAwaitingInput
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingInput:
		return "awaiting_input"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option configures optional behaviour for the Controller.
type Option func(*Controller)

// WithLogger overrides the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithClock overrides the time source used for new workouts.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithPublisher attaches an event publisher.
func WithPublisher(p Publisher) Option {
	return func(c *Controller) {
		c.publisher = p
	}
}

// WithZoom overrides the map zoom level.
func WithZoom(zoom int) Option {
	return func(c *Controller) {
		if zoom > 0 {
			c.zoom = zoom
		}
	}
}

// Controller owns the workout sequence of one session. It handles one event
// at a time and is not safe for concurrent use.
type Controller struct {
	views     Views
	snapshots Snapshots
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
	zoom      int

	state    State
	pending  *domain.Coordinates
	mapReady bool
	center   domain.Coordinates
	workouts []domain.Workout
}

// New constructs a Controller in the idle state with an empty sequence.
func New(views Views, snapshots Snapshots, opts ...Option) *Controller {
	c := &Controller{
		views:     views,
		snapshots: snapshots,
		logger:    zap.NewNop(),
		now:       time.Now,
		zoom:      DefaultZoom,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start loads the persisted snapshot and renders every loaded workout into the list.
// Missing or unreadable data leaves the sequence empty.
func (c *Controller) Start(ctx context.Context) {
	workouts, err := c.snapshots.Load(ctx)
	if err != nil {
		c.logger.Warn("snapshot load failed, starting empty", zap.Error(err))
		workouts = nil
	}
	c.workouts = workouts
	observability.SetSessionWorkouts(len(c.workouts))

	for _, w := range c.workouts {
		c.views.List.Append(w)
	}
	c.logger.Info("tracker started", zap.Int("workouts", len(c.workouts)))
}

// PositionReady loads the map around the user's position and draws a marker per workout.
func (c *Controller) PositionReady(_ context.Context, coords domain.Coordinates) {
	c.center = coords
	if c.mapReady {
		c.views.Map.Recenter(coords, c.zoom)
		return
	}
	c.mapReady = true
	c.views.Map.Load(coords, c.zoom)
	for _, w := range c.workouts {
		c.views.Map.AddMarker(w)
	}
}

// PositionFailed disables the map and tells the user.
func (c *Controller) PositionFailed(_ context.Context, reason error) {
	c.logger.Warn("geolocation unavailable", zap.Error(reason))
	c.views.Notifier.Alert(alertNoPosition)
}

// MapClicked remembers the clicked location and opens the form.
func (c *Controller) MapClicked(coords domain.Coordinates) error {
	if !c.mapReady {
		return ErrMapUnavailable
	}
	c.pending = &coords
	c.state = StateAwaitingInput
	c.views.Form.Show()
	return nil
}

// TypeChanged switches the form to the extra field of the chosen type.
func (c *Controller) TypeChanged(raw string) error {
	kind, err := domain.ParseKind(raw)
	if err != nil {
		return err
	}
	c.views.Form.ShowExtraField(kind)
	return nil
}

// Cancel closes the form without creating a workout.
func (c *Controller) Cancel() {
	if c.state != StateAwaitingInput {
		return
	}
	c.pending = nil
	c.state = StateIdle
	c.views.Form.Hide()
	c.views.Form.Clear()
}

// Submit validates the form input and records a workout at the pending location.
// Invalid input alerts the user and leaves the controller awaiting input.
func (c *Controller) Submit(ctx context.Context, in domain.FormInput) (domain.Workout, error) {
	if c.state != StateAwaitingInput || c.pending == nil {
		return domain.Workout{}, ErrNoPendingLocation
	}

	w, err := domain.New(c.now(), *c.pending, in)
	if err != nil {
		observability.RecordInvalidSubmission()
		c.logger.Debug("rejected workout input", zap.String("type", in.Type), zap.Error(err))
		c.views.Notifier.Alert(alertInvalidInput)
		return domain.Workout{}, err
	}

	c.workouts = append(c.workouts, w)
	observability.RecordWorkoutCreated(string(w.Kind))
	observability.SetSessionWorkouts(len(c.workouts))

	c.views.Map.AddMarker(w)
	c.views.List.Append(w)
	c.views.Form.Hide()
	c.views.Form.Clear()
	c.pending = nil
	c.state = StateIdle

	c.persist(ctx)

	metric := w.Metric()
	c.publish(ctx, events.Envelope{
		Type:       events.TypeWorkoutCreated,
		Key:        w.ID,
		OccurredAt: w.CreatedAt,
		Payload: events.WorkoutCreated{
			WorkoutID:     w.ID,
			Type:          string(w.Kind),
			Description:   w.Description,
			Lat:           w.Coords.Lat,
			Lng:           w.Coords.Lng,
			DistanceKm:    w.Distance,
			DurationMin:   w.Duration,
			Cadence:       w.Cadence,
			ElevationGain: w.ElevationGain,
			Metric:        metric.Name,
			MetricValue:   metric.Value,
			CreatedAt:     w.CreatedAt,
		},
	})

	c.logger.Info("workout created",
		zap.String("workout_id", w.ID),
		zap.String("type", string(w.Kind)),
		zap.Int(metric.Name, metric.Value))
	return w, nil
}

// Select recenters the map on a workout and bumps its interaction count.
// Unknown ids return ErrWorkoutNotFound and change nothing.
func (c *Controller) Select(ctx context.Context, id string) (domain.Workout, error) {
	idx := -1
	for i := range c.workouts {
		if c.workouts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Workout{}, ErrWorkoutNotFound
	}

	w := &c.workouts[idx]
	if c.mapReady {
		c.views.Map.Recenter(w.Coords, c.zoom)
	}
	w.Select()
	observability.RecordSelection()

	c.persist(ctx)
	now := c.now()
	c.publish(ctx, events.Envelope{
		Type:       events.TypeWorkoutSelected,
		Key:        w.ID,
		OccurredAt: now,
		Payload: events.WorkoutSelected{
			WorkoutID:        w.ID,
			InteractionCount: w.InteractionCount,
			OccurredAt:       now,
		},
	})
	return *w, nil
}

// Reset deletes the persisted snapshot and discards all session state,
// including the loaded map. The in-memory state is kept if storage fails.
func (c *Controller) Reset(ctx context.Context) error {
	if err := c.snapshots.Clear(ctx); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	discarded := len(c.workouts)
	c.workouts = nil
	c.pending = nil
	c.state = StateIdle
	c.mapReady = false
	c.center = domain.Coordinates{}

	c.views.Form.Hide()
	c.views.Form.Clear()
	c.views.List.Clear()
	c.views.Map.Unload()
	observability.SetSessionWorkouts(0)

	now := c.now()
	c.publish(ctx, events.Envelope{
		Type:       events.TypeWorkoutsCleared,
		OccurredAt: now,
		Payload:    events.WorkoutsCleared{Discarded: discarded, OccurredAt: now},
	})
	c.logger.Info("tracker reset", zap.Int("discarded", discarded))
	return nil
}

// Workouts returns a copy of the ordered sequence.
func (c *Controller) Workouts() []domain.Workout {
	out := make([]domain.Workout, len(c.workouts))
	copy(out, c.workouts)
	return out
}

// State reports whether the form is open.
func (c *Controller) State() State {
	return c.state
}

// MapReady reports whether a position was acquired and the map loaded.
func (c *Controller) MapReady() bool {
	return c.mapReady
}

// Pending returns the location awaiting form input, if any.
func (c *Controller) Pending() (domain.Coordinates, bool) {
	if c.pending == nil {
		return domain.Coordinates{}, false
	}
	return *c.pending, true
}

func (c *Controller) persist(ctx context.Context) {
	started := time.Now()
	err := c.snapshots.Save(ctx, c.workouts)
	observability.RecordSnapshotWrite(started, err)
	if err != nil {
		c.logger.Error("snapshot write failed", zap.Int("workouts", len(c.workouts)), zap.Error(err))
	}
}

func (c *Controller) publish(ctx context.Context, env events.Envelope) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, env); err != nil {
		c.logger.Warn("event publish failed", zap.String("event_type", env.Type), zap.Error(err))
	}
}
