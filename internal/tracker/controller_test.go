package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zahid-01/Running-Tracker/internal/domain"
	"github.com/zahid-01/Running-Tracker/internal/events"
)

var testNow = time.Date(2026, time.October, 19, 8, 15, 0, 0, time.UTC)

func TestStartWithoutSnapshotRendersNothing(t *testing.T) {
	rec := &recorder{}
	c := New(rec.views(), &memSnapshots{})

	c.Start(context.Background())

	require.Empty(t, c.Workouts())
	require.Empty(t, rec.calls)
}

func TestStartRendersLoadedWorkoutsThenMarkersOnMapReady(t *testing.T) {
	rec := &recorder{}
	stored := []domain.Workout{
		domain.NewRunning(testNow, domain.Coordinates{Lat: 1, Lng: 2}, 5, 30, 180),
		domain.NewCycling(testNow.Add(time.Second), domain.Coordinates{Lat: 3, Lng: 4}, 20, 60, 100),
	}
	c := New(rec.views(), &memSnapshots{workouts: stored})

	c.Start(context.Background())
	require.Len(t, c.Workouts(), 2)
	require.Equal(t, []string{"list.append " + stored[0].ID, "list.append " + stored[1].ID}, rec.calls)

	rec.calls = nil
	c.PositionReady(context.Background(), domain.Coordinates{Lat: 10, Lng: 20})
	require.True(t, c.MapReady())
	require.Equal(t, []string{
		"map.load 10,20 z13",
		"map.marker " + stored[0].ID,
		"map.marker " + stored[1].ID,
	}, rec.calls)
}

func TestStartTreatsLoadErrorAsEmpty(t *testing.T) {
	rec := &recorder{}
	c := New(rec.views(), &memSnapshots{loadErr: errors.New("disk on fire")})

	c.Start(context.Background())

	require.Empty(t, c.Workouts())
	require.Empty(t, rec.calls)
}

func TestSubmitRunningScenario(t *testing.T) {
	rec := &recorder{}
	snaps := &memSnapshots{}
	pub := &stubPublisher{}
	c := New(rec.views(), snaps, WithClock(func() time.Time { return testNow }), WithPublisher(pub))
	c.Start(context.Background())
	c.PositionReady(context.Background(), domain.Coordinates{Lat: 40, Lng: -70})

	require.NoError(t, c.MapClicked(domain.Coordinates{Lat: 40.0, Lng: -70.0}))
	require.Equal(t, StateAwaitingInput, c.State())

	rec.calls = nil
	w, err := c.Submit(context.Background(), domain.FormInput{Type: "running", Distance: 5, Duration: 30, Cadence: 180})
	require.NoError(t, err)

	require.Equal(t, 6, w.Pace)
	require.Equal(t, "Running on October 19", w.Description)
	require.Equal(t, domain.Coordinates{Lat: 40, Lng: -70}, w.Coords)
	require.Len(t, c.Workouts(), 1)
	require.Equal(t, StateIdle, c.State())
	_, pending := c.Pending()
	require.False(t, pending)

	require.Equal(t, []string{
		"map.marker " + w.ID,
		"list.append " + w.ID,
		"form.hide",
		"form.clear",
	}, rec.calls)
	require.Equal(t, 1, snaps.saves)
	require.Len(t, snaps.workouts, 1)

	require.Len(t, pub.published, 1)
	require.Equal(t, events.TypeWorkoutCreated, pub.published[0].Type)
	payload := pub.published[0].Payload.(events.WorkoutCreated)
	require.Equal(t, "pace", payload.Metric)
	require.Equal(t, 6, payload.MetricValue)
}

func TestSubmitCyclingScenario(t *testing.T) {
	rec := &recorder{}
	c := New(rec.views(), &memSnapshots{}, WithClock(func() time.Time { return testNow }))
	c.PositionReady(context.Background(), domain.Coordinates{})
	require.NoError(t, c.MapClicked(domain.Coordinates{Lat: 1, Lng: 1}))

	w, err := c.Submit(context.Background(), domain.FormInput{Type: "cycling", Distance: 20, Duration: 60, ElevationGain: 150})
	require.NoError(t, err)
	require.Equal(t, 20, w.Speed)
	require.Equal(t, domain.KindCycling, w.Kind)
}

func TestSubmitInvalidInputKeepsAwaitingInput(t *testing.T) {
	rec := &recorder{}
	snaps := &memSnapshots{}
	c := New(rec.views(), snaps)
	c.PositionReady(context.Background(), domain.Coordinates{})
	require.NoError(t, c.MapClicked(domain.Coordinates{Lat: 5, Lng: 5}))
	rec.calls = nil

	_, err := c.Submit(context.Background(), domain.FormInput{Type: "running", Distance: 0, Duration: 30, Cadence: 180})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Equal(t, StateAwaitingInput, c.State())
	require.Empty(t, c.Workouts())
	require.Equal(t, 0, snaps.saves)
	require.Equal(t, []string{"alert " + alertInvalidInput}, rec.calls)

	// the user may resubmit at the same location
	w, err := c.Submit(context.Background(), domain.FormInput{Type: "running", Distance: 3, Duration: 20, Cadence: 170})
	require.NoError(t, err)
	require.Equal(t, domain.Coordinates{Lat: 5, Lng: 5}, w.Coords)
}

func TestSubmitWithoutPendingLocation(t *testing.T) {
	c := New((&recorder{}).views(), &memSnapshots{})
	_, err := c.Submit(context.Background(), domain.FormInput{Type: "running", Distance: 5, Duration: 30, Cadence: 180})
	require.ErrorIs(t, err, ErrNoPendingLocation)
}

func TestMapClickRequiresMap(t *testing.T) {
	rec := &recorder{}
	c := New(rec.views(), &memSnapshots{})

	c.PositionFailed(context.Background(), errors.New("denied"))
	require.Equal(t, []string{"alert " + alertNoPosition}, rec.calls)

	require.ErrorIs(t, c.MapClicked(domain.Coordinates{Lat: 1, Lng: 1}), ErrMapUnavailable)
	require.Equal(t, StateIdle, c.State())
}

func TestCancelReturnsToIdle(t *testing.T) {
	rec := &recorder{}
	c := New(rec.views(), &memSnapshots{})
	c.PositionReady(context.Background(), domain.Coordinates{})
	require.NoError(t, c.MapClicked(domain.Coordinates{Lat: 1, Lng: 1}))

	c.Cancel()
	require.Equal(t, StateIdle, c.State())
	_, pending := c.Pending()
	require.False(t, pending)
}

func TestTypeChangedTogglesExtraField(t *testing.T) {
	rec := &recorder{}
	c := New(rec.views(), &memSnapshots{})

	require.NoError(t, c.TypeChanged("cycling"))
	require.NoError(t, c.TypeChanged("running"))
	require.ErrorIs(t, c.TypeChanged("rowing"), domain.ErrUnknownType)
	require.Equal(t, []string{"form.extra cycling", "form.extra running"}, rec.calls)
}

func TestSelectIncrementsByOneEachTime(t *testing.T) {
	rec := &recorder{}
	snaps := &memSnapshots{}
	stored := domain.NewRunning(testNow, domain.Coordinates{Lat: 7, Lng: 8}, 5, 30, 180)
	snaps.workouts = []domain.Workout{stored}

	c := New(rec.views(), snaps)
	c.Start(context.Background())
	c.PositionReady(context.Background(), domain.Coordinates{})
	rec.calls = nil

	for i := 1; i <= 3; i++ {
		w, err := c.Select(context.Background(), stored.ID)
		require.NoError(t, err)
		require.Equal(t, i, w.InteractionCount)

		w.InteractionCount = stored.InteractionCount
		require.Equal(t, stored, w)
	}
	require.Equal(t, 3, c.Workouts()[0].InteractionCount)
	require.Equal(t, 3, snaps.saves)
	require.Equal(t, []string{"map.recenter 7,8 z13", "map.recenter 7,8 z13", "map.recenter 7,8 z13"}, rec.calls)
}

func TestSelectUnknownIDIsNoop(t *testing.T) {
	rec := &recorder{}
	snaps := &memSnapshots{}
	c := New(rec.views(), snaps)

	_, err := c.Select(context.Background(), "stale")
	require.ErrorIs(t, err, ErrWorkoutNotFound)
	require.Empty(t, rec.calls)
	require.Equal(t, 0, snaps.saves)
}

func TestSelectWithoutMapSkipsRecenter(t *testing.T) {
	rec := &recorder{}
	stored := domain.NewRunning(testNow, domain.Coordinates{Lat: 7, Lng: 8}, 5, 30, 180)
	c := New(rec.views(), &memSnapshots{workouts: []domain.Workout{stored}})
	c.Start(context.Background())
	rec.calls = nil

	w, err := c.Select(context.Background(), stored.ID)
	require.NoError(t, err)
	require.Equal(t, 1, w.InteractionCount)
	require.Empty(t, rec.calls)
}

func TestResetDiscardsEverything(t *testing.T) {
	rec := &recorder{}
	snaps := &memSnapshots{}
	pub := &stubPublisher{}
	c := New(rec.views(), snaps, WithClock(func() time.Time { return testNow }), WithPublisher(pub))
	c.PositionReady(context.Background(), domain.Coordinates{})
	require.NoError(t, c.MapClicked(domain.Coordinates{Lat: 1, Lng: 1}))
	_, err := c.Submit(context.Background(), domain.FormInput{Type: "running", Distance: 5, Duration: 30, Cadence: 180})
	require.NoError(t, err)

	require.NoError(t, c.Reset(context.Background()))
	require.Empty(t, c.Workouts())
	require.False(t, c.MapReady())
	require.Equal(t, StateIdle, c.State())
	require.Equal(t, 1, snaps.clears)
	require.Nil(t, snaps.workouts)
	require.Equal(t, events.TypeWorkoutsCleared, pub.published[len(pub.published)-1].Type)
	require.Equal(t, 1, pub.published[len(pub.published)-1].Payload.(events.WorkoutsCleared).Discarded)
}

func TestResetKeepsStateWhenStorageFails(t *testing.T) {
	stored := domain.NewRunning(testNow, domain.Coordinates{}, 5, 30, 180)
	snaps := &memSnapshots{workouts: []domain.Workout{stored}, clearErr: errors.New("read-only")}
	c := New((&recorder{}).views(), snaps)
	c.Start(context.Background())

	require.Error(t, c.Reset(context.Background()))
	require.Len(t, c.Workouts(), 1)
}

func TestPersistAndPublishFailuresDoNotFailSubmit(t *testing.T) {
	snaps := &memSnapshots{saveErr: errors.New("quota exceeded")}
	pub := &stubPublisher{err: errors.New("broker down")}
	c := New((&recorder{}).views(), snaps, WithPublisher(pub))
	c.PositionReady(context.Background(), domain.Coordinates{})
	require.NoError(t, c.MapClicked(domain.Coordinates{Lat: 1, Lng: 1}))

	_, err := c.Submit(context.Background(), domain.FormInput{Type: "cycling", Distance: 10, Duration: 30})
	require.NoError(t, err)
	require.Len(t, c.Workouts(), 1)
}

type recorder struct {
	calls []string
}

func (r *recorder) views() Views {
	return Views{Map: r, List: (*listRecorder)(r), Form: r, Notifier: r}
}

func (r *recorder) add(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) Load(center domain.Coordinates, zoom int) {
	r.add("map.load %g,%g z%d", center.Lat, center.Lng, zoom)
}

func (r *recorder) AddMarker(w domain.Workout) { r.add("map.marker %s", w.ID) }

func (r *recorder) Recenter(center domain.Coordinates, zoom int) {
	r.add("map.recenter %g,%g z%d", center.Lat, center.Lng, zoom)
}

func (r *recorder) Unload() { r.add("map.unload") }

func (r *recorder) Show()  { r.add("form.show") }
func (r *recorder) Hide()  { r.add("form.hide") }
func (r *recorder) Clear() { r.add("form.clear") }

func (r *recorder) ShowExtraField(kind domain.Kind) { r.add("form.extra %s", kind) }

func (r *recorder) Alert(message string) { r.add("alert %s", message) }

type listRecorder recorder

func (l *listRecorder) Append(w domain.Workout) { (*recorder)(l).add("list.append %s", w.ID) }
func (l *listRecorder) Clear()                  { (*recorder)(l).add("list.clear") }

type memSnapshots struct {
	workouts []domain.Workout
	saves    int
	clears   int
	loadErr  error
	saveErr  error
	clearErr error
}

func (m *memSnapshots) Load(context.Context) ([]domain.Workout, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]domain.Workout, len(m.workouts))
	copy(out, m.workouts)
	return out, nil
}

func (m *memSnapshots) Save(_ context.Context, workouts []domain.Workout) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.workouts = append([]domain.Workout(nil), workouts...)
	return nil
}

func (m *memSnapshots) Clear(context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.clears++
	m.workouts = nil
	return nil
}

type stubPublisher struct {
	published []events.Envelope
	err       error
}

func (p *stubPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.published = append(p.published, env)
	return p.err
}
