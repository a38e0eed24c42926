package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zahid-01/Running-Tracker/internal/config"
	"github.com/zahid-01/Running-Tracker/internal/domain"
	"github.com/zahid-01/Running-Tracker/internal/snapshot"
)

func seededOpener(t *testing.T, workouts ...domain.Workout) (storeOpener, *snapshot.MemoryStore) {
	t.Helper()
	store := snapshot.NewMemoryStore()
	if len(workouts) > 0 {
		raw, err := snapshot.Encode(workouts)
		require.NoError(t, err)
		require.NoError(t, store.Set(context.Background(), snapshot.DefaultKey, raw))
	}
	return func(context.Context, config.Config, *zap.Logger) (snapshot.Store, func(), error) {
		return store, func() {}, nil
	}, store
}

func run(t *testing.T, open storeOpener, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SNAPSHOT_BACKEND", config.BackendMemory)
	t.Setenv("LOG_LEVEL", "error")
	var out bytes.Buffer
	cmd := newRootCmd(&out, open)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func sampleWorkouts() []domain.Workout {
	at := time.Date(2026, time.April, 2, 7, 30, 0, 0, time.UTC)
	return []domain.Workout{
		domain.NewRunning(at, domain.Coordinates{Lat: 48.85, Lng: 2.35}, 5, 26, 170),
		domain.NewCycling(at.Add(time.Hour), domain.Coordinates{Lat: 48.86, Lng: 2.29}, 20, 60, 120),
	}
}

func TestShowPrintsTable(t *testing.T) {
	open, _ := seededOpener(t, sampleWorkouts()...)
	out, err := run(t, open, "show")
	require.NoError(t, err)
	require.Contains(t, out, "Running on April 2")
	require.Contains(t, out, "Cycling on April 2")
	require.Contains(t, out, "5 min/km")
	require.Contains(t, out, "20 km/h")
}

func TestShowJSON(t *testing.T) {
	open, _ := seededOpener(t, sampleWorkouts()...)
	out, err := run(t, open, "show", "--json")
	require.NoError(t, err)
	require.Contains(t, out, `"type": "running"`)
	require.Contains(t, out, `"elevationGain": 120`)
}

func TestRoutePrintsDistance(t *testing.T) {
	open, _ := seededOpener(t, sampleWorkouts()...)
	out, err := run(t, open, "route")
	require.NoError(t, err)
	require.Contains(t, out, "2 points")
}

func TestResetDeletesKey(t *testing.T) {
	open, store := seededOpener(t, sampleWorkouts()...)
	out, err := run(t, open, "reset")
	require.NoError(t, err)
	require.Contains(t, out, "cleared workout")

	raw, err := store.Get(context.Background(), snapshot.DefaultKey)
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestUnknownBackendFails(t *testing.T) {
	open, _ := seededOpener(t)
	_, err := run(t, open, "show", "--backend", "floppy")
	require.Error(t, err)
}

func TestBackendFlagOverridesInvalidEnv(t *testing.T) {
	open, _ := seededOpener(t, sampleWorkouts()...)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SNAPSHOT_BACKEND", "floppy")

	var out bytes.Buffer
	cmd := newRootCmd(&out, open)
	cmd.SetArgs([]string{"route", "--backend", " MEMORY "})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Contains(t, out.String(), "2 points")
}

type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (failingStore) Set(context.Context, string, []byte) error   { return errStoreDown }
func (failingStore) Delete(context.Context, string) error        { return errStoreDown }

func TestStoreClosedWhenCommandFails(t *testing.T) {
	for _, args := range [][]string{{"show"}, {"route"}, {"reset"}} {
		t.Run(args[0], func(t *testing.T) {
			closed := 0
			open := func(context.Context, config.Config, *zap.Logger) (snapshot.Store, func(), error) {
				return failingStore{}, func() { closed++ }, nil
			}
			_, err := run(t, open, args...)
			require.ErrorIs(t, err, errStoreDown)
			require.Equal(t, 1, closed)
		})
	}
}
