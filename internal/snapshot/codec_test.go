package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zahid-01/Running-Tracker/internal/domain"
)

var created = time.Date(2026, time.May, 4, 7, 0, 0, 0, time.UTC)

func sampleWorkouts() []domain.Workout {
	run := domain.NewRunning(created, domain.Coordinates{Lat: 40, Lng: -70}, 5, 30, 180)
	run.Select()
	ride := domain.NewCycling(created.Add(time.Minute), domain.Coordinates{Lat: 41.5, Lng: -71.25}, 20, 60, 150)
	return []domain.Workout{run, ride}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sampleWorkouts()

	data, err := Encode(in)
	require.NoError(t, err)

	out, skipped, err := Decode(data)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Len(t, out, len(in))
	for i := range in {
		require.Equal(t, in[i].Kind, out[i].Kind)
		require.Equal(t, in[i].Coords, out[i].Coords)
		require.Equal(t, in[i].Distance, out[i].Distance)
		require.Equal(t, in[i].Duration, out[i].Duration)
		require.Equal(t, in[i].Metric(), out[i].Metric())
		require.Equal(t, in[i].ID, out[i].ID)
		require.Equal(t, in[i].InteractionCount, out[i].InteractionCount)
		require.True(t, in[i].CreatedAt.Equal(out[i].CreatedAt))
	}
}

func TestEncodeUsesVariantFields(t *testing.T) {
	data, err := Encode(sampleWorkouts()[:1])
	require.NoError(t, err)
	require.Contains(t, string(data), `"cadence":180`)
	require.Contains(t, string(data), `"pace":6`)
	require.NotContains(t, string(data), `elevationGain`)
	require.Contains(t, string(data), `"coordinates":[40,-70]`)
}

func TestDecodeLegacyFieldNames(t *testing.T) {
	blob := `[{"date":"2026-05-04T07:00:00.000Z","id":"7777000000","click":2,"coords":[51.5,-0.12],
		"distance":10,"duration":55,"type":"running","cadence":172,"pace":5,"description":"Running on May 4"}]`

	out, skipped, err := Decode([]byte(blob))
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Len(t, out, 1)
	require.Equal(t, "7777000000", out[0].ID)
	require.Equal(t, 2, out[0].InteractionCount)
	require.Equal(t, domain.Coordinates{Lat: 51.5, Lng: -0.12}, out[0].Coords)
	require.Equal(t, 5, out[0].Pace)
	require.Equal(t, "Running on May 4", out[0].Description)
}

func TestDecodeSkipsBrokenRecords(t *testing.T) {
	blob := `[
		{"id":"1","type":"running","distance":5,"duration":30,"cadence":180},
		{"id":"2","type":"swimming","distance":5,"duration":30},
		{"id":"3","type":"cycling","distance":0,"duration":30},
		{"id":"4","type":"cycling","distance":"far","duration":30},
		"not an object",
		{"id":"5","type":"cycling","distance":30,"duration":90,"speed":1}
	]`

	out, skipped, err := Decode([]byte(blob))
	require.NoError(t, err)
	require.Equal(t, 4, skipped)
	require.Len(t, out, 2)
	require.Equal(t, 6, out[0].Pace)
	require.Equal(t, 20, out[1].Speed)
}

func TestDecodeNonArray(t *testing.T) {
	out, _, err := Decode([]byte(`{"workouts":[]}`))
	require.Error(t, err)
	require.Empty(t, out)

	out, _, err = Decode([]byte(`null`))
	require.NoError(t, err)
	require.Empty(t, out)

	out, _, err = Decode(nil)
	require.NoError(t, err)
	require.Empty(t, out)
}
