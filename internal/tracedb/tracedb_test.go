package tracedb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/wiggle/internal/gesture"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "traces.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSampleRoundTrip(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	traceID, err := db.CreateTrace("unit test")
	require.NoError(t, err)
	require.NotEmpty(t, traceID)

	want := []gesture.Sample{
		{X: 0, Y: 0, T: 0.00},
		{X: 20, Y: 0, T: 0.05},
		{X: 0, Y: 5.5, T: 0.10},
	}
	for _, s := range want {
		require.NoError(t, db.RecordSample(traceID, "node-a", s))
	}

	got, err := db.LoadSamples(traceID)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i, ts := range got {
		assert.Equal(t, "node-a", ts.EntityID)
		assert.Equal(t, want[i], ts.Sample)
	}
}

func TestSamplesOrderedByTime(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	traceID, err := db.CreateTrace("")
	require.NoError(t, err)

	// insert out of order; LoadSamples must sort by t
	require.NoError(t, db.RecordSample(traceID, "a", gesture.Sample{T: 0.2}))
	require.NoError(t, db.RecordSample(traceID, "a", gesture.Sample{T: 0.1}))
	require.NoError(t, db.RecordSample(traceID, "a", gesture.Sample{T: 0.3}))

	got, err := db.LoadSamples(traceID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 0.1, got[0].T)
	assert.Equal(t, 0.3, got[2].T)
}

func TestEventRoundTrip(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	traceID, err := db.CreateTrace("")
	require.NoError(t, err)

	ev := gesture.Event{
		EventID:   "wgl_test-1",
		EntityID:  "node-a",
		Timestamp: 0.25,
		Metrics: gesture.Metrics{
			PathLength:      100,
			NetDisplacement: 20,
			WiggleRatio:     5,
			Reversals:       4,
		},
	}
	require.NoError(t, db.RecordEvent(traceID, ev))

	events, err := db.LoadEvents(traceID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ev.EventID, events[0].EventID)
	assert.Equal(t, ev.Metrics.WiggleRatio, events[0].Metrics.WiggleRatio)
	assert.Equal(t, ev.Metrics.Reversals, events[0].Metrics.Reversals)
	assert.False(t, events[0].Forced)
}

func TestListTracesAndLatest(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	_, err := db.LatestTraceID()
	assert.Error(t, err, "empty database has no latest trace")

	first, err := db.CreateTrace("first")
	require.NoError(t, err)
	second, err := db.CreateTrace("second")
	require.NoError(t, err)
	require.NoError(t, db.RecordSample(second, "a", gesture.Sample{T: 0.1}))

	traces, err := db.ListTraces()
	require.NoError(t, err)
	require.Len(t, traces, 2)

	ids := []string{traces[0].TraceID, traces[1].TraceID}
	assert.Contains(t, ids, first)
	assert.Contains(t, ids, second)

	latest, err := db.LatestTraceID()
	require.NoError(t, err)
	assert.Contains(t, ids, latest)
}

func TestRecorder(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	rec, err := NewRecorder(db, "recorded session")
	require.NoError(t, err)

	detector := gesture.NewDetector(gesture.Config{
		Thresholds: gesture.Thresholds{
			TimeWindow:           0.5,
			MinDirectionChanges:  3,
			WiggleRatioThreshold: 3.0,
			MinMovementPx:        5,
			MinTotalDistancePx:   40,
		},
	})
	rec.Attach(detector)
	detector.StartTracking("node-a")

	// a full wiggle: samples and the resulting event both land in the trace
	for i := 0; i < 6; i++ {
		x := 0.0
		if i%2 == 1 {
			x = 20
		}
		rec.OnTick(detector, "node-a", x, 0, float64(i)*0.05)
	}

	samples, err := db.LoadSamples(rec.TraceID())
	require.NoError(t, err)
	assert.Len(t, samples, 6)

	events, err := db.LoadEvents(rec.TraceID())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "node-a", events[0].EntityID)
}
