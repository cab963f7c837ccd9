package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(multi bool) (*Detector, *[]Event) {
	d := NewDetector(Config{Thresholds: testThresholds(), MultiEntity: multi})
	events := &[]Event{}
	d.AddListener(func(ev Event) {
		*events = append(*events, ev)
	})
	return d, events
}

// feedOscillation drives n ticks alternating between x=0 and x=amplitude,
// starting at time t0, and returns the timestamp after the last tick.
func feedOscillation(d *Detector, entityID string, n int, amplitude, t0 float64) float64 {
	t := t0
	for i := 0; i < n; i++ {
		x := 0.0
		if i%2 == 1 {
			x = amplitude
		}
		d.OnTick(entityID, x, 0, t)
		t += 0.05
	}
	return t
}

func TestDetectorFiresOnWiggle(t *testing.T) {
	t.Parallel()
	d, events := newTestDetector(false)
	d.StartTracking("node-a")

	feedOscillation(d, "node-a", 6, 20, 0)

	require.Len(t, *events, 1)
	ev := (*events)[0]
	assert.Equal(t, "node-a", ev.EntityID)
	assert.False(t, ev.Forced)
	assert.NotEmpty(t, ev.EventID)
	assert.GreaterOrEqual(t, ev.Metrics.Reversals, 3)
}

func TestDetectorEdgeTriggered(t *testing.T) {
	t.Parallel()
	// a continuously wiggling stream fires once per buffer-clear cycle,
	// not once per tick
	d, events := newTestDetector(false)
	d.StartTracking("node-a")

	feedOscillation(d, "node-a", 40, 20, 0)

	assert.Greater(t, len(*events), 1, "re-arms after each fire")
	assert.Less(t, len(*events), 10, "must not fire per tick")
	stats := d.Stats()
	assert.Equal(t, int64(len(*events)), stats.TriggersFired)
}

func TestDetectorSmoothDragDoesNotFire(t *testing.T) {
	t.Parallel()
	d, events := newTestDetector(false)
	d.StartTracking("node-a")

	for i := 0; i < 100; i++ {
		d.OnTick("node-a", float64(i)*30, float64(i)*10, float64(i)*0.02)
	}
	assert.Empty(t, *events)
}

func TestDetectorEviction(t *testing.T) {
	t.Parallel()
	// near-wiggle history must stop influencing the verdict once it falls
	// out of the time window
	d, events := newTestDetector(false)
	d.StartTracking("node-a")

	// two reversals: one short of the threshold
	end := feedOscillation(d, "node-a", 4, 20, 0)
	require.Empty(t, *events)

	// a long pause, then the rest of a wiggle: the stale prefix is gone,
	// so this still must not fire
	late := end + 1.0
	d.OnTick("node-a", 0, 0, late)
	d.OnTick("node-a", 20, 0, late+0.05)
	d.OnTick("node-a", 0, 0, late+0.10)
	assert.Empty(t, *events)

	states := d.SessionStates(true)
	require.Len(t, states, 1)
	for _, s := range states[0].Samples {
		assert.GreaterOrEqual(t, s.T, late, "stale samples must be evicted")
	}
}

func TestDetectorEntitySwitchIsolatesHistory(t *testing.T) {
	t.Parallel()
	d, events := newTestDetector(false)

	d.StartTracking("node-a")
	feedOscillation(d, "node-a", 4, 20, 0) // near-wiggle, no fire yet

	d.StartTracking("node-b")
	_, fired := d.OnTick("node-b", 10, 10, 0.3)
	assert.False(t, fired, "no carry-over from the previous entity")
	assert.Empty(t, *events)

	states := d.SessionStates(false)
	require.Len(t, states, 1)
	assert.Equal(t, "node-b", states[0].EntityID)
}

func TestDetectorTickWhileUntracked(t *testing.T) {
	t.Parallel()
	d, events := newTestDetector(false)
	// benign race between selection changes and frame ticks: not an error
	m, fired := d.OnTick("nobody", 1, 2, 0.1)
	assert.False(t, fired)
	assert.Zero(t, m.SampleCount)
	assert.Empty(t, *events)
	assert.Equal(t, 0, d.Stats().ActiveSessions)
}

func TestDetectorDisable(t *testing.T) {
	t.Parallel()
	d, events := newTestDetector(false)
	d.StartTracking("node-a")
	feedOscillation(d, "node-a", 4, 20, 0)

	d.Disable()
	assert.Equal(t, 0, d.Stats().ActiveSessions, "disable discards all sessions")

	feedOscillation(d, "node-a", 10, 20, 1.0)
	assert.Empty(t, *events, "ticks while disabled are ignored")

	d.Enable()
	d.StartTracking("node-a")
	feedOscillation(d, "node-a", 6, 20, 2.0)
	assert.Len(t, *events, 1)
}

func TestDetectorMultiEntity(t *testing.T) {
	t.Parallel()

	t.Run("sessions are created lazily and fire independently", func(t *testing.T) {
		t.Parallel()
		d, events := newTestDetector(true)

		// interleave two entities: one wiggling, one dragging
		for i := 0; i < 12; i++ {
			t0 := float64(i) * 0.05
			x := 0.0
			if i%2 == 1 {
				x = 20
			}
			d.OnTick("wiggler", x, 0, t0)
			d.OnTick("dragger", float64(i)*30, 0, t0)
		}

		require.NotEmpty(t, *events)
		for _, ev := range *events {
			assert.Equal(t, "wiggler", ev.EntityID)
		}
		assert.Equal(t, 2, d.Stats().ActiveSessions)
	})

	t.Run("stop tracking one entity leaves the others", func(t *testing.T) {
		t.Parallel()
		d, _ := newTestDetector(true)
		d.OnTick("a", 0, 0, 0.1)
		d.OnTick("b", 0, 0, 0.1)
		d.StopTracking("a")
		states := d.SessionStates(false)
		require.Len(t, states, 1)
		assert.Equal(t, "b", states[0].EntityID)
	})
}

func TestDetectorForceTrigger(t *testing.T) {
	t.Parallel()

	t.Run("fires without classification", func(t *testing.T) {
		t.Parallel()
		d, events := newTestDetector(false)
		ev := d.ForceTrigger("node-a", 1.5)
		assert.True(t, ev.Forced)
		assert.Equal(t, "node-a", ev.EntityID)
		require.Len(t, *events, 1)
		assert.Equal(t, ev.EventID, (*events)[0].EventID)
	})

	t.Run("works while disabled", func(t *testing.T) {
		t.Parallel()
		d, events := newTestDetector(false)
		d.Disable()
		d.ForceTrigger("node-a", 2.0)
		assert.Len(t, *events, 1)
		assert.Equal(t, int64(1), d.Stats().ForcedTriggers)
	})

	t.Run("resets any tracked session", func(t *testing.T) {
		t.Parallel()
		d, _ := newTestDetector(false)
		d.StartTracking("node-a")
		feedOscillation(d, "node-a", 4, 20, 0)
		d.ForceTrigger("node-a", 0.3)
		states := d.SessionStates(false)
		require.Len(t, states, 1)
		assert.Equal(t, 0, states[0].SampleCount)
	})
}

func TestDetectorNonMonotonicTimestamps(t *testing.T) {
	t.Parallel()
	d, _ := newTestDetector(false)
	d.StartTracking("node-a")
	d.OnTick("node-a", 0, 0, 0.2)
	d.OnTick("node-a", 20, 0, 0.1) // behind the last sample
	d.OnTick("node-a", 20, 0, 0.2) // duplicate

	assert.Equal(t, int64(2), d.Stats().SamplesDropped)
	states := d.SessionStates(false)
	require.Len(t, states, 1)
	assert.Equal(t, 1, states[0].SampleCount)
}

func TestDetectorSetThresholds(t *testing.T) {
	t.Parallel()
	d, events := newTestDetector(false)
	d.SetThresholds(func(th *Thresholds) {
		th.MinDirectionChanges = 100
	})
	assert.Equal(t, 100, d.Thresholds().MinDirectionChanges)

	d.StartTracking("node-a")
	feedOscillation(d, "node-a", 40, 20, 0)
	assert.Empty(t, *events, "new threshold applies to subsequent ticks")
}

func TestDetectorSessionStatesDeepCopy(t *testing.T) {
	t.Parallel()
	d, _ := newTestDetector(false)
	d.StartTracking("node-a")
	d.OnTick("node-a", 1, 2, 0.1)

	states := d.SessionStates(true)
	require.Len(t, states, 1)
	require.Len(t, states[0].Samples, 1)

	d.OnTick("node-a", 3, 4, 0.2)
	assert.Len(t, states[0].Samples, 1, "snapshot must not observe later ticks")
}

func TestDetectorReset(t *testing.T) {
	t.Parallel()
	d, _ := newTestDetector(true)
	feedOscillation(d, "node-a", 10, 20, 0)
	d.Reset()
	stats := d.Stats()
	assert.Equal(t, 0, stats.ActiveSessions)
	assert.Zero(t, stats.Ticks)
	assert.Zero(t, stats.TriggersFired)
}
