package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleBufferAppend(t *testing.T) {
	t.Parallel()

	t.Run("keeps chronological order", func(t *testing.T) {
		t.Parallel()
		b := NewSampleBuffer(1.0)
		require.True(t, b.Append(Sample{X: 0, Y: 0, T: 0.0}))
		require.True(t, b.Append(Sample{X: 1, Y: 0, T: 0.1}))
		require.True(t, b.Append(Sample{X: 2, Y: 0, T: 0.2}))
		assert.Equal(t, 3, b.Len())
	})

	t.Run("drops non-monotonic timestamps", func(t *testing.T) {
		t.Parallel()
		b := NewSampleBuffer(1.0)
		require.True(t, b.Append(Sample{T: 0.2}))
		assert.False(t, b.Append(Sample{T: 0.1}), "older timestamp must be dropped")
		assert.False(t, b.Append(Sample{T: 0.2}), "duplicate timestamp must be dropped")
		assert.Equal(t, 1, b.Len())
		assert.True(t, b.Append(Sample{T: 0.3}))
	})
}

func TestSampleBufferEvict(t *testing.T) {
	t.Parallel()

	t.Run("trims samples outside the window", func(t *testing.T) {
		t.Parallel()
		b := NewSampleBuffer(0.5)
		b.Append(Sample{X: 1, T: 0.0})
		b.Append(Sample{X: 2, T: 0.3})
		b.Append(Sample{X: 3, T: 0.6})

		b.Evict(0.6)
		// cutoff is 0.1: only the t=0.0 sample is stale
		require.Equal(t, 2, b.Len())
		assert.Equal(t, 0.3, b.Samples()[0].T)
	})

	t.Run("sample at exactly the cutoff survives", func(t *testing.T) {
		t.Parallel()
		b := NewSampleBuffer(0.5)
		b.Append(Sample{T: 0.0})
		b.Evict(0.5)
		assert.Equal(t, 1, b.Len())
	})

	t.Run("sample just past the window is gone", func(t *testing.T) {
		t.Parallel()
		b := NewSampleBuffer(0.5)
		b.Append(Sample{T: 0.0})
		b.Evict(0.501)
		assert.Equal(t, 0, b.Len())
	})

	t.Run("empty buffer is a no-op", func(t *testing.T) {
		t.Parallel()
		b := NewSampleBuffer(0.5)
		b.Evict(10)
		assert.Equal(t, 0, b.Len())
	})
}

func TestSampleBufferClear(t *testing.T) {
	t.Parallel()
	b := NewSampleBuffer(1.0)
	b.Append(Sample{T: 0.1})
	b.Append(Sample{T: 0.2})
	b.Clear()
	assert.Equal(t, 0, b.Len())
	// cleared, not destroyed: appends still work
	assert.True(t, b.Append(Sample{T: 0.3}))
}

func TestSampleBufferSnapshot(t *testing.T) {
	t.Parallel()
	b := NewSampleBuffer(1.0)
	b.Append(Sample{X: 1, T: 0.1})
	snap := b.Snapshot()
	b.Clear()
	require.Len(t, snap, 1)
	assert.Equal(t, 1.0, snap[0].X, "snapshot must survive a clear")
}
