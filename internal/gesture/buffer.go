package gesture

// Sample is one observed position of a tracked entity. Samples are immutable
// values: created on each tick, discarded on eviction.
type Sample struct {
	X float64
	Y float64
	T float64 // seconds on the host clock; non-decreasing per entity
}

// SampleBuffer holds the recent motion history for one entity. The sequence
// is chronological by construction; the duration bound is enforced by
// eviction rather than a count cap.
type SampleBuffer struct {
	window  float64 // seconds
	samples []Sample
}

// NewSampleBuffer creates an empty buffer covering windowSeconds of history.
func NewSampleBuffer(windowSeconds float64) *SampleBuffer {
	return &SampleBuffer{window: windowSeconds}
}

// Append inserts a sample at the end. A sample whose timestamp is not
// strictly after the last one is dropped, so a clock anomaly on the host
// side cannot break the ordering invariant. Returns false when dropped.
func (b *SampleBuffer) Append(s Sample) bool {
	if n := len(b.samples); n > 0 && s.T <= b.samples[n-1].T {
		return false
	}
	b.samples = append(b.samples, s)
	return true
}

// Evict removes every sample older than now minus the window. Samples are
// chronological, so this is a prefix trim.
func (b *SampleBuffer) Evict(now float64) {
	cutoff := now - b.window
	i := 0
	for i < len(b.samples) && b.samples[i].T < cutoff {
		i++
	}
	if i > 0 {
		b.samples = append(b.samples[:0], b.samples[i:]...)
	}
}

// Clear empties the buffer without releasing its backing storage.
func (b *SampleBuffer) Clear() {
	b.samples = b.samples[:0]
}

// Len returns the number of buffered samples.
func (b *SampleBuffer) Len() int {
	return len(b.samples)
}

// Window returns the configured window length in seconds.
func (b *SampleBuffer) Window() float64 {
	return b.window
}

// Samples returns the live backing slice. Callers must not mutate it; the
// classifier only reads within the same synchronous tick.
func (b *SampleBuffer) Samples() []Sample {
	return b.samples
}

// Snapshot returns a copy of the buffered samples, safe to hold across ticks.
func (b *SampleBuffer) Snapshot() []Sample {
	out := make([]Sample, len(b.samples))
	copy(out, b.samples)
	return out
}
