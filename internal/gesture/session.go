package gesture

// Session tracks the motion history and verdict edge state for one entity.
// Exactly one session observes a given buffer; sessions never share state.
type Session struct {
	EntityID string
	Buffer   *SampleBuffer

	// lastVerdict implements edge triggering: a sustained true verdict
	// fires once per buffer-clear cycle, not once per tick.
	lastVerdict bool

	// LastMetrics holds the classifier output of the most recent tick,
	// exposed for the status endpoint and replay tooling.
	LastMetrics Metrics

	Ticks         int64
	TriggersFired int64
}

func newSession(entityID string, windowSeconds float64) *Session {
	return &Session{
		EntityID: entityID,
		Buffer:   NewSampleBuffer(windowSeconds),
	}
}

// observe ingests one tick and reports whether the wiggle condition crossed
// from false to true, plus whether the sample was accepted into the buffer
// (non-monotonic timestamps are dropped). On a fire the buffer is cleared
// (cooldown) and the edge state reset, so the session re-arms immediately;
// the refill delay of the time window is the only hysteresis.
func (s *Session) observe(x, y, t float64, th Thresholds) (m Metrics, fired, accepted bool) {
	s.Ticks++
	accepted = s.Buffer.Append(Sample{X: x, Y: y, T: t})
	s.Buffer.Evict(t)

	var verdict bool
	m, verdict = Classify(s.Buffer.Samples(), th)
	s.LastMetrics = m

	if verdict && !s.lastVerdict {
		s.Buffer.Clear()
		s.lastVerdict = false
		s.TriggersFired++
		return m, true, accepted
	}
	s.lastVerdict = verdict
	return m, false, accepted
}

// reset discards all motion history and the verdict edge state. Used on
// entity switch, stop-tracking, and manual trigger.
func (s *Session) reset() {
	s.Buffer.Clear()
	s.lastVerdict = false
}
