package gesture

import "math"

// displacementEpsilon floors the net displacement in the wiggle ratio so a
// perfect back-and-forth that lands exactly where it started (the strongest
// wiggle signal) yields a large finite ratio instead of dividing by zero.
const displacementEpsilon = 0.1

// Thresholds is a resolved, read-only numeric configuration for one
// classification pass. Presets are mapped to concrete values before the
// engine ever sees them; the engine never interprets preset names.
type Thresholds struct {
	TimeWindow           float64 // seconds of history considered
	MinDirectionChanges  int     // reversals required for a wiggle
	WiggleRatioThreshold float64 // path/displacement ratio required
	MinMovementPx        float64 // per-segment floor for reversal counting
	MinTotalDistancePx   float64 // total path floor for a wiggle
}

// Metrics are the classifier outputs for one buffer snapshot.
type Metrics struct {
	SampleCount     int     `json:"sample_count"`
	PathLength      float64 `json:"path_length"`
	NetDisplacement float64 `json:"net_displacement"`
	WiggleRatio     float64 `json:"wiggle_ratio"`
	Reversals       int     `json:"reversals"`
}

// Classify reduces an ordered sample sequence to motion metrics and a wiggle
// verdict. Pure: fixed samples and thresholds always produce the same result.
// Fewer than 2 samples can never be a wiggle.
func Classify(samples []Sample, th Thresholds) (Metrics, bool) {
	m := Metrics{SampleCount: len(samples)}
	if len(samples) < 2 {
		return m, false
	}

	for i := 1; i < len(samples); i++ {
		m.PathLength += math.Hypot(samples[i].X-samples[i-1].X, samples[i].Y-samples[i-1].Y)
	}
	first, last := samples[0], samples[len(samples)-1]
	m.NetDisplacement = math.Hypot(last.X-first.X, last.Y-first.Y)

	// No motion at all means no ratio, not an infinite one.
	if m.PathLength > 0 {
		m.WiggleRatio = m.PathLength / math.Max(m.NetDisplacement, displacementEpsilon)
	}

	m.Reversals = countReversals(samples, th.MinMovementPx)

	verdict := m.PathLength >= th.MinTotalDistancePx &&
		m.Reversals >= th.MinDirectionChanges &&
		m.WiggleRatio >= th.WiggleRatioThreshold
	return m, verdict
}

// countReversals walks consecutive displacement segments, discards segments
// below minMovement (sub-pixel jitter must not register as a reversal), and
// counts one reversal wherever two consecutive surviving segments point in
// opposing directions (negative dot product). This is a single combined 2-D
// count, not separate per-axis counts: any back-and-forth qualifies, not
// just axis-aligned shakes.
func countReversals(samples []Sample, minMovement float64) int {
	var prevDX, prevDY float64
	havePrev := false
	count := 0
	for i := 1; i < len(samples); i++ {
		dx := samples[i].X - samples[i-1].X
		dy := samples[i].Y - samples[i-1].Y
		if math.Hypot(dx, dy) < minMovement {
			continue
		}
		if havePrev && dx*prevDX+dy*prevDY < 0 {
			count++
		}
		prevDX, prevDY = dx, dy
		havePrev = true
	}
	return count
}
