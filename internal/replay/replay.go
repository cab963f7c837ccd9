// Package replay runs recorded motion traces through a fresh detector so
// threshold choices can be evaluated offline against real gesture data.
package replay

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/wiggle/internal/gesture"
	"github.com/banshee-data/wiggle/internal/tracedb"
)

// TickRecord captures the classifier state after one replayed tick.
type TickRecord struct {
	EntityID string          `json:"entity_id"`
	X        float64         `json:"x"`
	Y        float64         `json:"y"`
	T        float64         `json:"t"`
	Metrics  gesture.Metrics `json:"metrics"`
	Fired    bool            `json:"fired"`
}

// EntitySummary aggregates replay results for one entity.
type EntitySummary struct {
	EntityID   string  `json:"entity_id"`
	Ticks      int     `json:"ticks"`
	Events     int     `json:"events"`
	PeakRatio  float64 `json:"peak_ratio"`
	RatioP50   float64 `json:"ratio_p50"`
	RatioP95   float64 `json:"ratio_p95"`
	PathPx     float64 `json:"path_px"` // total distance over the whole trace
	Reversals  int     `json:"reversals_peak"`
	FirstEvent float64 `json:"first_event_t,omitempty"`
}

// Summary is the complete result of replaying one trace.
type Summary struct {
	Thresholds gesture.Thresholds        `json:"thresholds"`
	Ticks      int                       `json:"ticks"`
	Events     []gesture.Event           `json:"events"`
	PerEntity  map[string]*EntitySummary `json:"per_entity"`
	Records    []TickRecord              `json:"-"`
}

// Run replays recorded samples through a new detector with the given
// thresholds. The detector runs in multi-entity mode regardless of the live
// configuration: a trace may interleave several entities and each must be
// judged independently.
func Run(samples []tracedb.TimedSample, th gesture.Thresholds) (*Summary, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("trace has no samples")
	}

	detector := gesture.NewDetector(gesture.Config{Thresholds: th, MultiEntity: true})

	sum := &Summary{
		Thresholds: th,
		PerEntity:  make(map[string]*EntitySummary),
		Records:    make([]TickRecord, 0, len(samples)),
	}
	detector.AddListener(func(ev gesture.Event) {
		sum.Events = append(sum.Events, ev)
	})

	ratios := make(map[string][]float64)
	var prev map[string]gesture.Sample

	for _, s := range samples {
		m, fired := detector.OnTick(s.EntityID, s.X, s.Y, s.T)
		sum.Ticks++
		sum.Records = append(sum.Records, TickRecord{
			EntityID: s.EntityID, X: s.X, Y: s.Y, T: s.T, Metrics: m, Fired: fired,
		})

		es := sum.PerEntity[s.EntityID]
		if es == nil {
			es = &EntitySummary{EntityID: s.EntityID}
			sum.PerEntity[s.EntityID] = es
		}
		es.Ticks++
		if m.WiggleRatio > es.PeakRatio {
			es.PeakRatio = m.WiggleRatio
		}
		if m.Reversals > es.Reversals {
			es.Reversals = m.Reversals
		}
		ratios[s.EntityID] = append(ratios[s.EntityID], m.WiggleRatio)

		if prev == nil {
			prev = make(map[string]gesture.Sample)
		}
		if p, ok := prev[s.EntityID]; ok {
			es.PathPx += math.Hypot(s.X-p.X, s.Y-p.Y)
		}
		prev[s.EntityID] = s.Sample

		if fired {
			es.Events++
			if es.FirstEvent == 0 {
				es.FirstEvent = s.T
			}
		}
	}

	for id, rs := range ratios {
		sort.Float64s(rs)
		es := sum.PerEntity[id]
		es.RatioP50 = stat.Quantile(0.50, stat.Empirical, rs, nil)
		es.RatioP95 = stat.Quantile(0.95, stat.Empirical, rs, nil)
	}

	return sum, nil
}
