package replay

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/wiggle/internal/gesture"
	"github.com/banshee-data/wiggle/internal/tracedb"
)

// SweepGrid lists the threshold values to permute. Empty dimensions fall
// back to the base thresholds' value for that dimension.
type SweepGrid struct {
	Ratios    []float64
	Changes   []int
	Distances []float64
}

// SweepResult holds the outcome of replaying a trace with one threshold
// combination.
type SweepResult struct {
	Thresholds  gesture.Thresholds `json:"thresholds"`
	TotalEvents int                `json:"total_events"`
	Fired       []string           `json:"fired_entities"`
	Score       float64            `json:"score,omitempty"`
}

// Sweep replays the trace once per threshold permutation. When expected is
// non-nil (entity id → should that entity have fired at least once), each
// result gets a score in [0, 1]: the fraction of labelled entities whose
// outcome matched. Results are ranked best score first, then fewest events,
// so the top entry is the least trigger-happy configuration that still
// matches the labels.
func Sweep(samples []tracedb.TimedSample, base gesture.Thresholds, grid SweepGrid, expected map[string]bool) ([]SweepResult, error) {
	ratios := grid.Ratios
	if len(ratios) == 0 {
		ratios = []float64{base.WiggleRatioThreshold}
	}
	changes := grid.Changes
	if len(changes) == 0 {
		changes = []int{base.MinDirectionChanges}
	}
	distances := grid.Distances
	if len(distances) == 0 {
		distances = []float64{base.MinTotalDistancePx}
	}

	var results []SweepResult
	for _, ratio := range ratios {
		for _, change := range changes {
			for _, dist := range distances {
				th := base
				th.WiggleRatioThreshold = ratio
				th.MinDirectionChanges = change
				th.MinTotalDistancePx = dist

				sum, err := Run(samples, th)
				if err != nil {
					return nil, fmt.Errorf("sweep permutation %+v: %w", th, err)
				}

				res := SweepResult{Thresholds: th, TotalEvents: len(sum.Events)}
				for id, es := range sum.PerEntity {
					if es.Events > 0 {
						res.Fired = append(res.Fired, id)
					}
				}
				sort.Strings(res.Fired)

				if expected != nil {
					correct := 0
					for id, want := range expected {
						got := false
						if es, ok := sum.PerEntity[id]; ok {
							got = es.Events > 0
						}
						if got == want {
							correct++
						}
					}
					res.Score = float64(correct) / float64(len(expected))
				}
				results = append(results, res)
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].TotalEvents < results[j].TotalEvents
	})
	return results, nil
}

// ParseCSVFloat64s parses a comma-separated list of float64 values.
// Returns nil, nil for empty input strings.
func ParseCSVFloat64s(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseCSVInts parses a comma-separated list of int values.
// Returns nil, nil for empty input strings.
func ParseCSVInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid int '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseExpectations parses "entityA=1,entityB=0" style labels into the
// expectation map consumed by Sweep.
func ParseExpectations(s string) (map[string]bool, error) {
	if s == "" {
		return nil, nil
	}
	out := make(map[string]bool)
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid expectation '%s' (want entity=0|1)", p)
		}
		switch strings.TrimSpace(v) {
		case "1", "true":
			out[strings.TrimSpace(k)] = true
		case "0", "false":
			out[strings.TrimSpace(k)] = false
		default:
			return nil, fmt.Errorf("invalid expectation value '%s' (want 0 or 1)", v)
		}
	}
	return out, nil
}
