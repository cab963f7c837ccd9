// Command wiggle-sweep replays a recorded trace once per threshold
// permutation and ranks the combinations. With labelled expectations
// (which entities should have fired) the ranking prefers configurations
// that match the labels with the fewest total events.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/banshee-data/wiggle/internal/config"
	"github.com/banshee-data/wiggle/internal/gesture"
	"github.com/banshee-data/wiggle/internal/replay"
	"github.com/banshee-data/wiggle/internal/tracedb"
)

func main() {
	var (
		tracePath  = flag.String("trace", "", "path to trace database (required)")
		traceID    = flag.String("id", "", "trace id (default: most recent)")
		configPath = flag.String("config", "", "tuning config JSON for base thresholds")
		ratiosCSV  = flag.String("ratios", "", "comma-separated wiggle ratio thresholds to sweep")
		changesCSV = flag.String("changes", "", "comma-separated direction change thresholds to sweep")
		distsCSV   = flag.String("distances", "", "comma-separated total distance floors to sweep")
		expectCSV  = flag.String("expect", "", "expected outcomes, e.g. 'nodeA=1,nodeB=0'")
		topN       = flag.Int("top", 0, "print only the best N results (0 = all)")
	)
	flag.Parse()

	if *tracePath == "" {
		log.Fatal("trace database is required (-trace)")
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		tuning = loaded
	}
	base := gesture.ThresholdsFromTuning(tuning)

	grid, err := parseGrid(*ratiosCSV, *changesCSV, *distsCSV)
	if err != nil {
		log.Fatalf("Invalid sweep grid: %v", err)
	}
	expected, err := replay.ParseExpectations(*expectCSV)
	if err != nil {
		log.Fatalf("Invalid expectations: %v", err)
	}

	db, err := tracedb.Open(*tracePath)
	if err != nil {
		log.Fatalf("Failed to open trace database: %v", err)
	}
	defer db.Close()

	id := *traceID
	if id == "" {
		if id, err = db.LatestTraceID(); err != nil {
			log.Fatalf("Failed to pick trace: %v", err)
		}
	}
	samples, err := db.LoadSamples(id)
	if err != nil {
		log.Fatalf("Failed to load samples: %v", err)
	}

	results, err := replay.Sweep(samples, base, grid, expected)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	if *topN > 0 && len(results) > *topN {
		results = results[:*topN]
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		log.Fatalf("Failed to encode results: %v", err)
	}
}

func parseGrid(ratiosCSV, changesCSV, distsCSV string) (replay.SweepGrid, error) {
	var grid replay.SweepGrid
	var err error
	if grid.Ratios, err = replay.ParseCSVFloat64s(ratiosCSV); err != nil {
		return grid, err
	}
	if grid.Changes, err = replay.ParseCSVInts(changesCSV); err != nil {
		return grid, err
	}
	if grid.Distances, err = replay.ParseCSVFloat64s(distsCSV); err != nil {
		return grid, err
	}
	return grid, nil
}
