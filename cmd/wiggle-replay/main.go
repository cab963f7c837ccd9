// Command wiggle-replay runs a recorded motion trace through the wiggle
// classifier with a chosen threshold configuration and reports what would
// have fired. Optionally writes an HTML chart report and per-entity path
// plots for eyeballing the gesture.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/wiggle/internal/config"
	"github.com/banshee-data/wiggle/internal/gesture"
	"github.com/banshee-data/wiggle/internal/replay"
	"github.com/banshee-data/wiggle/internal/tracedb"
)

// Config holds the replay tool's flag values.
type Config struct {
	TracePath  string
	TraceID    string
	ConfigPath string
	Preset     string
	ReportPath string
	PlotDir    string
	ListOnly   bool
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.TracePath, "trace", "", "path to trace database (required)")
	flag.StringVar(&cfg.TraceID, "id", "", "trace id (default: most recent)")
	flag.StringVar(&cfg.ConfigPath, "config", "", "tuning config JSON (default: built-in medium preset)")
	flag.StringVar(&cfg.Preset, "preset", "", "sensitivity preset override: low, medium or high")
	flag.StringVar(&cfg.ReportPath, "report", "", "write an HTML chart report to this path")
	flag.StringVar(&cfg.PlotDir, "plot-dir", "", "write per-entity path PNGs into this directory")
	flag.BoolVar(&cfg.ListOnly, "list", false, "list stored traces and exit")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()

	if cfg.TracePath == "" {
		log.Fatal("trace database is required (-trace)")
	}

	db, err := tracedb.Open(cfg.TracePath)
	if err != nil {
		log.Fatalf("Failed to open trace database: %v", err)
	}
	defer db.Close()

	if cfg.ListOnly {
		traces, err := db.ListTraces()
		if err != nil {
			log.Fatalf("Failed to list traces: %v", err)
		}
		writeJSON(traces)
		return
	}

	thresholds, err := resolveThresholds(cfg)
	if err != nil {
		log.Fatalf("Failed to resolve thresholds: %v", err)
	}

	traceID := cfg.TraceID
	if traceID == "" {
		if traceID, err = db.LatestTraceID(); err != nil {
			log.Fatalf("Failed to pick trace: %v", err)
		}
	}

	samples, err := db.LoadSamples(traceID)
	if err != nil {
		log.Fatalf("Failed to load samples: %v", err)
	}

	summary, err := replay.Run(samples, thresholds)
	if err != nil {
		log.Fatalf("Replay failed: %v", err)
	}

	if cfg.ReportPath != "" {
		if err := replay.WriteHTMLReport(summary, cfg.ReportPath); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
	}
	if cfg.PlotDir != "" {
		if err := os.MkdirAll(cfg.PlotDir, 0755); err != nil {
			log.Fatalf("Failed to create plot directory: %v", err)
		}
		if err := replay.SavePathPlots(summary, cfg.PlotDir); err != nil {
			log.Fatalf("Failed to write plots: %v", err)
		}
	}

	writeJSON(summary)
}

func resolveThresholds(cfg Config) (gesture.Thresholds, error) {
	tuning := config.EmptyTuningConfig()
	if cfg.ConfigPath != "" {
		loaded, err := config.LoadTuningConfig(cfg.ConfigPath)
		if err != nil {
			return gesture.Thresholds{}, err
		}
		tuning = loaded
	}
	if cfg.Preset != "" {
		tuning.Sensitivity = &cfg.Preset
		if err := tuning.Validate(); err != nil {
			return gesture.Thresholds{}, err
		}
	}
	return gesture.ThresholdsFromTuning(tuning), nil
}

func writeJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode output: %v\n", err)
		os.Exit(1)
	}
}
