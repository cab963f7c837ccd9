package gesture

import "github.com/banshee-data/wiggle/internal/config"

// DefaultConfig returns a detector configuration loaded from the canonical
// tuning defaults file (config/tuning.defaults.json). Panics if the file
// cannot be found — intended for tests and binaries that have already
// validated config availability.
func DefaultConfig() Config {
	cfg := config.MustLoadDefaultConfig()
	return ConfigFromTuning(cfg)
}

// ConfigFromTuning builds a detector Config from a loaded TuningConfig.
// Use this in production code where the TuningConfig is already loaded.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Thresholds:  ThresholdsFromTuning(cfg),
		MultiEntity: cfg.GetMultiEntity(),
	}
}

// ThresholdsFromTuning resolves a TuningConfig — sensitivity preset plus any
// explicit overrides — into the numeric thresholds the classifier consumes.
func ThresholdsFromTuning(cfg *config.TuningConfig) Thresholds {
	return Thresholds{
		TimeWindow:           cfg.GetTimeWindowSeconds(),
		MinDirectionChanges:  cfg.GetMinDirectionChanges(),
		WiggleRatioThreshold: cfg.GetWiggleRatioThreshold(),
		MinMovementPx:        cfg.GetMinMovementPx(),
		MinTotalDistancePx:   cfg.GetMinTotalDistancePx(),
	}
}
