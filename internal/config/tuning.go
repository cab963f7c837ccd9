package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default detection values.
const DefaultConfigPath = "config/tuning.defaults.json"

// Sensitivity preset names accepted in the "sensitivity" field.
const (
	SensitivityLow    = "low"    // requires very aggressive wiggling
	SensitivityMedium = "medium" // balanced
	SensitivityHigh   = "high"   // fires on gentle wiggling
)

// TuningConfig represents the detection tuning parameters. The schema
// matches the /api/params endpoint so the same JSON works for both startup
// configuration and runtime updates. Fields omitted from the JSON fall back
// to the selected sensitivity preset (or medium) via the Get* methods, so
// partial configs are safe.
type TuningConfig struct {
	Sensitivity *string `json:"sensitivity,omitempty"` // "low" | "medium" | "high"

	TimeWindowSeconds    *float64 `json:"time_window_seconds,omitempty"`
	MinDirectionChanges  *int     `json:"min_direction_changes,omitempty"`
	WiggleRatioThreshold *float64 `json:"wiggle_ratio_threshold,omitempty"`
	MinMovementPx        *float64 `json:"min_movement_px,omitempty"`
	MinTotalDistancePx   *float64 `json:"min_total_distance_px,omitempty"`

	// MultiEntity enables an independent session per ticked entity instead
	// of following a single tracked target.
	MultiEntity *bool `json:"multi_entity,omitempty"`
}

// preset holds the threshold values a sensitivity name resolves to.
// Time window and per-segment movement floor are shared across presets.
type preset struct {
	directionChanges int
	wiggleRatio      float64
	minTotalDistance float64
}

var presets = map[string]preset{
	SensitivityLow:    {directionChanges: 5, wiggleRatio: 4.0, minTotalDistance: 150},
	SensitivityMedium: {directionChanges: 3, wiggleRatio: 3.0, minTotalDistance: 100},
	SensitivityHigh:   {directionChanges: 2, wiggleRatio: 2.0, minTotalDistance: 50},
}

// EmptyTuningConfig returns a TuningConfig with all fields unset. Every Get*
// method then answers with the medium-preset defaults.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the max file size.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching the current directory and common parent
// directories. Panics if the file cannot be loaded; intended for test setup
// and binaries that have already validated config availability.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/<pkg>/
		"../../../" + DefaultConfigPath, // from cmd/<tool>/
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are usable. Malformed
// thresholds are rejected here, at construction time, rather than surfacing
// later as a silently-wrong verdict.
func (c *TuningConfig) Validate() error {
	if c.Sensitivity != nil {
		if _, ok := presets[*c.Sensitivity]; !ok {
			return fmt.Errorf("unknown sensitivity %q (want low, medium or high)", *c.Sensitivity)
		}
	}
	if c.TimeWindowSeconds != nil && *c.TimeWindowSeconds <= 0 {
		return fmt.Errorf("time_window_seconds must be positive, got %f", *c.TimeWindowSeconds)
	}
	if c.MinDirectionChanges != nil && *c.MinDirectionChanges < 1 {
		return fmt.Errorf("min_direction_changes must be at least 1, got %d", *c.MinDirectionChanges)
	}
	if c.WiggleRatioThreshold != nil && *c.WiggleRatioThreshold <= 1.0 {
		return fmt.Errorf("wiggle_ratio_threshold must be greater than 1.0, got %f", *c.WiggleRatioThreshold)
	}
	if c.MinMovementPx != nil && *c.MinMovementPx < 0 {
		return fmt.Errorf("min_movement_px must be non-negative, got %f", *c.MinMovementPx)
	}
	if c.MinTotalDistancePx != nil && *c.MinTotalDistancePx < 0 {
		return fmt.Errorf("min_total_distance_px must be non-negative, got %f", *c.MinTotalDistancePx)
	}
	return nil
}

// GetSensitivity returns the sensitivity preset name or the default.
func (c *TuningConfig) GetSensitivity() string {
	if c.Sensitivity == nil {
		return SensitivityMedium
	}
	return *c.Sensitivity
}

func (c *TuningConfig) activePreset() preset {
	if p, ok := presets[c.GetSensitivity()]; ok {
		return p
	}
	return presets[SensitivityMedium]
}

// GetTimeWindowSeconds returns the analysis window or the default.
func (c *TuningConfig) GetTimeWindowSeconds() float64 {
	if c.TimeWindowSeconds == nil {
		return 0.5
	}
	return *c.TimeWindowSeconds
}

// GetMinDirectionChanges returns the reversal threshold; explicit values
// override the sensitivity preset.
func (c *TuningConfig) GetMinDirectionChanges() int {
	if c.MinDirectionChanges == nil {
		return c.activePreset().directionChanges
	}
	return *c.MinDirectionChanges
}

// GetWiggleRatioThreshold returns the path/displacement ratio threshold;
// explicit values override the sensitivity preset.
func (c *TuningConfig) GetWiggleRatioThreshold() float64 {
	if c.WiggleRatioThreshold == nil {
		return c.activePreset().wiggleRatio
	}
	return *c.WiggleRatioThreshold
}

// GetMinMovementPx returns the per-segment movement floor or the default.
func (c *TuningConfig) GetMinMovementPx() float64 {
	if c.MinMovementPx == nil {
		return 5.0
	}
	return *c.MinMovementPx
}

// GetMinTotalDistancePx returns the total path floor; explicit values
// override the sensitivity preset.
func (c *TuningConfig) GetMinTotalDistancePx() float64 {
	if c.MinTotalDistancePx == nil {
		return c.activePreset().minTotalDistance
	}
	return *c.MinTotalDistancePx
}

// GetMultiEntity returns the multi_entity flag or the default.
func (c *TuningConfig) GetMultiEntity() bool {
	if c.MultiEntity == nil {
		return false
	}
	return *c.MultiEntity
}
