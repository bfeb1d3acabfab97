// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "context"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// TrackingPath and PlaysPath point at the pre-parsed input tables
	// produced by the data-loading collaborator.
	TrackingPath string `koanf:"tracking_path"`
	PlaysPath    string `koanf:"plays_path"`

	// Weeks restricts which weeks of plays are analyzed; empty = all.
	Weeks []int `koanf:"weeks"`

	// OutputDir receives the per-run CSV artifacts.
	OutputDir string `koanf:"output_dir"`

	// DatabasePath locates the SQLite results store.
	DatabasePath string `koanf:"database_path"`

	// MinSampleSize is the per-player play cutoff for ranking tables.
	MinSampleSize int `koanf:"min_sample_size"`

	// NearestK is the defender count for SQI/BAA; the per-coverage
	// overrides are optional (0 = use NearestK).
	NearestK     int `koanf:"nearest_k"`
	NearestKMan  int `koanf:"nearest_k_man"`
	NearestKZone int `koanf:"nearest_k_zone"`

	// Filter selects the analysis subset: "base" or "neutral".
	Filter string `koanf:"filter"`

	// Downs restricts the filtered subset's downs; empty = any.
	Downs []int `koanf:"downs"`

	// Win-probability band for the neutral filter.
	WinProbMin float64 `koanf:"win_prob_min"`
	WinProbMax float64 `koanf:"win_prob_max"`

	// Seed drives the model's train/test shuffle for reproducibility.
	Seed int64 `koanf:"seed"`

	// TestFraction is the held-out share of the model split.
	TestFraction float64 `koanf:"test_fraction"`

	// AccuracyFloor is the test-accuracy level below which the run
	// logs a model-quality warning.
	AccuracyFloor float64 `koanf:"accuracy_floor"`

	// Workers bounds the per-play extraction fan-out; 0 = NumCPU.
	Workers int `koanf:"workers"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		TrackingPath:  "data/tracking.json",
		PlaysPath:     "data/plays.json",
		OutputDir:     "outputs",
		DatabasePath:  "voidframe.db",
		MinSampleSize: 20,
		NearestK:      2,
		Filter:        "base",
		WinProbMin:    0.20,
		WinProbMax:    0.80,
		Seed:          42,
		TestFraction:  0.2,
		AccuracyFloor: 0.65,
	}
}
