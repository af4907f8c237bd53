// Package config defines analyzer configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LibraryDir is the root of the target-sequence library to scan.
	LibraryDir string `koanf:"library_dir"`

	// ReplaysDir holds the recorded sessions (.osr) to analyze.
	ReplaysDir string `koanf:"replays_dir"`

	// AreaWidthMM and AreaHeightMM are the physical dimensions of the
	// active input area. Zero means "prompt the user".
	AreaWidthMM  float64 `koanf:"area_width_mm"`
	AreaHeightMM float64 `koanf:"area_height_mm"`

	// MaxDeltaMS bounds the target/sample time distance for a match.
	MaxDeltaMS int64 `koanf:"max_delta_ms"`

	// IncludeRadius bounds the deviation distance, in source units, still
	// counted as an aiming sample rather than a miss.
	IncludeRadius float64 `koanf:"include_radius"`

	// AdjustThresholdMM is the minimum mean bias before a corrective
	// shift is suggested.
	AdjustThresholdMM float64 `koanf:"adjust_threshold_mm"`

	// CloudPath is where the deviation-cloud PNG is written. Empty
	// disables rendering.
	CloudPath string `koanf:"cloud_path"`

	// IndexPath points at the sqlite digest index. Empty disables the
	// index and every lookup is a plain library scan.
	IndexPath string `koanf:"index_path"`

	// MetricsAddr, when set, exposes Prometheus metrics on this address
	// for the duration of the run.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults matching the analyzer's source domain:
// an 80 ms alignment tolerance, an 80 source-unit inclusion radius, and a
// 0.25 mm suggestion threshold.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LibraryDir:        "",
		ReplaysDir:        "Replays",
		MaxDeltaMS:        80,
		IncludeRadius:     80,
		AdjustThresholdMM: 0.25,
		CloudPath:         "aim_bias_map.png",
		IndexPath:         "",
		MetricsAddr:       "",
	}
}
