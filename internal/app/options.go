package app

import (
	"github.com/aimdrift/aimdrift/pkg/logger"
	"github.com/aimdrift/aimdrift/pkg/metrics"
)

// Pipeline parameter defaults, matching the analyzer's source domain.
const (
	defaultMaxDeltaMS    = 80
	defaultIncludeRadius = 80.0
	defaultThresholdMM   = 0.25
)

// settings carries the tunable pipeline parameters until New builds the
// components from them.
type settings struct {
	maxDeltaMS    int64
	includeRadius float64
	areaWidthMM   float64
	areaHeightMM  float64
	thresholdMM   float64
	cloudPath     string
	indexPath     string
}

func defaultSettings() settings {
	return settings{
		maxDeltaMS:    defaultMaxDeltaMS,
		includeRadius: defaultIncludeRadius,
		thresholdMM:   defaultThresholdMM,
	}
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLibraryDir sets the target-sequence library root.
func WithLibraryDir(dir string) Option {
	return func(s *Service) {
		s.libraryDir = dir
	}
}

// WithReplaysDir sets the directory of recorded sessions to analyze.
func WithReplaysDir(dir string) Option {
	return func(s *Service) {
		s.replaysDir = dir
	}
}

// WithMaxDelta sets the alignment tolerance in milliseconds.
func WithMaxDelta(ms int64) Option {
	return func(s *Service) {
		s.settings.maxDeltaMS = ms
	}
}

// WithIncludeRadius sets the deviation inclusion radius in source units.
func WithIncludeRadius(radius float64) Option {
	return func(s *Service) {
		s.settings.includeRadius = radius
	}
}

// WithArea sets the physical input-area dimensions in millimetres.
func WithArea(widthMM, heightMM float64) Option {
	return func(s *Service) {
		s.settings.areaWidthMM = widthMM
		s.settings.areaHeightMM = heightMM
	}
}

// WithAdjustThreshold sets the minimum mean bias, in millimetres, before a
// corrective shift is suggested.
func WithAdjustThreshold(mm float64) Option {
	return func(s *Service) {
		s.settings.thresholdMM = mm
	}
}

// WithCloudPath sets the deviation-cloud output path. Empty disables
// rendering.
func WithCloudPath(path string) Option {
	return func(s *Service) {
		s.settings.cloudPath = path
	}
}

// WithIndexPath enables the sqlite digest index at the given path.
func WithIndexPath(path string) Option {
	return func(s *Service) {
		s.settings.indexPath = path
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics sets the metrics manager. Defaults to the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}
