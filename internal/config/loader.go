package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if AIMDRIFT_CONFIG is set
//  3. env (prefix AIMDRIFT_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("AIMDRIFT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: AIMDRIFT_LIBRARY_DIR, AIMDRIFT_MAX_DELTA_MS, ...
	// Map env keys like AIMDRIFT_MAX_DELTA_MS -> max_delta_ms (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("AIMDRIFT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "aimdrift_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the core would fail fast on anyway.
func (c *Config) validate() error {
	if c.MaxDeltaMS < 0 {
		return fmt.Errorf("%w: max_delta_ms must be non-negative", ErrInvalidConfig)
	}
	if c.IncludeRadius < 0 {
		return fmt.Errorf("%w: include_radius must be non-negative", ErrInvalidConfig)
	}
	if c.AdjustThresholdMM < 0 {
		return fmt.Errorf("%w: adjust_threshold_mm must be non-negative", ErrInvalidConfig)
	}
	if c.AreaWidthMM < 0 || c.AreaHeightMM < 0 {
		return fmt.Errorf("%w: area dimensions must be non-negative", ErrInvalidConfig)
	}
	return nil
}
