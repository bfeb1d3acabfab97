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
//  1. defaults (New(ctx))
//  2. file (YAML) if VOIDFRAME_CONFIG is set
//  3. env (prefix VOIDFRAME_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("VOIDFRAME_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: VOIDFRAME_SEED, VOIDFRAME_NEAREST_K, ...
	// Map env keys like VOIDFRAME_NEAREST_K -> nearest_k (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("VOIDFRAME_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "voidframe_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	}
	if cfg.MinSampleSize < 1 {
		return nil, fmt.Errorf("%w: min_sample_size must be at least 1", ErrInvalidConfig)
	}
	if cfg.NearestK < 1 {
		return nil, fmt.Errorf("%w: nearest_k must be at least 1", ErrInvalidConfig)
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		return nil, fmt.Errorf("%w: test_fraction must be in (0,1)", ErrInvalidConfig)
	}
	return &cfg, nil
}
