// Package config handles topotool configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all tool settings.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Build   BuildConfig   `yaml:"build"`
	Sphere  SphereConfig  `yaml:"sphere"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig holds feature file settings.
type InputConfig struct {
	Format string `yaml:"format"` // auto, wkt, geojson, ewkb
}

// BuildConfig holds topology build settings.
type BuildConfig struct {
	Workers      int           `yaml:"workers"`       // files built concurrently
	CapacityHint int           `yaml:"capacity_hint"` // expected unique vertices per file
	Timeout      time.Duration `yaml:"timeout"`       // 0 = no limit
}

// SphereConfig holds bounding sphere settings.
type SphereConfig struct {
	Enabled bool `yaml:"enabled"`
	ECEF    bool `yaml:"ecef"` // convert lon/lat/height to ECEF first
}

// OutputConfig holds report settings.
type OutputConfig struct {
	Format string `yaml:"format"` // text or yaml
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Format: "auto",
		},
		Build: BuildConfig{
			Workers:      4,
			CapacityHint: 0,
			Timeout:      0,
		},
		Sphere: SphereConfig{
			Enabled: false,
			ECEF:    true,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:   "warn",
			LogFile: "",
		},
	}
}

// Validate checks settings that have no usable fallback.
func (c *Config) Validate() error {
	if c.Build.Workers < 1 {
		return fmt.Errorf("%w: build.workers must be at least 1, got %d", ErrInvalidConfig, c.Build.Workers)
	}
	if c.Build.CapacityHint < 0 {
		return fmt.Errorf("%w: build.capacity_hint must not be negative", ErrInvalidConfig)
	}
	if c.Build.Timeout < 0 {
		return fmt.Errorf("%w: build.timeout must not be negative", ErrInvalidConfig)
	}
	switch c.Output.Format {
	case "text", "yaml":
	default:
		return fmt.Errorf("%w: output.format must be text or yaml, got %q", ErrInvalidConfig, c.Output.Format)
	}
	return nil
}
