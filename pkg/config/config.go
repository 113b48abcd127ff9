// Package config loads gap-fill run settings from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/gapfill/pkg/core"
	"github.com/ChrisMcGann/gapfill/pkg/filter"
)

// Config is the on-disk run configuration.
type Config struct {
	Tolerances TolerancesConfig `yaml:"tolerances"`
	Mobility   MobilityConfig   `yaml:"mobility"`
	Filter     FilterConfig     `yaml:"filter"`
	Threads    int              `yaml:"threads"`
}

// TolerancesConfig mirrors core.Tolerances.
type TolerancesConfig struct {
	MZAbs          float64 `yaml:"mz_abs"`
	MZPPM          float64 `yaml:"mz_ppm"`
	RTWindow       float64 `yaml:"rt_window"`
	MobilityWindow float64 `yaml:"mobility_window"`
	ShapeTolerance float64 `yaml:"shape_tolerance"`
	NoiseFloor     float64 `yaml:"noise_floor"`
}

// MobilityConfig selects ion mobility processing.
type MobilityConfig struct {
	Enabled      bool `yaml:"enabled"`
	MinRunLength int  `yaml:"min_run_length"`
}

// FilterConfig mirrors filter.Config.
type FilterConfig struct {
	TopN            int     `yaml:"top_n"`
	IntensityCutoff float64 `yaml:"intensity_cutoff"`
	MinIntensity    float64 `yaml:"min_intensity"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Tolerances: TolerancesConfig{
			MZAbs:          0.002,
			MZPPM:          10,
			RTWindow:       0.2,
			MobilityWindow: 0.05,
			ShapeTolerance: 0.2,
			NoiseFloor:     1000,
		},
		Mobility: MobilityConfig{MinRunLength: 3},
		Threads:  1,
	}
}

// Load reads a YAML file on top of Default. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.CoreTolerances().Validate(); err != nil {
		return err
	}
	if c.Mobility.MinRunLength < 0 {
		return &core.ValidationError{Field: "mobility.min_run_length", Message: "must be non-negative"}
	}
	if c.Threads < 0 {
		return &core.ValidationError{Field: "threads", Message: "must be non-negative"}
	}
	if c.Filter.TopN < 0 || c.Filter.IntensityCutoff < 0 || c.Filter.IntensityCutoff > 100 || c.Filter.MinIntensity < 0 {
		return &core.ValidationError{Field: "filter", Message: "top_n, intensity_cutoff (0-100) and min_intensity must be non-negative"}
	}
	return nil
}

// CoreTolerances converts the tolerance section.
func (c *Config) CoreTolerances() core.Tolerances {
	t := c.Tolerances
	return core.Tolerances{
		MZ:             core.MZTolerance{Abs: t.MZAbs, PPM: t.MZPPM},
		RTWindow:       t.RTWindow,
		MobilityWindow: t.MobilityWindow,
		ShapeTolerance: t.ShapeTolerance,
		NoiseFloor:     t.NoiseFloor,
	}
}

// ScanFilter converts the filter section.
func (c *Config) ScanFilter() *filter.Config {
	return &filter.Config{
		TopN:            c.Filter.TopN,
		IntensityCutoff: c.Filter.IntensityCutoff,
		MinIntensity:    c.Filter.MinIntensity,
	}
}
