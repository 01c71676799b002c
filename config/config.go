// Package config provides configuration loading and management for pespec.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pesolab/pespec/fit"
	"github.com/pesolab/pespec/spectrum"
)

// Config represents the complete pespec configuration
type Config struct {
	Fit      FitConfig      `yaml:"fit"`
	Spectrum SpectrumConfig `yaml:"spectrum"`
}

// FitConfig configures the peak fitting defaults
type FitConfig struct {
	// Shape is the default peak shape for new peaks (default: "PseudoVoigt")
	Shape string `yaml:"shape"`
	// MaxIterations caps the solver iterations per fit
	MaxIterations int `yaml:"max_iterations"`
	// Tolerance is the solver convergence tolerance
	Tolerance float64 `yaml:"tolerance"`
}

// SpectrumConfig configures per-spectrum processing defaults
type SpectrumConfig struct {
	// Background is the default background method for new spectra
	Background string `yaml:"background"`
	// Normalization is the default normalization policy for new spectra
	Normalization string `yaml:"normalization"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	opts := fit.DefaultOptions()
	return &Config{
		Fit: FitConfig{
			Shape:         string(spectrum.ShapePseudoVoigt),
			MaxIterations: opts.MaxIterations,
			Tolerance:     opts.Tolerance,
		},
		Spectrum: SpectrumConfig{
			Background:    string(spectrum.BackgroundShirley),
			Normalization: string(spectrum.NormalizationNone),
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Fit.Shape != string(spectrum.ShapePseudoVoigt) {
		return fmt.Errorf("fit.shape %q is not implemented", c.Fit.Shape)
	}
	if c.Fit.MaxIterations <= 0 {
		return fmt.Errorf("fit.max_iterations must be positive")
	}
	if c.Fit.Tolerance <= 0 {
		return fmt.Errorf("fit.tolerance must be positive")
	}
	if !spectrum.BackgroundType(c.Spectrum.Background).IsValid() {
		return fmt.Errorf("spectrum.background %q is not recognized", c.Spectrum.Background)
	}
	if !spectrum.NormalizationType(c.Spectrum.Normalization).IsValid() {
		return fmt.Errorf("spectrum.normalization %q is not recognized", c.Spectrum.Normalization)
	}
	return nil
}

// FitOptions converts the fit section into solver options
func (c *Config) FitOptions() fit.Options {
	return fit.Options{
		MaxIterations: c.Fit.MaxIterations,
		Tolerance:     c.Fit.Tolerance,
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Fit
	if other.Fit.Shape != "" {
		c.Fit.Shape = other.Fit.Shape
	}
	if other.Fit.MaxIterations != 0 {
		c.Fit.MaxIterations = other.Fit.MaxIterations
	}
	if other.Fit.Tolerance != 0 {
		c.Fit.Tolerance = other.Fit.Tolerance
	}

	// Spectrum
	if other.Spectrum.Background != "" {
		c.Spectrum.Background = other.Spectrum.Background
	}
	if other.Spectrum.Normalization != "" {
		c.Spectrum.Normalization = other.Spectrum.Normalization
	}
}
