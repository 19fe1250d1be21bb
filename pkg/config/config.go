// Package config provides configuration loading and management for
// olympicfilter. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Filter parameters
	Filter struct {
		// WidthX is the filter kernel size in the x-direction in cells.
		// It is normalized to an odd value of at least 3 before use.
		WidthX int `yaml:"widthX"`

		// WidthY is the filter kernel size in the y-direction in cells,
		// normalized the same way as WidthX.
		WidthY int `yaml:"widthY"`
	} `yaml:"filter"`

	// Processing parameters
	Processing struct {
		// Workers specifies how many row-block workers run in parallel.
		// Zero means use all available CPU cores.
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Verbose controls progress reporting during the run
		Verbose bool `yaml:"verbose"`

		// Debug enables development-level logging
		Debug bool `yaml:"debug"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default filter parameters (11x11 kernel, as in the original tool)
	cfg.Filter.WidthX = 11
	cfg.Filter.WidthY = 11

	// Zero workers defers to the runtime CPU count at filter setup
	cfg.Processing.Workers = 0

	// Set default output parameters
	cfg.Output.Verbose = true
	cfg.Output.Debug = false

	return cfg
}

// Validate checks that configured values are usable before any computation
// starts. Width and worker counts must not be negative; zero means "use the
// default".
func (c *Config) Validate() error {
	if c.Filter.WidthX < 0 {
		return fmt.Errorf("filter.widthX must be positive, got %d", c.Filter.WidthX)
	}
	if c.Filter.WidthY < 0 {
		return fmt.Errorf("filter.widthY must be positive, got %d", c.Filter.WidthY)
	}
	if c.Processing.Workers < 0 {
		return fmt.Errorf("processing.workers must not be negative, got %d", c.Processing.Workers)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
