// Package config holds the analyzer configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/m2perf/metrics"
)

// DefaultClockGHz is the clock frequency used when none is configured.
const DefaultClockGHz = 1.0

// Config holds the parameters used to turn cycle counts into time.
type Config struct {
	// ClockGHz is the core clock frequency in GHz. Default: 1.0.
	ClockGHz float64 `json:"clock_ghz"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		ClockGHz: DefaultClockGHz,
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the clock frequency is a positive finite number.
func (c *Config) Validate() error {
	if err := metrics.ValidateClock(c.Clock()); err != nil {
		return fmt.Errorf("clock_ghz %v: %w", c.ClockGHz, err)
	}
	return nil
}

// Clock returns the configured clock frequency.
func (c *Config) Clock() sim.Freq {
	return metrics.GHz(c.ClockGHz)
}
