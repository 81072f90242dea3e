package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/swarmlab/internal/seed"
	"github.com/san-kum/swarmlab/internal/sim"
)

const (
	DefaultAgents   = 200
	DefaultDt       = 0.05
	DefaultDuration = 50.0
	DefaultK        = 1.0
	DefaultJ        = 0.5
	DefaultExtent   = 1.0
)

// Config describes a complete run: ensemble size and couplings, initial
// condition recipe, and stepping parameters.
type Config struct {
	Agents   int     `yaml:"agents"`
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Seed     int64   `yaml:"seed"`

	K float64 `yaml:"k"`
	J float64 `yaml:"j"`

	Layout      string  `yaml:"layout"`
	Extent      float64 `yaml:"extent"`
	PhaseLayout string  `yaml:"phase_layout"`

	ChiralityMode string  `yaml:"chirality"`
	ChiralitySpin float64 `yaml:"chirality_spin"`

	OmegaMode   string  `yaml:"omega_mode"`
	OmegaMean   float64 `yaml:"omega_mean"`
	OmegaSpread float64 `yaml:"omega_spread"`

	Target []float64 `yaml:"target,omitempty"`

	SampleEvery int `yaml:"sample_every"`
}

func Default() *Config {
	return &Config{
		Agents:      DefaultAgents,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		K:           DefaultK,
		J:           DefaultJ,
		Layout:      "disk",
		Extent:      DefaultExtent,
		SampleEvery: 10,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SeedSpec translates the config into an initial-condition recipe.
func (c *Config) SeedSpec() seed.Spec {
	return seed.Spec{
		Agents:        c.Agents,
		Seed:          c.Seed,
		Layout:        c.Layout,
		Extent:        c.Extent,
		PhaseLayout:   c.PhaseLayout,
		ChiralityMode: c.ChiralityMode,
		ChiralitySpin: c.ChiralitySpin,
		OmegaMode:     c.OmegaMode,
		OmegaMean:     c.OmegaMean,
		OmegaSpread:   c.OmegaSpread,
		K:             c.K,
		J:             c.J,
		Target:        c.Target,
	}
}

// RunConfig translates the config into runner settings. Runs always validate
// state so a degenerate geometry is reported instead of producing a file of
// NaN rows.
func (c *Config) RunConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		SampleEvery:   c.SampleEvery,
		ValidateState: true,
	}
}
