package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/takens/internal/dist"
	"github.com/san-kum/takens/internal/embed"
)

const (
	DefaultMaxDelay       = 50
	DefaultSampleFraction = 1.0
	DefaultTheilerWindow  = 1
	DefaultAlpha          = 0.05
	DefaultBinomialP      = 0.5
	DefaultMaxNeighbors   = 13
	DefaultCostNeighbors  = 3
	DefaultHorizonFactor  = 4
	DefaultMaxCycles      = 10
)

// Config is the YAML surface of a reconstruction run. Delays wins over
// MaxDelay when both are given.
type Config struct {
	Delays            []int   `yaml:"delays"`
	MaxDelay          int     `yaml:"max_delay"`
	SampleFraction    float64 `yaml:"sample_fraction"`
	TheilerWindow     int     `yaml:"theiler_window"`
	SignificanceAlpha float64 `yaml:"significance_alpha"`
	BinomialP         float64 `yaml:"binomial_p"`
	MaxNeighbors      int     `yaml:"max_neighbors"`
	CostNeighbors     int     `yaml:"cost_neighbors"`
	HorizonFactor     int     `yaml:"horizon_factor"`
	MaxCycles         int     `yaml:"max_cycles"`
	Norm              string  `yaml:"norm"`
	Seed              int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxDelay:          DefaultMaxDelay,
		SampleFraction:    DefaultSampleFraction,
		TheilerWindow:     DefaultTheilerWindow,
		SignificanceAlpha: DefaultAlpha,
		BinomialP:         DefaultBinomialP,
		MaxNeighbors:      DefaultMaxNeighbors,
		CostNeighbors:     DefaultCostNeighbors,
		HorizonFactor:     DefaultHorizonFactor,
		MaxCycles:         DefaultMaxCycles,
		Norm:              "euclidean",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// Options converts the config into validated search options.
func (c *Config) Options() (embed.Options, error) {
	norm, ok := dist.Parse(c.Norm)
	if !ok {
		return embed.Options{}, fmt.Errorf("unknown norm %q", c.Norm)
	}
	delays := c.Delays
	if len(delays) == 0 {
		if c.MaxDelay < 0 {
			return embed.Options{}, fmt.Errorf("max_delay %d is negative", c.MaxDelay)
		}
		delays = make([]int, c.MaxDelay+1)
		for i := range delays {
			delays[i] = i
		}
	}
	opts := embed.Options{
		Delays:            delays,
		SampleFraction:    c.SampleFraction,
		TheilerWindow:     c.TheilerWindow,
		SignificanceAlpha: c.SignificanceAlpha,
		BinomialP:         c.BinomialP,
		MaxNeighbors:      c.MaxNeighbors,
		CostNeighbors:     c.CostNeighbors,
		HorizonFactor:     c.HorizonFactor,
		MaxCycles:         c.MaxCycles,
		Norm:              norm,
		Seed:              c.Seed,
	}
	if err := opts.Validate(); err != nil {
		return embed.Options{}, err
	}
	return opts, nil
}
