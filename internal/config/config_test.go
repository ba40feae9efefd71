package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/takens/internal/dist"
)

func TestDefaultConfigOptions(t *testing.T) {
	opts, err := DefaultConfig().Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}

	if len(opts.Delays) != DefaultMaxDelay+1 {
		t.Errorf("expected %d candidate delays, got %d", DefaultMaxDelay+1, len(opts.Delays))
	}
	if opts.Delays[0] != 0 || opts.Delays[DefaultMaxDelay] != DefaultMaxDelay {
		t.Errorf("delays span [%d, %d]", opts.Delays[0], opts.Delays[len(opts.Delays)-1])
	}
	if opts.Norm != dist.Euclidean {
		t.Errorf("norm = %v, want euclidean", opts.Norm)
	}
	if opts.MaxNeighbors != DefaultMaxNeighbors || opts.MaxCycles != DefaultMaxCycles {
		t.Errorf("defaults not carried over: %+v", opts)
	}
}

func TestExplicitDelaysWinOverMaxDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Delays = []int{0, 2, 4, 8}
	cfg.MaxDelay = 50

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if len(opts.Delays) != 4 || opts.Delays[3] != 8 {
		t.Errorf("delays = %v, want [0 2 4 8]", opts.Delays)
	}
}

func TestOptionsRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown norm", func(c *Config) { c.Norm = "manhattan" }},
		{"negative max delay", func(c *Config) { c.MaxDelay = -1 }},
		{"unsorted delays", func(c *Config) { c.Delays = []int{3, 1} }},
		{"zero theiler window", func(c *Config) { c.TheilerWindow = 0 }},
		{"zero cycles", func(c *Config) { c.MaxCycles = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if _, err := cfg.Options(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "takens.yaml")

	cfg := DefaultConfig()
	cfg.MaxDelay = 30
	cfg.SampleFraction = 0.5
	cfg.Norm = "maximum"
	cfg.Seed = 7

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.MaxDelay != 30 || loaded.SampleFraction != 0.5 || loaded.Norm != "maximum" || loaded.Seed != 7 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadFillsMissingFieldsWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("max_delay: 12\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxDelay != 12 {
		t.Errorf("max delay = %d, want 12", cfg.MaxDelay)
	}
	if cfg.MaxNeighbors != DefaultMaxNeighbors || cfg.Norm != "euclidean" {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
