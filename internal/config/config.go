// Package config holds the sweep configuration: parameter candidate
// ranges, dataset definitions with ranking weights, and search controls.
// The defaults reproduce the standard two-dataset tuning setup; a YAML
// file can override any part of it.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/unthingable/ripcord/internal/validation"
	"gopkg.in/yaml.v3"
)

// Parameter names, in combo-identity (sorted key) order.
const (
	ParamMinGap          = "min_gap"
	ParamMinSegment      = "min_segment"
	ParamSensitivity     = "sensitivity"
	ParamSpeechThreshold = "speech_threshold"
)

// ParamNames lists every tunable parameter in identity order.
var ParamNames = []string{ParamMinGap, ParamMinSegment, ParamSensitivity, ParamSpeechThreshold}

// Ranges maps a parameter name to its coarse-sweep candidate values.
type Ranges map[string][]float64

// DatasetConfig describes one dataset entry. The first dataset in the
// config is the primary (Stage 1) dataset; the rest are Stage 2
// validation datasets.
type DatasetConfig struct {
	Name        string  `yaml:"name"`
	Weight      float64 `yaml:"weight"`
	AudioSuffix string  `yaml:"audio_suffix,omitempty"`
	List        string  `yaml:"list,omitempty"`
}

// SweepConfig is the full parameter-search configuration.
type SweepConfig struct {
	Ranges      Ranges          `yaml:"ranges"`
	Datasets    []DatasetConfig `yaml:"datasets"`
	TopN        int             `yaml:"top_n"`
	GridTopN    int             `yaml:"grid_top_n"`
	Collar      float64         `yaml:"collar"`
	SkipOverlap bool            `yaml:"skip_overlap"`
}

// Default returns the built-in sweep configuration.
func Default() *SweepConfig {
	return &SweepConfig{
		Ranges: Ranges{
			ParamSensitivity:     {0.55, 0.60, 0.65, 0.70, 0.75, 0.80, 0.85},
			ParamSpeechThreshold: {0.3, 0.4, 0.5, 0.6, 0.7},
			ParamMinSegment:      {0.05, 0.1, 0.2, 0.5, 1.0},
			ParamMinGap:          {0.0, 0.1, 0.3, 0.5},
		},
		Datasets: []DatasetConfig{
			{Name: "voxconverse", Weight: 0.8, List: "voxconverse_quick.txt"},
			{Name: "ami", Weight: 0.2, AudioSuffix: ".Mix-Headset", List: "ami_quick.txt"},
		},
		TopN:     5,
		GridTopN: 2,
		Collar:   0.25,
	}
}

// Load reads a YAML config file, validates it against the schema, and
// merges it over the defaults.
func Load(path string) (*SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if errs := validation.ValidateSweepConfigBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid sweep config %s:\n  %s", path, strings.Join(errs, "\n  "))
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing sweep config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sweep config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate enforces the invariants the schema cannot express.
func (c *SweepConfig) Validate() error {
	if len(c.Datasets) == 0 {
		return fmt.Errorf("no datasets configured")
	}
	seen := make(map[string]struct{})
	for _, ds := range c.Datasets {
		if _, ok := seen[ds.Name]; ok {
			return fmt.Errorf("duplicate dataset %q", ds.Name)
		}
		seen[ds.Name] = struct{}{}
	}
	for name := range c.Ranges {
		if !isKnownParam(name) {
			return fmt.Errorf("unknown parameter %q in ranges", name)
		}
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1, got %d", c.TopN)
	}
	if c.GridTopN < 1 {
		return fmt.Errorf("grid_top_n must be at least 1, got %d", c.GridTopN)
	}
	if c.Collar < 0 {
		return fmt.Errorf("collar must be non-negative, got %v", c.Collar)
	}
	return nil
}

// Primary returns the Stage 1 dataset.
func (c *SweepConfig) Primary() DatasetConfig {
	return c.Datasets[0]
}

// Secondaries returns the Stage 2 validation datasets.
func (c *SweepConfig) Secondaries() []DatasetConfig {
	if len(c.Datasets) < 2 {
		return nil
	}
	return c.Datasets[1:]
}

func isKnownParam(name string) bool {
	for _, p := range ParamNames {
		if p == name {
			return true
		}
	}
	return false
}
