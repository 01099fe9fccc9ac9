package planner

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config bounds the DP join-order search and the density fallback. Callers
// load overrides from YAML the same way a system-variables layer seeds its
// defaults.
type Config struct {
	// MaxStates is the DP beam width (default 100).
	MaxStates int `yaml:"max_states"`
	// LowerBoundLogFloor is the constant added to the lower-bound pruning
	// check when a state has no materialized edge yet.
	LowerBoundLogFloor float64 `yaml:"lower_bound_log_floor"`
	// DefaultDensity is used when the statistics probe reports an absent or
	// 1.0 density for a node table's primary key.
	DefaultDensity float64 `yaml:"default_density"`
}

// DefaultConfig returns the module's baked-in defaults.
func DefaultConfig() Config {
	return Config{
		MaxStates:          100,
		LowerBoundLogFloor: 1.0,
		DefaultDensity:     0.1,
	}
}

// LoadConfig reads a YAML-encoded Config from path, starting from
// DefaultConfig so a partial override file is valid.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "planner: read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "planner: parse config")
	}
	return cfg, nil
}
