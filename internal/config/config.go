// Package config loads the optional operator-facing settings file at
// .roadmap/config.yaml. Nothing under this package is required for the
// core to function: a missing file yields a zero-value Config and the
// caller applies its own defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the shape of .roadmap/config.yaml.
type Config struct {
	ProveTimeoutMS int      `yaml:"prove_timeout_ms"`
	VCSBinary      string   `yaml:"vcs_binary"`
	DefaultScope   []string `yaml:"default_scope"`
}

// DefaultVCSBinary is used when Config.VCSBinary is unset.
const DefaultVCSBinary = "git"

// DefaultProveTimeoutMS is used when Config.ProveTimeoutMS is zero.
const DefaultProveTimeoutMS = 5 * 60 * 1000

// Load reads and parses path, returning a zero Config if the file does
// not exist. Any other read or parse error is returned as-is.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// WithDefaults returns a copy of cfg with zero fields replaced by the
// package defaults.
func (c Config) WithDefaults() Config {
	if c.VCSBinary == "" {
		c.VCSBinary = DefaultVCSBinary
	}
	if c.ProveTimeoutMS == 0 {
		c.ProveTimeoutMS = DefaultProveTimeoutMS
	}
	return c
}
