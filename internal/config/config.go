// Package config loads the optional skiff.yaml project file. Flags given
// on the command line override file values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the project file looked up in the working directory.
const DefaultFile = "skiff.yaml"

// Config is the project configuration.
type Config struct {
	// Inputs are files or directories searched for .sk sources.
	Inputs []string `yaml:"inputs"`
	// Verbose enables per-pass summary output.
	Verbose bool `yaml:"verbose"`
	// Run evaluates the compiled program after a successful build.
	Run bool `yaml:"run"`
}

// Load reads a config file. A missing file yields the zero config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}
