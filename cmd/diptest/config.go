package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TrevorS/diptest"
)

// fileConfig mirrors the command line flags. Zero values leave the
// library default in place.
type fileConfig struct {
	Strategy string  `yaml:"strategy"`
	Backend  string  `yaml:"backend"`
	Trials   int     `yaml:"trials"`
	Seed     uint64  `yaml:"seed"`
	Workers  int     `yaml:"workers"`
	Sorted   bool    `yaml:"sorted"`
	Debug    bool    `yaml:"debug"`
	Alpha    float64 `yaml:"alpha"`
	Column   int     `yaml:"column"`
}

// loadFileConfig reads path. An empty path yields an empty config.
func loadFileConfig(path string) (*fileConfig, error) {
	fc := &fileConfig{}
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

func (fc *fileConfig) apply(cfg *diptest.Config) {
	if fc.Strategy != "" {
		cfg.Strategy = diptest.PValueStrategy(fc.Strategy)
	}
	if fc.Backend != "" {
		cfg.Backend = diptest.Backend(fc.Backend)
	}
	if fc.Trials != 0 {
		cfg.BootstrapTrials = fc.Trials
	}
	if fc.Seed != 0 {
		cfg.Seed = fc.Seed
	}
	if fc.Workers != 0 {
		cfg.Workers = fc.Workers
	}
	cfg.Sorted = cfg.Sorted || fc.Sorted
	cfg.Debug = cfg.Debug || fc.Debug
}
