// Package config loads workspace configuration from .fg/config.yaml,
// with environment variable overrides for settings that vary per
// invocation rather than per workspace.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is relative to the workspace root.
const ConfigFileName = ".fg/config.yaml"

// Config represents the structure of .fg/config.yaml.
type Config struct {
	// GraphFile is the graph file path relative to the workspace root.
	// Default: ".fg/graph.yaml"
	GraphFile string `yaml:"graph_file"`

	// DatabasePath is the audit database path relative to the
	// workspace root. ":memory:" keeps the audit log in-process.
	// Default: ".fg/fg.db"
	DatabasePath string `yaml:"database_path"`

	// Actor names who (or what) is making changes; recorded in
	// summaries and history. Default: "agent"
	Actor string `yaml:"actor"`

	// Heuristics tunes artifact/test matching.
	Heuristics HeuristicsConfig `yaml:"heuristics"`
}

// HeuristicsConfig tunes the artifact and test matching heuristics.
type HeuristicsConfig struct {
	// MaxResults caps how many matches a query returns.
	// Default: 10, Range: 1-100
	MaxResults int `yaml:"max_results"`

	// MinScore filters out weak matches. Direct plan-hint matches are
	// exempt. Default: 0 (no filtering)
	MinScore float64 `yaml:"min_score"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		GraphFile:    ".fg/graph.yaml",
		DatabasePath: ".fg/fg.db",
		Actor:        "agent",
		Heuristics: HeuristicsConfig{
			MaxResults: 10,
			MinScore:   0,
		},
	}
}

// Load reads configuration from .fg/config.yaml under the workspace
// root. A missing file yields the defaults; a malformed file is an
// error. Environment variables override file settings afterwards.
func Load(workspace string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(workspace, ConfigFileName)
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to .fg/config.yaml under the workspace
// root, creating the .fg directory if needed.
func (c *Config) Save(workspace string) error {
	path := filepath.Join(workspace, ConfigFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks configuration ranges.
func (c *Config) Validate() error {
	if c.Heuristics.MaxResults < 1 || c.Heuristics.MaxResults > 100 {
		return fmt.Errorf("heuristics.max_results must be between 1 and 100 (got %d)", c.Heuristics.MaxResults)
	}
	if c.Heuristics.MinScore < 0 {
		return fmt.Errorf("heuristics.min_score must be non-negative (got %g)", c.Heuristics.MinScore)
	}
	return nil
}

// applyDefaults fills fields the config file left empty.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.GraphFile == "" {
		c.GraphFile = d.GraphFile
	}
	if c.DatabasePath == "" {
		c.DatabasePath = d.DatabasePath
	}
	if c.Actor == "" {
		c.Actor = d.Actor
	}
	if c.Heuristics.MaxResults == 0 {
		c.Heuristics.MaxResults = d.Heuristics.MaxResults
	}
}

// applyEnv overrides config with FG_* environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("FG_GRAPH_FILE"); v != "" {
		c.GraphFile = v
	}
	if v := os.Getenv("FG_DB_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("FG_ACTOR"); v != "" {
		c.Actor = v
	}
	if v := os.Getenv("FG_MAX_RESULTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FG_MAX_RESULTS %q: %w", v, err)
		}
		c.Heuristics.MaxResults = n
	}
	if v := os.Getenv("FG_MIN_SCORE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FG_MIN_SCORE %q: %w", v, err)
		}
		c.Heuristics.MinScore = f
	}
	return nil
}
