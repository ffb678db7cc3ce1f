// Package config handles run configuration for the aggregation pipeline.
//
// Precedence, lowest to highest: built-in defaults, optional YAML config
// file, ATTRIB_* environment variables, command-line flags (applied by the
// CLI layer).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/reallyliri/attrib/internal/record"
)

// Environment variable fallbacks read by ApplyEnv.
const (
	EnvInput  = "ATTRIB_INPUT"
	EnvOutput = "ATTRIB_OUTPUT"
	EnvDB     = "ATTRIB_DB"
)

// Config describes one aggregation run.
type Config struct {
	Input         string   `yaml:"input"`                    // attribution CSV to read
	Output        string   `yaml:"output"`                   // aggregated CSV to write
	DB            string   `yaml:"db,omitempty"`             // optional SQLite export path
	ListSep       string   `yaml:"list_sep,omitempty"`       // delimiter inside multi-valued fields
	QueueSize     int      `yaml:"queue_size,omitempty"`     // bounded row channel capacity
	ProgressEvery int      `yaml:"progress_every,omitempty"` // rows between progress reports
	FlagValues    []string `yaml:"flag_values,omitempty"`    // values marking a work as flagged
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Input:         "authors_works.csv",
		Output:        "authors_works_aggregated.csv",
		ListSep:       ";",
		QueueSize:     1024,
		ProgressEvery: 10000,
		FlagValues:    record.DefaultFlagValues,
	}
}

// Load reads a YAML config file over the defaults. Fields absent from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides path fields from ATTRIB_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvInput); v != "" {
		c.Input = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.DB = v
	}
}

// Validate checks the configuration before a run starts.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if c.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if _, err := os.Stat(c.Input); err != nil {
		return fmt.Errorf("input not readable: %w", err)
	}
	if dir := filepath.Dir(c.Output); dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
	}
	if c.ListSep == "" {
		return fmt.Errorf("list separator is required")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	}
	if len(c.FlagValues) == 0 {
		return fmt.Errorf("at least one flag value is required")
	}
	return nil
}
