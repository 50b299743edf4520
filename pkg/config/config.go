// Package config loads logjuicer's runtime configuration: hashing
// dimension, chunk size, and the anomaly-assembler thresholds.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is logjuicer's top-level configuration.
type Config struct {
	Thresholds ThresholdConfig `yaml:"thresholds"`
	Hashing    HashingConfig   `yaml:"hashing"`
	Source     SourceConfig    `yaml:"source"`
	Logging    LoggingConfig   `yaml:"logging"`
}

// ThresholdConfig carries the anomaly-assembler knobs.
type ThresholdConfig struct {
	Distance      float64 `yaml:"distance"`
	MergeDistance int     `yaml:"merge_distance"`
	BeforeContext int     `yaml:"before_context"`
	AfterContext  int     `yaml:"after_context"`
	ChunkSize     int     `yaml:"chunk_size"`
}

// HashingConfig carries the hashing-vectorizer knobs.
type HashingConfig struct {
	Dimension int `yaml:"dimension"`
}

// SourceConfig controls the file iterator's filtering policy.
type SourceConfig struct {
	DenyBasename []string `yaml:"deny_basename"`
	DenyPath     []string `yaml:"deny_path"`
}

// LoggingConfig controls the CLI's logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the implementation's default configuration values, so
// the CLI runs correctly with zero configuration.
func Default() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			Distance:      0.2,
			MergeDistance: 5,
			BeforeContext: 2,
			AfterContext:  2,
			ChunkSize:     512,
		},
		Hashing: HashingConfig{
			Dimension: 1 << 18,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML configuration file at path and overlays it on Default().
// A missing file is not an error: Default() is returned unchanged.
// Environment variables of the form ${NAME} are expanded before parsing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration describes a usable run.
func (c *Config) Validate() error {
	if c.Hashing.Dimension <= 0 {
		return fmt.Errorf("hashing.dimension must be positive")
	}
	if c.Thresholds.ChunkSize <= 0 {
		return fmt.Errorf("thresholds.chunk_size must be positive")
	}
	if c.Thresholds.Distance < 0 || c.Thresholds.Distance > 1 {
		return fmt.Errorf("thresholds.distance must be in [0, 1]")
	}
	if c.Thresholds.MergeDistance < 0 {
		return fmt.Errorf("thresholds.merge_distance must not be negative")
	}
	return nil
}

// DiscoverBaselineDir looks for a conventional "last-good" baseline tree next
// to target, so diff can run with --target alone when no --baseline was
// supplied. Failure to find one is never fatal: callers fall back to
// requiring an explicit --baseline flag.
func DiscoverBaselineDir(target string) (string, bool) {
	candidate := filepath.Join(filepath.Dir(filepath.Clean(target)), "last-good")
	info, err := os.Stat(candidate)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return candidate, true
}
