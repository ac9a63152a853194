// SPDX-License-Identifier: EPL-2.0

// Package config loads the TOML settings of the audperturb command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ik5/audperturb/shard"
)

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Worker overrides the distributed identity otherwise read from RANK and
// WORLD_SIZE. WorldSize zero means not set.
type Worker struct {
	Rank      int `toml:"rank"`
	WorldSize int `toml:"world_size"`
}

// Metrics controls the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// Config holds the command line settings.
type Config struct {
	SampleRate int     `toml:"sample_rate"`
	Seed       *uint64 `toml:"seed"`
	// Pipeline is the augmentation config path. Relative paths resolve
	// against the directory of the settings file.
	Pipeline string  `toml:"pipeline"`
	Logging  Logging `toml:"logging"`
	Worker   Worker  `toml:"worker"`
	Metrics  Metrics `toml:"metrics"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SampleRate: 16000,
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
		Metrics: Metrics{
			Listen: "127.0.0.1:9464",
		},
	}
}

// Load parses and validates the settings at path. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		dec := toml.NewDecoder(file)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) normalize(baseDir string) {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Metrics.Listen = strings.TrimSpace(c.Metrics.Listen)

	c.Pipeline = strings.TrimSpace(c.Pipeline)
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(c.Pipeline, "~/") {
		c.Pipeline = filepath.Join(home, c.Pipeline[2:])
	}
	if c.Pipeline != "" && !filepath.IsAbs(c.Pipeline) && baseDir != "" {
		c.Pipeline = filepath.Join(baseDir, c.Pipeline)
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return errors.New("sample_rate must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "auto", "text", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}

	if w, ok := c.ShardWorker(); ok {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("worker: %w", err)
		}
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return errors.New("metrics.listen must be set when metrics are enabled")
	}

	return nil
}

// ShardWorker returns the configured worker identity, if any.
func (c *Config) ShardWorker() (shard.Worker, bool) {
	if c.Worker.WorldSize == 0 {
		return shard.Worker{}, false
	}
	return shard.Worker{Rank: c.Worker.Rank, WorldSize: c.Worker.WorldSize}, true
}
