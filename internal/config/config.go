// Package config loads the jsondb configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maruel/jsondb/internal/jsondb"
)

// Config is the content of a jsondb.yaml file.
type Config struct {
	// Root is the store root directory.
	Root string `yaml:"root"`
	// Compression enables zstd-compressed files. Nil means enabled.
	Compression *bool `yaml:"compression,omitempty"`
	// InPlaceWrites disables the write-to-temp-then-rename strategy.
	InPlaceWrites bool `yaml:"in_place_writes,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// History commits every mutation to a git repository in Root.
	History History `yaml:"history"`
}

// History configures git snapshots of the store root.
type History struct {
	Enabled bool   `yaml:"enabled"`
	Author  string `yaml:"author,omitempty"`
	Email   string `yaml:"email,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Root:     jsondb.DefaultRoot,
		LogLevel: "info",
		History: History{
			Author: "jsondb",
			Email:  "jsondb@localhost",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: not a secret
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("root is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.History.Enabled && (c.History.Author == "" || c.History.Email == "") {
		return errors.New("history.author and history.email are required when history is enabled")
	}
	return nil
}

// Options returns the store options described by c.
func (c *Config) Options() jsondb.Options {
	return jsondb.Options{
		Root:          c.Root,
		Compression:   c.Compression,
		InPlaceWrites: c.InPlaceWrites,
	}
}

// ParseLevel converts a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", s)
	}
}
