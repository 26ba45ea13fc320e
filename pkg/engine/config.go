package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wildfunctions/derivada/pkg/telemetry"
)

// Config holds the settings shared by every front end.
type Config struct {
	Variable string `yaml:"variable"`  // default differentiation variable
	MaxDepth int    `yaml:"max_depth"` // reject inputs deeper than this (0 = no limit)
	Workers  int    `yaml:"workers"`
	Format   string `yaml:"format"` // "text", "json" or "latex"
	Trace    bool   `yaml:"trace"`
	Journal  string `yaml:"journal"` // bolt file; empty disables the journal
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	RateLimit     float64 `yaml:"rate_limit"`     // HTTP API requests per second (0 = unlimited)
	TraceExporter string  `yaml:"trace_exporter"` // "none", "stdout" or "otlp"
	OTLPEndpoint  string  `yaml:"otlp_endpoint"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Variable: "x",
		MaxDepth: 1000,
		Workers:  runtime.NumCPU(),
		Format:   "text",
		Trace:    false,
		Listen:   ":8080",
		LogLevel: "info",

		TraceExporter: telemetry.ExporterNone,
		OTLPEndpoint:  "localhost:4317",
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Keys missing from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Variable) == "" {
		return ErrEmptyVariable
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0, got %g", c.RateLimit)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if _, ok := writers[c.Format]; !ok {
		return fmt.Errorf("unknown format: %s (available: %v)", c.Format, Formats())
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if !telemetry.Valid(c.TraceExporter) {
		return fmt.Errorf("%w: %s", telemetry.ErrUnknownExporter, c.TraceExporter)
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return level, errors.Join(fmt.Errorf("unknown log level: %q", name), err)
	}
	return level, nil
}
