// Package config loads planner configuration from TOML.
//
// A missing section or key keeps its default, so an empty file is a valid
// configuration:
//
//	[planner]
//	algorithm = "cbs"
//	frontier  = "bestfirst"
//	max_time  = 200
//	max_nodes = 20000
//	parallel  = true
//
//	[log]
//	level  = "info"
//	format = "text"
//
//	[metrics]
//	output = ""
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/elektrokombinacija/mapf-hospital/internal/algo"
	"github.com/elektrokombinacija/mapf-hospital/internal/search"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the complete planner configuration.
type Config struct {
	Planner PlannerConfig `toml:"planner"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
}

// PlannerConfig selects and bounds the solver.
type PlannerConfig struct {
	// Algorithm is one of algo.Algorithms.
	Algorithm string `toml:"algorithm"`
	// Frontier is the low-level search order: "bfs" or "bestfirst".
	Frontier string `toml:"frontier"`
	// MaxTime is the trajectory horizon in time steps.
	MaxTime int `toml:"max_time"`
	// MaxNodes bounds CBS nodes, or joint-search expansions.
	MaxNodes int `toml:"max_nodes"`
	// Parallel plans independent CBS children concurrently.
	Parallel bool `toml:"parallel"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

// MetricsConfig configures the metrics dump.
type MetricsConfig struct {
	// Output is a file path for the Prometheus text exposition written after
	// a run. Empty disables it.
	Output string `toml:"output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			Algorithm: "cbs",
			Frontier:  "bestfirst",
			MaxTime:   algo.DefaultMaxTime,
			MaxNodes:  algo.DefaultMaxNodes,
			Parallel:  true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enums and budgets.
func (c *Config) Validate() error {
	if !slices.Contains(algo.Algorithms, c.Planner.Algorithm) {
		return fmt.Errorf("%w: planner.algorithm %q", ErrInvalid, c.Planner.Algorithm)
	}
	if _, err := search.ParseStrategy(c.Planner.Frontier); err != nil {
		return fmt.Errorf("%w: planner.frontier: %v", ErrInvalid, err)
	}
	if c.Planner.MaxTime <= 0 {
		return fmt.Errorf("%w: planner.max_time must be positive, got %d", ErrInvalid, c.Planner.MaxTime)
	}
	if c.Planner.MaxNodes <= 0 {
		return fmt.Errorf("%w: planner.max_nodes must be positive, got %d", ErrInvalid, c.Planner.MaxNodes)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// Strategy returns the parsed frontier strategy. Call Validate first.
func (c *Config) Strategy() search.Strategy {
	st, _ := search.ParseStrategy(c.Planner.Frontier)
	return st
}

// SlogLevel maps the level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, l.Level)
	}
	return lvl, nil
}
