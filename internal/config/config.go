// Package config loads the workspace configuration: which files belong to the
// workspace and how they are analyzed.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"luasema/internal/trace"
)

// File names searched for, in order of preference.
const (
	TomlName = "luasema.toml"
	YamlName = ".luasema.yaml"
)

var (
	// ErrBadPattern reports an include/exclude glob that does not compile.
	ErrBadPattern = errors.New("invalid glob pattern")
	// ErrBadJobs reports a negative job count.
	ErrBadJobs = errors.New("jobs must not be negative")
)

// Config is the resolved workspace configuration.
type Config struct {
	// Root is the directory paths are relative to: the directory holding
	// the config file, or the directory the search started from.
	Root string `toml:"-" yaml:"-"`
	// Path of the file the configuration came from, empty for defaults.
	Path string `toml:"-" yaml:"-"`

	Include   []string `toml:"include" yaml:"include"`
	Exclude   []string `toml:"exclude" yaml:"exclude"`
	Jobs      int      `toml:"jobs" yaml:"jobs"`
	Reserved  []string `toml:"reserved" yaml:"reserved"`
	Namespace string   `toml:"namespace" yaml:"namespace"`
	Trace     string   `toml:"trace" yaml:"trace"`
}

// Default returns the configuration used when no file is found.
func Default(root string) Config {
	return Config{
		Root:    root,
		Include: []string{"**/*.lua"},
		Trace:   trace.LevelOff.String(),
	}
}

// Validate checks patterns, jobs and the trace level.
func (c *Config) Validate() error {
	for _, p := range slices.Concat(c.Include, c.Exclude) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
	}
	if c.Jobs < 0 {
		return fmt.Errorf("%w: %d", ErrBadJobs, c.Jobs)
	}
	if c.Trace != "" {
		if _, err := trace.ParseLevel(c.Trace); err != nil {
			return err
		}
	}
	for _, name := range c.Reserved {
		if strings.TrimSpace(name) == "" {
			return errors.New("reserved names must not be empty")
		}
	}
	return nil
}

// Workers returns the parse parallelism: Jobs, or GOMAXPROCS when unset.
func (c *Config) Workers() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// TraceLevel returns the configured trace level, off when unset.
func (c *Config) TraceLevel() trace.Level {
	level, err := trace.ParseLevel(c.Trace)
	if err != nil {
		return trace.LevelOff
	}
	return level
}

// Match reports whether a slash-separated path relative to Root belongs to
// the workspace.
func (c *Config) Match(rel string) bool {
	included := false
	for _, p := range c.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range c.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	return true
}
