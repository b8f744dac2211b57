package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Find walks up from startDir and returns the first config file found.
// luasema.toml wins over .luasema.yaml in the same directory.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range []string{TomlName, YamlName} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the configuration for startDir, falling back to
// Default rooted at startDir.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		root, err := filepath.Abs(startDir)
		if err != nil {
			return Config{}, fmt.Errorf("failed to resolve start directory: %w", err)
		}
		return Default(root), nil
	}
	return Load(path)
}

// Load parses a config file. The format follows the extension; keys left
// out keep their defaults.
func Load(path string) (Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	cfg := Default(filepath.Dir(abs))
	cfg.Path = abs

	switch filepath.Ext(abs) {
	case ".toml":
		if _, err := toml.DecodeFile(abs, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", abs, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(abs) // #nosec G304 -- path is provided by the caller
		if err != nil {
			return Config{}, fmt.Errorf("failed to read configuration file %s: %w", abs, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", abs, err)
		}
	default:
		return Config{}, fmt.Errorf("%s: unsupported configuration format", abs)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", abs, err)
	}
	return cfg, nil
}

// Files lists the workspace files under Root, sorted, as absolute paths.
func (c *Config) Files() ([]string, error) {
	fsys := os.DirFS(c.Root)
	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range c.Include {
		names, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %q", c.Root, ErrBadPattern, pattern)
		}
		for _, name := range names {
			if _, dup := seen[name]; dup || !c.Match(name) {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, filepath.Join(c.Root, filepath.FromSlash(name)))
		}
	}
	slices.Sort(out)
	return out, nil
}

// Rel returns path relative to Root in slash form, for display.
func (c *Config) Rel(path string) string {
	rel, err := filepath.Rel(c.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
