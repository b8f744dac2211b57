package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"luasema/internal/trace"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, TomlName), `
include = ["src/**/*.lua"]
exclude = ["src/vendor/**"]
jobs = 3
reserved = ["vector"]
namespace = "app"
trace = "phase"
`)
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := Discover(nested)
	require.NoError(t, err)
	require.Equal(t, root, cfg.Root)
	require.Equal(t, 3, cfg.Workers())
	require.Equal(t, "app", cfg.Namespace)
	require.Equal(t, trace.LevelPhase, cfg.TraceLevel())
	require.Equal(t, []string{"vector"}, cfg.Reserved)
}

func TestTomlWinsOverYaml(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, YamlName), "jobs: 7\n")
	writeFile(t, filepath.Join(root, TomlName), "jobs = 2\n")

	path, ok, err := Find(root)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, TomlName, filepath.Base(path))
}

func TestLoadYaml(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, YamlName)
	writeFile(t, path, "include:\n  - \"lib/*.lua\"\nnamespace: game\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"lib/*.lua"}, cfg.Include)
	require.Equal(t, "game", cfg.Namespace)
	require.Equal(t, path, cfg.Path)
}

func TestDefaultsWithoutFile(t *testing.T) {
	root := t.TempDir()
	cfg, err := Discover(root)
	require.NoError(t, err)
	require.Empty(t, cfg.Path)
	require.Equal(t, []string{"**/*.lua"}, cfg.Include)
	require.Equal(t, trace.LevelOff, cfg.TraceLevel())
}

func TestValidationErrorsCarryPath(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, TomlName)
	writeFile(t, path, "include = [\"[unterminated\"]\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrBadPattern))
	require.Contains(t, err.Error(), path)

	writeFile(t, path, "jobs = -1\n")
	_, err = Load(path)
	require.ErrorIs(t, err, ErrBadJobs)

	writeFile(t, path, "trace = \"loud\"\n")
	_, err = Load(path)
	require.Error(t, err)
}

func TestFilesHonourExcludes(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"a.lua", "lib/b.lua", "lib/vendor/c.lua", "notes.txt"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(rel)), "")
	}
	cfg := Default(root)
	cfg.Exclude = []string{"**/vendor/**"}

	files, err := cfg.Files()
	require.NoError(t, err)
	rel := make([]string, len(files))
	for i, f := range files {
		rel[i] = cfg.Rel(f)
	}
	if diff := cmp.Diff([]string{"a.lua", "lib/b.lua"}, rel); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
}
