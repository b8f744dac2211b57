package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"luasema/internal/version"
	"luasema/internal/workspace"
)

func writeWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, text := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	}
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--ui", "off", "--color", "off", "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

var sample = map[string]string{
	"shapes.lua": `
---@class Shape
---@field name string
local Shape = {}

---@class Circle : Shape
---@field radius number
local Circle = {}

Registry = {}
`,
	"luasema.toml": "include = [\"**/*.lua\"]\nexclude = [\"vendor/**\"]\n",
	"vendor/x.lua": "Vendored = 1\n",
}

func TestGlobalsJSON(t *testing.T) {
	root := writeWorkspace(t, sample)
	out, err := execute(t, "globals", root, "--format", "json")
	require.NoError(t, err)

	var views []globalView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	require.Equal(t, "Registry", views[0].Name)
	require.Equal(t, []string{"shapes.lua:10:1"}, views[0].Locations)
}

func TestMembersJSON(t *testing.T) {
	root := writeWorkspace(t, sample)
	out, err := execute(t, "members", root, "Circle", "--format", "json")
	require.NoError(t, err)

	var views []memberView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	require.Equal(t, "radius", views[0].Name)
	require.Equal(t, "Circle", views[0].Owner)
	require.Equal(t, "name", views[1].Name)
	require.Equal(t, "Shape", views[1].Owner)
	require.Equal(t, "string", views[1].Type)
}

func TestTypeJSON(t *testing.T) {
	root := writeWorkspace(t, sample)
	out, err := execute(t, "type", root, "Shape", "--format", "json")
	require.NoError(t, err)

	var view typeView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Equal(t, "class", view.Kind)
	require.Equal(t, []string{"Circle"}, view.SubTypes)
	require.Len(t, view.Defs, 1)

	_, err = execute(t, "type", root, "Missing", "--format", "json")
	require.Error(t, err)
}

func TestDumpWritesSnapshot(t *testing.T) {
	root := writeWorkspace(t, sample)
	target := filepath.Join(t.TempDir(), "index.msgpack")
	_, err := execute(t, "dump", root, "--format", "msgpack", "--output", target)
	require.NoError(t, err)

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	snap, err := workspace.DecodeSnapshot(f, workspace.FormatMsgpack)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Stats.Documents)
	require.Equal(t, 2, snap.Stats.Types)
}

func TestParsePosition(t *testing.T) {
	pos, err := parsePosition("3:7")
	require.NoError(t, err)
	require.Equal(t, uint32(2), pos.Line)
	require.Equal(t, uint32(6), pos.Character)

	pos, err = parsePosition("5")
	require.NoError(t, err)
	require.Equal(t, uint32(0), pos.Character)

	for _, bad := range []string{"0:1", "x:1", "1:0", "1:y"} {
		_, err := parsePosition(bad)
		require.Error(t, err, bad)
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)

	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, version.Get().Version, info.Version)
	require.Empty(t, info.Commit)
}
