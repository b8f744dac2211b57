package workspace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"luasema/internal/config"
)

const (
	uriA = uri.URI("mem://a.lua")
	uriB = uri.URI("mem://b.lua")
)

func open(t *testing.T, w *Workspace, u uri.URI, src string) {
	t.Helper()
	require.True(t, w.Open(u, src, 1), "open %s", u)
}

// at returns the position of the n-th occurrence (0-based) of needle.
func at(t *testing.T, src, needle string, n int) protocol.Position {
	t.Helper()
	off := -1
	for i := 0; i <= n; i++ {
		next := strings.Index(src[off+1:], needle)
		require.GreaterOrEqual(t, next, 0, "needle %q #%d", needle, n)
		off += next + 1
	}
	line := strings.Count(src[:off], "\n")
	col := off - (strings.LastIndex(src[:off], "\n") + 1)
	return protocol.Position{Line: uint32(line), Character: uint32(col)}
}

func declNames(ds []DeclInfo) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name
	}
	return out
}

func memberNames(ms []MemberInfo) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func TestSupersededAnalysisIsDiscarded(t *testing.T) {
	w := New()
	old := w.Analyze(uriA, "local old = 1\n", 1)
	fresh := w.Analyze(uriA, "local fresh = 1\n", 2)
	require.Equal(t, old.Doc.ID, fresh.Doc.ID)

	require.True(t, w.OnDocumentAnalyzed(fresh))
	require.False(t, w.OnDocumentAnalyzed(old))

	decls, err := w.GetDeclarationsBefore(uriA, protocol.Position{Line: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"fresh"}, declNames(decls))
}

func TestOlderVersionNeverLowersLatest(t *testing.T) {
	w := New()
	fresh := w.Analyze(uriA, "local fresh = 1\n", 5)
	stale := w.Analyze(uriA, "local stale = 1\n", 3)
	require.False(t, w.OnDocumentAnalyzed(stale))
	require.True(t, w.OnDocumentAnalyzed(fresh))
}

func TestClosedDocumentDropsInFlightAnalysis(t *testing.T) {
	w := New()
	open(t, w, uriA, "Shared = 1\n")
	pending := w.Analyze(uriA, "Shared = 2\nOther = 3\n", 2)

	require.NoError(t, w.Close(uriA))
	require.False(t, w.OnDocumentAnalyzed(pending))
	require.Empty(t, w.Documents())
	require.Empty(t, w.GetAllGlobalInfos())

	_, err := w.GetDeclarationsBefore(uriA, protocol.Position{})
	require.ErrorIs(t, err, ErrUnknownDocument)
	require.ErrorIs(t, w.Close(uriA), ErrUnknownDocument)
	_, err = w.Update(uriA, "x = 1\n", 3)
	require.ErrorIs(t, err, ErrUnknownDocument)
}

func TestUpdateReplacesDocumentFacts(t *testing.T) {
	w := New()
	open(t, w, uriA, "First = 1\n")
	ok, err := w.Update(uriA, "Second = 1\n", 2)
	require.NoError(t, err)
	require.True(t, ok)

	globals := w.GetAllGlobalInfos()
	require.Len(t, globals, 1)
	require.Equal(t, "Second", globals[0].Name)
	require.Equal(t, "integer", globals[0].Type.String())
}

func TestShadowedLocalsAreHidden(t *testing.T) {
	w := New()
	src := "local x = 1\nlocal y = 2\nlocal x = \"s\"\n"
	open(t, w, uriA, src)

	decls, err := w.GetDeclarationsBefore(uriA, protocol.Position{Line: 3})
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, declNames(decls))
	require.Equal(t, "string", decls[0].Type.String())
	require.Equal(t, protocol.SymbolKindVariable, decls[0].Kind)
	require.Equal(t, uint32(2), decls[0].Location.Range.Start.Line)

	// before the second x only the first is visible
	decls, err = w.GetDeclarationsBefore(uriA, at(t, src, "local x", 1))
	require.NoError(t, err)
	require.Equal(t, []string{"y", "x"}, declNames(decls))
	require.Equal(t, "integer", decls[1].Type.String())
}

func TestPartialTypeMergesAcrossDocuments(t *testing.T) {
	w := New()
	open(t, w, uriA, "---@class (partial) Foo\n---@field a integer\nlocal Foo = {}\n")
	open(t, w, uriB, "---@class (partial) Foo\n---@field b string\nlocal Foo = {}\n")

	members := w.GetMembers("Foo")
	require.Equal(t, []string{"a", "b"}, memberNames(members))
	require.Equal(t, "string", members[1].Type.String())

	info, ok := w.FindTypeInfo("Foo")
	require.True(t, ok)
	require.Equal(t, "class", info.Kind)
	require.Len(t, info.Locations, 2)

	require.NoError(t, w.Close(uriA))
	require.Equal(t, []string{"b"}, memberNames(w.GetMembers("Foo")))

	require.NoError(t, w.Close(uriB))
	_, ok = w.FindTypeInfo("Foo")
	require.False(t, ok)
}

func TestRemovingTwiceIsNoop(t *testing.T) {
	w := New()
	open(t, w, uriA, "---@class (partial) Foo\n---@field a integer\nlocal Foo = {}\n")
	open(t, w, uriB, "---@class (partial) Foo\n---@field b integer\nlocal Foo = {}\n")

	id := w.Analyze(uriA, "", 9).Doc.ID
	w.OnDocumentRemoved(id)
	before := w.Snapshot()
	w.OnDocumentRemoved(id)
	require.Empty(t, cmp.Diff(before, w.Snapshot()))
	require.Equal(t, []string{"b"}, memberNames(w.GetMembers("Foo")))
}

func TestSuperCyclesTerminate(t *testing.T) {
	w := New()
	open(t, w, uriA, `
---@class A : B
---@field a integer
local A = {}

---@class B : A
---@field b integer
local B = {}
`)
	require.Equal(t, []string{"a", "b"}, memberNames(w.GetMembers("A")))
	require.Equal(t, []string{"B"}, w.QuerySupers("A"))
	require.Equal(t, []string{"B"}, w.QuerySubTypes("A"))
	require.Nil(t, w.QuerySupers("Missing"))
}

func TestInheritedMembersKeepOwner(t *testing.T) {
	w := New()
	open(t, w, uriA, `
---@class Base
---@field x integer
---@field y integer
local Base = {}

---@class Derived : Base
---@field x string
local Derived = {}
`)
	members := w.GetMembers("Derived")
	require.Equal(t, []string{"x", "y"}, memberNames(members))
	require.Equal(t, "Derived", members[0].Owner)
	require.Equal(t, "string", members[0].Type.String())
	require.Equal(t, "Base", members[1].Owner)
	require.Equal(t, []string{"Derived"}, w.QuerySubTypes("Base"))
	require.Equal(t, []string{"Base", "Derived"}, w.Types())
}

func TestGlobalsPromoteToDeclaredType(t *testing.T) {
	w := New()
	open(t, w, uri.URI("mem://config.lua"), "---@class Config\nConfig = {}\nConfig.load = function() end\n")
	open(t, w, uri.URI("mem://other.lua"), "Config.save = function() end\n")

	require.Equal(t, []string{"load", "save"}, memberNames(w.GetMembers("Config")))
}

func TestUnannotatedGlobalTableMembers(t *testing.T) {
	w := New()
	open(t, w, uriA, "ext.helper = function() end\n")
	require.Equal(t, []string{"helper"}, memberNames(w.GetMembers("ext")))
	require.Empty(t, w.GetMembers("nothing"))
}

func TestInferTypeAt(t *testing.T) {
	w := New()
	src := `
---@class Point
---@field x number
local Point = {}

---@return Point
function Point.new() end

local p = Point.new()
local px = p.x
`
	open(t, w, uriA, src)

	typ, err := w.InferTypeAt(uriA, at(t, src, "p =", 0))
	require.NoError(t, err)
	require.Equal(t, "Point", typ.String())

	typ, err = w.InferTypeAt(uriA, at(t, src, "x\n", 0))
	require.NoError(t, err)
	require.Equal(t, "number", typ.String())

	typ, err = w.InferTypeAt(uriA, at(t, src, "px", 0))
	require.NoError(t, err)
	require.Equal(t, "number", typ.String())
}

func TestDefinitionAt(t *testing.T) {
	w := New()
	lib := "function helper() end\n"
	src := "local count = 1\nprint(count)\nhelper()\n"
	open(t, w, uriA, lib)
	open(t, w, uriB, src)

	locs, err := w.DefinitionAt(uriB, at(t, src, "count", 1))
	require.NoError(t, err)
	require.Len(t, locs, 1)
	require.Equal(t, protocol.DocumentURI(uriB), locs[0].URI)
	require.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 6},
		End:   protocol.Position{Line: 0, Character: 11},
	}, locs[0].Range)

	locs, err = w.DefinitionAt(uriB, at(t, src, "helper", 0))
	require.NoError(t, err)
	require.Len(t, locs, 1)
	require.Equal(t, protocol.DocumentURI(uriA), locs[0].URI)
	require.Equal(t, uint32(0), locs[0].Range.Start.Line)

	locs, err = w.DefinitionAt(uriB, at(t, src, "print", 0))
	require.NoError(t, err)
	require.Empty(t, locs)
}

func TestDocumentSymbolsNestMembers(t *testing.T) {
	w := New()
	src := `
---@class Point
---@field x number
local Point = {}

function Point.new() end

local function helper() end
`
	open(t, w, uriA, src)

	syms, err := w.DocumentSymbols(uriA)
	require.NoError(t, err)

	byName := make(map[string]protocol.DocumentSymbol)
	for _, s := range syms {
		byName[s.Name] = s
	}
	require.Len(t, syms, 2)
	require.Equal(t, protocol.SymbolKindFunction, byName["helper"].Kind)

	point := byName["Point"]
	require.Equal(t, protocol.SymbolKindClass, point.Kind)
	var children []string
	for _, c := range point.Children {
		children = append(children, c.Name)
	}
	require.ElementsMatch(t, []string{"x", "new"}, children)
}

func TestRecommitKeepsPartialTypeStructure(t *testing.T) {
	const srcA = `---@class Base
---@field base integer
local Base = {}

---@class (partial) Foo : Base
---@field a integer
local Foo = {}
`
	const srcB = `---@class (partial) Foo
---@field b integer
local Foo = {}
`
	w := New()
	open(t, w, uriA, srcA)
	open(t, w, uriB, srcB)
	require.Equal(t, []string{"Base"}, w.QuerySupers("Foo"))
	require.Equal(t, []string{"a", "b", "base"}, memberNames(w.GetMembers("Foo")))

	for version := int32(2); version <= 3; version++ {
		ok, err := w.Update(uriA, srcA, version)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []string{"Base"}, w.QuerySupers("Foo"), "version %d", version)
		require.Equal(t, []string{"a", "b", "base"}, memberNames(w.GetMembers("Foo")), "version %d", version)
	}

	// без головного файла структура переходит к оставшемуся
	require.NoError(t, w.Close(uriA))
	require.Empty(t, w.QuerySupers("Foo"))
	require.Equal(t, []string{"b"}, memberNames(w.GetMembers("Foo")))
}

func TestLoadDirResolvesAcrossFileOrder(t *testing.T) {
	const use = "local f = make()\nf.extra = 1\n"
	const def = `---@class Foo
---@field a integer
local Foo = {}

---@return Foo
function make() return Foo end
`
	load := func(files map[string]string) []string {
		root := t.TempDir()
		for rel, text := range files {
			require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte(text), 0o600))
		}
		cfg := config.Default(root)
		w := New(WithConfig(cfg))
		res, err := w.LoadDir(context.Background(), cfg, nil)
		require.NoError(t, err)
		require.Equal(t, 2, res.Committed)
		return memberNames(w.GetMembers("Foo"))
	}

	defFirst := load(map[string]string{"a_def.lua": def, "b_use.lua": use})
	useFirst := load(map[string]string{"a_use.lua": use, "b_def.lua": def})
	require.Equal(t, []string{"a", "extra"}, defFirst)
	require.Equal(t, defFirst, useFirst)
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"a.lua":        "---@class (partial) Foo\n---@field a integer\nlocal Foo = {}\n",
		"lib/b.lua":    "---@class (partial) Foo\n---@field b integer\nlocal Foo = {}\nGlobalB = 1\n",
		"lib/c.lua":    "GlobalC = \"c\"\n",
		"vendor/x.lua": "Vendored = true\n",
		"notes/readme": "not lua\n",
	}
	for rel, text := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	}
	cfg := config.Default(root)
	cfg.Exclude = []string{"vendor/**"}
	cfg.Jobs = 2

	var (
		mu     sync.Mutex
		events []Event
	)
	sink := SinkFunc(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	w := New(WithConfig(cfg))
	res, err := w.LoadDir(context.Background(), cfg, sink)
	require.NoError(t, err)
	require.Equal(t, 3, res.Committed)
	require.Empty(t, res.Failed)
	require.Len(t, w.Documents(), 3)

	require.Equal(t, []string{"a", "b"}, memberNames(w.GetMembers("Foo")))
	var globals []string
	for _, g := range w.GetAllGlobalInfos() {
		globals = append(globals, g.Name)
	}
	require.Equal(t, []string{"GlobalB", "GlobalC"}, globals)

	done := 0
	for _, ev := range events {
		if ev.Stage == StageParse && ev.Status == StatusDone {
			done++
		}
	}
	require.Equal(t, 3, done)
	require.Equal(t, 3, w.Stats().Docs)
}

func TestLoadDirHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.lua"), []byte("A = 1\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().LoadDir(ctx, config.Default(root), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotEncodings(t *testing.T) {
	w := New()
	open(t, w, uriA, `
---@class Base
---@field id integer
local Base = {}

---@class (exact) User : Base
---@field name string
local User = {}

Registry = {}
`)
	snap := w.Snapshot()
	require.Equal(t, 2, snap.Stats.Types)
	require.Len(t, snap.Types, 2)
	require.Equal(t, "User", snap.Types[1].Name)
	require.Equal(t, []string{"Base"}, snap.Types[1].Supers)

	for _, format := range []Format{FormatJSON, FormatMsgpack} {
		var buf bytes.Buffer
		require.NoError(t, snap.Encode(&buf, format))
		got, err := DecodeSnapshot(&buf, format)
		require.NoError(t, err)
		if diff := cmp.Diff(snap, got, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("%s round trip mismatch (-want +got):\n%s", format, diff)
		}
	}
	require.Error(t, snap.Encode(&bytes.Buffer{}, Format("xml")))
}
