package sema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"luasema/internal/index"
	"luasema/internal/parser"
	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/typemgr"
	"luasema/internal/types"
)

type fixture struct {
	ds  *source.DocSet
	idx *index.Index
	mgr *typemgr.Manager
}

func newFixture() *fixture {
	idx := index.New()
	return &fixture{ds: source.NewDocSet(), idx: idx, mgr: typemgr.New(idx)}
}

// commit runs the same sequence as the workspace: remove, structural facts,
// deferred pass.
func (f *fixture) commit(t *testing.T, uri, src string) *symbols.Table {
	t.Helper()
	doc := f.ds.PutVirtual(uri, src, 0)
	tree := parser.Parse(doc, parser.Options{})
	require.Empty(t, tree.Errors)

	batch := f.idx.NewBatch(doc.ID)
	tab := symbols.Build(tree, doc.ID, symbols.Options{Sink: batch})
	f.idx.Remove(doc.ID)
	f.mgr.Remove(doc.ID)
	f.mgr.Apply(batch)
	f.idx.Apply(batch)
	f.idx.PutTable(tab)

	deferred := f.idx.NewBatch(doc.ID)
	New(f.idx, f.mgr).ResolveDeferred(tab, deferred)
	f.mgr.Apply(deferred)
	f.idx.Apply(deferred)
	return tab
}

// typeOf infers the first declaration named name.
func (f *fixture) typeOf(t *testing.T, tab *symbols.Table, name string) *types.Type {
	t.Helper()
	for _, id := range tab.Decls.IDs() {
		if d := tab.Decl(id); d.Name == name && !d.IsMember() {
			return New(f.idx, f.mgr).DeclType(tab.Ref(id))
		}
	}
	t.Fatalf("no declaration named %q", name)
	return nil
}

func labels(f *fixture, t *testing.T, tab *symbols.Table, names ...string) []string {
	t.Helper()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = f.typeOf(t, tab, n).String()
	}
	return out
}

func memberNames(ms []typemgr.Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func TestInferLiteralsAndOperators(t *testing.T) {
	f := newFixture()
	tab := f.commit(t, "mem://a.lua", `
local a = 1
local b = 1.5
local s = "x"
local sum = a + 1
local q = a / 2
local cat = s .. a
local neg = not a
local len = #s
local either = nil or s
local hex = 0xFF
`)
	require.Equal(t,
		[]string{"integer", "number", "string", "integer", "number", "string", "boolean", "integer", "string", "integer"},
		labels(f, t, tab, "a", "b", "s", "sum", "q", "cat", "neg", "len", "either", "hex"))
}

func TestInferFunctionReturns(t *testing.T) {
	f := newFixture()
	tab := f.commit(t, "mem://a.lua", `
local function pair(x)
  return x, "s"
end
local r1, r2 = pair(1)

---@param n integer
---@return string
local function show(n) end
local shown = show(1)

local function fact(n)
  return fact(n - 1)
end
local rec = fact(3)
`)
	require.Equal(t, "unknown", f.typeOf(t, tab, "r1").String())
	require.Equal(t, "string", f.typeOf(t, tab, "r2").String())
	require.Equal(t, "string", f.typeOf(t, tab, "shown").String())
	require.True(t, f.typeOf(t, tab, "rec").IsUnknown())
}

func TestInferGenericCall(t *testing.T) {
	f := newFixture()
	tab := f.commit(t, "mem://a.lua", `
---@generic T
---@param v T
---@return T[]
local function wrap(v) end
local w = wrap("a")
`)
	require.Equal(t, "string[]", f.typeOf(t, tab, "w").String())
}

func TestInferOverloadByArity(t *testing.T) {
	f := newFixture()
	tab := f.commit(t, "mem://a.lua", `
---@overload fun(a: string, b: string): string
---@param n integer
---@return integer
local function conv(n) end
local one = conv(1)
local two = conv("x", "y")
`)
	require.Equal(t, "integer", f.typeOf(t, tab, "one").String())
	require.Equal(t, "string", f.typeOf(t, tab, "two").String())
}

func TestInferClassMembersAndSelf(t *testing.T) {
	f := newFixture()
	tab := f.commit(t, "mem://a.lua", `
---@class Point
---@field x number
local Point = {}

---@return Point
function Point.new() end

---@class Counter
---@field n integer
local Counter = {}

function Counter:get()
  return self.n
end

local p = Point.new()
local px = p.x
local c = Counter
local v = c:get()
`)
	require.Equal(t, "Point", f.typeOf(t, tab, "p").String())
	require.Equal(t, "number", f.typeOf(t, tab, "px").String())
	require.Equal(t, "integer", f.typeOf(t, tab, "v").String())
	require.Equal(t, []string{"new", "x"}, memberNames(f.mgr.GetMembers(types.Named("Point", nil))))
}

func TestInferOperatorOverloads(t *testing.T) {
	f := newFixture()
	tab := f.commit(t, "mem://a.lua", `
---@class Vec
---@operator add(Vec): Vec
---@operator mul(number): Vec
local Vec = {}

---@type Vec
local a
local s = a + a
local m = a * 2
`)
	require.Equal(t, "Vec", f.typeOf(t, tab, "s").String())
	require.Equal(t, "Vec", f.typeOf(t, tab, "m").String())
}

func TestInferLoopVariables(t *testing.T) {
	f := newFixture()
	tab := f.commit(t, "mem://a.lua", `
---@type string[]
local names = {}
for i, v in ipairs(names) do end

---@type table<string, integer>
local counts = {}
for k, cnt in pairs(counts) do end

for j = 1, 10 do end
for fl = 1, 2, 0.5 do end
`)
	require.Equal(t,
		[]string{"integer", "string", "string", "integer", "integer", "number"},
		labels(f, t, tab, "i", "v", "k", "cnt", "j", "fl"))
}

func TestInferEnumMembers(t *testing.T) {
	f := newFixture()
	tab := f.commit(t, "mem://a.lua", `
---@enum Color
local Color = { Red = 1, Green = 2 }
local c = Color.Red
`)
	require.Equal(t, "Color", f.typeOf(t, tab, "c").String())
}

func TestDeferredAttachesToTableLiterals(t *testing.T) {
	f := newFixture()
	tab := f.commit(t, "mem://a.lua", `
local M = {}
M.a = 1
function M.f() return "x" end
M.sub = {}
M.sub.z = true
return M
`)
	in := New(f.idx, f.mgr)
	m := f.typeOf(t, tab, "M")
	require.Equal(t, types.KindTableLit, m.Kind)
	require.Equal(t, []string{"a", "f", "sub"}, memberNames(in.Members(m)))
	require.Equal(t, "boolean", in.MemberType(in.MemberType(m, "sub"), "z").String())

	for _, def := range tab.Deferred {
		require.True(t, tab.Decl(def.Decl).Owner.IsTable(), "owner of %s", tab.Decl(def.Decl).Name)
	}
}

func TestDeferredPromotesGlobalsToTypes(t *testing.T) {
	f := newFixture()
	f.commit(t, "mem://config.lua", `
---@class Config
Config = {}
Config.load = function() end
`)
	f.commit(t, "mem://other.lua", `
Config.save = function() end
`)
	require.Equal(t, []string{"load", "save"}, memberNames(f.mgr.GetMembers(types.Named("Config", nil))))
	require.False(t, f.idx.Members.Has(types.GlobalOwner("Config")))
}

func TestDeferredFallsBackToGlobalOwner(t *testing.T) {
	f := newFixture()
	f.commit(t, "mem://ext.lua", "ext.helper = function() end\n")
	require.True(t, f.idx.Members.Has(types.GlobalOwner("ext")))

	in := New(f.idx, f.mgr)
	require.Equal(t, []string{"helper"}, memberNames(in.Members(types.GlobalTable("ext"))))
}

func TestDeferredAnnotationDoesNotOpenExactType(t *testing.T) {
	f := newFixture()
	f.commit(t, "mem://foo.lua", `
---@class (exact) Foo
---@field a number
local Foo = {}
Foo.a = 1
---@type number
Foo.b = 1
return Foo
`)
	names := memberNames(f.mgr.GetMembers(types.Named("Foo", nil)))
	require.Contains(t, names, "a")
	require.NotContains(t, names, "b")
	require.False(t, f.mgr.Record("Foo").Declared("b"))
}
