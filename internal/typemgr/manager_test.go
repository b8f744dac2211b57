package typemgr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"luasema/internal/index"
	"luasema/internal/parser"
	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/types"
)

type env struct {
	ds  *source.DocSet
	idx *index.Index
	mgr *Manager
}

func newEnv() *env {
	idx := index.New()
	return &env{ds: source.NewDocSet(), idx: idx, mgr: New(idx)}
}

func (e *env) load(t *testing.T, uri, src string) source.DocID {
	t.Helper()
	doc := e.ds.PutVirtual(uri, src, 0)
	tree := parser.Parse(doc, parser.Options{})
	if len(tree.Errors) != 0 {
		t.Fatalf("unexpected parse errors: %+v", tree.Errors)
	}
	batch := e.idx.NewBatch(doc.ID)
	tab := symbols.Build(tree, doc.ID, symbols.Options{Sink: batch})
	e.remove(doc.ID)
	e.mgr.Apply(batch)
	e.idx.Apply(batch)
	e.idx.PutTable(tab)
	return doc.ID
}

func (e *env) remove(doc source.DocID) {
	e.idx.Remove(doc)
	e.mgr.Remove(doc)
}

func names(ms []Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func named(name string) *types.Type { return types.Named(name, nil) }

func TestPartialTypesMergeAcrossDocuments(t *testing.T) {
	e := newEnv()
	a := e.load(t, "mem://a.lua", "---@class (partial) Foo\n---@field a integer\nlocal Foo = {}\n")
	b := e.load(t, "mem://b.lua", "---@class (partial) Foo\n---@field b integer\nlocal Foo = {}\n")

	require.Equal(t, []string{"a", "b"}, names(e.mgr.GetMembers(named("Foo"))))
	require.Len(t, e.mgr.Record("Foo").Defs, 2)

	e.remove(a)
	require.Equal(t, []string{"b"}, names(e.mgr.GetMembers(named("Foo"))))
	require.Equal(t, b, e.mgr.Record("Foo").MainDoc)

	e.remove(b)
	require.Nil(t, e.mgr.Record("Foo"))
	require.Nil(t, e.mgr.GetMembers(named("Foo")))
}

func TestNonPartialRedefinitionIsRejected(t *testing.T) {
	e := newEnv()
	a := e.load(t, "mem://a.lua", "---@class Foo : Base\nlocal Foo = {}\n")
	b := e.load(t, "mem://b.lua", "---@class Foo : Other\nlocal Foo = {}\n")

	rec := e.mgr.Record("Foo")
	require.Len(t, rec.Defs, 1)
	require.Equal(t, a, rec.MainDoc)
	require.Equal(t, "Base", rec.Supers[0].Name)

	// partial fragment cannot join a sealed type either
	ok := e.mgr.AddTypeDefinition(b, symbols.TypeDef{Name: "Foo", Attrs: []string{"partial"}})
	require.False(t, ok)

	e.remove(a)
	rec = e.mgr.Record("Foo")
	require.NotNil(t, rec, "record rebuilt from the remaining definition")
	require.Equal(t, b, rec.MainDoc)
	require.Len(t, rec.Supers, 1)
	require.Equal(t, "Other", rec.Supers[0].Name)
}

func TestStructuralFactsFollowMainDocument(t *testing.T) {
	e := newEnv()
	a := e.load(t, "mem://a.lua", "---@class (partial) Foo : A\nlocal Foo = {}\n")
	b := e.load(t, "mem://b.lua", "---@class (partial) Foo : B\nlocal Foo = {}\n")

	rec := e.mgr.Record("Foo")
	require.Len(t, rec.Supers, 1)
	require.Equal(t, "A", rec.Supers[0].Name)

	e.remove(a)
	rec = e.mgr.Record("Foo")
	require.Equal(t, b, rec.MainDoc)
	require.Len(t, rec.Supers, 1)
	require.Equal(t, "B", rec.Supers[0].Name)
}

func TestRecommittingHeadKeepsStructure(t *testing.T) {
	const srcA = "---@class Base\n---@field base integer\nlocal Base = {}\n---@class (partial) Foo : Base\n---@field a integer\nlocal Foo = {}\n"
	const srcB = "---@class (partial) Foo\n---@field b integer\nlocal Foo = {}\n"

	e := newEnv()
	a := e.load(t, "mem://a.lua", srcA)
	e.load(t, "mem://b.lua", srcB)
	want := []string{"a", "b", "base"}
	require.Equal(t, want, names(e.mgr.GetMembers(named("Foo"))))

	for range 2 {
		require.Equal(t, a, e.load(t, "mem://a.lua", srcA))
		rec := e.mgr.Record("Foo")
		require.Equal(t, a, rec.MainDoc)
		require.Len(t, rec.Supers, 1)
		require.Equal(t, "Base", rec.Supers[0].Name)
		require.Equal(t, want, names(e.mgr.GetMembers(named("Foo"))))
	}
}

func TestRejectedDuplicateNeverTakesOver(t *testing.T) {
	e := newEnv()
	a := e.load(t, "mem://a.lua", "---@class Foo : Base\nlocal Foo = {}\n")
	e.load(t, "mem://b.lua", "---@enum Foo\nlocal Foo = {}\n")

	e.load(t, "mem://a.lua", "---@class Foo : Base\nlocal Foo = {}\n")
	rec := e.mgr.Record("Foo")
	require.Equal(t, a, rec.MainDoc)
	require.Equal(t, symbols.TypeClass, rec.Kind)
	require.Len(t, rec.Defs, 1)
	require.Len(t, rec.Supers, 1)
}

func TestRecordIgnoresCommitOrder(t *testing.T) {
	files := [][2]string{
		{"mem://a.lua", "---@class (partial) Foo : A\n---@field a integer\nlocal Foo = {}\n"},
		{"mem://b.lua", "---@class (partial) Foo : B\n---@field b integer\nlocal Foo = {}\n"},
		{"mem://c.lua", "---@class Foo : C\nlocal Foo = {}\n"},
	}
	snapshot := func(order ...int) (string, []string, int) {
		e := newEnv()
		for _, f := range files {
			e.ds.Assign(f[0])
		}
		for _, i := range order {
			e.load(t, files[i][0], files[i][1])
		}
		rec := e.mgr.Record("Foo")
		return rec.Supers[0].Name, names(e.mgr.GetMembers(named("Foo"))), len(rec.Defs)
	}

	super, members, defs := snapshot(0, 1, 2)
	require.Equal(t, "A", super)
	require.Equal(t, []string{"a", "b"}, members)
	require.Equal(t, 2, defs)
	for _, order := range [][]int{{2, 1, 0}, {1, 2, 0}, {2, 0, 1}} {
		s, m, d := snapshot(order...)
		require.Equal(t, super, s, "order %v", order)
		require.Equal(t, members, m, "order %v", order)
		require.Equal(t, defs, d, "order %v", order)
	}
}

func TestExactTypeHidesNewImplementations(t *testing.T) {
	e := newEnv()
	e.load(t, "mem://a.lua", "---@class (exact) Foo\n---@field a integer\nlocal Foo = {}\n")
	other := e.ds.Assign("mem://b.lua")

	require.False(t, e.mgr.AddMemberImplementations(other, "Foo", index.Member{Name: "b"}))
	require.True(t, e.mgr.AddMemberImplementations(other, "Foo", index.Member{Name: "a"}))

	rec := e.mgr.Record("Foo")
	require.Equal(t, []string{"a"}, names(e.mgr.Members(rec)))
	_, found := e.mgr.FindMember(rec, "b")
	require.False(t, found)

	e.mgr.Remove(other)
	require.Empty(t, rec.Implements)
}

func TestSuperCyclesTerminate(t *testing.T) {
	e := newEnv()
	e.load(t, "mem://a.lua", `
---@class A : B
---@field a integer
local A = {}

---@class B : A
---@field b integer
local B = {}
`)
	require.Equal(t, []string{"a", "b"}, names(e.mgr.GetMembers(named("A"))))
	require.Equal(t, []string{"b", "a"}, names(e.mgr.GetMembers(named("B"))))
}

func TestMostDerivedMemberWins(t *testing.T) {
	e := newEnv()
	e.load(t, "mem://a.lua", `
---@class Base
---@field x integer
---@field y integer
local Base = {}

---@class Derived : Base
---@field x string
local Derived = {}
`)
	ms := e.mgr.GetMembers(named("Derived"))
	require.Equal(t, []string{"x", "y"}, names(ms))
	require.Equal(t, "Derived", ms[0].Owner)
	require.Equal(t, "Base", ms[1].Owner)

	subs := e.mgr.SubTypes(e.mgr.Record("Base"))
	require.Len(t, subs, 1)
	require.Equal(t, "Derived", subs[0].Name)
}

func TestNamespaceLookupOrder(t *testing.T) {
	e := newEnv()
	e.load(t, "mem://geo.lua", "---@namespace geo\n\n---@class Point\nlocal Point = {}\n")
	e.load(t, "mem://root.lua", "---@class Point\nlocal Point = {}\n")

	inGeo := &types.NameScope{Namespace: "geo"}
	using := &types.NameScope{Namespace: "app", Using: []string{"geo"}}

	require.Equal(t, "geo.Point", e.mgr.FindTypeInfo(types.Named("Point", inGeo)).Name)
	require.Equal(t, "geo.Point", e.mgr.FindTypeInfo(types.Named("Point", using)).Name)
	require.Equal(t, "Point", e.mgr.FindTypeInfo(named("Point")).Name)
	require.Nil(t, e.mgr.FindTypeInfo(named("Missing")))

	if diff := cmp.Diff([]string{"geo"}, e.mgr.Namespaces()); diff != "" {
		t.Fatalf("namespaces mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, e.mgr.TypesIn("geo"), 1)
	require.Len(t, e.mgr.TypesIn(""), 1)
}

func TestAliasResolution(t *testing.T) {
	e := newEnv()
	e.load(t, "mem://a.lua", `
---@alias ID integer
---@alias Key ID
---@alias Loop Loop
`)
	require.Equal(t, types.Integer, e.mgr.ResolveAlias(named("Key")))
	loop := e.mgr.ResolveAlias(named("Loop"))
	require.Equal(t, types.KindNamed, loop.Kind)
}

func TestGlobalProxyMergesGlobalMembers(t *testing.T) {
	e := newEnv()
	e.load(t, "mem://a.lua", "---@class Config\nlocal C = {}\n")

	doc := e.ds.Assign("mem://b.lua")
	b := e.idx.NewBatch(doc)
	b.AddMember(types.GlobalOwner("Config"), symbols.Member{Name: "load"})
	b.SetGlobalType("Config", named("Config"))
	e.mgr.Apply(b)
	e.idx.Apply(b)

	require.Equal(t, "Config", e.mgr.GlobalProxy("Config").Name)
	require.Equal(t, []string{"load"}, names(e.mgr.GetMembers(named("Config"))))

	e.remove(doc)
	require.Nil(t, e.mgr.GlobalProxy("Config"))
	require.Empty(t, e.mgr.GetMembers(named("Config")))
}

func TestRemoveTwiceIsNoop(t *testing.T) {
	e := newEnv()
	a := e.load(t, "mem://a.lua", "---@class (partial) Foo\n---@field a integer\nlocal Foo = {}\n")
	e.load(t, "mem://b.lua", "---@class (partial) Foo\n---@field b integer\nlocal Foo = {}\n")

	e.remove(a)
	before := names(e.mgr.GetMembers(named("Foo")))
	e.remove(a)
	require.Equal(t, before, names(e.mgr.GetMembers(named("Foo"))))
}

func TestDotSegmenter(t *testing.T) {
	var segs []string
	for start := 0; start >= 0; {
		var seg string
		seg, start = dotSegmenter("a.bc.d", start)
		segs = append(segs, seg)
	}
	if diff := cmp.Diff([]string{"a", ".bc", ".d"}, segs); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
}
