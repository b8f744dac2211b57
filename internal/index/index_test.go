package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"luasema/internal/parser"
	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/types"
)

func analyze(t *testing.T, idx *Index, ds *source.DocSet, uri, src string) *symbols.Table {
	t.Helper()
	doc := ds.PutVirtual(uri, src, 0)
	tree := parser.Parse(doc, parser.Options{})
	require.Empty(t, tree.Errors)
	batch := idx.NewBatch(doc.ID)
	tab := symbols.Build(tree, doc.ID, symbols.Options{Sink: batch})
	idx.Remove(doc.ID)
	idx.PutTable(tab)
	idx.Apply(batch)
	return tab
}

func memberNames(ms []Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func TestApplyIndexesDocumentFacts(t *testing.T) {
	idx := New()
	ds := source.NewDocSet()
	tab := analyze(t, idx, ds, "mem://a.lua", `
---@class Point : Shape
---@field x number
---@field y number
local Point = {}

counter = 0
`)

	require.Equal(t, []string{"x", "y"}, memberNames(idx.MembersOf(types.NamedOwner("Point"))))
	require.Equal(t, []string{"Point"}, idx.SubTypes.Get("Shape"))
	require.Len(t, idx.TypeDefs.Get("Point"), 1)

	refs := idx.Globals.Get("counter")
	require.Len(t, refs, 1)
	d := idx.Decl(refs[0])
	require.NotNil(t, d)
	require.Equal(t, "counter", d.Name)
	require.Equal(t, tab.Doc, refs[0].Doc)

	st := idx.Stats()
	require.Equal(t, 1, st.Docs)
	require.Equal(t, 1, st.TypeDefs)
}

func TestReservedNamesAreNeverNamedOwners(t *testing.T) {
	idx := New("vector")
	b := idx.NewBatch(1)
	b.AddMember(types.NamedOwner("string"), symbols.Member{Name: "trim"})
	b.AddMember(types.NamedOwner("vector"), symbols.Member{Name: "len"})
	b.AddMember(types.NamedOwner("Custom"), symbols.Member{Name: "run"})
	idx.Apply(b)

	require.False(t, idx.Members.Has(types.NamedOwner("string")))
	require.Equal(t, []string{"trim"}, memberNames(idx.Members.Get(types.GlobalOwner("string"))))
	require.Equal(t, []string{"len"}, memberNames(idx.MembersOf(types.NamedOwner("vector"))))
	require.Equal(t, []string{"run"}, memberNames(idx.Members.Get(types.NamedOwner("Custom"))))
}

func TestRemoveLeavesOtherDocumentsIntact(t *testing.T) {
	idx := New()
	ds := source.NewDocSet()
	a := analyze(t, idx, ds, "mem://a.lua", "---@class (partial) Foo\n---@field a integer\nlocal Foo = {}\nshared = 1\n")
	b := analyze(t, idx, ds, "mem://b.lua", "---@class (partial) Foo\n---@field b integer\nlocal Foo = {}\nshared = 2\n")

	idx.Remove(a.Doc)
	snapshot := idx.Members.Entries(types.NamedOwner("Foo"))
	idx.Remove(a.Doc)

	require.Equal(t, snapshot, idx.Members.Entries(types.NamedOwner("Foo")))
	require.Equal(t, []string{"b"}, memberNames(idx.MembersOf(types.NamedOwner("Foo"))))
	require.Len(t, idx.Globals.Get("shared"), 1)
	require.Nil(t, idx.Table(a.Doc))
	require.NotNil(t, idx.Table(b.Doc))
	require.Equal(t, []source.DocID{b.Doc}, idx.Docs())

	idx.Remove(b.Doc)
	require.Zero(t, idx.Members.Len())
	require.Zero(t, idx.Globals.Len())
	require.Zero(t, idx.TypeDefs.Len())
}

func TestBatchReplaysDeclarationsFirst(t *testing.T) {
	idx := New()
	b := idx.NewBatch(1)
	b.AddMember(types.NamedOwner("T"), symbols.Member{Name: "impl"})
	b.AddMember(types.NamedOwner("T"), symbols.Member{Name: "decl", Declared: true})
	require.Equal(t, 2, b.Len())

	idx.Apply(b)
	require.Equal(t, []string{"decl", "impl"}, memberNames(idx.Members.Get(types.NamedOwner("T"))))
}
