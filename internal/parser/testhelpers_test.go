package parser

import (
	"testing"

	"luasema/internal/source"
	"luasema/internal/syntax"
)

func parseSnippet(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	ds := source.NewDocSet()
	doc := ds.PutVirtual("mem://test.lua", src, 0)
	return Parse(doc, Options{})
}

func mustParse(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	tree := parseSnippet(t, src)
	if len(tree.Errors) != 0 {
		t.Fatalf("unexpected parse errors: %+v", tree.Errors)
	}
	return tree
}

// stmts returns the top-level statements of the chunk.
func stmts(tree *syntax.Tree) []syntax.NodeID {
	block := tree.Child(tree.Root, 0)
	return tree.Children(block)
}

func kindsOf(tree *syntax.Tree, ids []syntax.NodeID) []syntax.NodeKind {
	out := make([]syntax.NodeKind, len(ids))
	for i, id := range ids {
		out[i] = tree.Kind(id)
	}
	return out
}
