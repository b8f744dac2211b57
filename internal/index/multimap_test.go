package index

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"luasema/internal/source"
)

func TestMultiMapRemoveIsPerDocument(t *testing.T) {
	m := NewMultiMap[string, int]()
	m.Add(1, "a", 10)
	m.Add(2, "a", 20)
	m.Add(1, "b", 11)
	m.Add(2, "c", 21)

	m.Remove(1)

	if diff := cmp.Diff([]int{20}, m.Get("a")); diff != "" {
		t.Fatalf("bucket a mismatch (-want +got):\n%s", diff)
	}
	if m.Has("b") {
		t.Fatalf("expected empty bucket b to be dropped")
	}
	keys := m.Keys()
	sort.Strings(keys)
	if diff := cmp.Diff([]string{"a", "c"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiMapRemoveTwiceIsNoop(t *testing.T) {
	m := NewMultiMap[string, int]()
	m.Add(1, "a", 10)
	m.Add(2, "a", 20)

	m.Remove(1)
	before := m.Entries("a")
	m.Remove(1)
	m.Remove(source.DocID(99))

	if diff := cmp.Diff(before, m.Entries("a")); diff != "" {
		t.Fatalf("second removal changed entries (-want +got):\n%s", diff)
	}
	if len(m.KeysOf(1)) != 0 {
		t.Fatalf("expected touched set of removed document to be cleared")
	}
}
