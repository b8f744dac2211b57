package index

import (
	"luasema/internal/source"
)

// Entry is one value contributed by a document.
type Entry[V any] struct {
	Doc   source.DocID
	Value V
}

// MultiMap is a keyed multi-map whose entries are tagged by document. It
// keeps a per-document set of touched keys so Remove(doc) only visits the
// buckets that document contributed to.
type MultiMap[K comparable, V any] struct {
	buckets map[K][]Entry[V]
	touched map[source.DocID]map[K]struct{}
}

// NewMultiMap creates an empty map.
func NewMultiMap[K comparable, V any]() *MultiMap[K, V] {
	return &MultiMap[K, V]{
		buckets: make(map[K][]Entry[V]),
		touched: make(map[source.DocID]map[K]struct{}),
	}
}

// Add appends value to the bucket of key. O(1) amortized.
func (m *MultiMap[K, V]) Add(doc source.DocID, key K, value V) {
	m.buckets[key] = append(m.buckets[key], Entry[V]{Doc: doc, Value: value})
	keys := m.touched[doc]
	if keys == nil {
		keys = make(map[K]struct{})
		m.touched[doc] = keys
	}
	keys[key] = struct{}{}
}

// Get returns the values stored under key in insertion order. The slice is
// freshly allocated.
func (m *MultiMap[K, V]) Get(key K) []V {
	bucket := m.buckets[key]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]V, len(bucket))
	for i, e := range bucket {
		out[i] = e.Value
	}
	return out
}

// Entries returns the document-tagged entries under key. READONLY
func (m *MultiMap[K, V]) Entries(key K) []Entry[V] {
	return m.buckets[key]
}

// Has reports whether key has at least one entry.
func (m *MultiMap[K, V]) Has(key K) bool {
	return len(m.buckets[key]) > 0
}

// Keys returns all keys in unspecified order.
func (m *MultiMap[K, V]) Keys() []K {
	out := make([]K, 0, len(m.buckets))
	for k := range m.buckets {
		out = append(out, k)
	}
	return out
}

// KeysOf returns the keys doc contributed to.
func (m *MultiMap[K, V]) KeysOf(doc source.DocID) []K {
	keys := m.touched[doc]
	out := make([]K, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	return out
}

// Len reports the number of non-empty buckets.
func (m *MultiMap[K, V]) Len() int {
	return len(m.buckets)
}

// Remove drops every entry tagged with doc and every bucket left empty.
// Removing an absent document is a no-op.
func (m *MultiMap[K, V]) Remove(doc source.DocID) {
	keys, ok := m.touched[doc]
	if !ok {
		return
	}
	for key := range keys {
		bucket := m.buckets[key]
		kept := bucket[:0]
		for _, e := range bucket {
			if e.Doc != doc {
				kept = append(kept, e)
			}
		}
		// хвост обнуляем, чтобы не держать ссылки
		clear(bucket[len(kept):])
		if len(kept) == 0 {
			delete(m.buckets, key)
		} else {
			m.buckets[key] = kept
		}
	}
	delete(m.touched, doc)
}
