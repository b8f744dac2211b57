package typemgr

import (
	"strings"

	"github.com/dghubble/trie"
)

// nsTrie indexes records by fully qualified name, one node per namespace
// segment.
type nsTrie struct {
	t *trie.PathTrie
}

func newNSTrie() *nsTrie {
	return &nsTrie{t: trie.NewPathTrieWithConfig(&trie.PathTrieConfig{Segmenter: dotSegmenter})}
}

func (n *nsTrie) get(fqn string) *Record {
	v := n.t.Get(fqn)
	if v == nil {
		return nil
	}
	return v.(*Record)
}

func (n *nsTrie) put(r *Record) { n.t.Put(r.Name, r) }

func (n *nsTrie) delete(fqn string) { n.t.Delete(fqn) }

// walk visits every record.
func (n *nsTrie) walk(fn func(*Record)) {
	_ = n.t.Walk(func(_ string, v interface{}) error {
		fn(v.(*Record))
		return nil
	})
}

// dotSegmenter segments "a.b.c" as ("a", 1), (".b", 3), (".c", -1) without
// allocating.
func dotSegmenter(path string, start int) (segment string, next int) {
	if len(path) == 0 || start < 0 || start > len(path)-1 {
		return "", -1
	}
	end := strings.IndexByte(path[start+1:], '.')
	if end == -1 {
		return path[start:], -1
	}
	return path[start : start+end+1], start + end + 1
}

// namespaceOf returns the part of fqn before its last dot.
func namespaceOf(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[:i]
	}
	return ""
}
