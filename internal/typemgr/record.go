package typemgr

import (
	"slices"

	"luasema/internal/index"
	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/types"
)

// Def is one contributing element of a record.
type Def struct {
	Doc   source.DocID
	Ref   symbols.DeclRef
	Elem  source.ElementID
	Attrs []string
}

type (
	memberEntry   = index.Entry[index.Member]
	operatorEntry = index.Entry[symbols.Operator]
	overloadEntry = index.Entry[*types.Type]
)

// Record is everything known about one named type.
type Record struct {
	Name  string // fully qualified
	Kind  symbols.TypeKind
	Attrs []string

	// структурные факты принадлежат MainDoc: документу головного элемента
	Base     *types.Type
	Supers   []*types.Type
	Generics []string
	MainDoc  source.DocID

	Defs         []Def
	Declarations map[string][]memberEntry
	Implements   map[string][]memberEntry
	Operators    []operatorEntry
	Overloads    map[string][]overloadEntry
}

func newRecord(name string, kind symbols.TypeKind, attrs []string) *Record {
	return &Record{
		Name:         name,
		Kind:         kind,
		Attrs:        attrs,
		Declarations: make(map[string][]memberEntry),
		Implements:   make(map[string][]memberEntry),
		Overloads:    make(map[string][]overloadEntry),
	}
}

// Partial reports whether the record may be split across elements.
func (r *Record) Partial() bool { return slices.Contains(r.Attrs, "partial") }

// Exact reports whether the record rejects new duck-typed members.
func (r *Record) Exact() bool { return slices.Contains(r.Attrs, "exact") }

// Type returns a reference to the record's type.
func (r *Record) Type() *types.Type { return types.Named(r.Name, nil) }

// Elements lists the contributing elements.
func (r *Record) Elements() []source.ElementID {
	out := make([]source.ElementID, len(r.Defs))
	for i, d := range r.Defs {
		out[i] = d.Elem
	}
	return out
}

// Declared reports whether a nominal declaration of member name exists.
func (r *Record) Declared(name string) bool {
	return len(r.Declarations[name]) > 0
}

// accepts reports whether an implementation-only member is visible.
func (r *Record) accepts(name string) bool {
	return !r.Exact() || r.Declared(name)
}

func (r *Record) addMember(doc source.DocID, m index.Member) bool {
	e := memberEntry{Doc: doc, Value: m}
	if m.Declared {
		r.Declarations[m.Name] = insertByDoc(r.Declarations[m.Name], e)
		return true
	}
	r.Implements[m.Name] = insertByDoc(r.Implements[m.Name], e)
	return r.accepts(m.Name)
}

// insertByDoc keeps entries ordered by document so the first entry of a
// member does not depend on commit order.
func insertByDoc[V any](entries []index.Entry[V], e index.Entry[V]) []index.Entry[V] {
	i := slices.IndexFunc(entries, func(o index.Entry[V]) bool { return o.Doc > e.Doc })
	if i < 0 {
		return append(entries, e)
	}
	return slices.Insert(entries, i, e)
}

// insertDef keeps Defs ordered by document.
func (r *Record) insertDef(d Def) {
	i := slices.IndexFunc(r.Defs, func(o Def) bool { return o.Doc > d.Doc })
	if i < 0 {
		r.Defs = append(r.Defs, d)
		return
	}
	r.Defs = slices.Insert(r.Defs, i, d)
}

// removeDoc drops what a document other than the head contributed.
func (r *Record) removeDoc(doc source.DocID) {
	r.Defs = slices.DeleteFunc(r.Defs, func(d Def) bool { return d.Doc == doc })
	dropDoc(r.Declarations, doc)
	dropDoc(r.Implements, doc)
	dropDoc(r.Overloads, doc)
	r.Operators = slices.DeleteFunc(r.Operators, func(e operatorEntry) bool { return e.Doc == doc })
}

func dropDoc[V any](m map[string][]index.Entry[V], doc source.DocID) {
	for name, entries := range m {
		entries = slices.DeleteFunc(entries, func(e index.Entry[V]) bool { return e.Doc == doc })
		if len(entries) == 0 {
			delete(m, name)
		} else {
			m[name] = entries
		}
	}
}
