package index

import (
	"slices"

	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/types"
)

// Member is a member entry of an owner bucket.
type Member struct {
	Name     string
	Ref      symbols.DeclRef
	Elem     source.ElementID
	Declared bool
}

// TypeDef is a type-definition entry.
type TypeDef struct {
	symbols.TypeDef
	Ref symbols.DeclRef
}

// Supers is one element's list of super types.
type Supers struct {
	Types []*types.Type
	Elem  source.ElementID
}

// Generics is one element's list of generic parameters.
type Generics struct {
	Params []string
	Elem   source.ElementID
}

// Overload is an @overload signature.
type Overload struct {
	Sig  *types.Type
	Elem source.ElementID
}

// Index is the workspace-wide store of facts contributed by documents. Every
// entry is tagged with its document, so re-analysis is Remove(doc) followed
// by Apply. The index is not safe for concurrent use; the workspace
// serialises access.
type Index struct {
	Members   *MultiMap[types.Owner, Member]
	Globals   *MultiMap[string, symbols.DeclRef]
	Supers    *MultiMap[string, Supers]
	SubTypes  *MultiMap[string, string] // super name as written -> sub type fqn
	TypeDefs  *MultiMap[string, TypeDef]
	Generics  *MultiMap[string, Generics]
	Bases     *MultiMap[string, *types.Type]
	Operators *MultiMap[string, symbols.Operator]
	Overloads *MultiMap[string, Overload]
	// ElementOwner maps a member's syntax element to the owner it was
	// attached to.
	ElementOwner *MultiMap[source.ElementID, types.Owner]
	GlobalTypes  *MultiMap[string, *types.Type]

	tables   map[source.DocID]*symbols.Table
	reserved map[string]struct{}
}

// New creates an empty index. Built-in type names are always reserved;
// extra adds more.
func New(extra ...string) *Index {
	reserved := make(map[string]struct{})
	for _, name := range types.BuiltinNames() {
		reserved[name] = struct{}{}
	}
	for _, name := range extra {
		reserved[name] = struct{}{}
	}
	return &Index{
		Members:      NewMultiMap[types.Owner, Member](),
		Globals:      NewMultiMap[string, symbols.DeclRef](),
		Supers:       NewMultiMap[string, Supers](),
		SubTypes:     NewMultiMap[string, string](),
		TypeDefs:     NewMultiMap[string, TypeDef](),
		Generics:     NewMultiMap[string, Generics](),
		Bases:        NewMultiMap[string, *types.Type](),
		Operators:    NewMultiMap[string, symbols.Operator](),
		Overloads:    NewMultiMap[string, Overload](),
		ElementOwner: NewMultiMap[source.ElementID, types.Owner](),
		GlobalTypes:  NewMultiMap[string, *types.Type](),
		tables:       make(map[source.DocID]*symbols.Table),
		reserved:     reserved,
	}
}

// Reserved reports whether name may never be a named member owner.
func (idx *Index) Reserved(name string) bool {
	_, ok := idx.reserved[name]
	return ok
}

// Owner rewrites a named owner of a reserved name to its global bucket.
func (idx *Index) Owner(o types.Owner) types.Owner {
	if o.IsNamed() && idx.Reserved(string(o)) {
		return types.GlobalOwner(string(o))
	}
	return o
}

// NewBatch returns an empty batch for doc.
func (idx *Index) NewBatch(doc source.DocID) *Batch {
	return &Batch{doc: doc, reserved: idx.reserved}
}

// Apply commits every fact of b.
func (idx *Index) Apply(b *Batch) {
	b.Replay(&writer{idx: idx, doc: b.doc})
}

// PutTable stores the scope table of a document, replacing the previous one.
func (idx *Index) PutTable(t *symbols.Table) {
	idx.tables[t.Doc] = t
}

// Table returns the scope table of doc or nil.
func (idx *Index) Table(doc source.DocID) *symbols.Table {
	return idx.tables[doc]
}

// Docs returns the documents holding a table, ascending.
func (idx *Index) Docs() []source.DocID {
	out := make([]source.DocID, 0, len(idx.tables))
	for doc := range idx.tables {
		out = append(out, doc)
	}
	slices.Sort(out)
	return out
}

// Decl resolves a cross-document declaration reference.
func (idx *Index) Decl(ref symbols.DeclRef) *symbols.Decl {
	if !ref.IsValid() {
		return nil
	}
	return idx.tables[ref.Doc].Decl(ref.ID)
}

// MembersOf returns the members stored under owner.
func (idx *Index) MembersOf(owner types.Owner) []Member {
	return idx.Members.Get(idx.Owner(owner))
}

// GlobalType returns the union of the types assigned to a global, or nil.
func (idx *Index) GlobalType(name string) *types.Type {
	ts := idx.GlobalTypes.Get(name)
	if len(ts) == 0 {
		return nil
	}
	return types.Union(ts...)
}

// Remove drops every fact doc contributed. Removing an absent document is a
// no-op.
func (idx *Index) Remove(doc source.DocID) {
	idx.Members.Remove(doc)
	idx.Globals.Remove(doc)
	idx.Supers.Remove(doc)
	idx.SubTypes.Remove(doc)
	idx.TypeDefs.Remove(doc)
	idx.Generics.Remove(doc)
	idx.Bases.Remove(doc)
	idx.Operators.Remove(doc)
	idx.Overloads.Remove(doc)
	idx.ElementOwner.Remove(doc)
	idx.GlobalTypes.Remove(doc)
	delete(idx.tables, doc)
}

// Stats summarises the index size.
type Stats struct {
	Docs     int
	Globals  int
	Owners   int
	TypeDefs int
}

func (idx *Index) Stats() Stats {
	return Stats{
		Docs:     len(idx.tables),
		Globals:  idx.Globals.Len(),
		Owners:   idx.Members.Len(),
		TypeDefs: idx.TypeDefs.Len(),
	}
}

// writer stores replayed facts under one document.
type writer struct {
	idx *Index
	doc source.DocID
}

func (w *writer) ref(id symbols.DeclID) symbols.DeclRef {
	return symbols.DeclRef{Doc: w.doc, ID: id}
}

func (w *writer) AddGlobal(name string, decl symbols.DeclID) {
	w.idx.Globals.Add(w.doc, name, w.ref(decl))
}

func (w *writer) AddTypeDef(def symbols.TypeDef) {
	w.idx.TypeDefs.Add(w.doc, def.Name, TypeDef{TypeDef: def, Ref: w.ref(def.Decl)})
}

func (w *writer) AddMember(owner types.Owner, m symbols.Member) {
	owner = w.idx.Owner(owner)
	w.idx.Members.Add(w.doc, owner, Member{Name: m.Name, Ref: w.ref(m.Decl), Elem: m.Elem, Declared: m.Declared})
	if m.Elem.IsValid() {
		w.idx.ElementOwner.Add(w.doc, m.Elem, owner)
	}
}

func (w *writer) AddSupers(name string, supers []*types.Type, elem source.ElementID) {
	w.idx.Supers.Add(w.doc, name, Supers{Types: supers, Elem: elem})
	for _, s := range supers {
		if s.Kind == types.KindNamed || s.Kind == types.KindGeneric {
			w.idx.SubTypes.Add(w.doc, s.Name, name)
		}
	}
}

func (w *writer) AddGenerics(name string, params []string, elem source.ElementID) {
	w.idx.Generics.Add(w.doc, name, Generics{Params: params, Elem: elem})
}

func (w *writer) SetBaseType(name string, base *types.Type, _ source.ElementID) {
	w.idx.Bases.Add(w.doc, name, base)
}

func (w *writer) AddOperator(owner string, op symbols.Operator) {
	w.idx.Operators.Add(w.doc, owner, op)
}

func (w *writer) AddOverload(name string, sig *types.Type, elem source.ElementID) {
	w.idx.Overloads.Add(w.doc, name, Overload{Sig: sig, Elem: elem})
}

func (w *writer) SetGlobalType(name string, t *types.Type) {
	w.idx.GlobalTypes.Add(w.doc, name, t)
}
