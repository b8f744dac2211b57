// Package typemgr is the authority for named-type resolution: it merges the
// type facts staged by documents into one record per fully qualified name
// and answers member, super and alias queries over them.
package typemgr

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"luasema/internal/index"
	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/types"
)

// Manager owns the named-type records. It reads member and structural facts
// of documents back from the index when a record is (re)created, so records
// never depend on the order documents were committed in. Not safe for
// concurrent use.
type Manager struct {
	idx     *index.Index
	trie    *nsTrie
	records map[string]*Record
	touched map[source.DocID]map[string]struct{}
	// global name -> named type it proxies to
	proxies *index.MultiMap[string, *types.Type]
	log     zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for rejected definitions.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// New creates a manager over idx.
func New(idx *index.Index, opts ...Option) *Manager {
	m := &Manager{
		idx:     idx,
		trie:    newNSTrie(),
		records: make(map[string]*Record),
		touched: make(map[source.DocID]map[string]struct{}),
		proxies: index.NewMultiMap[string, *types.Type](),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) touch(doc source.DocID, name string) {
	names := m.touched[doc]
	if names == nil {
		names = make(map[string]struct{})
		m.touched[doc] = names
	}
	names[name] = struct{}{}
}

// Record returns the record of a fully qualified name.
func (m *Manager) Record(fqn string) *Record {
	return m.records[fqn]
}

// Len reports the number of records.
func (m *Manager) Len() int { return len(m.records) }

// AddTypeDefinition registers a contributing element of a named type. The
// element of the lowest document heads the record: it fixes the kind and the
// partial attribute and owns the structural facts. Other elements merge only
// when both they and the head are partial; the rest are rejected. The result
// depends on which elements exist, not on the order they were added in.
func (m *Manager) AddTypeDefinition(doc source.DocID, def symbols.TypeDef) bool {
	d := Def{Doc: doc, Ref: symbols.DeclRef{Doc: doc, ID: def.Decl}, Elem: def.Elem, Attrs: def.Attrs}
	rec := m.records[def.Name]
	if rec != nil && rec.MainDoc.IsValid() && doc < rec.MainDoc {
		m.supersede(rec, doc, def)
		return true
	}
	if rec == nil {
		rec = newRecord(def.Name, def.Kind, def.Attrs)
		rec.Defs = append(rec.Defs, d)
		rec.MainDoc = doc
		m.records[def.Name] = rec
		m.trie.put(rec)
		m.touch(doc, def.Name)
		m.adopt(rec)
		return true
	}
	if !rec.Partial() || !def.Partial() {
		m.log.Debug().Str("type", def.Name).Uint32("doc", uint32(doc)).Msg("type redefinition ignored")
		return false
	}
	rec.insertDef(d)
	if !rec.MainDoc.IsValid() {
		rec.MainDoc = doc
	}
	m.touch(doc, def.Name)
	return true
}

// supersede makes def of doc the new head of rec. The record is recreated
// and the other documents' elements are re-applied after it, as if doc had
// been committed first. The structural facts of doc follow in its batch.
func (m *Manager) supersede(rec *Record, doc source.DocID, def symbols.TypeDef) {
	m.drop(rec)
	m.AddTypeDefinition(doc, def)
	for _, e := range m.sortedDefs(def.Name) {
		if e.Doc != doc {
			m.AddTypeDefinition(e.Doc, e.Value.TypeDef)
		}
	}
}

// sortedDefs returns the indexed definitions of name by document.
func (m *Manager) sortedDefs(name string) []index.Entry[index.TypeDef] {
	defs := slices.Clone(m.idx.TypeDefs.Entries(name))
	slices.SortStableFunc(defs, func(a, b index.Entry[index.TypeDef]) int {
		return cmp.Compare(a.Doc, b.Doc)
	})
	return defs
}

// adopt pulls the members, operators and overloads already indexed under
// rec's name into a freshly created record.
func (m *Manager) adopt(rec *Record) {
	for _, e := range m.idx.Members.Entries(types.NamedOwner(rec.Name)) {
		rec.addMember(e.Doc, e.Value)
		m.touch(e.Doc, rec.Name)
	}
	for _, e := range m.idx.Operators.Entries(rec.Name) {
		rec.Operators = append(rec.Operators, e)
		m.touch(e.Doc, rec.Name)
	}
	prefix := rec.Name + "."
	for _, path := range m.idx.Overloads.Keys() {
		member, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(member, ".") {
			continue
		}
		for _, e := range m.idx.Overloads.Entries(path) {
			rec.Overloads[member] = append(rec.Overloads[member], overloadEntry{Doc: e.Doc, Value: e.Value.Sig})
			m.touch(e.Doc, rec.Name)
		}
	}
}

// structural reports whether doc may write rec's structural facts.
func (m *Manager) structural(doc source.DocID, name string) *Record {
	rec := m.records[name]
	if rec == nil || rec.MainDoc != doc {
		return nil
	}
	return rec
}

// AddMemberDeclarations attaches nominal members to a named type.
func (m *Manager) AddMemberDeclarations(doc source.DocID, fqn string, members ...index.Member) {
	rec := m.records[fqn]
	if rec == nil {
		return
	}
	for _, mem := range members {
		mem.Declared = true
		rec.addMember(doc, mem)
	}
	m.touch(doc, fqn)
}

// AddMemberImplementations attaches duck-typed members to a named type. It
// reports whether all of them are visible: an exact type only shows an
// implementation whose name is nominally declared.
func (m *Manager) AddMemberImplementations(doc source.DocID, fqn string, members ...index.Member) bool {
	rec := m.records[fqn]
	if rec == nil {
		return false
	}
	ok := true
	for _, mem := range members {
		mem.Declared = false
		if !rec.addMember(doc, mem) {
			ok = false
		}
	}
	m.touch(doc, fqn)
	return ok
}

// AddSupers sets the super types; only the structural owner may.
func (m *Manager) AddSupers(doc source.DocID, fqn string, supers []*types.Type) {
	if rec := m.structural(doc, fqn); rec != nil {
		rec.Supers = append(rec.Supers, supers...)
	}
}

// AddGenericParams sets the generic parameters; only the structural owner may.
func (m *Manager) AddGenericParams(doc source.DocID, fqn string, params []string) {
	if rec := m.structural(doc, fqn); rec != nil && len(rec.Generics) == 0 {
		rec.Generics = params
	}
}

// SetBaseType sets the alias target or enum value type; only the structural
// owner may.
func (m *Manager) SetBaseType(doc source.DocID, fqn string, base *types.Type) {
	if rec := m.structural(doc, fqn); rec != nil && rec.Base == nil {
		rec.Base = base
	}
}

// AddOperator records an @operator overload of a named type.
func (m *Manager) AddOperator(doc source.DocID, fqn string, op symbols.Operator) {
	rec := m.records[fqn]
	if rec == nil {
		return
	}
	rec.Operators = append(rec.Operators, operatorEntry{Doc: doc, Value: op})
	m.touch(doc, fqn)
}

// AddOverload records an @overload signature of the function at path
// "Type.member". Overloads of free functions live only in the index.
func (m *Manager) AddOverload(doc source.DocID, path string, sig *types.Type) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return
	}
	rec := m.records[path[:i]]
	if rec == nil {
		return
	}
	member := path[i+1:]
	rec.Overloads[member] = append(rec.Overloads[member], overloadEntry{Doc: doc, Value: sig})
	m.touch(doc, rec.Name)
}

// SetGlobalTypeSymbol makes member lookups on the global name go to the
// named type; members already recorded on the bare global are visible as
// implementations of that type.
func (m *Manager) SetGlobalTypeSymbol(doc source.DocID, name string, t *types.Type) {
	if t == nil || (t.Kind != types.KindNamed && t.Kind != types.KindGeneric) {
		return
	}
	m.proxies.Add(doc, name, t)
}

// GlobalProxy returns the record a global name is typed as, or nil.
func (m *Manager) GlobalProxy(name string) *Record {
	for _, t := range m.proxies.Get(name) {
		if rec := m.FindTypeInfo(t); rec != nil {
			return rec
		}
	}
	return nil
}

// Remove drops every contribution of doc. Call it after the index has
// dropped doc: a record whose head element was in doc is rebuilt from the
// definitions other documents still hold in the index. Removing an absent
// document is a no-op.
func (m *Manager) Remove(doc source.DocID) {
	m.proxies.Remove(doc)
	names, ok := m.touched[doc]
	if !ok {
		return
	}
	delete(m.touched, doc)
	for name := range names {
		rec := m.records[name]
		if rec == nil {
			continue
		}
		if rec.MainDoc == doc || !rec.MainDoc.IsValid() {
			m.drop(rec)
			m.rebuild(name)
			continue
		}
		rec.removeDoc(doc)
	}
}

func (m *Manager) drop(rec *Record) {
	delete(m.records, rec.Name)
	m.trie.delete(rec.Name)
}

// rebuild recreates a record from the definitions left in the index.
func (m *Manager) rebuild(name string) {
	for _, e := range m.sortedDefs(name) {
		m.AddTypeDefinition(e.Doc, e.Value.TypeDef)
	}
	if rec := m.records[name]; rec != nil {
		m.restoreStructure(rec)
	}
}

// restoreStructure reloads the structural facts of rec's head document from
// the index.
func (m *Manager) restoreStructure(rec *Record) {
	owner := rec.MainDoc
	rec.Base, rec.Supers, rec.Generics = nil, nil, nil
	for _, e := range m.idx.Supers.Entries(rec.Name) {
		if e.Doc == owner {
			rec.Supers = append(rec.Supers, e.Value.Types...)
		}
	}
	for _, e := range m.idx.Generics.Entries(rec.Name) {
		if e.Doc == owner && len(rec.Generics) == 0 {
			rec.Generics = e.Value.Params
		}
	}
	for _, e := range m.idx.Bases.Entries(rec.Name) {
		if e.Doc == owner && rec.Base == nil {
			rec.Base = e.Value
		}
	}
}

// Apply feeds a batch to the manager. Call it before the index applies the
// same batch: a record created here adopts what other documents indexed,
// and the batch's own members arrive through the replay.
func (m *Manager) Apply(b *index.Batch) {
	b.Replay(&sink{m: m, doc: b.Doc()})
}

// sink adapts the manager to symbols.Sink for one document.
type sink struct {
	m   *Manager
	doc source.DocID
}

func (s *sink) AddGlobal(string, symbols.DeclID) {}

func (s *sink) AddTypeDef(def symbols.TypeDef) {
	s.m.AddTypeDefinition(s.doc, def)
}

func (s *sink) AddMember(owner types.Owner, mem symbols.Member) {
	entry := index.Member{
		Name:     mem.Name,
		Ref:      symbols.DeclRef{Doc: s.doc, ID: mem.Decl},
		Elem:     mem.Elem,
		Declared: mem.Declared,
	}
	if !owner.IsNamed() {
		// члены голых глобалов видны через прокси при разрешении
		return
	}
	if mem.Declared {
		s.m.AddMemberDeclarations(s.doc, owner.Name(), entry)
		return
	}
	if !s.m.AddMemberImplementations(s.doc, owner.Name(), entry) {
		s.m.log.Debug().Str("type", owner.Name()).Str("member", mem.Name).Msg("member hidden by exact type")
	}
}

func (s *sink) AddSupers(name string, supers []*types.Type, _ source.ElementID) {
	s.m.AddSupers(s.doc, name, supers)
}

func (s *sink) AddGenerics(name string, params []string, _ source.ElementID) {
	s.m.AddGenericParams(s.doc, name, params)
}

func (s *sink) SetBaseType(name string, base *types.Type, _ source.ElementID) {
	s.m.SetBaseType(s.doc, name, base)
}

func (s *sink) AddOperator(owner string, op symbols.Operator) {
	s.m.AddOperator(s.doc, owner, op)
}

func (s *sink) AddOverload(name string, sig *types.Type, _ source.ElementID) {
	s.m.AddOverload(s.doc, name, sig)
}

func (s *sink) SetGlobalType(name string, t *types.Type) {
	s.m.SetGlobalTypeSymbol(s.doc, name, t)
}
