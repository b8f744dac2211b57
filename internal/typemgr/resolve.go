package typemgr

import (
	"cmp"
	"slices"
	"strings"

	"luasema/internal/index"
	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/types"
)

// Member is a resolved member together with the record it came from.
type Member struct {
	index.Member
	Doc   source.DocID
	Owner string
}

// FindTypeInfo resolves a named type reference: the reference's namespace
// first, then its using namespaces in declaration order, then the root.
func (m *Manager) FindTypeInfo(t *types.Type) *Record {
	if t == nil || (t.Kind != types.KindNamed && t.Kind != types.KindGeneric) {
		return nil
	}
	return m.Find(t.Name, t.Scope)
}

// Find resolves name written in scope.
func (m *Manager) Find(name string, scope *types.NameScope) *Record {
	if scope != nil {
		if scope.Namespace != "" {
			if rec := m.trie.get(types.Qualify(scope.Namespace, name)); rec != nil {
				return rec
			}
		}
		for _, ns := range scope.Using {
			if rec := m.trie.get(types.Qualify(ns, name)); rec != nil {
				return rec
			}
		}
	}
	return m.trie.get(name)
}

// GetMembers returns the members of a named type: its own declarations and
// implementations, then those of its supers depth-first. A name already
// seen on a more derived type hides the inherited one. Cycles in the super
// graph are cut silently.
func (m *Manager) GetMembers(t *types.Type) []Member {
	rec := m.FindTypeInfo(t)
	if rec == nil {
		return nil
	}
	return m.Members(rec)
}

// Members is GetMembers for a resolved record.
func (m *Manager) Members(rec *Record) []Member {
	seen := make(map[string]struct{})
	var out []Member
	m.walkSupers(rec, func(r *Record) bool {
		for _, mem := range m.own(r) {
			if _, ok := seen[mem.Name]; ok {
				continue
			}
			seen[mem.Name] = struct{}{}
			out = append(out, mem)
		}
		return true
	})
	return out
}

// FindMember resolves one member by name along the super chain.
func (m *Manager) FindMember(rec *Record, name string) (Member, bool) {
	var found Member
	ok := false
	m.walkSupers(rec, func(r *Record) bool {
		found, ok = m.ownMember(r, name)
		return !ok
	})
	return found, ok
}

// walkSupers visits rec and its supers depth-first, each record once, until
// fn returns false.
func (m *Manager) walkSupers(rec *Record, fn func(*Record) bool) {
	visited := make(map[*Record]struct{})
	var walk func(r *Record) bool
	walk = func(r *Record) bool {
		if _, ok := visited[r]; ok {
			return true
		}
		visited[r] = struct{}{}
		if !fn(r) {
			return false
		}
		for _, s := range r.Supers {
			if sr := m.FindTypeInfo(s); sr != nil {
				if !walk(sr) {
					return false
				}
			}
		}
		return true
	}
	if rec != nil {
		walk(rec)
	}
}

// own lists rec's visible members, one per name, sorted by name. A nominal
// declaration wins over implementations of the same name.
func (m *Manager) own(r *Record) []Member {
	picked := make(map[string]Member)
	for name, entries := range r.Declarations {
		picked[name] = member(r, entries[0])
	}
	pick := func(e memberEntry) {
		if _, ok := picked[e.Value.Name]; ok || !r.accepts(e.Value.Name) {
			return
		}
		picked[e.Value.Name] = member(r, e)
	}
	for _, entries := range r.Implements {
		for _, e := range entries {
			pick(e)
		}
	}
	for _, e := range m.proxied(r) {
		pick(e)
	}
	out := make([]Member, 0, len(picked))
	for _, mem := range picked {
		out = append(out, mem)
	}
	slices.SortFunc(out, func(a, b Member) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (m *Manager) ownMember(r *Record, name string) (Member, bool) {
	if entries := r.Declarations[name]; len(entries) > 0 {
		return member(r, entries[0]), true
	}
	if !r.accepts(name) {
		return Member{}, false
	}
	if entries := r.Implements[name]; len(entries) > 0 {
		return member(r, entries[0]), true
	}
	for _, e := range m.proxied(r) {
		if e.Value.Name == name {
			return member(r, e), true
		}
	}
	return Member{}, false
}

// proxied returns the members recorded on bare globals typed as r.
func (m *Manager) proxied(r *Record) []memberEntry {
	var out []memberEntry
	candidates := []string{r.Name}
	if i := strings.LastIndexByte(r.Name, '.'); i >= 0 {
		candidates = append(candidates, r.Name[i+1:])
	}
	for _, g := range candidates {
		if !m.proxies.Has(g) || m.GlobalProxy(g) != r {
			continue
		}
		for _, e := range m.idx.Members.Entries(types.GlobalOwner(g)) {
			e.Value.Declared = false
			out = append(out, e)
		}
	}
	return out
}

func member(r *Record, e memberEntry) Member {
	return Member{Member: e.Value, Doc: e.Doc, Owner: r.Name}
}

// Supers returns the resolved direct supers of rec.
func (m *Manager) Supers(rec *Record) []*Record {
	if rec == nil {
		return nil
	}
	var out []*Record
	for _, s := range rec.Supers {
		if sr := m.FindTypeInfo(s); sr != nil {
			out = append(out, sr)
		}
	}
	return out
}

// SubTypes returns the records naming rec as a direct super, sorted.
func (m *Manager) SubTypes(rec *Record) []*Record {
	if rec == nil {
		return nil
	}
	// супертип мог быть записан коротким именем или через using
	keys := []string{rec.Name}
	for rest := rec.Name; ; {
		i := strings.IndexByte(rest, '.')
		if i < 0 {
			break
		}
		rest = rest[i+1:]
		keys = append(keys, rest)
	}
	seen := make(map[*Record]struct{})
	var out []*Record
	for _, key := range keys {
		for _, name := range m.idx.SubTypes.Get(key) {
			sub := m.records[name]
			if sub == nil {
				continue
			}
			if _, ok := seen[sub]; ok {
				continue
			}
			if slices.Contains(m.Supers(sub), rec) {
				seen[sub] = struct{}{}
				out = append(out, sub)
			}
		}
	}
	slices.SortFunc(out, func(a, b *Record) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Operators returns the @operator overloads of op on rec and its supers.
func (m *Manager) Operators(rec *Record, op string) []symbols.Operator {
	var out []symbols.Operator
	m.walkSupers(rec, func(r *Record) bool {
		for _, e := range r.Operators {
			if e.Value.Op == op {
				out = append(out, e.Value)
			}
		}
		return true
	})
	return out
}

// Overloads returns the @overload signatures of rec's member.
func (m *Manager) Overloads(rec *Record, member string) []*types.Type {
	if rec == nil {
		return nil
	}
	entries := rec.Overloads[member]
	out := make([]*types.Type, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// ResolveAlias follows alias records to their target type. Alias cycles
// stop at the first repeated record.
func (m *Manager) ResolveAlias(t *types.Type) *types.Type {
	visited := make(map[*Record]struct{})
	for {
		rec := m.FindTypeInfo(t)
		if rec == nil || rec.Kind != symbols.TypeAlias || rec.Base == nil {
			return t
		}
		if _, ok := visited[rec]; ok {
			return t
		}
		visited[rec] = struct{}{}
		next := rec.Base
		if t.Kind == types.KindGeneric && len(rec.Generics) > 0 {
			bindings := make(map[string]*types.Type, len(rec.Generics))
			for i, g := range rec.Generics {
				if i < len(t.Items) {
					bindings[g] = t.Items[i]
				}
			}
			next = types.Substitute(next, bindings)
		}
		t = next
	}
}

// Namespaces lists every namespace that holds a record, sorted.
func (m *Manager) Namespaces() []string {
	set := make(map[string]struct{})
	m.trie.walk(func(r *Record) {
		for ns := namespaceOf(r.Name); ns != ""; ns = namespaceOf(ns) {
			set[ns] = struct{}{}
		}
	})
	out := make([]string, 0, len(set))
	for ns := range set {
		out = append(out, ns)
	}
	slices.Sort(out)
	return out
}

// TypesIn lists the records declared directly in ns ("" is the root),
// sorted by name.
func (m *Manager) TypesIn(ns string) []*Record {
	var out []*Record
	m.trie.walk(func(r *Record) {
		if namespaceOf(r.Name) == ns {
			out = append(out, r)
		}
	})
	slices.SortFunc(out, func(a, b *Record) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Records lists every record sorted by name.
func (m *Manager) Records() []*Record {
	out := make([]*Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b *Record) int { return cmp.Compare(a.Name, b.Name) })
	return out
}
