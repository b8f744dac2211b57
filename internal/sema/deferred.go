package sema

import (
	"luasema/internal/symbols"
	"luasema/internal/syntax"
	"luasema/internal/types"
)

// ResolveDeferred attaches every deferred member assignment of tab to the
// owner its prefix expression resolves to, and reports each attachment to
// sink. Annotated assignments become declarations, the rest
// implementations; an exact type takes neither as a declaration, so
// `---@type` cannot open it up. tab must already be stored in the index. It returns the
// number of attached members.
func (in *Inferrer) ResolveDeferred(tab *symbols.Table, sink symbols.Sink) int {
	attached := 0
	for _, def := range tab.Deferred {
		d := tab.Decl(def.Decl)
		target := tab.Syntax.Node(def.Node)
		if d == nil || target == nil {
			continue
		}
		prefix := target.Child(0)
		owner, ok := in.OwnerOf(in.Infer(tab, prefix))
		if !ok {
			owner, ok = in.globalFallback(tab, prefix)
		}
		if !ok {
			continue
		}
		owner = in.idx.Owner(owner)
		d.Owner = owner
		in.attach(owner, d.Name, tab.Ref(def.Decl))
		sink.AddMember(owner, symbols.Member{
			Name:     d.Name,
			Decl:     def.Decl,
			Elem:     d.Span.Element(),
			Declared: def.Annotated && !in.exact(owner),
		})
		attached++
	}
	return attached
}

func (in *Inferrer) exact(owner types.Owner) bool {
	if !owner.IsNamed() {
		return false
	}
	rec := in.mgr.Record(owner.Name())
	return rec != nil && rec.Exact()
}

// globalFallback keys assignments through an unresolved bare name to that
// global: `M.x = 1` where M is defined in a document not analyzed yet.
func (in *Inferrer) globalFallback(tab *symbols.Table, prefix syntax.NodeID) (types.Owner, bool) {
	n := tab.Syntax.Node(prefix)
	if n == nil || n.Kind != syntax.NodeName {
		return "", false
	}
	if id, ok := tab.Refs[prefix]; ok && !tab.Decl(id).Has(symbols.DeclGlobal) {
		return "", false
	}
	return types.GlobalOwner(n.Text), true
}

func (in *Inferrer) attach(owner types.Owner, name string, ref symbols.DeclRef) {
	members := in.pending[owner]
	if members == nil {
		members = make(map[string]symbols.DeclRef)
		in.pending[owner] = members
	}
	if _, ok := members[name]; !ok {
		members[name] = ref
	}
	// типы, выведенные до присоединения, могли устареть
	clear(in.memo)
}
