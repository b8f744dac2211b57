package sema

import (
	"cmp"
	"slices"

	"luasema/internal/index"
	"luasema/internal/symbols"
	"luasema/internal/syntax"
	"luasema/internal/typemgr"
	"luasema/internal/types"
)

// MemberType returns the type of member name of t, or Unknown.
func (in *Inferrer) MemberType(t *types.Type, name string) *types.Type {
	t = in.resolve(t)
	switch t.Kind {
	case types.KindUnion:
		var ts []*types.Type
		for _, item := range t.Items {
			if item.Kind != types.KindNil {
				ts = append(ts, in.MemberType(item, name))
			}
		}
		return types.Union(ts...)
	case types.KindObject:
		for _, f := range t.Fields {
			if f.Name == name {
				return f.Type
			}
		}
	case types.KindMap:
		if k := types.Base(t.Key); k.Kind == types.KindString || k.Kind == types.KindAny {
			return t.Value
		}
	case types.KindNamed, types.KindGeneric:
		if rec := in.mgr.FindTypeInfo(t); rec != nil {
			return in.namedMember(rec, t, name)
		}
	case types.KindGlobal:
		if rec := in.mgr.GlobalProxy(t.Name); rec != nil {
			return in.namedMember(rec, rec.Type(), name)
		}
		if ref, ok := in.ownerMember(in.globalOwners(t.Name), name); ok {
			return in.DeclType(ref)
		}
	case types.KindTableLit:
		if ref, ok := in.ownerMember([]types.Owner{types.TableOwner(t.Anchor)}, name); ok {
			return in.DeclType(ref)
		}
	case types.KindString, types.KindLiteral:
		if types.Base(t).Kind != types.KindString {
			break
		}
		if ref, ok := in.ownerMember([]types.Owner{types.GlobalOwner("string")}, name); ok {
			return in.DeclType(ref)
		}
	}
	return types.Unknown
}

func (in *Inferrer) namedMember(rec *typemgr.Record, t *types.Type, name string) *types.Type {
	if ref, ok := in.pendingMember(types.NamedOwner(rec.Name), name); ok && (!rec.Exact() || rec.Declared(name)) {
		return in.memberDeclType(rec, t, ref)
	}
	m, ok := in.mgr.FindMember(rec, name)
	if !ok {
		if m, ok = in.mgr.FindMember(rec, symbols.IndexKey(types.String)); !ok {
			return types.Unknown
		}
	}
	return in.memberDeclType(rec, t, m.Ref)
}

func (in *Inferrer) memberDeclType(rec *typemgr.Record, t *types.Type, ref symbols.DeclRef) *types.Type {
	if d := in.idx.Decl(ref); d.Has(symbols.DeclEnumMember) {
		return rec.Type()
	}
	mt := in.DeclType(ref)
	if t.Kind == types.KindGeneric && len(rec.Generics) > 0 {
		bindings := make(map[string]*types.Type, len(rec.Generics))
		for i, g := range rec.Generics {
			if i < len(t.Items) {
				bindings[g] = t.Items[i]
			}
		}
		mt = types.Substitute(mt, bindings)
	}
	return types.ReplaceSelf(mt, t)
}

// globalOwners lists the buckets holding members of an unannotated global:
// the global itself and the table constructors assigned to it.
func (in *Inferrer) globalOwners(name string) []types.Owner {
	owners := []types.Owner{types.GlobalOwner(name)}
	for _, ref := range in.idx.Globals.Get(name) {
		tab := in.idx.Table(ref.Doc)
		d := tab.Decl(ref.ID)
		if d == nil || d.ValueIndex != 0 || tab.Syntax.Kind(d.Value) != syntax.NodeTableExpr {
			continue
		}
		owners = append(owners, types.TableOwner(tab.Syntax.Span(d.Value).Element()))
	}
	return owners
}

func (in *Inferrer) ownerMember(owners []types.Owner, name string) (symbols.DeclRef, bool) {
	for _, o := range owners {
		if ref, ok := in.pendingMember(o, name); ok {
			return ref, true
		}
		for _, e := range in.idx.Members.Entries(in.idx.Owner(o)) {
			if e.Value.Name == name {
				return e.Value.Ref, true
			}
		}
	}
	return symbols.DeclRef{}, false
}

func (in *Inferrer) pendingMember(owner types.Owner, name string) (symbols.DeclRef, bool) {
	ref, ok := in.pending[in.idx.Owner(owner)][name]
	return ref, ok
}

// Members lists the members of t, one per name, sorted by name.
func (in *Inferrer) Members(t *types.Type) []typemgr.Member {
	t = in.resolve(t)
	switch t.Kind {
	case types.KindNamed, types.KindGeneric:
		return in.mgr.GetMembers(t)
	case types.KindGlobal:
		if rec := in.mgr.GlobalProxy(t.Name); rec != nil {
			return in.mgr.Members(rec)
		}
		return in.collect(in.globalOwners(t.Name))
	case types.KindTableLit:
		return in.collect([]types.Owner{types.TableOwner(t.Anchor)})
	case types.KindString:
		return in.collect([]types.Owner{types.GlobalOwner("string")})
	case types.KindObject:
		out := make([]typemgr.Member, len(t.Fields))
		for i, f := range t.Fields {
			out[i] = typemgr.Member{Member: index.Member{Name: f.Name, Declared: true}}
		}
		return out
	case types.KindUnion:
		seen := make(map[string]struct{})
		var out []typemgr.Member
		for _, item := range t.Items {
			for _, m := range in.Members(item) {
				if _, ok := seen[m.Name]; !ok {
					seen[m.Name] = struct{}{}
					out = append(out, m)
				}
			}
		}
		return out
	}
	return nil
}

func (in *Inferrer) collect(owners []types.Owner) []typemgr.Member {
	seen := make(map[string]struct{})
	var out []typemgr.Member
	for _, o := range owners {
		o = in.idx.Owner(o)
		for _, e := range in.idx.Members.Entries(o) {
			if _, ok := seen[e.Value.Name]; ok {
				continue
			}
			seen[e.Value.Name] = struct{}{}
			out = append(out, typemgr.Member{Member: e.Value, Doc: e.Doc, Owner: string(o)})
		}
	}
	slices.SortFunc(out, func(a, b typemgr.Member) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// OwnerOf returns the member bucket assignments through a value of type t
// go to.
func (in *Inferrer) OwnerOf(t *types.Type) (types.Owner, bool) {
	t = in.resolve(t)
	switch t.Kind {
	case types.KindNamed, types.KindGeneric:
		if rec := in.mgr.FindTypeInfo(t); rec != nil {
			return types.NamedOwner(rec.Name), true
		}
		// тип объявят позже: запись подхватит члены при создании
		return in.idx.Owner(types.NamedOwner(t.Name)), true
	case types.KindGlobal:
		if rec := in.mgr.GlobalProxy(t.Name); rec != nil {
			return types.NamedOwner(rec.Name), true
		}
		return types.GlobalOwner(t.Name), true
	case types.KindTableLit:
		return types.TableOwner(t.Anchor), true
	}
	return "", false
}
