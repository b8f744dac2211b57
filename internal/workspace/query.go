package workspace

import (
	"slices"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"luasema/internal/sema"
	"luasema/internal/symbols"
	"luasema/internal/syntax"
	"luasema/internal/token"
	"luasema/internal/typemgr"
	"luasema/internal/types"
)

// DeclInfo describes a declaration visible at a position.
type DeclInfo struct {
	Name     string
	Kind     protocol.SymbolKind
	Flags    []string
	Type     *types.Type
	Location protocol.Location
}

// MemberInfo describes a resolved member of a type.
type MemberInfo struct {
	Name     string
	Owner    string
	Type     *types.Type
	Declared bool
	Location protocol.Location
}

// TypeInfo describes a named type.
type TypeInfo struct {
	Name      string
	Kind      string
	Attrs     []string
	Generics  []string
	Supers    []string
	Base      *types.Type
	Locations []protocol.Location
}

// GlobalInfo describes a global variable.
type GlobalInfo struct {
	Name      string
	Type      *types.Type
	Locations []protocol.Location
}

// GetDeclarationsBefore lists the declarations visible at pos, most
// shadowing first, one per name.
func (w *Workspace) GetDeclarationsBefore(u uri.URI, pos protocol.Position) ([]DeclInfo, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	tab, doc, err := w.committed(u)
	if err != nil {
		return nil, err
	}
	in := sema.New(w.idx, w.mgr)
	ids := tab.VisibleAt(offsetOf(doc, pos))
	out := make([]DeclInfo, 0, len(ids))
	for _, id := range ids {
		d := tab.Decl(id)
		loc, _ := w.spanLocation(d.Span)
		out = append(out, DeclInfo{
			Name:     d.Name,
			Kind:     w.symbolKind(d),
			Flags:    d.Flags.Strings(),
			Type:     in.DeclType(tab.Ref(id)),
			Location: loc,
		})
	}
	return out, nil
}

// InferTypeAt returns the type of the expression or binding at pos.
func (w *Workspace) InferTypeAt(u uri.URI, pos protocol.Position) (*types.Type, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	tab, doc, err := w.committed(u)
	if err != nil {
		return nil, err
	}
	in := sema.New(w.idx, w.mgr)
	node := tab.Syntax.NodeAt(offsetOf(doc, pos))
	if id, ok := tab.Bindings[node]; ok {
		return in.DeclType(tab.Ref(id)), nil
	}
	if expr := exprAt(tab.Syntax, node); expr.IsValid() {
		return types.First(in.Infer(tab, expr)), nil
	}
	return types.Unknown, nil
}

// exprAt climbs from node to the nearest expression. The key of a.b stands
// for the whole index expression.
func exprAt(tree *syntax.Tree, node syntax.NodeID) syntax.NodeID {
	for node.IsValid() {
		n := tree.Node(node)
		if n.Kind == syntax.NodeString && n.Op == token.Ident {
			node = n.Parent
			continue
		}
		if n.Kind.IsExpr() && n.Kind != syntax.NodeTableField {
			return node
		}
		if n.Kind.IsStat() {
			break
		}
		node = n.Parent
	}
	return syntax.NoNodeID
}

// GetMembers lists the members of a named type or global table.
func (w *Workspace) GetMembers(name string) []MemberInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()

	in := sema.New(w.idx, w.mgr)
	t := w.typeRef(name)
	members := in.Members(t)
	out := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		loc, _ := w.declLocation(m.Ref)
		out = append(out, MemberInfo{
			Name:     m.Name,
			Owner:    ownerLabel(m),
			Type:     in.MemberType(t, m.Name),
			Declared: m.Declared,
			Location: loc,
		})
	}
	return out
}

func ownerLabel(m typemgr.Member) string {
	return types.Owner(m.Owner).Name()
}

// typeRef is a named reference when a type of that name exists, otherwise
// the global table of that name.
func (w *Workspace) typeRef(name string) *types.Type {
	if rec := w.mgr.Find(name, nil); rec != nil {
		return rec.Type()
	}
	if t, ok := types.Builtin(name); ok {
		return t
	}
	return types.GlobalTable(name)
}

// FindTypeInfo looks a type up by fully qualified name.
func (w *Workspace) FindTypeInfo(name string) (TypeInfo, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	rec := w.mgr.Find(name, nil)
	if rec == nil {
		return TypeInfo{}, false
	}
	info := TypeInfo{
		Name:     rec.Name,
		Kind:     rec.Kind.String(),
		Attrs:    rec.Attrs,
		Generics: rec.Generics,
		Base:     rec.Base,
	}
	for _, s := range rec.Supers {
		info.Supers = append(info.Supers, s.String())
	}
	for _, def := range rec.Defs {
		if loc, ok := w.declLocation(def.Ref); ok {
			info.Locations = append(info.Locations, loc)
		}
	}
	return info, true
}

// QuerySupers returns the resolved direct super types of name.
func (w *Workspace) QuerySupers(name string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	rec := w.mgr.Find(name, nil)
	if rec == nil {
		return nil
	}
	return recordNames(w.mgr.Supers(rec))
}

// QuerySubTypes returns the types that list name as a direct super.
func (w *Workspace) QuerySubTypes(name string) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	rec := w.mgr.Find(name, nil)
	if rec == nil {
		return nil
	}
	return recordNames(w.mgr.SubTypes(rec))
}

func recordNames(recs []*typemgr.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

// Types lists every named type, sorted by name.
func (w *Workspace) Types() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return recordNames(w.mgr.Records())
}

// GetAllGlobalInfos lists every global with its type, sorted by name.
func (w *Workspace) GetAllGlobalInfos() []GlobalInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.globalInfos(sema.New(w.idx, w.mgr))
}

func (w *Workspace) globalInfos(in *sema.Inferrer) []GlobalInfo {
	names := w.idx.Globals.Keys()
	slices.Sort(names)
	out := make([]GlobalInfo, 0, len(names))
	for _, name := range names {
		out = append(out, GlobalInfo{
			Name:      name,
			Type:      in.GlobalType(name),
			Locations: w.declLocations(w.idx.Globals.Get(name)),
		})
	}
	return out
}

// DefinitionAt resolves the name or member access at pos to the locations
// of its declarations.
func (w *Workspace) DefinitionAt(u uri.URI, pos protocol.Position) ([]protocol.Location, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	tab, doc, err := w.committed(u)
	if err != nil {
		return nil, err
	}
	node := tab.Syntax.NodeAt(offsetOf(doc, pos))
	n := tab.Syntax.Node(node)
	if n == nil {
		return nil, nil
	}
	if id, ok := tab.Refs[node]; ok {
		return w.declLocations([]symbols.DeclRef{w.origin(tab, id)}), nil
	}
	if id, ok := tab.Bindings[node]; ok {
		if d := tab.Decl(id); !d.IsMember() {
			return w.declLocations([]symbols.DeclRef{w.origin(tab, id)}), nil
		}
	}
	switch {
	case n.Kind == syntax.NodeName:
		// глобальная, объявленная в другом документе
		return w.declLocations(w.idx.Globals.Get(n.Text)), nil
	case n.Kind == syntax.NodeString && n.Op == token.Ident:
		parent := tab.Syntax.Node(n.Parent)
		if parent == nil || parent.Kind != syntax.NodeIndexExpr {
			break
		}
		in := sema.New(w.idx, w.mgr)
		prefix := types.First(in.Infer(tab, parent.Child(0)))
		for _, m := range in.Members(prefix) {
			if m.Name == n.Text {
				return w.declLocations([]symbols.DeclRef{m.Ref}), nil
			}
		}
	}
	return nil, nil
}

// origin follows re-binding assignments back to the declaration that
// introduced the name.
func (w *Workspace) origin(tab *symbols.Table, id symbols.DeclID) symbols.DeclRef {
	chain := tab.Chain(id)
	for i, cur := range chain {
		d := tab.Decl(cur)
		if !d.Has(symbols.DeclAssign) || i == len(chain)-1 {
			return tab.Ref(cur)
		}
	}
	return tab.Ref(id)
}

// symbolKind maps a declaration to the closest LSP symbol kind.
func (w *Workspace) symbolKind(d *symbols.Decl) protocol.SymbolKind {
	switch {
	case d.Has(symbols.DeclTypeDecl):
		rec := w.mgr.FindTypeInfo(d.Type)
		if rec == nil {
			return protocol.SymbolKindClass
		}
		switch rec.Kind {
		case symbols.TypeInterface:
			return protocol.SymbolKindInterface
		case symbols.TypeEnum:
			return protocol.SymbolKindEnum
		case symbols.TypeAlias:
			return protocol.SymbolKindTypeParameter
		default:
			return protocol.SymbolKindClass
		}
	case d.Has(symbols.DeclGeneric):
		return protocol.SymbolKindTypeParameter
	case d.Has(symbols.DeclEnumMember):
		return protocol.SymbolKindEnumMember
	case d.Has(symbols.DeclMethod):
		return protocol.SymbolKindMethod
	case d.IsMember() && d.Has(symbols.DeclFunction):
		return protocol.SymbolKindMethod
	case d.IsMember():
		return protocol.SymbolKindField
	case d.Has(symbols.DeclFunction):
		return protocol.SymbolKindFunction
	default:
		return protocol.SymbolKindVariable
	}
}
