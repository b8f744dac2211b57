package workspace

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/syntax"
	"luasema/internal/types"
)

// DocumentSymbols returns the outline of a committed document: chunk-level
// declarations with the members of their tables nested below them.
func (w *Workspace) DocumentSymbols(u uri.URI) ([]protocol.DocumentSymbol, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	tab, doc, err := w.committed(u)
	if err != nil {
		return nil, err
	}

	var (
		out    []protocol.DocumentSymbol
		owners = make(map[types.Owner]int)
	)
	claim := func(o types.Owner, i int) {
		if _, ok := owners[o]; !ok && o != "" {
			owners[o] = i
		}
	}
	// имя, объявленное через @class, не дублируем его local-привязкой
	typed := make(map[syntax.NodeID]string)
	for _, id := range tab.Decls.IDs() {
		d := tab.Decl(id)
		if d.IsMember() || !outlined(tab, d) {
			continue
		}
		if d.Has(symbols.DeclTypeDecl) {
			typed[d.Stat] = d.Name
		} else if name, ok := typed[d.Stat]; ok && name == d.Name && d.Stat.IsValid() {
			continue
		}
		i := len(out)
		out = append(out, w.documentSymbol(tab, doc, d))
		switch {
		case d.Has(symbols.DeclTypeDecl) && d.Type != nil:
			claim(types.NamedOwner(d.Type.Name), i)
		case d.Has(symbols.DeclGlobal):
			claim(types.GlobalOwner(d.Name), i)
		case d.Type != nil && d.Type.Kind == types.KindNamed:
			claim(types.NamedOwner(d.Type.Name), i)
		}
		if d.ValueIndex == 0 && tab.Syntax.Kind(d.Value) == syntax.NodeTableExpr {
			claim(types.TableOwner(tab.Syntax.Span(d.Value).Element()), i)
		}
	}

	for _, id := range tab.Decls.IDs() {
		d := tab.Decl(id)
		if !d.IsMember() || d.Span.Empty() {
			continue
		}
		sym := w.documentSymbol(tab, doc, d)
		if i, ok := owners[d.Owner]; ok {
			out[i].Children = append(out[i].Children, sym)
			continue
		}
		out = append(out, sym)
	}
	return out, nil
}

// outlined reports whether d is written at chunk level and names something a
// reader would look for.
func outlined(tab *symbols.Table, d *symbols.Decl) bool {
	const skip = symbols.DeclParam | symbols.DeclSelf | symbols.DeclGeneric |
		symbols.DeclForRange | symbols.DeclAssign
	if d.Flags&skip != 0 || d.Span.Empty() {
		return false
	}
	for id := d.Scope; id != tab.Root; {
		s := tab.Scope(id)
		if s == nil || s.Kind != symbols.ScopeLocalDecl {
			return false
		}
		id = s.Parent
	}
	return true
}

func (w *Workspace) documentSymbol(tab *symbols.Table, doc *source.Document, d *symbols.Decl) protocol.DocumentSymbol {
	full := d.Span
	if d.Stat.IsValid() {
		full = full.Cover(tab.Syntax.Span(d.Stat))
	}
	sym := protocol.DocumentSymbol{
		Name:           d.Name,
		Kind:           w.symbolKind(d),
		Range:          rangeOf(doc, full),
		SelectionRange: rangeOf(doc, d.Span),
	}
	if d.Type != nil {
		sym.Detail = d.Type.String()
	}
	return sym
}

// Table returns the scope table of a committed document. The table is
// immutable once committed; callers must not modify it.
func (w *Workspace) Table(u uri.URI) (*symbols.Table, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	tab, _, err := w.committed(u)
	return tab, err
}
