// Package sema infers best-effort expression types over the workspace index
// and resolves the member attachments the scope builder deferred.
package sema

import (
	"strings"

	"luasema/internal/index"
	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/syntax"
	"luasema/internal/typemgr"
	"luasema/internal/types"
)

const maxDepth = 48

type nodeRef struct {
	doc  source.DocID
	node syntax.NodeID
}

// Inferrer computes expression types. It memoizes declaration types, so one
// Inferrer must not outlive a mutation of the index it reads.
type Inferrer struct {
	idx *index.Index
	mgr *typemgr.Manager

	depth    int
	active   map[symbols.DeclRef]struct{}
	closures map[nodeRef]struct{}
	memo     map[symbols.DeclRef]*types.Type
	// members attached by the running deferred pass, not yet in the index
	pending map[types.Owner]map[string]symbols.DeclRef
}

// New creates an Inferrer over the committed workspace state.
func New(idx *index.Index, mgr *typemgr.Manager) *Inferrer {
	return &Inferrer{
		idx:      idx,
		mgr:      mgr,
		active:   make(map[symbols.DeclRef]struct{}),
		closures: make(map[nodeRef]struct{}),
		memo:     make(map[symbols.DeclRef]*types.Type),
		pending:  make(map[types.Owner]map[string]symbols.DeclRef),
	}
}

// Infer returns the type of expression node of tab. Unresolvable
// expressions yield types.Unknown.
func (in *Inferrer) Infer(tab *symbols.Table, node syntax.NodeID) *types.Type {
	if tab == nil || !node.IsValid() || in.depth >= maxDepth {
		return types.Unknown
	}
	in.depth++
	defer func() { in.depth-- }()
	return in.infer(tab, node).OrUnknown()
}

func (in *Inferrer) infer(tab *symbols.Table, node syntax.NodeID) *types.Type {
	n := tab.Syntax.Node(node)
	if n == nil {
		return types.Unknown
	}
	switch n.Kind {
	case syntax.NodeNil:
		return types.Nil
	case syntax.NodeTrue, syntax.NodeFalse:
		return types.Boolean
	case syntax.NodeNumber:
		return numberType(n.Text)
	case syntax.NodeString:
		return types.String
	case syntax.NodeName:
		return in.nameType(tab, node, n)
	case syntax.NodeParenExpr:
		return types.First(in.Infer(tab, n.Child(0)))
	case syntax.NodeIndexExpr:
		return in.indexType(tab, n)
	case syntax.NodeCallExpr:
		return in.callType(tab, n)
	case syntax.NodeClosure:
		return in.closureType(tab, node)
	case syntax.NodeTableExpr:
		if t := tab.TableTypes[node]; t != nil {
			return t
		}
		return types.TableLit(n.Span.Element())
	case syntax.NodeBinaryExpr:
		return in.binaryType(tab, n)
	case syntax.NodeUnaryExpr:
		return in.unaryType(tab, n)
	default:
		return types.Unknown
	}
}

func numberType(text string) *types.Type {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") {
		if strings.ContainsAny(lower[2:], ".p") {
			return types.Number
		}
		return types.Integer
	}
	if strings.ContainsAny(lower, ".e") {
		return types.Number
	}
	return types.Integer
}

func (in *Inferrer) nameType(tab *symbols.Table, node syntax.NodeID, n *syntax.Node) *types.Type {
	if id, ok := tab.Refs[node]; ok {
		return in.DeclType(tab.Ref(id))
	}
	if id, ok := tab.Bindings[node]; ok {
		return in.DeclType(tab.Ref(id))
	}
	return in.GlobalType(n.Text)
}

// DeclType returns the declared type of a declaration, or the type of its
// initializer. Recursive definitions resolve to Unknown.
func (in *Inferrer) DeclType(ref symbols.DeclRef) *types.Type {
	if t, ok := in.memo[ref]; ok {
		return t
	}
	if _, busy := in.active[ref]; busy {
		return types.Unknown
	}
	in.active[ref] = struct{}{}
	t := in.declType(ref).OrUnknown()
	delete(in.active, ref)
	in.memo[ref] = t
	return t
}

func (in *Inferrer) declType(ref symbols.DeclRef) *types.Type {
	tab := in.idx.Table(ref.Doc)
	d := tab.Decl(ref.ID)
	if d == nil {
		return types.Unknown
	}
	switch {
	case d.Type != nil:
		return d.Type
	case d.Has(symbols.DeclSelf):
		if owner, ok := tab.SelfOwner[d.Stat]; ok {
			return in.Infer(tab, owner)
		}
		return types.Unknown
	case d.Has(symbols.DeclForRange):
		return in.forRangeType(tab, d)
	}
	if d.Has(symbols.DeclAssign) {
		// объявленный тип переживает переприсваивание
		for _, id := range tab.Chain(d.Prev) {
			if p := tab.Decl(id); p.Type != nil && !p.Has(symbols.DeclTypeDecl) {
				return p.Type
			}
		}
	}
	if !d.Value.IsValid() {
		return types.Unknown
	}
	t := types.Nth(in.Infer(tab, d.Value), d.ValueIndex)
	if d.Has(symbols.DeclGlobal) && t.Kind == types.KindTableLit {
		return types.GlobalTable(d.Name)
	}
	return t
}

// GlobalType returns the type of a global name: the named type it proxies
// to, an explicitly assigned type, or the union of its assignments.
func (in *Inferrer) GlobalType(name string) *types.Type {
	if rec := in.mgr.GlobalProxy(name); rec != nil {
		return rec.Type()
	}
	if t := in.idx.GlobalType(name); t != nil {
		return t
	}
	refs := in.idx.Globals.Get(name)
	if len(refs) == 0 {
		return types.Unknown
	}
	ts := make([]*types.Type, 0, len(refs))
	for _, ref := range refs {
		ts = append(ts, in.DeclType(ref))
	}
	return types.Union(ts...)
}

func (in *Inferrer) forRangeType(tab *symbols.Table, d *symbols.Decl) *types.Type {
	st := tab.Syntax.Node(d.Stat)
	if st == nil {
		return types.Unknown
	}
	if st.Kind == syntax.NodeForNumStat {
		exprs := st.Children[1 : len(st.Children)-1]
		for _, e := range exprs {
			if t := types.Base(in.Infer(tab, e)); t.Kind != types.KindInteger {
				return types.Number
			}
		}
		return types.Integer
	}
	if t, ok := in.pairsType(tab, d.Value, d.ValueIndex); ok {
		return t
	}
	iter := types.First(in.Infer(tab, d.Value))
	if iter.Kind == types.KindSignature {
		return types.Nth(types.TupleOf(iter.Returns...), d.ValueIndex)
	}
	return types.Unknown
}

// pairsType handles `for k, v in pairs(t)` and `ipairs(t)`.
func (in *Inferrer) pairsType(tab *symbols.Table, call syntax.NodeID, i int) (*types.Type, bool) {
	n := tab.Syntax.Node(call)
	if n == nil || n.Kind != syntax.NodeCallExpr {
		return nil, false
	}
	fn := n.Child(0)
	name := tab.Syntax.Text(fn)
	if tab.Syntax.Kind(fn) != syntax.NodeName || (name != "pairs" && name != "ipairs") || in.shadowed(tab, fn) {
		return nil, false
	}
	args := tab.Syntax.Children(n.Child(1))
	if len(args) == 0 {
		return types.Unknown, true
	}
	t := in.resolve(in.Infer(tab, args[0]))
	switch {
	case i == 0 && name == "ipairs":
		return types.Integer, true
	case i == 0:
		return keyType(t), true
	case i == 1:
		return valueType(t), true
	default:
		return types.Unknown, true
	}
}

// shadowed reports whether a name resolves to a user declaration.
func (in *Inferrer) shadowed(tab *symbols.Table, name syntax.NodeID) bool {
	if _, ok := tab.Refs[name]; ok {
		return true
	}
	return in.idx.Globals.Has(tab.Syntax.Text(name))
}

func keyType(t *types.Type) *types.Type {
	switch t.Kind {
	case types.KindArray:
		return types.Integer
	case types.KindMap:
		return t.Key
	default:
		return types.Unknown
	}
}

func valueType(t *types.Type) *types.Type {
	switch t.Kind {
	case types.KindArray:
		return t.Elem
	case types.KindMap:
		return t.Value
	default:
		return types.Unknown
	}
}

// resolve follows aliases of a named reference.
func (in *Inferrer) resolve(t *types.Type) *types.Type {
	if t == nil {
		return types.Unknown
	}
	if t.Kind == types.KindNamed || t.Kind == types.KindGeneric {
		return in.mgr.ResolveAlias(t)
	}
	return t
}

func (in *Inferrer) indexType(tab *symbols.Table, n *syntax.Node) *types.Type {
	prefix := in.Infer(tab, n.Child(0))
	if key := tab.Syntax.Node(n.Child(1)); key != nil && key.Kind == syntax.NodeString {
		return in.MemberType(prefix, key.Text)
	}
	return in.indexByType(prefix, in.Infer(tab, n.Child(1)))
}

func (in *Inferrer) indexByType(t, key *types.Type) *types.Type {
	t = in.resolve(t)
	switch t.Kind {
	case types.KindUnion:
		var ts []*types.Type
		for _, item := range t.Items {
			if item.Kind != types.KindNil {
				ts = append(ts, in.indexByType(item, key))
			}
		}
		return types.Union(ts...)
	case types.KindArray:
		return t.Elem
	case types.KindMap:
		return t.Value
	case types.KindTuple:
		return types.Union(t.Items...)
	case types.KindNamed, types.KindGeneric:
		return in.MemberType(t, symbols.IndexKey(types.Base(key)))
	}
	return types.Unknown
}

// closureType returns a closure's signature. Without @return the returns
// are inferred from the body's return statements.
func (in *Inferrer) closureType(tab *symbols.Table, node syntax.NodeID) *types.Type {
	sig := tab.Signatures[node]
	if sig == nil {
		return types.Function
	}
	if sig.Returns != nil {
		return sig
	}
	key := nodeRef{doc: tab.Doc, node: node}
	if _, busy := in.closures[key]; busy {
		return sig
	}
	in.closures[key] = struct{}{}
	defer delete(in.closures, key)

	cp := *sig
	cp.Returns = in.inferReturns(tab, tab.Syntax.Child(node, 1))
	return &cp
}

func (in *Inferrer) inferReturns(tab *symbols.Table, block syntax.NodeID) []*types.Type {
	var rows [][]*types.Type
	tab.Syntax.Walk(block, func(id syntax.NodeID, n *syntax.Node) bool {
		switch n.Kind {
		case syntax.NodeClosure:
			return false
		case syntax.NodeReturnStat:
			values := tab.Syntax.Children(n.Child(0))
			row := make([]*types.Type, 0, len(values))
			for i, v := range values {
				t := in.Infer(tab, v)
				if i == len(values)-1 && t.Kind == types.KindTuple {
					row = append(row, t.Items...)
					continue
				}
				row = append(row, types.First(t))
			}
			rows = append(rows, row)
			return false
		}
		return true
	})
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	out := make([]*types.Type, width)
	for i := range out {
		var col []*types.Type
		for _, r := range rows {
			if i < len(r) {
				col = append(col, r[i])
			} else {
				col = append(col, types.Nil)
			}
		}
		out[i] = types.Union(col...)
	}
	return out
}
