package symbols

import (
	"luasema/internal/source"
	"luasema/internal/syntax"
	"luasema/internal/types"
)

// walkBlock walks the statements of block in the current scope. Scopes opened
// by `local` statements stay open to the end of the block.
func (b *builder) walkBlock(block syntax.NodeID) {
	mark := len(b.stack)
	end := b.span(block).End
	for _, st := range b.tree.Children(block) {
		b.walkStat(st, end)
	}
	b.leaveTo(mark)
}

// walkScopedBlock walks block inside its own plain scope.
func (b *builder) walkScopedBlock(block syntax.NodeID) ScopeID {
	if !block.IsValid() {
		return NoScopeID
	}
	scope := b.enter(ScopePlain, block, b.span(block))
	b.walkBlock(block)
	b.leave(scope)
	return scope
}

func (b *builder) walkStat(st syntax.NodeID, blockEnd uint32) {
	info := b.applyDoc(b.tree.Comments(st), st)
	n := b.tree.Node(st)
	switch n.Kind {
	case syntax.NodeLocalStat:
		b.walkLocal(st, blockEnd, info)
	case syntax.NodeLocalFuncStat:
		b.walkLocalFunc(st, blockEnd, info)
	case syntax.NodeAssignStat:
		b.walkAssign(st, info)
	case syntax.NodeFuncStat:
		b.walkFuncStat(st, info)
	case syntax.NodeCallStat:
		b.walkExpr(n.Child(0))
	case syntax.NodeDoStat:
		b.walkScopedBlock(n.Child(0))
	case syntax.NodeWhileStat:
		b.walkExpr(n.Child(0))
		b.walkScopedBlock(n.Child(1))
	case syntax.NodeRepeatStat:
		b.walkRepeat(st)
	case syntax.NodeIfStat:
		b.walkExpr(n.Child(0))
		b.walkScopedBlock(n.Child(1))
		for _, clause := range n.Children[min(2, len(n.Children)):] {
			c := b.tree.Node(clause)
			if c.Kind == syntax.NodeElseIfClause {
				b.walkExpr(c.Child(0))
				b.walkScopedBlock(c.Child(1))
			} else {
				b.walkScopedBlock(c.Child(0))
			}
		}
	case syntax.NodeForNumStat:
		b.walkForNum(st)
	case syntax.NodeForInStat:
		b.walkForIn(st)
	case syntax.NodeReturnStat:
		b.walkExprs(n.Child(0))
	}
}

func (b *builder) walkExprs(list syntax.NodeID) {
	for _, e := range b.tree.Children(list) {
		b.walkExpr(e)
	}
}

// valueFor picks the initializer of the i-th name: the i-th value, or the
// tail of a trailing multi-value expression.
func (b *builder) valueFor(values []syntax.NodeID, i int) (syntax.NodeID, int) {
	if i < len(values) {
		return values[i], 0
	}
	if len(values) == 0 {
		return syntax.NoNodeID, 0
	}
	last := values[len(values)-1]
	switch b.tree.Kind(last) {
	case syntax.NodeCallExpr, syntax.NodeVararg:
		return last, i - (len(values) - 1)
	}
	return syntax.NoNodeID, 0
}

func (b *builder) walkValues(values []syntax.NodeID, info *docInfo) {
	for i, v := range values {
		if i == 0 && info.declaresType() && b.tree.Kind(v) == syntax.NodeTableExpr {
			b.walkTable(v, info)
			continue
		}
		b.walkExpr(v)
	}
}

func (b *builder) typeAt(info *docInfo, i int) *types.Type {
	if i < len(info.types) {
		return b.scoped(info.types[i], nil)
	}
	return nil
}

func (b *builder) isClosure(id syntax.NodeID) bool {
	return b.tree.Kind(id) == syntax.NodeClosure
}

func (b *builder) walkLocal(st syntax.NodeID, blockEnd uint32, info *docInfo) {
	n := b.tree.Node(st)
	names := b.tree.Children(n.Child(0))
	values := b.tree.Children(n.Child(1))
	stSpan := b.span(st)

	// Prev links are computed before the new scope exists.
	prevs := make([]DeclID, len(names))
	for i, name := range names {
		prevs[i] = b.lookup(stSpan.Start, b.tree.Text(name))
	}

	scope := b.enter(ScopeLocalDecl, st, source.Span{Doc: stSpan.Doc, Start: stSpan.Start, End: max(blockEnd, stSpan.End)})
	b.out.Scopes.Get(scope).Hidden = stSpan
	b.walkValues(values, info)

	seen := make(map[string]DeclID, len(names))
	for i, name := range names {
		text := b.tree.Text(name)
		value, idx := b.valueFor(values, i)
		d := Decl{
			Name:       text,
			Span:       b.span(name),
			Node:       name,
			Stat:       st,
			Flags:      DeclLocal,
			Type:       b.typeAt(info, i),
			Value:      value,
			ValueIndex: idx,
			Prev:       prevs[i],
		}
		if earlier, ok := seen[text]; ok {
			d.Prev = earlier
		}
		if i == 0 && info.declaresType() {
			d.Type, d.Prev = info.typ, info.typeDecl
		}
		if b.isClosure(value) && idx == 0 {
			d.Flags |= DeclFunction
		}
		seen[text] = b.declare(scope, d.Span.Start, d)
	}
}

func (b *builder) walkLocalFunc(st syntax.NodeID, blockEnd uint32, info *docInfo) {
	n := b.tree.Node(st)
	name, closure := n.Child(0), n.Child(1)
	stSpan := b.span(st)
	text := b.tree.Text(name)
	prev := b.lookup(stSpan.Start, text)

	// имя видно и внутри собственного тела (рекурсия)
	scope := b.enter(ScopeLocalDecl, st, source.Span{Doc: stSpan.Doc, Start: stSpan.Start, End: max(blockEnd, stSpan.End)})
	id := b.declare(scope, b.span(name).Start, Decl{
		Name:  text,
		Span:  b.span(name),
		Node:  name,
		Stat:  st,
		Flags: DeclLocal | DeclFunction,
		Value: closure,
		Prev:  prev,
	})
	b.addOverloads(id, text, info)
	b.walkClosure(closure, info)
}

func (b *builder) walkAssign(st syntax.NodeID, info *docInfo) {
	n := b.tree.Node(st)
	targets := b.tree.Children(n.Child(0))
	values := b.tree.Children(n.Child(1))

	if len(targets) == 1 {
		b.walkValues(values, info)
	} else {
		b.walkValues(values, &docInfo{})
	}

	for i, target := range targets {
		value, idx := b.valueFor(values, i)
		typ := b.typeAt(info, i)
		switch b.tree.Kind(target) {
		case syntax.NodeName:
			bound := info
			if i > 0 {
				bound = &docInfo{}
			}
			b.bindName(target, st, value, idx, typ, bound)
		case syntax.NodeIndexExpr:
			t := b.tree.Node(target)
			b.walkExpr(t.Child(0))
			if t.Has(syntax.FlagBracket) {
				b.walkExpr(t.Child(1))
			}
			b.bindMember(target, st, value, idx, typ, 0)
		}
	}
}

// bindName binds an assignment to a bare name: a fresh global, or a
// re-binding of the local/global it resolves to.
func (b *builder) bindName(name, st, value syntax.NodeID, idx int, typ *types.Type, info *docInfo) DeclID {
	text := b.tree.Text(name)
	span := b.span(name)
	prev := b.lookup(span.Start, text)
	d := Decl{
		Name:       text,
		Span:       span,
		Node:       name,
		Stat:       st,
		Type:       typ,
		Value:      value,
		ValueIndex: idx,
		Prev:       prev,
	}
	if info.declaresType() {
		d.Type, d.Prev = info.typ, info.typeDecl
	}
	if b.isClosure(value) && idx == 0 {
		d.Flags |= DeclFunction
	}

	pd := b.decl(prev)
	if pd != nil && pd.Has(DeclLocal) {
		d.Flags |= DeclLocal | DeclAssign
		return b.declare(b.current(), span.Start, d)
	}

	d.Flags |= DeclGlobal
	if pd != nil {
		d.Flags |= DeclAssign
		if d.Type == nil && pd.Has(DeclTypeDecl) {
			// `---@class Config` ... `Config = {}`
			d.Type = pd.Type
		}
	}
	id := b.declare(b.out.Root, span.Start, d)
	b.sink.AddGlobal(text, id)
	if d.Type != nil {
		b.sink.SetGlobalType(text, d.Type)
	}
	return id
}

// bindMember records `prefix.key = value` as a member declaration whose
// owner is resolved by the deferred pass.
func (b *builder) bindMember(target, st, value syntax.NodeID, idx int, typ *types.Type, flags DeclFlags) DeclID {
	t := b.tree.Node(target)
	key := b.tree.Node(t.Child(1))
	if key == nil || key.Kind != syntax.NodeString {
		// динамический ключ: владельца не угадать
		return NoDeclID
	}
	d := Decl{
		Name:       key.Text,
		Span:       key.Span,
		Node:       t.Child(1),
		Stat:       st,
		Flags:      DeclClassMember | flags,
		Type:       typ,
		Value:      value,
		ValueIndex: idx,
	}
	if b.isClosure(value) && idx == 0 {
		d.Flags |= DeclFunction
	}
	id := b.member(d)
	b.out.Deferred = append(b.out.Deferred, Deferred{
		Node:      target,
		Scope:     b.current(),
		Decl:      id,
		Annotated: typ != nil,
	})
	return id
}

func (b *builder) walkFuncStat(st syntax.NodeID, info *docInfo) {
	n := b.tree.Node(st)
	target, closure := n.Child(0), n.Child(1)
	var id DeclID
	switch b.tree.Kind(target) {
	case syntax.NodeName:
		id = b.bindName(target, st, closure, 0, nil, &docInfo{})
	case syntax.NodeIndexExpr:
		t := b.tree.Node(target)
		b.walkExpr(t.Child(0))
		flags := DeclFunction
		if n.Has(syntax.FlagColon) {
			flags |= DeclMethod
			b.out.SelfOwner[closure] = t.Child(0)
		}
		id = b.bindMember(target, st, closure, 0, nil, flags)
	}
	b.addOverloads(id, b.path(target), info)
	b.walkClosure(closure, info)
}

func (b *builder) addOverloads(id DeclID, path string, info *docInfo) {
	if len(info.overloads) == 0 {
		return
	}
	d := b.decl(id)
	if d == nil {
		return
	}
	for _, o := range info.overloads {
		sig := b.scoped(o, info.generics)
		d.Overloads = append(d.Overloads, sig)
		if path != "" {
			b.sink.AddOverload(path, sig, d.Span.Element())
		}
	}
}

// path renders a.b.c / a.b:c as "a.b.c"; other expressions yield "".
func (b *builder) path(id syntax.NodeID) string {
	n := b.tree.Node(id)
	switch {
	case n == nil:
		return ""
	case n.Kind == syntax.NodeName:
		return n.Text
	case n.Kind == syntax.NodeIndexExpr && !n.Has(syntax.FlagBracket):
		prefix := b.path(n.Child(0))
		if prefix == "" {
			return ""
		}
		return prefix + "." + b.tree.Text(n.Child(1))
	default:
		return ""
	}
}

func (b *builder) walkRepeat(st syntax.NodeID) {
	n := b.tree.Node(st)
	block, cond := n.Child(0), n.Child(1)
	scope := b.enter(ScopeRepeat, st, b.span(st))
	body := b.walkScopedBlock(block)
	b.out.Scopes.Get(scope).Body = body
	b.walkExpr(cond)
	b.leave(scope)
}

func (b *builder) walkForNum(st syntax.NodeID) {
	n := b.tree.Node(st)
	name := n.Child(0)
	block := n.Children[len(n.Children)-1]
	exprs := n.Children[1 : len(n.Children)-1]

	stSpan := b.span(st)
	prev := b.lookup(stSpan.Start, b.tree.Text(name))
	scope := b.enter(ScopeForRange, st, stSpan)
	if len(exprs) > 0 {
		b.out.Scopes.Get(scope).Hidden = b.span(exprs[0]).Cover(b.span(exprs[len(exprs)-1]))
	}
	for _, e := range exprs {
		b.walkExpr(e)
	}
	var start syntax.NodeID
	if len(exprs) > 0 {
		start = exprs[0]
	}
	b.declare(scope, b.span(name).Start, Decl{
		Name:  b.tree.Text(name),
		Span:  b.span(name),
		Node:  name,
		Stat:  st,
		Flags: DeclLocal | DeclForRange,
		Value: start,
		Prev:  prev,
	})
	b.walkScopedBlock(block)
	b.leave(scope)
}

func (b *builder) walkForIn(st syntax.NodeID) {
	n := b.tree.Node(st)
	names := b.tree.Children(n.Child(0))
	list, block := n.Child(1), n.Child(2)
	values := b.tree.Children(list)

	stSpan := b.span(st)
	prevs := make([]DeclID, len(names))
	for i, name := range names {
		prevs[i] = b.lookup(stSpan.Start, b.tree.Text(name))
	}
	scope := b.enter(ScopeForRange, st, stSpan)
	b.out.Scopes.Get(scope).Hidden = b.span(list)
	b.walkExprs(list)

	var iter syntax.NodeID
	if len(values) > 0 {
		iter = values[0]
	}
	for i, name := range names {
		b.declare(scope, b.span(name).Start, Decl{
			Name:       b.tree.Text(name),
			Span:       b.span(name),
			Node:       name,
			Stat:       st,
			Flags:      DeclLocal | DeclForRange,
			Value:      iter,
			ValueIndex: i,
			Prev:       prevs[i],
		})
	}
	b.walkScopedBlock(block)
	b.leave(scope)
}
