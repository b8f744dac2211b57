package symbols

import (
	"slices"

	"luasema/internal/source"
	"luasema/internal/syntax"
	"luasema/internal/types"
)

func (b *builder) walkExpr(id syntax.NodeID) {
	n := b.tree.Node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case syntax.NodeName:
		if n.Has(syntax.FlagMissing) {
			return
		}
		if d := b.lookup(n.Span.Start, n.Text); d.IsValid() {
			b.out.Refs[id] = d
		}
	case syntax.NodeIndexExpr:
		b.walkExpr(n.Child(0))
		if n.Has(syntax.FlagBracket) {
			b.walkExpr(n.Child(1))
		}
	case syntax.NodeClosure:
		b.walkClosure(id, &docInfo{})
	case syntax.NodeTableExpr:
		b.walkTable(id, &docInfo{})
	case syntax.NodeCallExpr, syntax.NodeBinaryExpr, syntax.NodeUnaryExpr,
		syntax.NodeParenExpr, syntax.NodeArgList, syntax.NodeExprList:
		for _, c := range n.Children {
			b.walkExpr(c)
		}
	}
}

// walkClosure declares the parameters (and implicit self) of a function and
// walks its body. The signature is assembled from @param/@return/@generic.
func (b *builder) walkClosure(closure syntax.NodeID, info *docInfo) {
	n := b.tree.Node(closure)
	params, block := n.Child(0), n.Child(1)
	pn := b.tree.Node(params)

	scope := b.enter(ScopePlain, closure, n.Span)
	saved := b.generics
	b.generics = slices.Concat(b.generics, info.generics)

	sig := &types.Type{
		Kind:     types.KindSignature,
		Generics: info.generics,
		Method:   n.Has(syntax.FlagColon),
		Vararg:   pn.Has(syntax.FlagVararg),
	}
	if n.Has(syntax.FlagColon) {
		// пустой span: self не написан в исходнике
		b.declare(scope, pn.Span.Start, Decl{
			Name:  "self",
			Span:  source.Span{Doc: pn.Span.Doc, Start: pn.Span.Start, End: pn.Span.Start},
			Stat:  closure,
			Flags: DeclLocal | DeclParam | DeclSelf,
		})
	}
	for _, p := range pn.Children {
		text := b.tree.Text(p)
		param := types.Param{Name: text}
		if tag := info.params[text]; tag != nil {
			param.Type = b.scoped(tag.Type, nil)
			param.Optional = tag.Optional
		}
		typ := param.Type
		if typ != nil && param.Optional {
			typ = types.Optional(typ)
		}
		b.declare(scope, b.span(p).Start, Decl{
			Name:  text,
			Span:  b.span(p),
			Node:  p,
			Stat:  closure,
			Flags: DeclLocal | DeclParam,
			Type:  typ,
		})
		sig.Params = append(sig.Params, param)
	}
	if info.hasReturn {
		sig.Returns = make([]*types.Type, len(info.returns))
		for i, r := range info.returns {
			sig.Returns[i] = b.scoped(r, nil)
		}
	}
	b.out.Signatures[closure] = sig

	b.walkBlock(block)
	b.generics = saved
	b.leave(scope)
}

// walkTable declares the keyed fields of a table constructor. When the
// constructor is bound by a @class/@enum comment its fields are nominal
// members of that type; otherwise they belong to the anonymous table.
func (b *builder) walkTable(table syntax.NodeID, info *docInfo) {
	owner := types.TableOwner(b.span(table).Element())
	nominal := info.declaresType()
	if nominal {
		owner = types.NamedOwner(info.typeName)
		b.out.TableTypes[table] = info.typ
	}
	for _, field := range b.tree.Children(table) {
		f := b.tree.Node(field)
		var key, value syntax.NodeID
		switch {
		case f.Has(syntax.FlagNamed):
			key, value = f.Child(0), f.Child(1)
		case f.Has(syntax.FlagBracket):
			key, value = f.Child(0), f.Child(1)
			b.walkExpr(key)
			if k := b.tree.Node(key); k == nil || k.Kind != syntax.NodeString {
				b.walkExpr(value)
				continue
			}
		default:
			b.walkExpr(f.Child(0))
			continue
		}
		b.walkExpr(value)

		fieldInfo := b.applyDoc(b.tree.Comments(field), field)
		flags := DeclClassMember
		if nominal {
			flags |= DeclField
			if info.typeKind == TypeEnum {
				flags |= DeclEnumMember
			}
		}
		if b.isClosure(value) {
			flags |= DeclFunction
		}
		name := b.tree.Text(key)
		id := b.member(Decl{
			Name:  name,
			Span:  b.span(key),
			Node:  key,
			Stat:  field,
			Flags: flags,
			Type:  b.typeAt(fieldInfo, 0),
			Value: value,
			Owner: owner,
		})
		b.sink.AddMember(owner, Member{Name: name, Decl: id, Elem: b.span(key).Element(), Declared: true})
	}
}
