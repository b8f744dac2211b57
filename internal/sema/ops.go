package sema

import (
	"cmp"

	"luasema/internal/symbols"
	"luasema/internal/syntax"
	"luasema/internal/token"
	"luasema/internal/types"
)

// operatorNames maps operator tokens to @operator names.
var operatorNames = map[token.Kind]string{
	token.Plus:       "add",
	token.Minus:      "sub",
	token.Star:       "mul",
	token.Slash:      "div",
	token.SlashSlash: "idiv",
	token.Percent:    "mod",
	token.Caret:      "pow",
	token.Amp:        "band",
	token.Pipe:       "bor",
	token.Tilde:      "bxor",
	token.Shl:        "shl",
	token.Shr:        "shr",
	token.DotDot:     "concat",
}

var unaryNames = map[token.Kind]string{
	token.Minus: "unm",
	token.Hash:  "len",
	token.Tilde: "bnot",
}

func (in *Inferrer) binaryType(tab *symbols.Table, n *syntax.Node) *types.Type {
	switch n.Op {
	case token.KwAnd:
		return in.Infer(tab, n.Child(1))
	case token.KwOr:
		left := types.RemoveNil(types.First(in.Infer(tab, n.Child(0))))
		return types.Union(left, types.First(in.Infer(tab, n.Child(1))))
	case token.EqEq, token.TildeEq, token.Lt, token.Gt, token.LtEq, token.GtEq:
		return types.Boolean
	}

	left := in.resolve(types.First(in.Infer(tab, n.Child(0))))
	right := in.resolve(types.First(in.Infer(tab, n.Child(1))))
	if t, ok := in.operator(left, operatorNames[n.Op], right); ok {
		return t
	}
	switch n.Op {
	case token.DotDot:
		return types.String
	case token.Slash, token.Caret:
		return types.Number
	case token.Amp, token.Pipe, token.Tilde, token.Shl, token.Shr:
		return types.Integer
	case token.Plus, token.Minus, token.Star, token.SlashSlash, token.Percent:
		l, r := types.Base(left), types.Base(right)
		if l.Kind == types.KindInteger && r.Kind == types.KindInteger {
			return types.Integer
		}
		return types.Number
	}
	return types.Unknown
}

func (in *Inferrer) unaryType(tab *symbols.Table, n *syntax.Node) *types.Type {
	if n.Op == token.KwNot {
		return types.Boolean
	}
	operand := in.resolve(types.First(in.Infer(tab, n.Child(0))))
	if t, ok := in.operator(operand, unaryNames[n.Op], nil); ok {
		return t
	}
	switch n.Op {
	case token.Hash, token.Tilde:
		return types.Integer
	case token.Minus:
		if b := types.Base(operand); b.Kind == types.KindInteger {
			return types.Integer
		}
		return types.Number
	}
	return types.Unknown
}

// operator looks up an @operator overload on the left operand's type whose
// operand matches the right one. An overload without operand types matches
// any right operand.
func (in *Inferrer) operator(left *types.Type, name string, right *types.Type) (*types.Type, bool) {
	if name == "" {
		return nil, false
	}
	rec := in.mgr.FindTypeInfo(left)
	if rec == nil {
		return nil, false
	}
	ops := in.mgr.Operators(rec, name)
	var fallback *types.Type
	for _, op := range ops {
		if op.Result == nil {
			continue
		}
		if len(op.Operands) == 0 || right == nil {
			fallback = cmp.Or(fallback, op.Result)
			continue
		}
		if in.matches(op.Operands[0], right) {
			return op.Result, true
		}
		fallback = cmp.Or(fallback, op.Result)
	}
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

func (in *Inferrer) matches(want, got *types.Type) bool {
	want = in.resolve(want)
	got = types.Base(got)
	if types.Equal(want, got) {
		return true
	}
	switch {
	case want.Kind == types.KindNumber && got.Kind == types.KindInteger:
		return true
	case want.Kind == types.KindNamed && got.Kind == types.KindNamed:
		return in.mgr.FindTypeInfo(want) == in.mgr.FindTypeInfo(got)
	}
	return false
}
