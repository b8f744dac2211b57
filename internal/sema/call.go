package sema

import (
	"luasema/internal/symbols"
	"luasema/internal/syntax"
	"luasema/internal/types"
)

func (in *Inferrer) callType(tab *symbols.Table, n *syntax.Node) *types.Type {
	callee := n.Child(0)
	args := tab.Syntax.Children(n.Child(1))
	if t, ok := in.builtinCall(tab, callee, args); ok {
		return t
	}

	colon := n.Has(syntax.FlagColon)
	var recv *types.Type
	if colon {
		recv = in.Infer(tab, tab.Syntax.Child(callee, 0))
	}
	ct := in.resolve(in.Infer(tab, callee))

	cands := signatures(ct)
	cands = append(cands, in.calleeOverloads(tab, callee)...)
	sig := pickOverload(cands, len(args), colon)
	if sig == nil {
		// вызов экземпляра класса через @operator call
		if rec := in.mgr.FindTypeInfo(ct); rec != nil {
			if ops := in.mgr.Operators(rec, "call"); len(ops) > 0 {
				return ops[0].Result.OrUnknown()
			}
		}
		return types.Unknown
	}
	if sig.Returns == nil {
		return types.Unknown
	}

	returns := sig.Returns
	if len(sig.Generics) > 0 {
		bindings := in.bindGenerics(tab, sig, args, recv)
		out := make([]*types.Type, len(returns))
		for i, r := range returns {
			out[i] = types.Substitute(r, bindings)
		}
		returns = out
	}
	if recv != nil {
		out := make([]*types.Type, len(returns))
		for i, r := range returns {
			out[i] = types.ReplaceSelf(r, recv)
		}
		returns = out
	}
	if len(returns) == 0 {
		return types.Nil
	}
	return types.TupleOf(returns...)
}

// builtinCall types the few standard functions whose result depends on
// their arguments. A user declaration of the same name wins.
func (in *Inferrer) builtinCall(tab *symbols.Table, callee syntax.NodeID, args []syntax.NodeID) (*types.Type, bool) {
	if tab.Syntax.Kind(callee) != syntax.NodeName || in.shadowed(tab, callee) {
		return nil, false
	}
	switch tab.Syntax.Text(callee) {
	case "setmetatable":
		if len(args) > 0 {
			return in.Infer(tab, args[0]), true
		}
		return types.Table, true
	case "tostring", "type":
		return types.String, true
	case "tonumber":
		return types.Optional(types.Number), true
	}
	return nil, false
}

func signatures(t *types.Type) []*types.Type {
	switch t.Kind {
	case types.KindSignature:
		return []*types.Type{t}
	case types.KindUnion:
		var out []*types.Type
		for _, item := range t.Items {
			if item.Kind == types.KindSignature {
				out = append(out, item)
			}
		}
		return out
	}
	return nil
}

// calleeOverloads collects the @overload signatures of the called function.
func (in *Inferrer) calleeOverloads(tab *symbols.Table, callee syntax.NodeID) []*types.Type {
	n := tab.Syntax.Node(callee)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case syntax.NodeName:
		if id, ok := tab.Refs[callee]; ok {
			if d := tab.Decl(id); d != nil {
				return d.Overloads
			}
			return nil
		}
		var out []*types.Type
		for _, ref := range in.idx.Globals.Get(n.Text) {
			if d := in.idx.Decl(ref); d != nil {
				out = append(out, d.Overloads...)
			}
		}
		for _, o := range in.idx.Overloads.Get(n.Text) {
			out = append(out, o.Sig)
		}
		return out
	case syntax.NodeIndexExpr:
		key := tab.Syntax.Node(n.Child(1))
		if key == nil || key.Kind != syntax.NodeString {
			return nil
		}
		rec := in.mgr.FindTypeInfo(in.resolve(in.Infer(tab, n.Child(0))))
		if rec == nil {
			return nil
		}
		out := in.mgr.Overloads(rec, key.Text)
		if m, ok := in.mgr.FindMember(rec, key.Text); ok {
			if d := in.idx.Decl(m.Ref); d != nil {
				out = append(out, d.Overloads...)
			}
		}
		return out
	}
	return nil
}

// pickOverload returns the first candidate whose arity accepts the call, or
// the first candidate.
func pickOverload(cands []*types.Type, argc int, colon bool) *types.Type {
	if len(cands) == 0 {
		return nil
	}
	passed := argc
	if colon {
		passed++
	}
	for _, sig := range cands {
		lo, hi := arity(sig)
		if passed >= lo && (passed <= hi || sig.Vararg) {
			return sig
		}
	}
	return cands[0]
}

// arity returns the required and total parameter count including self.
func arity(sig *types.Type) (lo, hi int) {
	for _, p := range sig.Params {
		hi++
		if !p.Optional {
			lo = hi
		}
	}
	if sig.Method {
		lo++
		hi++
	}
	return lo, hi
}

// bindGenerics infers template bindings from the argument types.
func (in *Inferrer) bindGenerics(tab *symbols.Table, sig *types.Type, args []syntax.NodeID, recv *types.Type) map[string]*types.Type {
	var params []*types.Type
	if sig.Method {
		params = append(params, types.Self)
	}
	for _, p := range sig.Params {
		params = append(params, p.Type)
	}
	var argTypes []func() *types.Type
	if recv != nil {
		argTypes = append(argTypes, func() *types.Type { return recv })
	}
	for _, a := range args {
		argTypes = append(argTypes, func() *types.Type { return types.First(in.Infer(tab, a)) })
	}

	bindings := make(map[string]*types.Type)
	for i, p := range params {
		if i >= len(argTypes) || p == nil {
			break
		}
		unify(p, argTypes[i](), bindings, 0)
	}
	return bindings
}

func unify(param, arg *types.Type, b map[string]*types.Type, depth int) {
	if param == nil || arg.IsUnknown() || depth > 8 {
		return
	}
	switch param.Kind {
	case types.KindTemplate:
		if _, ok := b[param.Name]; !ok {
			b[param.Name] = types.Base(arg)
		}
	case types.KindArray:
		if arg.Kind == types.KindArray {
			unify(param.Elem, arg.Elem, b, depth+1)
		}
	case types.KindMap:
		switch arg.Kind {
		case types.KindMap:
			unify(param.Key, arg.Key, b, depth+1)
			unify(param.Value, arg.Value, b, depth+1)
		case types.KindArray:
			unify(param.Key, types.Integer, b, depth+1)
			unify(param.Value, arg.Elem, b, depth+1)
		}
	case types.KindGeneric:
		if arg.Kind == types.KindGeneric && arg.Name == param.Name {
			for i := range min(len(param.Items), len(arg.Items)) {
				unify(param.Items[i], arg.Items[i], b, depth+1)
			}
		}
	case types.KindUnion:
		for _, item := range param.Items {
			if item.Kind != types.KindNil {
				unify(item, types.RemoveNil(arg), b, depth+1)
			}
		}
	case types.KindSignature:
		if arg.Kind == types.KindSignature {
			for i := range min(len(param.Returns), len(arg.Returns)) {
				unify(param.Returns[i], arg.Returns[i], b, depth+1)
			}
		}
	}
}
