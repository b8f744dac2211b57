package types

import "slices"

// Union builds A|B|..., flattening nested unions and dropping duplicates and
// unknown members. A union of one member is that member.
func Union(items ...*Type) *Type {
	flat := make([]*Type, 0, len(items))
	var add func(t *Type)
	add = func(t *Type) {
		if t.IsUnknown() {
			return
		}
		if t.Kind == KindUnion {
			for _, item := range t.Items {
				add(item)
			}
			return
		}
		if slices.ContainsFunc(flat, func(other *Type) bool { return Equal(other, t) }) {
			return
		}
		flat = append(flat, t)
	}
	for _, item := range items {
		add(item)
	}
	switch len(flat) {
	case 0:
		return Unknown
	case 1:
		return flat[0]
	}
	// nil всегда последним, чтобы печаталось как T?
	slices.SortStableFunc(flat, func(a, b *Type) int {
		switch {
		case a.Kind == KindNil && b.Kind != KindNil:
			return 1
		case b.Kind == KindNil && a.Kind != KindNil:
			return -1
		default:
			return 0
		}
	})
	return &Type{Kind: KindUnion, Items: flat}
}

// Optional builds T?.
func Optional(t *Type) *Type {
	return Union(t, Nil)
}

// RemoveNil strips nil from a union.
func RemoveNil(t *Type) *Type {
	if t == nil || t.Kind != KindUnion {
		if t != nil && t.Kind == KindNil {
			return Unknown
		}
		return t
	}
	items := make([]*Type, 0, len(t.Items))
	for _, item := range t.Items {
		if item.Kind != KindNil {
			items = append(items, item)
		}
	}
	return Union(items...)
}

// First returns the first value of a tuple, or t itself.
func First(t *Type) *Type {
	return Nth(t, 0)
}

// Nth returns the i-th value of a tuple. Non-tuples only have value 0.
func Nth(t *Type, i int) *Type {
	if t == nil {
		return Unknown
	}
	if t.Kind != KindTuple {
		if i == 0 {
			return t
		}
		return Unknown
	}
	if i < len(t.Items) {
		return t.Items[i]
	}
	return Unknown
}

// Base returns the primitive kind a literal widens to.
func Base(t *Type) *Type {
	if t == nil || t.Kind != KindLiteral {
		return t
	}
	switch t.LitKind {
	case KindString:
		return String
	case KindInteger:
		return Integer
	case KindNumber:
		return Number
	case KindBoolean:
		return Boolean
	default:
		return Unknown
	}
}

// IsNumeric reports whether t is number, integer or a numeric literal.
func IsNumeric(t *Type) bool {
	t = Base(t)
	return t != nil && (t.Kind == KindNumber || t.Kind == KindInteger)
}

// Equal compares two types structurally.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNamed, KindTemplate, KindGlobal:
		return a.Name == b.Name
	case KindGeneric:
		return a.Name == b.Name && equalList(a.Items, b.Items)
	case KindArray:
		return Equal(a.Elem, b.Elem)
	case KindMap:
		return Equal(a.Key, b.Key) && Equal(a.Value, b.Value)
	case KindUnion, KindTuple:
		return equalList(a.Items, b.Items)
	case KindLiteral:
		return a.LitKind == b.LitKind && a.Lit == b.Lit
	case KindTableLit:
		return a.Anchor == b.Anchor
	case KindSignature:
		if len(a.Params) != len(b.Params) || a.Vararg != b.Vararg {
			return false
		}
		for i := range a.Params {
			if a.Params[i].Name != b.Params[i].Name || !Equal(a.Params[i].Type, b.Params[i].Type) {
				return false
			}
		}
		return equalList(a.Returns, b.Returns)
	case KindObject:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func equalList(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Map rebuilds t bottom-up, replacing every node for which fn returns a
// non-nil result. Unchanged subtrees are shared.
func Map(t *Type, fn func(*Type) *Type) *Type {
	return mapDepth(t, fn, 0)
}

func mapDepth(t *Type, fn func(*Type) *Type, depth int) *Type {
	if t == nil || depth > 32 {
		return t
	}
	if r := fn(t); r != nil {
		return r
	}
	changed := false
	sub := func(x *Type) *Type {
		y := mapDepth(x, fn, depth+1)
		if y != x {
			changed = true
		}
		return y
	}
	subList := func(xs []*Type) []*Type {
		if len(xs) == 0 {
			return xs
		}
		out := make([]*Type, len(xs))
		for i, x := range xs {
			out[i] = sub(x)
		}
		return out
	}
	cp := *t
	cp.Elem = sub(t.Elem)
	cp.Key = sub(t.Key)
	cp.Value = sub(t.Value)
	cp.Items = subList(t.Items)
	cp.Returns = subList(t.Returns)
	if len(t.Params) > 0 {
		cp.Params = make([]Param, len(t.Params))
		for i, p := range t.Params {
			p.Type = sub(p.Type)
			cp.Params[i] = p
		}
	}
	if len(t.Fields) > 0 {
		cp.Fields = make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			f.Type = sub(f.Type)
			cp.Fields[i] = f
		}
	}
	if !changed {
		return t
	}
	if cp.Kind == KindUnion {
		return Union(cp.Items...)
	}
	return &cp
}

// Substitute replaces template parameters by their bindings.
func Substitute(t *Type, bindings map[string]*Type) *Type {
	if len(bindings) == 0 {
		return t
	}
	return Map(t, func(x *Type) *Type {
		if x.Kind == KindTemplate {
			if b, ok := bindings[x.Name]; ok {
				return b
			}
		}
		return nil
	})
}

// ReplaceSelf substitutes `self` with the owner type.
func ReplaceSelf(t, owner *Type) *Type {
	if owner == nil {
		return t
	}
	return Map(t, func(x *Type) *Type {
		if x.Kind == KindSelf {
			return owner
		}
		return nil
	})
}

// WithScope attaches the namespace context to every named reference in t.
// References whose name is one of generics become template parameters.
func WithScope(t *Type, scope *NameScope, generics []string) *Type {
	return Map(t, func(x *Type) *Type {
		switch x.Kind {
		case KindNamed:
			if slices.Contains(generics, x.Name) {
				return Template(x.Name)
			}
			if x.Scope == nil && scope != nil {
				return Named(x.Name, scope)
			}
		case KindGeneric:
			if x.Scope == nil && scope != nil {
				args := make([]*Type, len(x.Items))
				for i, a := range x.Items {
					args[i] = WithScope(a, scope, generics)
				}
				return Generic(x.Name, scope, args...)
			}
		}
		return nil
	})
}
