package types

import (
	"strings"
)

// String renders the type in annotation syntax.
func (t *Type) String() string {
	var b strings.Builder
	writeType(&b, t, 0)
	return b.String()
}

func writeType(b *strings.Builder, t *Type, depth int) {
	if t == nil {
		b.WriteString("unknown")
		return
	}
	if depth > 6 {
		b.WriteString("...")
		return
	}
	switch t.Kind {
	case KindNamed, KindTemplate:
		b.WriteString(t.Name)
	case KindGlobal:
		b.WriteString("global ")
		b.WriteString(t.Name)
	case KindGeneric:
		b.WriteString(t.Name)
		b.WriteByte('<')
		writeList(b, t.Items, ", ", depth)
		b.WriteByte('>')
	case KindArray:
		if t.Elem != nil && (t.Elem.Kind == KindUnion || t.Elem.Kind == KindSignature) {
			b.WriteByte('(')
			writeType(b, t.Elem, depth+1)
			b.WriteByte(')')
		} else {
			writeType(b, t.Elem, depth+1)
		}
		b.WriteString("[]")
	case KindMap:
		b.WriteString("table<")
		writeType(b, t.Key, depth+1)
		b.WriteString(", ")
		writeType(b, t.Value, depth+1)
		b.WriteByte('>')
	case KindUnion:
		if opt, ok := optionalBase(t); ok {
			writeType(b, opt, depth+1)
			b.WriteByte('?')
			return
		}
		writeList(b, t.Items, "|", depth)
	case KindTuple:
		writeList(b, t.Items, ", ", depth)
	case KindSignature:
		b.WriteString("fun(")
		for i, p := range t.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
			if p.Optional {
				b.WriteByte('?')
			}
			if p.Type != nil {
				b.WriteString(": ")
				writeType(b, p.Type, depth+1)
			}
		}
		if t.Vararg {
			if len(t.Params) > 0 {
				b.WriteString(", ")
			}
			b.WriteString("...")
		}
		b.WriteByte(')')
		if len(t.Returns) > 0 {
			b.WriteString(": ")
			writeList(b, t.Returns, ", ", depth)
		}
	case KindObject:
		b.WriteString("{ ")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			if f.Optional {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			writeType(b, f.Type, depth+1)
		}
		b.WriteString(" }")
	case KindLiteral:
		if t.LitKind == KindString {
			b.WriteByte('"')
			b.WriteString(t.Lit)
			b.WriteByte('"')
		} else {
			b.WriteString(t.Lit)
		}
	case KindTableLit:
		b.WriteString("table")
	default:
		b.WriteString(t.Kind.String())
	}
}

func writeList(b *strings.Builder, items []*Type, sep string, depth int) {
	for i, item := range items {
		if i > 0 {
			b.WriteString(sep)
		}
		writeType(b, item, depth+1)
	}
}

func optionalBase(t *Type) (*Type, bool) {
	if len(t.Items) != 2 {
		return nil, false
	}
	if t.Items[1].Kind == KindNil && t.Items[0].Kind != KindUnion {
		return t.Items[0], true
	}
	return nil, false
}
