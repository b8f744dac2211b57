package types

import (
	"fmt"

	"luasema/internal/source"
)

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAny
	KindNil
	KindBoolean
	KindNumber
	KindInteger
	KindString
	KindTable    // bare `table`
	KindFunction // bare `function`
	KindThread
	KindUserdata
	KindSelf     // `self` inside a class annotation
	KindNamed    // reference to a named type, resolved by the type manager
	KindTemplate // generic parameter T
	KindGeneric  // Name<Args...>
	KindArray    // T[]
	KindMap      // table<K, V>
	KindUnion    // A | B
	KindTuple    // multiple returns
	KindSignature
	KindObject   // { a: T, b: U }
	KindLiteral  // "a", 1, true
	KindTableLit // anonymous table constructor
	KindGlobal   // unannotated global table value
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindAny:
		return "any"
	case KindNil:
		return "nil"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindFunction:
		return "function"
	case KindThread:
		return "thread"
	case KindUserdata:
		return "userdata"
	case KindSelf:
		return "self"
	case KindNamed:
		return "named"
	case KindTemplate:
		return "template"
	case KindGeneric:
		return "generic"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	case KindTuple:
		return "tuple"
	case KindSignature:
		return "signature"
	case KindObject:
		return "object"
	case KindLiteral:
		return "literal"
	case KindTableLit:
		return "tablelit"
	case KindGlobal:
		return "global"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// NameScope is the namespace context a type reference was written in.
type NameScope struct {
	Namespace string
	Using     []string
}

// Param is a named parameter of a function signature.
type Param struct {
	Name     string
	Type     *Type
	Optional bool
}

// Field is a member of an inline object type.
type Field struct {
	Name     string
	Type     *Type
	Optional bool
}

// Type is an immutable descriptor. Values are shared freely; never mutate a
// Type after construction.
type Type struct {
	Kind  Kind
	Name  string     // Named, Template, Generic base, Global
	Scope *NameScope // namespace context for Named/Generic, nil means root
	Elem  *Type      // Array element
	Items []*Type    // Union members, Generic args, Tuple values
	Key   *Type      // Map key
	Value *Type      // Map value

	Params   []Param // Signature
	Returns  []*Type // Signature
	Vararg   bool    // Signature accepts ...
	Method   bool    // Signature declared with ':' (implicit self)
	Generics []string

	Fields []Field // Object

	Lit     string // Literal text
	LitKind Kind   // Literal base kind: String, Integer, Number, Boolean

	Anchor source.ElementID // TableLit constructor
}

var (
	Unknown  = &Type{Kind: KindUnknown}
	Any      = &Type{Kind: KindAny}
	Nil      = &Type{Kind: KindNil}
	Boolean  = &Type{Kind: KindBoolean}
	Number   = &Type{Kind: KindNumber}
	Integer  = &Type{Kind: KindInteger}
	String   = &Type{Kind: KindString}
	Table    = &Type{Kind: KindTable}
	Function = &Type{Kind: KindFunction}
	Thread   = &Type{Kind: KindThread}
	Userdata = &Type{Kind: KindUserdata}
	Self     = &Type{Kind: KindSelf}
)

var builtinNames = map[string]*Type{
	"unknown":  Unknown,
	"any":      Any,
	"nil":      Nil,
	"void":     Nil,
	"boolean":  Boolean,
	"bool":     Boolean,
	"number":   Number,
	"integer":  Integer,
	"int":      Integer,
	"string":   String,
	"table":    Table,
	"function": Function,
	"thread":   Thread,
	"userdata": Userdata,
	"self":     Self,
}

// Builtin returns the primitive type for a reserved name.
func Builtin(name string) (*Type, bool) {
	t, ok := builtinNames[name]
	return t, ok
}

// IsBuiltinName reports whether name is a reserved primitive type name.
func IsBuiltinName(name string) bool {
	_, ok := builtinNames[name]
	return ok
}

// BuiltinNames lists the reserved primitive type names.
func BuiltinNames() []string {
	out := make([]string, 0, len(builtinNames))
	for name := range builtinNames {
		out = append(out, name)
	}
	return out
}

// Named builds a reference to a named type written in scope.
func Named(name string, scope *NameScope) *Type {
	return &Type{Kind: KindNamed, Name: name, Scope: scope}
}

// FromName returns a builtin for reserved names or a named reference.
func FromName(name string, scope *NameScope) *Type {
	if t, ok := Builtin(name); ok {
		return t
	}
	return Named(name, scope)
}

// Template builds a generic parameter reference.
func Template(name string) *Type {
	return &Type{Kind: KindTemplate, Name: name}
}

// Generic builds an instantiation Name<args...>.
func Generic(name string, scope *NameScope, args ...*Type) *Type {
	return &Type{Kind: KindGeneric, Name: name, Scope: scope, Items: args}
}

// ArrayOf builds T[].
func ArrayOf(elem *Type) *Type {
	return &Type{Kind: KindArray, Elem: elem}
}

// MapOf builds table<K, V>.
func MapOf(key, value *Type) *Type {
	return &Type{Kind: KindMap, Key: key, Value: value}
}

// TupleOf builds a multi-value type. A single value is returned as is.
func TupleOf(items ...*Type) *Type {
	if len(items) == 1 {
		return items[0]
	}
	return &Type{Kind: KindTuple, Items: items}
}

// Literal builds a literal type ("a", 1, true).
func Literal(base Kind, text string) *Type {
	return &Type{Kind: KindLiteral, LitKind: base, Lit: text}
}

// TableLit builds the type of an anonymous table constructor.
func TableLit(anchor source.ElementID) *Type {
	return &Type{Kind: KindTableLit, Anchor: anchor}
}

// GlobalTable builds the type of an unannotated global table.
func GlobalTable(name string) *Type {
	return &Type{Kind: KindGlobal, Name: name}
}

// IsUnknown reports whether t is absent or the unknown terminal.
func (t *Type) IsUnknown() bool {
	return t == nil || t.Kind == KindUnknown
}

// OrUnknown returns t, or Unknown for nil.
func (t *Type) OrUnknown() *Type {
	if t == nil {
		return Unknown
	}
	return t
}
