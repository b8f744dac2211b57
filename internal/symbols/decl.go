package symbols

import (
	"luasema/internal/source"
	"luasema/internal/syntax"
	"luasema/internal/types"
)

// DeclFlags encode what kind of binding a declaration is.
type DeclFlags uint16

const (
	DeclLocal DeclFlags = 1 << iota
	DeclGlobal
	DeclParam
	DeclMethod
	DeclClassMember
	DeclEnumMember
	DeclTypeDecl
	DeclForRange
	DeclGeneric
	DeclFunction
	DeclSelf   // implicit self of a colon method
	DeclAssign // re-binding of an existing local/global by assignment
	DeclField  // nominal member from @field or an annotated constructor
)

var declFlagNames = []struct {
	flag DeclFlags
	name string
}{
	{DeclLocal, "local"},
	{DeclGlobal, "global"},
	{DeclParam, "param"},
	{DeclMethod, "method"},
	{DeclClassMember, "member"},
	{DeclEnumMember, "enum-member"},
	{DeclTypeDecl, "type"},
	{DeclForRange, "for-range"},
	{DeclGeneric, "generic"},
	{DeclFunction, "function"},
	{DeclSelf, "self"},
	{DeclAssign, "assign"},
	{DeclField, "field"},
}

// Strings returns textual flag labels.
func (f DeclFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for _, fn := range declFlagNames {
		if f&fn.flag != 0 {
			labels = append(labels, fn.name)
		}
	}
	return labels
}

// TypeKind is the kind of a named type declaration.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota
	TypeClass
	TypeInterface
	TypeEnum
	TypeAlias
)

func (k TypeKind) String() string {
	switch k {
	case TypeClass:
		return "class"
	case TypeInterface:
		return "interface"
	case TypeEnum:
		return "enum"
	case TypeAlias:
		return "alias"
	default:
		return "invalid"
	}
}

// TypeKindOf maps a doc tag to the declared type kind.
func TypeKindOf(k syntax.TagKind) TypeKind {
	switch k {
	case syntax.TagClass:
		return TypeClass
	case syntax.TagInterface:
		return TypeInterface
	case syntax.TagEnum:
		return TypeEnum
	case syntax.TagAlias:
		return TypeAlias
	default:
		return TypeInvalid
	}
}

// Decl is a named binding.
type Decl struct {
	Name  string
	Span  source.Span   // where the name is written
	Node  syntax.NodeID // name node (NoNodeID for doc-tag declarations)
	Stat  syntax.NodeID // statement, table field or doc statement that binds it
	Flags DeclFlags
	// Type is the declared type. nil means "infer from Value".
	Type       *types.Type
	Value      syntax.NodeID
	ValueIndex int // which value of a multi-value Value binds to this name
	Prev       DeclID
	Scope      ScopeID
	// Owner is set for members: named type, global table or table literal.
	Owner     types.Owner
	Overloads []*types.Type
}

// Has reports whether all flags in f are set.
func (d *Decl) Has(f DeclFlags) bool {
	return d != nil && d.Flags&f == f
}

// IsMember reports whether the declaration belongs to an owner rather than a scope.
func (d *Decl) IsMember() bool {
	return d != nil && d.Flags&(DeclClassMember|DeclEnumMember|DeclField) != 0
}
