package symbols

import (
	"luasema/internal/source"
	"luasema/internal/types"
)

// TypeDef is one contributing element of a named type.
type TypeDef struct {
	Name  string // fully qualified
	Kind  TypeKind
	Attrs []string
	Decl  DeclID
	Elem  source.ElementID
}

// Partial reports whether the element carries the (partial) attribute.
func (d TypeDef) Partial() bool { return hasAttr(d.Attrs, "partial") }

// Exact reports whether the element carries the (exact) attribute.
func (d TypeDef) Exact() bool { return hasAttr(d.Attrs, "exact") }

func hasAttr(attrs []string, a string) bool {
	for _, x := range attrs {
		if x == a {
			return true
		}
	}
	return false
}

// Member is a member attachment to an owner.
type Member struct {
	Name string
	Decl DeclID
	Elem source.ElementID
	// Declared marks nominal members (@field, annotated constructors);
	// the rest are implementations contributed by assignment.
	Declared bool
}

// Operator is an @operator overload of a named type.
type Operator struct {
	Op       string
	Operands []*types.Type
	Result   *types.Type
	Elem     source.ElementID
}

// Sink receives the facts a document contributes to the workspace. The
// builder and the deferred pass are its only writers.
type Sink interface {
	AddGlobal(name string, decl DeclID)
	AddTypeDef(def TypeDef)
	AddMember(owner types.Owner, m Member)
	AddSupers(name string, supers []*types.Type, elem source.ElementID)
	AddGenerics(name string, params []string, elem source.ElementID)
	SetBaseType(name string, base *types.Type, elem source.ElementID)
	AddOperator(owner string, op Operator)
	AddOverload(name string, sig *types.Type, elem source.ElementID)
	SetGlobalType(name string, t *types.Type)
}

// Discard is a Sink that drops every fact.
type Discard struct{}

func (Discard) AddGlobal(string, DeclID) {}
func (Discard) AddTypeDef(TypeDef) {}
func (Discard) AddMember(types.Owner, Member) {}
func (Discard) AddSupers(string, []*types.Type, source.ElementID) {}
func (Discard) AddGenerics(string, []string, source.ElementID) {}
func (Discard) SetBaseType(string, *types.Type, source.ElementID) {}
func (Discard) AddOperator(string, Operator) {}
func (Discard) AddOverload(string, *types.Type, source.ElementID) {}
func (Discard) SetGlobalType(string, *types.Type) {}
