package index

import (
	"luasema/internal/source"
	"luasema/internal/symbols"
	"luasema/internal/types"
)

type (
	memberFact struct {
		owner types.Owner
		m     symbols.Member
	}
	supersFact struct {
		name   string
		supers []*types.Type
		elem   source.ElementID
	}
	genericsFact struct {
		name   string
		params []string
		elem   source.ElementID
	}
	baseFact struct {
		name string
		base *types.Type
		elem source.ElementID
	}
	operatorFact struct {
		owner string
		op    symbols.Operator
	}
	overloadFact struct {
		name string
		sig  *types.Type
		elem source.ElementID
	}
	globalFact struct {
		name string
		decl symbols.DeclID
	}
	globalTypeFact struct {
		name string
		t    *types.Type
	}
)

// Batch stages the facts of one analysis pass of one document. Nothing is
// visible to readers until the batch is applied, so a superseded pass can be
// dropped without touching the index.
type Batch struct {
	doc      source.DocID
	reserved map[string]struct{}

	typeDefs    []symbols.TypeDef
	generics    []genericsFact
	supers      []supersFact
	bases       []baseFact
	operators   []operatorFact
	overloads   []overloadFact
	members     []memberFact
	globals     []globalFact
	globalTypes []globalTypeFact
}

var _ symbols.Sink = (*Batch)(nil)

// Doc returns the document the batch belongs to.
func (b *Batch) Doc() source.DocID { return b.doc }

// Len reports the number of staged facts.
func (b *Batch) Len() int {
	return len(b.typeDefs) + len(b.generics) + len(b.supers) + len(b.bases) +
		len(b.operators) + len(b.overloads) + len(b.members) + len(b.globals) + len(b.globalTypes)
}

func (b *Batch) AddGlobal(name string, decl symbols.DeclID) {
	b.globals = append(b.globals, globalFact{name: name, decl: decl})
}

func (b *Batch) AddTypeDef(def symbols.TypeDef) {
	b.typeDefs = append(b.typeDefs, def)
}

// AddMember stages a member. Named owners that are reserved built-in names
// are redirected to the global bucket of the same name.
func (b *Batch) AddMember(owner types.Owner, m symbols.Member) {
	if owner.IsNamed() {
		if _, ok := b.reserved[string(owner)]; ok {
			owner = types.GlobalOwner(string(owner))
		}
	}
	b.members = append(b.members, memberFact{owner: owner, m: m})
}

func (b *Batch) AddSupers(name string, supers []*types.Type, elem source.ElementID) {
	b.supers = append(b.supers, supersFact{name: name, supers: supers, elem: elem})
}

func (b *Batch) AddGenerics(name string, params []string, elem source.ElementID) {
	b.generics = append(b.generics, genericsFact{name: name, params: params, elem: elem})
}

func (b *Batch) SetBaseType(name string, base *types.Type, elem source.ElementID) {
	b.bases = append(b.bases, baseFact{name: name, base: base, elem: elem})
}

func (b *Batch) AddOperator(owner string, op symbols.Operator) {
	b.operators = append(b.operators, operatorFact{owner: owner, op: op})
}

func (b *Batch) AddOverload(name string, sig *types.Type, elem source.ElementID) {
	b.overloads = append(b.overloads, overloadFact{name: name, sig: sig, elem: elem})
}

func (b *Batch) SetGlobalType(name string, t *types.Type) {
	b.globalTypes = append(b.globalTypes, globalTypeFact{name: name, t: t})
}

// Replay feeds the staged facts to s in category order: type definitions
// first, structural facts next, then declared members before implemented
// ones, and globals last.
func (b *Batch) Replay(s symbols.Sink) {
	for _, d := range b.typeDefs {
		s.AddTypeDef(d)
	}
	for _, f := range b.generics {
		s.AddGenerics(f.name, f.params, f.elem)
	}
	for _, f := range b.supers {
		s.AddSupers(f.name, f.supers, f.elem)
	}
	for _, f := range b.bases {
		s.SetBaseType(f.name, f.base, f.elem)
	}
	for _, f := range b.operators {
		s.AddOperator(f.owner, f.op)
	}
	for _, f := range b.overloads {
		s.AddOverload(f.name, f.sig, f.elem)
	}
	for _, declared := range []bool{true, false} {
		for _, f := range b.members {
			if f.m.Declared == declared {
				s.AddMember(f.owner, f.m)
			}
		}
	}
	for _, f := range b.globals {
		s.AddGlobal(f.name, f.decl)
	}
	for _, f := range b.globalTypes {
		s.SetGlobalType(f.name, f.t)
	}
}
