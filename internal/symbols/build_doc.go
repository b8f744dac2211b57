package symbols

import (
	"slices"

	"luasema/internal/syntax"
	"luasema/internal/types"
)

// docInfo is what a statement's doc comment contributes to its bindings.
type docInfo struct {
	typeDecl      DeclID
	typeName      string // fully qualified
	typeKind      TypeKind
	typ           *types.Type
	classGenerics []string

	types     []*types.Type
	params    map[string]*syntax.DocTag
	returns   []*types.Type
	hasReturn bool
	generics  []string
	overloads []*types.Type
}

func (i *docInfo) declaresType() bool { return i.typeDecl.IsValid() }

// applyDoc processes the tags of c in order. Type declarations, fields and
// operators are declared immediately; the rest is returned for the statement.
func (b *builder) applyDoc(c *syntax.Comment, stat syntax.NodeID) *docInfo {
	info := &docInfo{}
	if c == nil {
		return info
	}
	for i := range c.Tags {
		tag := &c.Tags[i]
		switch tag.Kind {
		case syntax.TagNamespace:
			b.ns = &types.NameScope{Namespace: tag.Name}
		case syntax.TagUsing:
			b.ns = &types.NameScope{
				Namespace: b.ns.Namespace,
				Using:     append(slices.Clone(b.ns.Using), tag.Name),
			}
		case syntax.TagClass, syntax.TagInterface, syntax.TagEnum, syntax.TagAlias:
			if info.declaresType() {
				// один тип на комментарий; остальные объявления идут отдельными элементы
				b.declareType(tag, stat, &docInfo{})
				continue
			}
			b.declareType(tag, stat, info)
		case syntax.TagField:
			if info.declaresType() {
				b.declareField(tag, stat, info)
			}
		case syntax.TagOperator:
			if info.declaresType() {
				operands := make([]*types.Type, len(tag.Operands))
				for j, op := range tag.Operands {
					operands[j] = b.scoped(op, info.classGenerics)
				}
				b.sink.AddOperator(info.typeName, Operator{
					Op:       tag.Op,
					Operands: operands,
					Result:   b.scoped(tag.Type, info.classGenerics),
					Elem:     tag.Span.Element(),
				})
			}
		case syntax.TagType:
			info.types = tag.Types
		case syntax.TagParam:
			if info.params == nil {
				info.params = make(map[string]*syntax.DocTag)
			}
			info.params[tag.Name] = tag
		case syntax.TagReturn:
			info.hasReturn = true
			info.returns = append(info.returns, tag.Types...)
		case syntax.TagGeneric:
			info.generics = append(info.generics, tag.Generics...)
		case syntax.TagOverload:
			info.overloads = append(info.overloads, tag.Type)
		}
	}
	return info
}

func (b *builder) declareType(tag *syntax.DocTag, stat syntax.NodeID, info *docInfo) {
	fqn := types.Qualify(b.ns.Namespace, tag.Name)
	kind := TypeKindOf(tag.Kind)
	named := types.Named(fqn, nil)
	elem := tag.NameSpan.Element()

	id := b.declare(b.current(), tag.NameSpan.Start, Decl{
		Name:  tag.Name,
		Span:  tag.NameSpan,
		Stat:  stat,
		Flags: DeclTypeDecl,
		Type:  named,
	})
	b.sink.AddTypeDef(TypeDef{Name: fqn, Kind: kind, Attrs: tag.Attrs, Decl: id, Elem: elem})

	if len(tag.Generics) > 0 {
		b.sink.AddGenerics(fqn, tag.Generics, elem)
	}
	if len(tag.Supers) > 0 {
		supers := make([]*types.Type, len(tag.Supers))
		for i, s := range tag.Supers {
			supers[i] = b.scoped(s, tag.Generics)
		}
		b.sink.AddSupers(fqn, supers, elem)
	}
	if (kind == TypeAlias || kind == TypeEnum) && tag.Type != nil {
		b.sink.SetBaseType(fqn, b.scoped(tag.Type, tag.Generics), elem)
	}

	info.typeDecl = id
	info.typeName = fqn
	info.typeKind = kind
	info.typ = named
	info.classGenerics = tag.Generics
}

func (b *builder) declareField(tag *syntax.DocTag, stat syntax.NodeID, info *docInfo) {
	name := tag.Name
	span := tag.NameSpan
	if tag.KeyType != nil {
		name = IndexKey(tag.KeyType)
		span = tag.Span
	}
	owner := types.NamedOwner(info.typeName)
	id := b.member(Decl{
		Name:  name,
		Span:  span,
		Stat:  stat,
		Flags: DeclClassMember | DeclField,
		Type:  b.scoped(tag.Type, info.classGenerics),
		Owner: owner,
	})
	b.sink.AddMember(owner, Member{Name: name, Decl: id, Elem: tag.Span.Element(), Declared: true})
}

// IndexKey is the member name of an index signature `@field [K] V`.
func IndexKey(key *types.Type) string {
	return "[" + key.String() + "]"
}
