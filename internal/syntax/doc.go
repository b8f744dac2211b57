package syntax

import (
	"slices"

	"luasema/internal/source"
	"luasema/internal/types"
)

// TagKind identifies a doc annotation.
type TagKind uint8

const (
	TagOther TagKind = iota
	TagClass
	TagInterface
	TagEnum
	TagAlias
	TagField
	TagType
	TagParam
	TagReturn
	TagGeneric
	TagOperator
	TagOverload
	TagNamespace
	TagUsing
)

var tagKindNames = [...]string{
	TagOther:     "other",
	TagClass:     "class",
	TagInterface: "interface",
	TagEnum:      "enum",
	TagAlias:     "alias",
	TagField:     "field",
	TagType:      "type",
	TagParam:     "param",
	TagReturn:    "return",
	TagGeneric:   "generic",
	TagOperator:  "operator",
	TagOverload:  "overload",
	TagNamespace: "namespace",
	TagUsing:     "using",
}

func (k TagKind) String() string {
	if int(k) < len(tagKindNames) {
		return tagKindNames[k]
	}
	return "other"
}

// LookupTag maps an annotation name to its kind.
func LookupTag(name string) TagKind {
	for k, n := range tagKindNames {
		if n == name && k != int(TagOther) {
			return TagKind(k) // #nosec G115 -- small table
		}
	}
	return TagOther
}

// IsTypeDecl reports whether the tag declares a named type.
func (k TagKind) IsTypeDecl() bool {
	switch k {
	case TagClass, TagInterface, TagEnum, TagAlias:
		return true
	default:
		return false
	}
}

// DocTag is one parsed `---@tag ...` line. Fields not used by a tag kind stay zero.
type DocTag struct {
	Kind     TagKind
	Raw      string // annotation name as written
	Span     source.Span
	Name     string
	NameSpan source.Span
	Attrs    []string // (partial, exact), (key)
	Generics []string
	Supers   []*types.Type
	Type     *types.Type
	Types    []*types.Type
	Names    []string // @return names, @using/@generic lists
	Optional bool
	KeyType  *types.Type // @field [K] V
	Op       string      // @operator name
	Operands []*types.Type
	Text     string // description tail
}

// HasAttr reports whether the tag carries attribute a.
func (t *DocTag) HasAttr(a string) bool {
	return slices.Contains(t.Attrs, a)
}

// Comment is a group of consecutive comment lines.
type Comment struct {
	Span  source.Span
	Lines []string
	Tags  []DocTag
	Doc   bool // contains at least one `---` line
}

// Tag returns the first tag of kind k.
func (c *Comment) Tag(k TagKind) *DocTag {
	for i := range c.Tags {
		if c.Tags[i].Kind == k {
			return &c.Tags[i]
		}
	}
	return nil
}

// TagsOf returns all tags of kind k.
func (c *Comment) TagsOf(k TagKind) []*DocTag {
	var out []*DocTag
	for i := range c.Tags {
		if c.Tags[i].Kind == k {
			out = append(out, &c.Tags[i])
		}
	}
	return out
}

// TypeDecl returns the class/interface/enum/alias tag of the comment.
func (c *Comment) TypeDecl() *DocTag {
	for i := range c.Tags {
		if c.Tags[i].Kind.IsTypeDecl() {
			return &c.Tags[i]
		}
	}
	return nil
}
