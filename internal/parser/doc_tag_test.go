package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"luasema/internal/syntax"
	"luasema/internal/types"
)

func TestCommentAttachesToNextStatement(t *testing.T) {
	src := `---@class (partial, exact) Foo<T> : Base, Other
---@field name string
---@field [integer] boolean
---@field private count? integer
local Foo = {}
`
	tree := mustParse(t, src)
	st := stmts(tree)
	require.Len(t, st, 1)
	c := tree.Comments(st[0])
	require.NotNil(t, c)
	require.True(t, c.Doc)
	require.Len(t, c.Tags, 4)

	class := c.TypeDecl()
	require.Equal(t, syntax.TagClass, class.Kind)
	require.Equal(t, "Foo", class.Name)
	require.Equal(t, []string{"partial", "exact"}, class.Attrs)
	require.Equal(t, []string{"T"}, class.Generics)
	require.Len(t, class.Supers, 2)
	require.Equal(t, "Base", class.Supers[0].Name)
	require.Equal(t, "Foo", tree.Doc.Text(class.NameSpan))

	fields := c.TagsOf(syntax.TagField)
	require.Equal(t, "name", fields[0].Name)
	require.Equal(t, types.KindString, fields[0].Type.Kind)
	require.Equal(t, types.KindInteger, fields[1].KeyType.Kind)
	require.Equal(t, "", fields[1].Name)
	require.True(t, fields[2].Optional)
	require.True(t, fields[2].HasAttr("private"))
	require.Equal(t, "integer?", fields[2].Type.String())
}

func TestDetachedDocCommentBecomesDocStat(t *testing.T) {
	src := `---@class Lonely

local x = 1
---@alias Mode
---| "r"
---| "w"
`
	tree := mustParse(t, src)
	st := stmts(tree)
	require.Equal(t, []syntax.NodeKind{syntax.NodeDocStat, syntax.NodeLocalStat, syntax.NodeDocStat}, kindsOf(tree, st))
	require.Nil(t, tree.Comments(st[1]))

	alias := tree.Comments(st[2]).Tag(syntax.TagAlias)
	require.NotNil(t, alias)
	require.Equal(t, `"r"|"w"`, alias.Type.String())
}

func TestTrailingCommentDoesNotAttach(t *testing.T) {
	tree := mustParse(t, "local a = 1 --- trailing\nlocal b = 2\n")
	require.Nil(t, tree.Comments(stmts(tree)[1]))
}

func TestFunctionTags(t *testing.T) {
	src := `---@generic T
---@param list T[]
---@param fn? fun(item: T): boolean
---@param ... any
---@return T|nil first, integer index
---@overload fun(list: table): any
local function find(list, fn, ...) end
`
	tree := mustParse(t, src)
	c := tree.Comments(stmts(tree)[0])
	require.NotNil(t, c)

	require.Equal(t, []string{"T"}, c.Tag(syntax.TagGeneric).Generics)
	params := c.TagsOf(syntax.TagParam)
	require.Len(t, params, 3)
	require.Equal(t, "T[]", params[0].Type.String())
	require.True(t, params[1].Optional)
	require.Equal(t, types.KindSignature, params[1].Type.Kind)
	require.Equal(t, "fun(item: T): boolean", params[1].Type.String())
	require.Equal(t, "...", params[2].Name)

	ret := c.Tag(syntax.TagReturn)
	require.Len(t, ret.Types, 2)
	require.Equal(t, []string{"first", "index"}, ret.Names)
	require.Equal(t, "T?", ret.Types[0].String())

	require.Equal(t, types.KindSignature, c.Tag(syntax.TagOverload).Type.Kind)
}

func TestTypeExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want string
		kind types.Kind
	}{
		{"string", "string", types.KindString},
		{"table<string, integer>", "table<string, integer>", types.KindMap},
		{"(string|number)[]", "(string|number)[]", types.KindArray},
		{"Foo.Bar<T>", "Foo.Bar<T>", types.KindGeneric},
		{"{ x: number, y?: number }", "{ x: number, y?: number }", types.KindObject},
		{`"a" | 'b'`, `"a"|"b"`, types.KindUnion},
		{"fun(a: integer, ...): string", "fun(a: integer, ...): string", types.KindSignature},
		{"my.pkg.Type?", "my.pkg.Type?", types.KindUnion},
		{"42", "42", types.KindLiteral},
	}
	for _, tt := range tests {
		s := &docScanner{src: tt.src}
		got := parseType(s)
		if got == nil {
			t.Fatalf("%q: no type parsed", tt.src)
		}
		if got.Kind != tt.kind {
			t.Errorf("%q: expected kind %s, got %s", tt.src, tt.kind, got.Kind)
		}
		if got.String() != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.src, tt.want, got.String())
		}
	}
}

func TestMalformedTagsAreDropped(t *testing.T) {
	tree := mustParse(t, "---@class\n---@field\n---@type\nlocal x\n")
	c := tree.Comments(stmts(tree)[0])
	require.NotNil(t, c)
	require.Empty(t, c.Tags)
}

func TestOperatorAndNamespaceTags(t *testing.T) {
	src := `---@namespace game.core
---@using util
---@class Vec
---@operator add(Vec): Vec
---@operator unm: Vec
local Vec = {}
`
	tree := mustParse(t, src)
	c := tree.Comments(stmts(tree)[0])
	require.Equal(t, "game.core", c.Tag(syntax.TagNamespace).Name)
	require.Equal(t, "util", c.Tag(syntax.TagUsing).Name)
	ops := c.TagsOf(syntax.TagOperator)
	require.Len(t, ops, 2)
	require.Equal(t, "add", ops[0].Op)
	require.Len(t, ops[0].Operands, 1)
	require.Equal(t, "Vec", ops[0].Type.Name)
	require.Equal(t, "unm", ops[1].Op)
	require.Empty(t, ops[1].Operands)
}
