package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"luasema/internal/syntax"
	"luasema/internal/token"
)

func TestParseStatementKinds(t *testing.T) {
	src := `
local a, b <const> = 1, 2
local function f(x, ...) return x end
function M.sub.g(y) end
function M:h() end
a = b
print(a)
do end
while a do break end
repeat local z = 1 until z
if a then elseif b then else end
for i = 1, 10, 2 do end
for k, v in pairs(t) do end
goto done
::done::
`
	tree := mustParse(t, src)
	want := []syntax.NodeKind{
		syntax.NodeLocalStat, syntax.NodeLocalFuncStat, syntax.NodeFuncStat, syntax.NodeFuncStat,
		syntax.NodeAssignStat, syntax.NodeCallStat, syntax.NodeDoStat, syntax.NodeWhileStat,
		syntax.NodeRepeatStat, syntax.NodeIfStat, syntax.NodeForNumStat, syntax.NodeForInStat,
		syntax.NodeGotoStat, syntax.NodeLabelStat,
	}
	if diff := cmp.Diff(want, kindsOf(tree, stmts(tree))); diff != "" {
		t.Fatalf("statement kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLocalAttributes(t *testing.T) {
	tree := mustParse(t, "local a, b <const>, c <close> = 1")
	local := stmts(tree)[0]
	names := tree.Children(tree.Child(local, 0))
	require.Len(t, names, 3)
	require.Equal(t, "b", tree.Text(names[1]))
	require.True(t, tree.Node(names[1]).Has(syntax.FlagConst))
	require.True(t, tree.Node(names[2]).Has(syntax.FlagClose))
	require.Len(t, tree.Children(tree.Child(local, 1)), 1)
}

func TestParseMethodFuncStat(t *testing.T) {
	tree := mustParse(t, "function a.b:c(x) end")
	fn := stmts(tree)[0]
	require.True(t, tree.Node(fn).Has(syntax.FlagColon))

	target := tree.Child(fn, 0)
	require.Equal(t, syntax.NodeIndexExpr, tree.Kind(target))
	require.True(t, tree.Node(target).Has(syntax.FlagColon))
	require.Equal(t, "c", tree.Text(tree.Child(target, 1)))

	inner := tree.Child(target, 0)
	require.True(t, tree.Node(inner).Has(syntax.FlagDot))
	require.Equal(t, "a", tree.Text(tree.Child(inner, 0)))

	closure := tree.Child(fn, 1)
	require.Equal(t, syntax.NodeClosure, tree.Kind(closure))
	require.True(t, tree.Node(closure).Has(syntax.FlagColon))
}

func TestParsePrecedence(t *testing.T) {
	tree := mustParse(t, "x = 1 + 2 * 3 .. 'a' .. 'b'")
	values := tree.Child(stmts(tree)[0], 1)
	top := tree.Child(values, 0)
	// .. правоассоциативен и слабее +
	require.Equal(t, token.DotDot, tree.Node(top).Op)
	lhs := tree.Child(top, 0)
	require.Equal(t, token.Plus, tree.Node(lhs).Op)
	require.Equal(t, token.Star, tree.Node(tree.Child(lhs, 1)).Op)
	rhs := tree.Child(top, 1)
	require.Equal(t, token.DotDot, tree.Node(rhs).Op)
}

func TestParseUnaryAndPower(t *testing.T) {
	tree := mustParse(t, "x = -a ^ 2")
	top := tree.Child(tree.Child(stmts(tree)[0], 1), 0)
	require.Equal(t, syntax.NodeUnaryExpr, tree.Kind(top))
	require.Equal(t, token.Caret, tree.Node(tree.Child(top, 0)).Op)
}

func TestParseTableFields(t *testing.T) {
	tree := mustParse(t, "t = { a = 1, [k] = 2, 3, b.c; f(x) }")
	table := tree.Child(tree.Child(stmts(tree)[0], 1), 0)
	fields := tree.Children(table)
	require.Len(t, fields, 5)
	require.True(t, tree.Node(fields[0]).Has(syntax.FlagNamed))
	require.True(t, tree.Node(fields[1]).Has(syntax.FlagBracket))
	require.Len(t, tree.Children(fields[2]), 1)
	require.Equal(t, syntax.NodeIndexExpr, tree.Kind(tree.Child(fields[3], 0)))
	require.Equal(t, syntax.NodeCallExpr, tree.Kind(tree.Child(fields[4], 0)))
}

func TestParseCallSugar(t *testing.T) {
	tree := mustParse(t, `require "mod"; obj:method{1}`)
	calls := stmts(tree)
	require.Len(t, calls, 2)
	second := tree.Child(calls[1], 0)
	require.True(t, tree.Node(second).Has(syntax.FlagColon))
	args := tree.Child(second, 1)
	require.Equal(t, syntax.NodeTableExpr, tree.Kind(tree.Child(args, 0)))
}

func TestParseBlockSpans(t *testing.T) {
	src := "do local x = 1 end"
	tree := mustParse(t, src)
	do := stmts(tree)[0]
	block := tree.Child(do, 0)
	sp := tree.Span(block)
	require.Equal(t, uint32(2), sp.Start)
	require.Equal(t, uint32(15), sp.End)
	require.Equal(t, uint32(len(src)), tree.Span(tree.Root).End)
}

func TestParseRecoversFromErrors(t *testing.T) {
	tree := parseSnippet(t, "local = 1\nx = )\nlocal ok = true\n")
	if len(tree.Errors) == 0 {
		t.Fatalf("expected parse errors")
	}
	found := false
	for _, st := range stmts(tree) {
		if tree.Kind(st) == syntax.NodeLocalStat {
			names := tree.Children(tree.Child(st, 0))
			if len(names) == 1 && tree.Text(names[0]) == "ok" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected parser to recover and parse the last statement")
	}
}

func TestParseUnclosedBlockTerminates(t *testing.T) {
	tree := parseSnippet(t, "function f()\n  if x then\n")
	if len(tree.Errors) == 0 {
		t.Fatalf("expected errors for unclosed blocks")
	}
}

func TestNodeAt(t *testing.T) {
	src := "local value = other.field"
	tree := mustParse(t, src)
	id := tree.NodeAt(uint32(len("local value = other.f")))
	require.Equal(t, syntax.NodeString, tree.Kind(id))
	require.Equal(t, "field", tree.Text(id))

	id = tree.NodeAt(uint32(len("local value = oth")))
	require.Equal(t, syntax.NodeName, tree.Kind(id))
	require.Equal(t, "other", tree.Text(id))
}
