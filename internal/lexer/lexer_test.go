package lexer

import (
	"testing"

	"luasema/internal/source"
	"luasema/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Token, *Lexer) {
	t.Helper()
	ds := source.NewDocSet()
	doc := ds.PutVirtual("mem://lex.lua", src, 0)
	lx := New(doc)
	var out []token.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			break
		}
		if len(out) > 1000 {
			t.Fatalf("lexer did not terminate")
		}
	}
	return out, lx
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexerOperatorsAndKeywords(t *testing.T) {
	toks, lx := lexAll(t, "local x = a.b:c(...) .. 'q' // 2 ~= 3 >> 1 :: lbl ::")
	want := []token.Kind{
		token.KwLocal, token.Ident, token.Assign, token.Ident, token.Dot, token.Ident,
		token.Colon, token.Ident, token.LParen, token.Ellipsis, token.RParen, token.DotDot,
		token.StringLit, token.SlashSlash, token.NumberLit, token.TildeEq, token.NumberLit,
		token.Shr, token.NumberLit, token.ColonColon, token.Ident, token.ColonColon, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if len(lx.Errors()) != 0 {
		t.Fatalf("unexpected errors: %v", lx.Errors())
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"a\tb"`, "a\tb"},
		{`'it\'s'`, "it's"},
		{"[[\nlong]]", "long"},
		{"[==[a]]b]==]", "a]]b"},
		{`"\65\x42"`, "AB"},
	}
	for _, tt := range tests {
		toks, _ := lexAll(t, tt.src)
		if toks[0].Kind != token.StringLit {
			t.Fatalf("%q: expected string, got %s", tt.src, toks[0].Kind)
		}
		if toks[0].Text != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.src, tt.want, toks[0].Text)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	for _, src := range []string{"3", "3.0", "0x1F", "1e10", "0x1p4", ".5", "2E-3"} {
		toks, lx := lexAll(t, src)
		if toks[0].Kind != token.NumberLit || toks[0].Text != src {
			t.Errorf("%q: got %s %q", src, toks[0].Kind, toks[0].Text)
		}
		if len(lx.Errors()) != 0 {
			t.Errorf("%q: unexpected errors %v", src, lx.Errors())
		}
	}
}

func TestLexerCommentTrivia(t *testing.T) {
	src := "-- plain\n---@class Foo\n--[[ block\n]] local x --- trailing\n"
	toks, _ := lexAll(t, src)
	if toks[0].Kind != token.KwLocal {
		t.Fatalf("expected local, got %s", toks[0].Kind)
	}
	lead := toks[0].Leading
	if len(lead) != 3 {
		t.Fatalf("expected 3 leading trivia, got %d", len(lead))
	}
	if lead[0].Kind != token.TriviaLineComment || lead[0].Text != " plain" {
		t.Errorf("unexpected first trivia %+v", lead[0])
	}
	if !lead[1].IsDoc() || lead[1].Text != "@class Foo" {
		t.Errorf("unexpected doc trivia %+v", lead[1])
	}
	if lead[2].Kind != token.TriviaBlockComment {
		t.Errorf("expected block comment, got %+v", lead[2])
	}
	eof := toks[len(toks)-1]
	if eof.Kind != token.EOF || len(eof.Leading) != 1 || !eof.Leading[0].IsDoc() {
		t.Fatalf("expected trailing doc comment on EOF, got %+v", eof.Leading)
	}
}

func TestLexerRecoversFromGarbage(t *testing.T) {
	toks, lx := lexAll(t, "a $ b \"open\nc")
	if len(lx.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(lx.Errors()))
	}
	if toks[len(toks)-2].Text != "c" {
		t.Fatalf("expected lexing to continue after errors, got %q", toks[len(toks)-2].Text)
	}
}
