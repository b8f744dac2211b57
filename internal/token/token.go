package token

import (
	"luasema/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a nil, boolean, number or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case KwNil, KwTrue, KwFalse, NumberLit, StringLit:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
