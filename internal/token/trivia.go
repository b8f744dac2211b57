package token

import "luasema/internal/source"

// TriviaKind classifies non-significant source text.
type TriviaKind uint8

const (
	TriviaLineComment  TriviaKind = iota // -- text
	TriviaBlockComment                   // --[[ text ]]
	TriviaDocLine                        // --- text
)

// Trivia is a comment preceding a significant token.
type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string // без префикса "--"/"---"
}

// IsDoc reports whether the trivia is a doc comment line.
func (t Trivia) IsDoc() bool { return t.Kind == TriviaDocLine }
