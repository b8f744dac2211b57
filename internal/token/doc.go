// Package token defines lexical token kinds and trivia for Lua sources.
// Invariants:
//   - Token.Span matches the source bytes of the token exactly.
//   - Token.Text is the identifier/number text, or the decoded body of a string literal.
//   - Comments never appear in the main token stream; they are attached as
//     leading Trivia of the next significant token.
//   - Doc comments ("---" lines) use TriviaDocLine so the parser can group them
//     without re-scanning the text.
package token
