package lexer

import (
	"luasema/internal/source"
	"luasema/internal/token"
)

// Error is a lexical problem. The lexer always recovers and keeps scanning.
type Error struct {
	Span source.Span
	Msg  string
}

type Lexer struct {
	doc    *source.Document
	cursor Cursor
	look   *token.Token   // 1 элементный буфер для токена
	hold   []token.Trivia // накопленные leading trivia
	errs   []Error
}

func New(doc *source.Document) *Lexer {
	return &Lexer{
		doc:    doc,
		cursor: NewCursor(doc),
	}
}

// Next возвращает следующий значимый токен с уже собранным Leading.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		tok := token.Token{
			Kind: token.EOF,
			Span: lx.emptySpan(),
		}
		// trailing comments stay visible for doc blocks at the end of a chunk
		tok.Leading = lx.hold
		lx.hold = nil
		return tok
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case isIdentStartByte(ch) || ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()

	case isDec(ch), ch == '.' && isDec(lx.cursor.PeekAt(1)):
		tok = lx.scanNumber()

	case ch == '"' || ch == '\'':
		tok = lx.scanString()

	case ch == '[' && lx.longBracketLevel() >= 0:
		tok = lx.scanLongString()

	default:
		tok = lx.scanOperatorOrPunct()
	}

	tok.Leading = lx.hold
	lx.hold = nil
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// Errors returns the lexical errors collected so far.
func (lx *Lexer) Errors() []Error {
	return lx.errs
}

func (lx *Lexer) report(sp source.Span, msg string) {
	lx.errs = append(lx.errs, Error{Span: sp, Msg: msg})
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{Doc: lx.doc.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.doc.Content[sp.Start:sp.End])
}
