package lexer

import (
	"luasema/internal/token"
)

// collectLeadingTrivia собирает комментарии перед значимым токеном.
// Пробелы и переводы строк пропускаются: парсер восстанавливает
// смежность по номерам строк.
// - --...     -> TriviaLineComment
// - --[[...]] -> TriviaBlockComment
// - ---...    -> TriviaDocLine
func (lx *Lexer) collectLeadingTrivia() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			lx.cursor.Bump()
			continue
		case '-':
			if lx.cursor.PeekAt(1) == '-' {
				lx.scanComment()
				continue
			}
		case '#':
			// shebang в первой строке
			if lx.cursor.Off == 0 && lx.cursor.PeekAt(1) == '!' {
				lx.skipLine()
				continue
			}
		}
		return
	}
}

func (lx *Lexer) scanComment() {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()

	if lx.longBracketLevel() >= 0 {
		body, closed := lx.scanLongBody()
		sp := lx.cursor.SpanFrom(start)
		if !closed {
			lx.report(sp, "unfinished long comment")
		}
		lx.hold = append(lx.hold, token.Trivia{Kind: token.TriviaBlockComment, Span: sp, Text: body})
		return
	}

	kind := token.TriviaLineComment
	if lx.cursor.Peek() == '-' {
		lx.cursor.Bump()
		kind = token.TriviaDocLine
	}
	textStart := lx.cursor.Off
	lx.skipLine()
	sp := lx.cursor.SpanFrom(start)
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: sp,
		Text: string(lx.doc.Content[textStart:sp.End]),
	})
}

// skipLine двигает курсор до '\n' (не включая его).
func (lx *Lexer) skipLine() {
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
}
