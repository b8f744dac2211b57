package lexer

import (
	"luasema/internal/token"
)

// scanNumber понимает десятичные и шестнадцатеричные числа Lua,
// включая дробную часть и экспоненту (e/E для dec, p/P для hex).
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	hex := false
	if lx.cursor.Peek() == '0' && (lx.cursor.PeekAt(1) == 'x' || lx.cursor.PeekAt(1) == 'X') {
		hex = true
		lx.cursor.Bump()
		lx.cursor.Bump()
	}
	digit := isDec
	expA, expB := byte('e'), byte('E')
	if hex {
		digit = isHex
		expA, expB = 'p', 'P'
	}
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case digit(b) || b == '.':
			lx.cursor.Bump()
		case b == expA || b == expB:
			lx.cursor.Bump()
			if s := lx.cursor.Peek(); s == '+' || s == '-' {
				lx.cursor.Bump()
			}
		default:
			goto done
		}
	}
done:
	// хвост вида 3abc это ошибка, но поглощаем его целиком
	if b := lx.cursor.Peek(); isIdentStartByte(b) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		lx.report(sp, "malformed number")
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.NumberLit, Span: sp, Text: lx.text(sp)}
}
