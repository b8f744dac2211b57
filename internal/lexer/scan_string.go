package lexer

import (
	"strings"

	"luasema/internal/token"
)

// scanString читает короткую строку в кавычках '...' или "...".
// Text содержит декодированное тело; незакрытая строка обрывается на \n.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	quote := lx.cursor.Bump()
	var b strings.Builder
	closed := false
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		if ch == quote {
			lx.cursor.Bump()
			closed = true
			break
		}
		if ch == '\n' {
			break
		}
		if ch == '\\' {
			lx.cursor.Bump()
			lx.scanEscape(&b)
			continue
		}
		b.WriteByte(lx.cursor.Bump())
	}
	sp := lx.cursor.SpanFrom(start)
	if !closed {
		lx.report(sp, "unfinished string")
	}
	return token.Token{Kind: token.StringLit, Span: sp, Text: b.String()}
}

func (lx *Lexer) scanEscape(b *strings.Builder) {
	ch := lx.cursor.Bump()
	switch ch {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case 'z':
		for {
			c := lx.cursor.Peek()
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				break
			}
			lx.cursor.Bump()
		}
	case 'x':
		var v byte
		for i := 0; i < 2 && isHex(lx.cursor.Peek()); i++ {
			v = v<<4 | hexValue(lx.cursor.Bump())
		}
		b.WriteByte(v)
	case 'u':
		// \u{XXX}: тело оставляем как есть, для анализа оно не важно
		b.WriteString("\\u")
	default:
		if isDec(ch) {
			v := int(ch - '0')
			for i := 0; i < 2 && isDec(lx.cursor.Peek()); i++ {
				v = v*10 + int(lx.cursor.Bump()-'0')
			}
			b.WriteByte(byte(v & 0xFF)) // #nosec G115 -- masked
			return
		}
		b.WriteByte(ch)
	}
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// longBracketLevel возвращает уровень открывающей скобки [==[ или -1,
// не сдвигая курсор.
func (lx *Lexer) longBracketLevel() int {
	if lx.cursor.Peek() != '[' {
		return -1
	}
	var n uint32 = 1
	level := 0
	for lx.cursor.PeekAt(n) == '=' {
		level++
		n++
	}
	if lx.cursor.PeekAt(n) != '[' {
		return -1
	}
	return level
}

// scanLongBody поглощает [==[ ... ]==] и возвращает тело.
func (lx *Lexer) scanLongBody() (string, bool) {
	level := lx.longBracketLevel()
	lx.cursor.Bump()
	for range level {
		lx.cursor.Bump()
	}
	lx.cursor.Bump()
	// первый перевод строки сразу после скобки не входит в тело
	lx.cursor.Eat('\n')
	bodyStart := lx.cursor.Off
	for !lx.cursor.EOF() {
		if lx.cursor.Peek() == ']' {
			end := lx.cursor.Off
			var n uint32 = 1
			eq := 0
			for lx.cursor.PeekAt(n) == '=' {
				eq++
				n++
			}
			if eq == level && lx.cursor.PeekAt(n) == ']' {
				lx.cursor.Off += n + 1
				return string(lx.doc.Content[bodyStart:end]), true
			}
		}
		lx.cursor.Bump()
	}
	return string(lx.doc.Content[bodyStart:lx.cursor.Off]), false
}

func (lx *Lexer) scanLongString() token.Token {
	start := lx.cursor.Mark()
	body, closed := lx.scanLongBody()
	sp := lx.cursor.SpanFrom(start)
	if !closed {
		lx.report(sp, "unfinished long string")
	}
	return token.Token{Kind: token.StringLit, Span: sp, Text: body}
}
