package lexer

import (
	"luasema/internal/token"
)

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Bump()
	next := lx.cursor.Peek()
	kind := token.Invalid

	pick := func(second byte, two, one token.Kind) token.Kind {
		if next == second {
			lx.cursor.Bump()
			return two
		}
		return one
	}

	switch b {
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '*':
		kind = token.Star
	case '/':
		kind = pick('/', token.SlashSlash, token.Slash)
	case '%':
		kind = token.Percent
	case '^':
		kind = token.Caret
	case '#':
		kind = token.Hash
	case '&':
		kind = token.Amp
	case '~':
		kind = pick('=', token.TildeEq, token.Tilde)
	case '|':
		kind = token.Pipe
	case '<':
		switch next {
		case '<':
			lx.cursor.Bump()
			kind = token.Shl
		case '=':
			lx.cursor.Bump()
			kind = token.LtEq
		default:
			kind = token.Lt
		}
	case '>':
		switch next {
		case '>':
			lx.cursor.Bump()
			kind = token.Shr
		case '=':
			lx.cursor.Bump()
			kind = token.GtEq
		default:
			kind = token.Gt
		}
	case '=':
		kind = pick('=', token.EqEq, token.Assign)
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case ';':
		kind = token.Semicolon
	case ':':
		kind = pick(':', token.ColonColon, token.Colon)
	case ',':
		kind = token.Comma
	case '.':
		if next == '.' {
			lx.cursor.Bump()
			kind = token.DotDot
			if lx.cursor.Eat('.') {
				kind = token.Ellipsis
			}
		} else {
			kind = token.Dot
		}
	}

	sp := lx.cursor.SpanFrom(start)
	if kind == token.Invalid {
		lx.report(sp, "unexpected character")
	}
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}
