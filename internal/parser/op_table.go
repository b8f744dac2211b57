package parser

import (
	"luasema/internal/token"
)

// Таблица приоритетов бинарных операторов Lua 5.4.
// Чем больше число, тем выше приоритет
const (
	precOr         = 1  // or
	precAnd        = 2  // and
	precComparison = 3  // < > <= >= ~= ==
	precBitOr      = 4  // |
	precBitXor     = 5  // ~
	precBitAnd     = 6  // &
	precShift      = 7  // << >>
	precConcat     = 9  // .. (правоассоциативный)
	precAdditive   = 10 // + -
	precMul        = 11 // * / // %
	precUnary      = 12 // not # - ~
	precPow        = 14 // ^ (правоассоциативный)
)

// binaryPrec возвращает (левый, правый) приоритет оператора; 0, если не бинарный.
func binaryPrec(kind token.Kind) (left, right int) {
	switch kind {
	case token.KwOr:
		return precOr, precOr
	case token.KwAnd:
		return precAnd, precAnd
	case token.Lt, token.Gt, token.LtEq, token.GtEq, token.TildeEq, token.EqEq:
		return precComparison, precComparison
	case token.Pipe:
		return precBitOr, precBitOr
	case token.Tilde:
		return precBitXor, precBitXor
	case token.Amp:
		return precBitAnd, precBitAnd
	case token.Shl, token.Shr:
		return precShift, precShift
	case token.DotDot:
		return precConcat, precConcat - 1
	case token.Plus, token.Minus:
		return precAdditive, precAdditive
	case token.Star, token.Slash, token.SlashSlash, token.Percent:
		return precMul, precMul
	case token.Caret:
		return precPow, precPow - 1
	default:
		return 0, 0
	}
}

func isUnaryOp(kind token.Kind) bool {
	switch kind {
	case token.KwNot, token.Minus, token.Hash, token.Tilde:
		return true
	default:
		return false
	}
}
