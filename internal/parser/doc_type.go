package parser

import (
	"strings"

	"luasema/internal/types"
)

// parseType reads a type expression:
//
//	type    = ['|'] postfix {'|' postfix}
//	postfix = primary {'[]' | '?'}
//	primary = fun(...) [: ret] | { fields } | ( type ) | literal | Name [<args>]
//
// Returns nil when nothing type-like is at the cursor.
func parseType(s *docScanner) *types.Type {
	s.eat('|')
	first := parsePostfixType(s)
	if first == nil {
		return nil
	}
	items := []*types.Type{first}
	for s.peek() == '|' {
		s.pos++
		next := parsePostfixType(s)
		if next == nil {
			break
		}
		items = append(items, next)
	}
	if len(items) == 1 {
		return first
	}
	return types.Union(items...)
}

func parsePostfixType(s *docScanner) *types.Type {
	t := parsePrimaryType(s)
	if t == nil {
		return nil
	}
	for {
		if s.peek() == '[' && s.peekAt(1) == ']' {
			s.pos += 2
			t = types.ArrayOf(t)
			continue
		}
		if s.peek() == '?' {
			s.pos++
			t = types.Optional(t)
			continue
		}
		return t
	}
}

func parsePrimaryType(s *docScanner) *types.Type {
	switch c := s.peek(); {
	case c == '(':
		s.pos++
		inner := parseType(s)
		if s.eat(',') {
			// (a, b): список возвращаемых значений
			items := []*types.Type{inner.OrUnknown()}
			for {
				next := parseType(s)
				if next == nil {
					break
				}
				items = append(items, next)
				if !s.eat(',') {
					break
				}
			}
			s.eat(')')
			return types.TupleOf(items...)
		}
		s.eat(')')
		return inner
	case c == '{':
		return parseObjectType(s)
	case c == '"' || c == '\'' || c == '`':
		return parseStringLiteralType(s, c)
	case isDigit(c) || (c == '-' && isDigit(s.peekAt(1))):
		start := s.pos
		s.pos++
		kind := types.KindInteger
		for !s.eof() && (isDigit(s.src[s.pos]) || s.src[s.pos] == '.') {
			if s.src[s.pos] == '.' {
				kind = types.KindNumber
			}
			s.pos++
		}
		return types.Literal(kind, s.src[start:s.pos])
	case c == '.' && strings.HasPrefix(s.src[s.pos:], "..."):
		s.pos += 3
		return types.Any
	}

	if s.eatWord("fun") {
		return parseFunType(s)
	}
	if s.eatWord("true") {
		return types.Literal(types.KindBoolean, "true")
	}
	if s.eatWord("false") {
		return types.Literal(types.KindBoolean, "false")
	}

	name, _, ok := s.name(true)
	if !ok {
		return nil
	}
	if s.peek() == '<' {
		s.pos++
		var args []*types.Type
		for {
			arg := parseType(s)
			if arg == nil {
				break
			}
			args = append(args, arg)
			if !s.eat(',') {
				break
			}
		}
		s.eat('>')
		if name == "table" && len(args) == 2 {
			return types.MapOf(args[0], args[1])
		}
		if name == "table" && len(args) == 1 {
			return types.MapOf(types.Any, args[0])
		}
		return types.Generic(name, nil, args...)
	}
	return types.FromName(name, nil)
}

func parseStringLiteralType(s *docScanner, quote byte) *types.Type {
	s.pos++
	start := s.pos
	for !s.eof() && s.src[s.pos] != quote {
		s.pos++
	}
	text := s.src[start:s.pos]
	if !s.eof() {
		s.pos++
	}
	return types.Literal(types.KindString, text)
}

// parseFunType: fun(a: T, b?: U, ...: V): R1, R2; the return list has no parens
// takes a single type so outer comma lists stay unambiguous.
func parseFunType(s *docScanner) *types.Type {
	sig := &types.Type{Kind: types.KindSignature}
	if s.eat('<') {
		sig.Generics = s.genericList('>')
	}
	if !s.eat('(') {
		return types.Function
	}
	for s.peek() != ')' && !s.eof() {
		if strings.HasPrefix(s.src[s.pos:], "...") {
			s.pos += 3
			sig.Vararg = true
			if s.eat(':') {
				parseType(s)
			}
		} else {
			name, _, ok := s.name(false)
			if !ok {
				break
			}
			param := types.Param{Name: name}
			if s.eat('?') {
				param.Optional = true
			}
			if s.eat(':') {
				param.Type = parseType(s)
			}
			if name == "self" && len(sig.Params) == 0 && param.Type == nil {
				sig.Method = true
			}
			sig.Params = append(sig.Params, param)
		}
		if !s.eat(',') {
			break
		}
	}
	s.eat(')')
	if s.eat(':') {
		if ret := parseType(s); ret != nil {
			if ret.Kind == types.KindTuple {
				sig.Returns = ret.Items
			} else {
				sig.Returns = []*types.Type{ret}
			}
		}
	}
	return sig
}

func parseObjectType(s *docScanner) *types.Type {
	s.pos++ // {
	obj := &types.Type{Kind: types.KindObject}
	var mapKey, mapValue *types.Type
	for s.peek() != '}' && !s.eof() {
		if s.eat('[') {
			mapKey = parseType(s)
			s.eat(']')
			s.eat(':')
			mapValue = parseType(s)
		} else {
			name, _, ok := s.name(false)
			if !ok {
				break
			}
			f := types.Field{Name: name}
			if s.eat('?') {
				f.Optional = true
			}
			if s.eat(':') {
				f.Type = parseType(s)
			}
			obj.Fields = append(obj.Fields, f)
		}
		if !s.eat(',') && !s.eat(';') {
			break
		}
	}
	s.eat('}')
	if len(obj.Fields) == 0 && mapKey != nil {
		return types.MapOf(mapKey, mapValue.OrUnknown())
	}
	return obj
}
