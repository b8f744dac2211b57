package parser

import (
	"strings"

	"luasema/internal/source"
)

// docScanner читает текст одной doc-строки после `@tag`.
type docScanner struct {
	src  string
	pos  int
	base uint32 // смещение src[0] в документе
	doc  source.DocID
}

func (s *docScanner) eof() bool { return s.pos >= len(s.src) }

func (s *docScanner) skipSpaces() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func (s *docScanner) peek() byte {
	s.skipSpaces()
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *docScanner) peekAt(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *docScanner) eat(b byte) bool {
	if s.peek() == b {
		s.pos++
		return true
	}
	return false
}

func (s *docScanner) eatWord(w string) bool {
	s.skipSpaces()
	if !strings.HasPrefix(s.src[s.pos:], w) {
		return false
	}
	end := s.pos + len(w)
	if end < len(s.src) && isNameByte(s.src[end]) {
		return false
	}
	s.pos = end
	return true
}

func (s *docScanner) span(start, end int) source.Span {
	return source.Span{
		Doc:   s.doc,
		Start: s.base + uint32(start), // #nosec G115 -- line length
		End:   s.base + uint32(end),   // #nosec G115 -- line length
	}
}

// name reads an identifier; dotted reads a.b.c as one name.
func (s *docScanner) name(dotted bool) (string, source.Span, bool) {
	s.skipSpaces()
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isNameByte(c) || (dotted && c == '.' && s.pos > start && s.pos+1 < len(s.src) && isNameByte(s.src[s.pos+1])) {
			s.pos++
			continue
		}
		break
	}
	if s.pos == start || isDigit(s.src[start]) {
		s.pos = start
		return "", source.Span{}, false
	}
	return s.src[start:s.pos], s.span(start, s.pos), true
}

// rest returns the remaining text, trimmed.
func (s *docScanner) rest() string {
	if s.eof() {
		return ""
	}
	out := strings.TrimSpace(s.src[s.pos:])
	s.pos = len(s.src)
	return strings.TrimPrefix(out, "@")
}

// attrs reads `(a, b)`.
func (s *docScanner) attrs() []string {
	if s.peek() != '(' {
		return nil
	}
	save := s.pos
	s.pos++
	var out []string
	for {
		n, _, ok := s.name(false)
		if !ok {
			break
		}
		out = append(out, n)
		if !s.eat(',') {
			break
		}
	}
	if !s.eat(')') {
		s.pos = save
		return nil
	}
	return out
}

// genericList reads `T, U: Base` up to an optional closing byte.
func (s *docScanner) genericList(closing byte) []string {
	var out []string
	for {
		n, _, ok := s.name(false)
		if !ok {
			break
		}
		out = append(out, n)
		if s.peek() == ':' {
			s.pos++
			parseType(s)
		}
		if !s.eat(',') {
			break
		}
	}
	if closing != 0 {
		s.eat(closing)
	}
	return out
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c) || c >= 0x80
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
