package parser

import (
	"luasema/internal/source"
	"luasema/internal/syntax"
	"luasema/internal/types"
)

var fieldVisibility = []string{"public", "private", "protected", "package"}

// parseTag разбирает текст после '@'. Malformed tags still yield a tag with
// the fields that could be read; a tag without its mandatory name reports !ok.
func parseTag(text string, base uint32, line source.Span) (syntax.DocTag, bool) {
	s := &docScanner{src: text, base: base, doc: line.Doc}
	raw, _, ok := s.name(false)
	if !ok {
		return syntax.DocTag{}, false
	}
	tag := syntax.DocTag{Kind: syntax.LookupTag(raw), Raw: raw, Span: line}

	switch tag.Kind {
	case syntax.TagClass, syntax.TagInterface:
		tag.Attrs = s.attrs()
		if !readName(s, &tag, true) {
			return tag, false
		}
		if s.peek() == '<' {
			s.pos++
			tag.Generics = s.genericList('>')
		}
		if s.eat(':') {
			for {
				super := parseType(s)
				if super == nil {
					break
				}
				tag.Supers = append(tag.Supers, super)
				if !s.eat(',') {
					break
				}
			}
		}

	case syntax.TagEnum:
		tag.Attrs = s.attrs()
		if !readName(s, &tag, true) {
			return tag, false
		}
		if s.eat(':') {
			tag.Type = parseType(s)
		}

	case syntax.TagAlias:
		if !readName(s, &tag, true) {
			return tag, false
		}
		if s.peek() == '<' {
			s.pos++
			tag.Generics = s.genericList('>')
		}
		tag.Type = parseType(s)

	case syntax.TagField:
		tag.Attrs = s.attrs()
		for _, v := range fieldVisibility {
			if s.eatWord(v) {
				tag.Attrs = append(tag.Attrs, v)
				break
			}
		}
		if s.eat('[') {
			tag.KeyType = parseType(s)
			s.eat(']')
			if tag.KeyType != nil && tag.KeyType.Kind == types.KindLiteral && tag.KeyType.LitKind == types.KindString {
				// [ "name" ] эквивалентно name
				tag.Name = tag.KeyType.Lit
				tag.KeyType = nil
			}
		} else if !readName(s, &tag, false) {
			return tag, false
		}
		if s.eat('?') {
			tag.Optional = true
		}
		tag.Type = parseType(s)
		if tag.Type == nil {
			tag.Type = types.Any
		}
		if tag.Optional {
			tag.Type = types.Optional(tag.Type)
		}

	case syntax.TagParam:
		if s.peek() == '.' && s.peekAt(1) == '.' && s.peekAt(2) == '.' {
			start := s.pos
			s.pos += 3
			tag.Name, tag.NameSpan = "...", s.span(start, s.pos)
		} else if !readName(s, &tag, false) {
			return tag, false
		}
		if s.eat('?') {
			tag.Optional = true
		}
		tag.Type = parseType(s)
		if tag.Type == nil {
			tag.Type = types.Any
		}

	case syntax.TagType:
		for {
			t := parseType(s)
			if t == nil {
				break
			}
			tag.Types = append(tag.Types, t)
			if !s.eat(',') {
				break
			}
		}
		if len(tag.Types) == 0 {
			return tag, false
		}
		tag.Type = tag.Types[0]

	case syntax.TagReturn:
		for {
			t := parseType(s)
			if t == nil {
				break
			}
			tag.Types = append(tag.Types, t)
			name, _, _ := s.name(false)
			tag.Names = append(tag.Names, name)
			if !s.eat(',') {
				break
			}
		}

	case syntax.TagGeneric:
		tag.Generics = s.genericList(0)
		tag.Names = tag.Generics
		if len(tag.Generics) == 0 {
			return tag, false
		}

	case syntax.TagOperator:
		op, _, ok := s.name(false)
		if !ok {
			return tag, false
		}
		tag.Op = op
		if s.eat('(') {
			for {
				t := parseType(s)
				if t == nil {
					break
				}
				tag.Operands = append(tag.Operands, t)
				if !s.eat(',') {
					break
				}
			}
			s.eat(')')
		}
		if s.eat(':') {
			tag.Type = parseType(s)
		}

	case syntax.TagOverload:
		tag.Type = parseType(s)
		if tag.Type == nil || tag.Type.Kind != types.KindSignature {
			return tag, false
		}

	case syntax.TagNamespace, syntax.TagUsing:
		if !readName(s, &tag, true) {
			return tag, false
		}
	}

	tag.Text = s.rest()
	return tag, true
}

func readName(s *docScanner, tag *syntax.DocTag, dotted bool) bool {
	name, sp, ok := s.name(dotted)
	if !ok {
		return false
	}
	tag.Name, tag.NameSpan = name, sp
	return true
}

// extendAlias handles `---| "value"` continuation lines of an @alias.
func extendAlias(c *syntax.Comment, text string, base uint32, doc source.DocID) {
	if len(c.Tags) == 0 {
		return
	}
	last := &c.Tags[len(c.Tags)-1]
	if last.Kind != syntax.TagAlias {
		return
	}
	s := &docScanner{src: text, base: base, doc: doc}
	s.eat('>') // `---|>` marks the default value
	if t := parsePostfixType(s); t != nil {
		last.Type = types.Union(last.Type, t)
	}
}
