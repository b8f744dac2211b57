package parser

import (
	"luasema/internal/source"
	"luasema/internal/syntax"
	"luasema/internal/token"
)

func (p *Parser) parseExpr() syntax.NodeID {
	return p.parseSubExpr(0, syntax.NoNodeID)
}

func (p *Parser) parseExprList() syntax.NodeID {
	start := p.here()
	list := p.b.New(syntax.NodeExprList, start, p.parseExpr())
	for p.accept(token.Comma) {
		p.b.Attach(list, p.parseExpr())
	}
	p.b.Node(list).Span = p.spanFrom(start)
	return list
}

// parseSubExpr does precedence climbing. A valid first is an already parsed
// suffixed expression the binary chain continues from.
func (p *Parser) parseSubExpr(limit int, first syntax.NodeID) syntax.NodeID {
	var left syntax.NodeID
	switch {
	case first.IsValid():
		left = first
	case isUnaryOp(p.peek().Kind):
		op := p.advance()
		operand := p.parseSubExpr(precUnary, syntax.NoNodeID)
		left = p.b.New(syntax.NodeUnaryExpr, p.spanFrom(op.Span), operand)
		p.b.Node(left).Op = op.Kind
	default:
		left = p.parseSimple()
	}

	for {
		op := p.peek().Kind
		lp, rp := binaryPrec(op)
		if lp == 0 || lp <= limit {
			return left
		}
		p.advance()
		right := p.parseSubExpr(rp, syntax.NoNodeID)
		start := p.b.Node(left).Span
		left = p.b.New(syntax.NodeBinaryExpr, p.spanFrom(start), left, right)
		p.b.Node(left).Op = op
	}
}

func (p *Parser) parseSimple() syntax.NodeID {
	tok := p.peek()
	var kind syntax.NodeKind
	switch tok.Kind {
	case token.KwNil:
		kind = syntax.NodeNil
	case token.KwTrue:
		kind = syntax.NodeTrue
	case token.KwFalse:
		kind = syntax.NodeFalse
	case token.NumberLit:
		kind = syntax.NodeNumber
	case token.StringLit:
		kind = syntax.NodeString
	case token.Ellipsis:
		kind = syntax.NodeVararg
	case token.KwFunction:
		p.advance()
		return p.parseFuncBody(tok.Span, false)
	case token.LBrace:
		return p.parseTable()
	default:
		return p.parseSuffixed()
	}
	p.advance()
	id := p.b.New(kind, tok.Span)
	n := p.b.Node(id)
	n.Op = tok.Kind
	n.Text = tok.Text
	return id
}

func (p *Parser) parsePrimary() syntax.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.nameExpr(tok)
	case token.LParen:
		p.advance()
		inner := p.parseExpr()
		p.expectClose(token.RParen, tok)
		return p.b.New(syntax.NodeParenExpr, p.spanFrom(tok.Span), inner)
	default:
		p.err("unexpected " + tok.Kind.String() + " in expression")
		return p.missing()
	}
}

func (p *Parser) parseSuffixed() syntax.NodeID {
	return p.parseSuffixes(p.parsePrimary())
}

func (p *Parser) parseSuffixes(prefix syntax.NodeID) syntax.NodeID {
	for {
		tok := p.peek()
		switch tok.Kind {
		case token.Dot:
			p.advance()
			key, ok := p.expect(token.Ident)
			if !ok {
				return prefix
			}
			prefix = p.fieldIndex(prefix, tok, key)
		case token.LBracket:
			p.advance()
			key := p.parseExpr()
			p.expectClose(token.RBracket, tok)
			start := p.b.Node(prefix).Span
			prefix = p.b.New(syntax.NodeIndexExpr, p.spanFrom(start), prefix, key)
			p.b.Node(prefix).Flags |= syntax.FlagBracket
		case token.Colon:
			p.advance()
			key, ok := p.expect(token.Ident)
			if !ok {
				return prefix
			}
			callee := p.fieldIndex(prefix, tok, key)
			prefix = p.parseCall(callee, syntax.FlagColon)
		case token.LParen, token.StringLit, token.LBrace:
			// `f\n(g)` в Lua тоже вызов; не различаем
			prefix = p.parseCall(prefix, 0)
		default:
			return prefix
		}
	}
}

func (p *Parser) parseCall(callee syntax.NodeID, flags syntax.NodeFlags) syntax.NodeID {
	tok := p.peek()
	args := p.b.New(syntax.NodeArgList, tok.Span)
	switch tok.Kind {
	case token.StringLit:
		p.b.Attach(args, p.parseSimple())
	case token.LBrace:
		p.b.Attach(args, p.parseTable())
	case token.LParen:
		p.advance()
		if !p.at(token.RParen) {
			p.b.Attach(args, p.parseExpr())
			for p.accept(token.Comma) {
				p.b.Attach(args, p.parseExpr())
			}
		}
		p.expectClose(token.RParen, tok)
	default:
		p.err("expected call arguments")
	}
	p.b.Node(args).Span = p.spanFrom(tok.Span)
	start := p.b.Node(callee).Span
	call := p.b.New(syntax.NodeCallExpr, p.spanFrom(start), callee, args)
	p.b.Node(call).Flags |= flags
	return call
}

func (p *Parser) nameExpr(tok token.Token) syntax.NodeID {
	id := p.b.New(syntax.NodeName, tok.Span)
	n := p.b.Node(id)
	n.Op = token.Ident
	n.Text = tok.Text
	return id
}

// fieldIndex builds prefix.key / prefix:key. The key is a string node marked
// with Op=Ident so consumers can tell it from a literal.
func (p *Parser) fieldIndex(prefix syntax.NodeID, sep, key token.Token) syntax.NodeID {
	k := p.b.New(syntax.NodeString, key.Span)
	kn := p.b.Node(k)
	kn.Op = token.Ident
	kn.Text = key.Text
	start := p.b.Node(prefix).Span
	id := p.b.New(syntax.NodeIndexExpr, source.Span{Doc: p.doc.ID, Start: start.Start, End: key.Span.End}, prefix, k)
	if sep.Kind == token.Colon {
		p.b.Node(id).Flags |= syntax.FlagColon
	} else {
		p.b.Node(id).Flags |= syntax.FlagDot
	}
	return id
}

// parseFuncBody parses `(params) block end`; start is the span of `function`.
func (p *Parser) parseFuncBody(start source.Span, method bool) syntax.NodeID {
	open, _ := p.expect(token.LParen)
	params := p.b.New(syntax.NodeParamList, open.Span)
	for !p.atOr(token.RParen, token.EOF) {
		if tok := p.peek(); tok.Kind == token.Ellipsis {
			p.advance()
			p.b.Node(params).Flags |= syntax.FlagVararg
			break
		}
		tok, ok := p.expect(token.Ident)
		if !ok {
			break
		}
		p.b.Attach(params, p.localName(tok))
		if !p.accept(token.Comma) {
			break
		}
	}
	p.expectClose(token.RParen, open)
	p.b.Node(params).Span = p.spanFrom(open.Span)
	block := p.parseBlock(p.lastSpan.End)
	p.expectClose(token.KwEnd, token.Token{Kind: token.KwFunction, Span: start})
	fn := p.b.New(syntax.NodeClosure, p.spanFrom(start), params, block)
	if method {
		p.b.Node(fn).Flags |= syntax.FlagColon
	}
	return fn
}

func (p *Parser) parseTable() syntax.NodeID {
	open, _ := p.expect(token.LBrace)
	table := p.b.New(syntax.NodeTableExpr, open.Span)
	for !p.atOr(token.RBrace, token.EOF) {
		pending := p.leadingComments(syntax.NoNodeID)
		field := p.parseField()
		p.b.SetComment(field, pending)
		p.b.Attach(table, field)
		if !p.accept(token.Comma) && !p.accept(token.Semicolon) {
			break
		}
	}
	p.leadingComments(syntax.NoNodeID)
	p.expectClose(token.RBrace, open)
	p.b.Node(table).Span = p.spanFrom(open.Span)
	return table
}

func (p *Parser) parseField() syntax.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case token.LBracket:
		p.advance()
		key := p.parseExpr()
		p.expectClose(token.RBracket, tok)
		p.expect(token.Assign)
		value := p.parseExpr()
		id := p.b.New(syntax.NodeTableField, p.spanFrom(tok.Span), key, value)
		p.b.Node(id).Flags |= syntax.FlagBracket
		return id
	case token.Ident:
		p.advance()
		if p.accept(token.Assign) {
			key := p.b.New(syntax.NodeString, tok.Span)
			kn := p.b.Node(key)
			kn.Op = token.Ident
			kn.Text = tok.Text
			value := p.parseExpr()
			id := p.b.New(syntax.NodeTableField, p.spanFrom(tok.Span), key, value)
			p.b.Node(id).Flags |= syntax.FlagNamed
			return id
		}
		// позиционное поле, начинающееся с имени
		value := p.parseSubExpr(0, p.parseSuffixes(p.nameExpr(tok)))
		return p.b.New(syntax.NodeTableField, p.spanFrom(tok.Span), value)
	default:
		value := p.parseExpr()
		return p.b.New(syntax.NodeTableField, p.spanFrom(tok.Span), value)
	}
}
