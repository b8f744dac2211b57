package parser

import (
	"luasema/internal/source"
	"luasema/internal/syntax"
	"luasema/internal/token"
)

// parseBlock parses statements until a block terminator. The block span runs
// from start (right after the opening keyword) to the terminator.
func (p *Parser) parseBlock(start uint32) syntax.NodeID {
	block := p.b.New(syntax.NodeBlock, source.Span{Doc: p.doc.ID, Start: start, End: start})
	for {
		pending := p.leadingComments(block)
		tok := p.peek()
		if tok.Kind.IsBlockEnd() {
			break
		}
		if p.accept(token.Semicolon) {
			continue
		}
		stmt := p.parseStatement()
		if stmt.IsValid() {
			p.b.SetComment(stmt, pending)
			p.b.Attach(block, stmt)
		}
		if next := p.peek(); next.Span == tok.Span && next.Kind == tok.Kind {
			// не продвинулись: пропускаем токен, иначе зациклимся
			p.err("unexpected " + tok.Kind.String())
			p.advance()
			p.resync()
		}
		if tok.Kind == token.KwReturn {
			p.accept(token.Semicolon)
			p.leadingComments(block)
			if !p.peek().Kind.IsBlockEnd() {
				p.err("'return' must be the last statement of a block")
				continue
			}
			break
		}
	}
	p.b.Node(block).Span.End = max(start, p.here().Start)
	return block
}

func (p *Parser) parseStatement() syntax.NodeID {
	switch p.peek().Kind {
	case token.KwLocal:
		return p.parseLocal()
	case token.KwFunction:
		return p.parseFuncStat()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwDo:
		start := p.advance()
		block := p.parseBlock(start.Span.End)
		p.expectClose(token.KwEnd, start)
		return p.b.New(syntax.NodeDoStat, p.spanFrom(start.Span), block)
	case token.KwFor:
		return p.parseFor()
	case token.KwRepeat:
		return p.parseRepeat()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwBreak:
		tok := p.advance()
		return p.b.New(syntax.NodeBreakStat, tok.Span)
	case token.KwGoto:
		start := p.advance()
		name, _ := p.expect(token.Ident)
		id := p.b.New(syntax.NodeGotoStat, p.spanFrom(start.Span))
		p.b.Node(id).Text = name.Text
		return id
	case token.ColonColon:
		start := p.advance()
		name, _ := p.expect(token.Ident)
		p.expect(token.ColonColon)
		id := p.b.New(syntax.NodeLabelStat, p.spanFrom(start.Span))
		p.b.Node(id).Text = name.Text
		return id
	default:
		return p.parseExprStat()
	}
}

func (p *Parser) parseLocal() syntax.NodeID {
	start := p.advance()
	if p.at(token.KwFunction) {
		kw := p.advance()
		nameTok, ok := p.expect(token.Ident)
		if !ok {
			p.resync()
			return syntax.NoNodeID
		}
		name := p.localName(nameTok)
		fn := p.parseFuncBody(kw.Span, false)
		return p.b.New(syntax.NodeLocalFuncStat, p.spanFrom(start.Span), name, fn)
	}

	names := p.b.New(syntax.NodeNameList, p.here())
	for {
		nameTok, ok := p.expect(token.Ident)
		if !ok {
			break
		}
		name := p.localName(nameTok)
		if p.accept(token.Lt) {
			attr, _ := p.expect(token.Ident)
			switch attr.Text {
			case "const":
				p.b.Node(name).Flags |= syntax.FlagConst
			case "close":
				p.b.Node(name).Flags |= syntax.FlagClose
			default:
				p.errorAt(attr.Span, "unknown attribute '"+attr.Text+"'")
			}
			p.expect(token.Gt)
			p.b.Node(name).Span = p.spanFrom(nameTok.Span)
		}
		p.b.Attach(names, name)
		if !p.accept(token.Comma) {
			break
		}
	}
	p.b.Node(names).Span = p.spanFrom(p.b.Node(names).Span)

	var values syntax.NodeID
	if p.accept(token.Assign) {
		values = p.parseExprList()
	}
	return p.b.New(syntax.NodeLocalStat, p.spanFrom(start.Span), names, values)
}

func (p *Parser) localName(tok token.Token) syntax.NodeID {
	id := p.b.New(syntax.NodeLocalName, tok.Span)
	p.b.Node(id).Text = tok.Text
	return id
}

// parseFuncStat: function a.b.c:m(params) body end
func (p *Parser) parseFuncStat() syntax.NodeID {
	start := p.advance()
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.resync()
		return syntax.NoNodeID
	}
	target := p.nameExpr(nameTok)
	method := false
	for p.atOr(token.Dot, token.Colon) {
		sep := p.advance()
		key, ok := p.expect(token.Ident)
		if !ok {
			break
		}
		target = p.fieldIndex(target, sep, key)
		if sep.Kind == token.Colon {
			method = true
			break
		}
	}
	fn := p.parseFuncBody(start.Span, method)
	id := p.b.New(syntax.NodeFuncStat, p.spanFrom(start.Span), target, fn)
	if method {
		p.b.Node(id).Flags |= syntax.FlagColon
	}
	return id
}

func (p *Parser) parseIf() syntax.NodeID {
	start := p.advance()
	cond := p.parseExpr()
	then, _ := p.expect(token.KwThen)
	block := p.parseBlock(then.Span.End)
	id := p.b.New(syntax.NodeIfStat, start.Span, cond, block)
	for {
		switch p.peek().Kind {
		case token.KwElseif:
			kw := p.advance()
			c := p.parseExpr()
			then, _ := p.expect(token.KwThen)
			blk := p.parseBlock(then.Span.End)
			p.b.Attach(id, p.b.New(syntax.NodeElseIfClause, p.spanFrom(kw.Span), c, blk))
			continue
		case token.KwElse:
			kw := p.advance()
			blk := p.parseBlock(kw.Span.End)
			p.b.Attach(id, p.b.New(syntax.NodeElseClause, p.spanFrom(kw.Span), blk))
		}
		break
	}
	p.expectClose(token.KwEnd, start)
	p.b.Node(id).Span = p.spanFrom(start.Span)
	return id
}

func (p *Parser) parseWhile() syntax.NodeID {
	start := p.advance()
	cond := p.parseExpr()
	do, _ := p.expect(token.KwDo)
	block := p.parseBlock(do.Span.End)
	p.expectClose(token.KwEnd, start)
	return p.b.New(syntax.NodeWhileStat, p.spanFrom(start.Span), cond, block)
}

func (p *Parser) parseRepeat() syntax.NodeID {
	start := p.advance()
	block := p.parseBlock(start.Span.End)
	var cond syntax.NodeID
	if p.expectClose(token.KwUntil, start) {
		cond = p.parseExpr()
	} else {
		cond = p.missing()
	}
	return p.b.New(syntax.NodeRepeatStat, p.spanFrom(start.Span), block, cond)
}

func (p *Parser) parseFor() syntax.NodeID {
	start := p.advance()
	first, ok := p.expect(token.Ident)
	if !ok {
		p.resync()
		return syntax.NoNodeID
	}
	if p.accept(token.Assign) {
		name := p.localName(first)
		from := p.parseExpr()
		p.expect(token.Comma)
		to := p.parseExpr()
		var step syntax.NodeID
		if p.accept(token.Comma) {
			step = p.parseExpr()
		}
		do, _ := p.expect(token.KwDo)
		block := p.parseBlock(do.Span.End)
		p.expectClose(token.KwEnd, start)
		return p.b.New(syntax.NodeForNumStat, p.spanFrom(start.Span), name, from, to, step, block)
	}

	names := p.b.New(syntax.NodeNameList, first.Span, p.localName(first))
	for p.accept(token.Comma) {
		tok, ok := p.expect(token.Ident)
		if !ok {
			break
		}
		p.b.Attach(names, p.localName(tok))
	}
	p.b.Node(names).Span = p.spanFrom(first.Span)
	p.expect(token.KwIn)
	exprs := p.parseExprList()
	do, _ := p.expect(token.KwDo)
	block := p.parseBlock(do.Span.End)
	p.expectClose(token.KwEnd, start)
	return p.b.New(syntax.NodeForInStat, p.spanFrom(start.Span), names, exprs, block)
}

func (p *Parser) parseReturn() syntax.NodeID {
	start := p.advance()
	var values syntax.NodeID
	if !p.peek().Kind.IsBlockEnd() && !p.at(token.Semicolon) {
		values = p.parseExprList()
	}
	return p.b.New(syntax.NodeReturnStat, p.spanFrom(start.Span), values)
}

// parseExprStat: call statement or assignment.
func (p *Parser) parseExprStat() syntax.NodeID {
	startTok := p.peek()
	if !startsExpr(startTok.Kind) {
		return syntax.NoNodeID
	}
	first := p.parseSuffixed()
	if p.atOr(token.Assign, token.Comma) {
		targets := p.b.New(syntax.NodeExprList, p.b.Node(first).Span, first)
		for p.accept(token.Comma) {
			p.b.Attach(targets, p.parseSuffixed())
		}
		p.b.Node(targets).Span = p.spanFrom(startTok.Span)
		for _, t := range p.b.Node(targets).Children {
			if k := p.b.Node(t).Kind; k != syntax.NodeName && k != syntax.NodeIndexExpr {
				p.errorAt(p.b.Node(t).Span, "cannot assign to "+k.String())
			}
		}
		p.expect(token.Assign)
		values := p.parseExprList()
		return p.b.New(syntax.NodeAssignStat, p.spanFrom(startTok.Span), targets, values)
	}
	if p.b.Node(first).Kind != syntax.NodeCallExpr {
		p.errorAt(p.b.Node(first).Span, "syntax error: expression is not a statement")
	}
	return p.b.New(syntax.NodeCallStat, p.spanFrom(startTok.Span), first)
}

func startsExpr(k token.Kind) bool {
	return k == token.Ident || k == token.LParen
}
