package parser

import (
	"slices"

	"luasema/internal/lexer"
	"luasema/internal/source"
	"luasema/internal/syntax"
	"luasema/internal/token"
)

type Options struct {
	// MaxErrors останавливает сбор ошибок (не разбор) после N штук; 0 = без лимита.
	MaxErrors uint
}

// Parser хранит состояние парсера на один документ
type Parser struct {
	lx       *lexer.Lexer
	b        *syntax.Builder
	doc      *source.Document
	opts     Options
	nerrs    uint
	lastSpan source.Span // span последнего съеденного токена
	// leading trivia of the token starting at leadOff were already grouped
	leadOff  uint32
	leadDone bool
}

// Parse разбирает документ целиком. Never fails: syntax errors are recorded on
// the tree and parsing resumes at the next statement.
func Parse(doc *source.Document, opts Options) *syntax.Tree {
	p := &Parser{
		lx:   lexer.New(doc),
		b:    syntax.NewBuilder(doc, uint(len(doc.Content)/4+8)),
		doc:  doc,
		opts: opts,
	}
	root := p.parseChunk()
	for _, e := range p.lx.Errors() {
		p.errorAt(e.Span, e.Msg)
	}
	return p.b.Finish(root)
}

func (p *Parser) parseChunk() syntax.NodeID {
	block := p.parseBlock(0)
	if !p.at(token.EOF) {
		// лишний `end`/`until` на верхнем уровне: съедаем и продолжаем
		for !p.at(token.EOF) {
			p.err("unexpected " + p.peek().Kind.String())
			p.advance()
			rest := p.parseBlock(p.lastSpan.End)
			p.b.Attach(block, p.b.Node(rest).Children...)
		}
	}
	sp := p.doc.Span()
	p.b.Node(block).Span = sp
	return p.b.New(syntax.NodeChunk, sp, block)
}

func (p *Parser) peek() token.Token {
	return p.lx.Peek()
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// advance съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

func (p *Parser) accept(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// expect ожидает конкретный токен. Если его нет, репортим и возвращаем false.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.err("expected " + k.String() + ", got " + p.peek().Kind.String())
	return token.Token{Kind: token.Invalid, Span: p.here()}, false
}

// expectClose reports an unclosed construct with a hint at the opening token.
func (p *Parser) expectClose(k token.Kind, open token.Token) bool {
	if p.accept(k) {
		return true
	}
	p.err("expected " + k.String() + " to close " + open.Kind.String())
	return false
}

// here is an empty span at the current token, or right after the last one at EOF.
func (p *Parser) here() source.Span {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return source.Span{Doc: p.doc.ID, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return tok.Span
}

func (p *Parser) err(msg string) {
	p.errorAt(p.here(), msg)
}

func (p *Parser) errorAt(sp source.Span, msg string) {
	p.nerrs++
	if p.opts.MaxErrors != 0 && p.nerrs > p.opts.MaxErrors {
		return
	}
	p.b.Error(sp, msg)
}

// spanFrom covers start..lastSpan.
func (p *Parser) spanFrom(start source.Span) source.Span {
	if p.lastSpan.End < start.Start {
		return start
	}
	return source.Span{Doc: p.doc.ID, Start: start.Start, End: p.lastSpan.End}
}

func (p *Parser) line(off uint32) uint32 {
	return p.doc.LineCol(off).Line
}

// missing creates a placeholder expression so parents keep their shape.
func (p *Parser) missing() syntax.NodeID {
	id := p.b.New(syntax.NodeName, p.here())
	p.b.Node(id).Flags |= syntax.FlagMissing
	return id
}

// resync skips tokens until something that may start or end a statement.
func (p *Parser) resync() {
	for {
		switch p.peek().Kind {
		case token.EOF, token.KwEnd, token.KwElse, token.KwElseif, token.KwUntil,
			token.KwLocal, token.KwFunction, token.KwIf, token.KwFor, token.KwWhile,
			token.KwRepeat, token.KwDo, token.KwReturn, token.KwBreak, token.KwGoto,
			token.Semicolon, token.Ident:
			return
		}
		p.advance()
	}
}
