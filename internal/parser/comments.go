package parser

import (
	"strings"

	"luasema/internal/source"
	"luasema/internal/syntax"
	"luasema/internal/token"
)

// leadingComments groups the trivia in front of the current token. Every
// group except one directly above the token becomes a detached DocStat in
// block (when it carries tags); the adjacent group is returned for the caller
// to attach. Each token's trivia is processed once.
func (p *Parser) leadingComments(block syntax.NodeID) *syntax.Comment {
	tok := p.peek()
	if p.leadDone && p.leadOff == tok.Span.Start {
		return nil
	}
	p.leadDone, p.leadOff = true, tok.Span.Start
	if len(tok.Leading) == 0 {
		return nil
	}

	groups := p.groupTrivia(tok.Leading)
	tokLine := p.line(tok.Span.Start)
	var pending *syntax.Comment
	for i, g := range groups {
		c := p.buildComment(g)
		last := i == len(groups)-1
		if last && tok.Kind != token.EOF && !tok.Kind.IsBlockEnd() && tok.Kind != token.RBrace &&
			p.line(g[len(g)-1].Span.End) >= tokLine-1 {
			pending = c
			continue
		}
		if block.IsValid() && c.Doc && len(c.Tags) > 0 {
			ds := p.b.New(syntax.NodeDocStat, c.Span)
			p.b.SetComment(ds, c)
			p.b.Attach(block, ds)
		}
	}
	return pending
}

// groupTrivia splits trivia into runs of comments on consecutive lines.
// A comment sharing its line with preceding code is dropped.
func (p *Parser) groupTrivia(trivia []token.Trivia) [][]token.Trivia {
	var (
		groups  [][]token.Trivia
		cur     []token.Trivia
		endLine uint32
	)
	codeLine := uint32(0)
	if p.lastSpan.End > 0 {
		codeLine = p.line(p.lastSpan.End)
	}
	for _, tr := range trivia {
		startLine := p.line(tr.Span.Start)
		if codeLine != 0 && startLine == codeLine && tr.Span.Start >= p.lastSpan.End {
			continue
		}
		if len(cur) > 0 && startLine > endLine+1 {
			groups = append(groups, cur)
			cur = nil
		}
		cur = append(cur, tr)
		endLine = p.line(tr.Span.End)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func (p *Parser) buildComment(group []token.Trivia) *syntax.Comment {
	c := &syntax.Comment{
		Span: source.Span{Doc: p.doc.ID, Start: group[0].Span.Start, End: group[len(group)-1].Span.End},
	}
	for _, tr := range group {
		c.Lines = append(c.Lines, tr.Text)
		if !tr.IsDoc() {
			continue
		}
		c.Doc = true
		base := tr.Span.Start + 3 // "---"
		text := tr.Text
		trimmed := strings.TrimLeft(text, " \t")
		base += uint32(len(text) - len(trimmed)) // #nosec G115 -- line length
		switch {
		case strings.HasPrefix(trimmed, "@"):
			if tag, ok := parseTag(trimmed[1:], base+1, tr.Span); ok {
				c.Tags = append(c.Tags, tag)
			}
		case strings.HasPrefix(trimmed, "|"):
			extendAlias(c, trimmed[1:], base+1, p.doc.ID)
		}
	}
	return c
}
