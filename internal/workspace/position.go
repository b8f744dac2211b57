package workspace

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"luasema/internal/source"
	"luasema/internal/symbols"
)

// committed returns the table and text of a committed document. The caller
// holds the read lock.
func (w *Workspace) committed(u uri.URI) (*symbols.Table, *source.Document, error) {
	id, ok := w.ds.Lookup(string(u))
	if !ok {
		return nil, nil, ErrUnknownDocument
	}
	tab := w.idx.Table(id)
	if tab == nil {
		return nil, nil, ErrUnknownDocument
	}
	return tab, tab.Syntax.Doc, nil
}

func offsetOf(doc *source.Document, pos protocol.Position) uint32 {
	return doc.Offset(pos.Line, pos.Character)
}

func positionOf(doc *source.Document, off uint32) protocol.Position {
	line, char := doc.Position(off)
	return protocol.Position{Line: line, Character: char}
}

func rangeOf(doc *source.Document, span source.Span) protocol.Range {
	return protocol.Range{Start: positionOf(doc, span.Start), End: positionOf(doc, span.End)}
}

// spanLocation converts a span of any committed document.
func (w *Workspace) spanLocation(span source.Span) (protocol.Location, bool) {
	tab := w.idx.Table(span.Doc)
	if tab == nil {
		return protocol.Location{}, false
	}
	doc := tab.Syntax.Doc
	return protocol.Location{URI: protocol.DocumentURI(doc.URI), Range: rangeOf(doc, span)}, true
}

func (w *Workspace) declLocation(ref symbols.DeclRef) (protocol.Location, bool) {
	d := w.idx.Decl(ref)
	if d == nil {
		return protocol.Location{}, false
	}
	return w.spanLocation(d.Span)
}

func (w *Workspace) declLocations(refs []symbols.DeclRef) []protocol.Location {
	out := make([]protocol.Location, 0, len(refs))
	for _, ref := range refs {
		if loc, ok := w.declLocation(ref); ok {
			out = append(out, loc)
		}
	}
	return out
}
