package source

import (
	"fmt"
	"os"
	"sort"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// DocSet maps document keys (URIs or normalized paths) to stable DocIDs and
// keeps the latest text of every document. It is not safe for concurrent use;
// the owner serializes access.
type DocSet struct {
	docs  map[DocID]*Document
	index map[string]DocID // uri -> id
	next  uint32
}

// NewDocSet creates an empty DocSet.
func NewDocSet() *DocSet {
	return &DocSet{
		docs:  make(map[DocID]*Document),
		index: make(map[string]DocID),
	}
}

// Assign returns the id for uri, allocating one on first use.
func (ds *DocSet) Assign(uri string) DocID {
	if id, ok := ds.index[uri]; ok {
		return id
	}
	ds.next++
	id := DocID(ds.next)
	ds.index[uri] = id
	return id
}

// Put stores a new version of the document and returns it. The DocID is
// preserved across versions of the same uri.
func (ds *DocSet) Put(uri string, content []byte, version int32, flags DocFlags) *Document {
	doc := newDocument(ds.Assign(uri), uri, content, version, flags)
	ds.Store(doc)
	return doc
}

// Prepare normalizes content into a document under uri's id without storing
// it. The caller parses it and stores it once the result is accepted.
func (ds *DocSet) Prepare(uri string, content []byte, version int32, flags DocFlags) *Document {
	content, extra := normalizeContent(content)
	return newDocument(ds.Assign(uri), uri, content, version, flags|extra)
}

// Store makes doc the latest text of its id.
func (ds *DocSet) Store(doc *Document) {
	ds.docs[doc.ID] = doc
}

func newDocument(id DocID, uri string, content []byte, version int32, flags DocFlags) *Document {
	return &Document{
		ID:      id,
		URI:     uri,
		Version: version,
		Content: content,
		LineIdx: lineStarts(content),
		Flags:   flags,
	}
}

// PutVirtual adds an in-memory document (editor buffer or test snippet).
func (ds *DocSet) PutVirtual(uri, text string, version int32) *Document {
	content, flags := normalizeContent([]byte(text))
	return ds.Put(uri, content, version, flags|DocVirtual)
}

// Load reads a file from disk, normalizes BOM/CRLF/NFC and stores it under uri.
func (ds *DocSet) Load(path, uri string) (*Document, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	content, flags := normalizeContent(content)
	return ds.Put(uri, content, 0, flags), nil
}

// ReadDocument reads and normalizes a file without registering it.
func ReadDocument(path string) ([]byte, DocFlags, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	content, flags := normalizeContent(content)
	return content, flags, nil
}

func normalizeContent(content []byte) ([]byte, DocFlags) {
	content, flags := normalize(content)
	if !norm.NFC.IsNormal(content) {
		content = norm.NFC.Bytes(content)
	}
	return content, flags
}

// Get returns the latest text for id or nil.
func (ds *DocSet) Get(id DocID) *Document {
	return ds.docs[id]
}

// Lookup returns the id registered for uri.
func (ds *DocSet) Lookup(uri string) (DocID, bool) {
	id, ok := ds.index[uri]
	return id, ok
}

// Remove drops the document text. The uri keeps its id so a reopened document
// is recognised as the same one. Removing an absent document is a no-op.
func (ds *DocSet) Remove(id DocID) {
	delete(ds.docs, id)
}

// Len reports the number of documents currently holding text.
func (ds *DocSet) Len() int { return len(ds.docs) }

// IDs returns the ids of documents holding text in ascending order.
func (ds *DocSet) IDs() []DocID {
	out := make([]DocID, 0, len(ds.docs))
	for id := range ds.docs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the content length as uint32.
func (d *Document) Len() uint32 {
	n, err := safecast.Conv[uint32](len(d.Content))
	if err != nil {
		panic(fmt.Errorf("document %s too large: %w", d.URI, err))
	}
	return n
}

// Span returns the span covering the whole document.
func (d *Document) Span() Span {
	return Span{Doc: d.ID, Start: 0, End: d.Len()}
}

// Text returns the source text covered by span.
func (d *Document) Text(span Span) string {
	if span.Start > span.End || int(span.End) > len(d.Content) {
		return ""
	}
	return string(d.Content[span.Start:span.End])
}

// LineCol converts a byte offset to a 1-based line/column pair.
func (d *Document) LineCol(off uint32) LineCol {
	return lineColAt(d.LineIdx, off)
}

// lineStart returns the byte offset where the 0-based line begins.
func (d *Document) lineStart(line uint32) (uint32, bool) {
	if line == 0 {
		return 0, true
	}
	if int(line-1) >= len(d.LineIdx) {
		return 0, false
	}
	return d.LineIdx[line-1] + 1, true
}

// Offset converts a 0-based line and UTF-16 character offset (LSP encoding)
// to a byte offset. Positions past the end of a line clamp to the line end.
func (d *Document) Offset(line, character uint32) uint32 {
	start, ok := d.lineStart(line)
	if !ok {
		return d.Len()
	}
	end := d.Len()
	if int(line) < len(d.LineIdx) {
		end = d.LineIdx[line]
	}
	off := start
	var units uint32
	for off < end && units < character {
		r, size := runeAt(d.Content[off:end])
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		off += uint32(size) // #nosec G115 -- size is at most 4
	}
	return off
}

// Position converts a byte offset to a 0-based line and UTF-16 character offset.
func (d *Document) Position(off uint32) (line, character uint32) {
	lc := d.LineCol(off)
	line = lc.Line - 1
	start, _ := d.lineStart(line)
	if off > d.Len() {
		off = d.Len()
	}
	for p := start; p < off; {
		r, size := runeAt(d.Content[p:off])
		if r >= 0x10000 {
			character += 2
		} else {
			character++
		}
		p += uint32(size) // #nosec G115 -- size is at most 4
	}
	return line, character
}
