package source

type (
	// DocID uniquely identifies an open or loaded document within a DocSet.
	// The id is stable across edits of the same document.
	DocID uint32
	// DocFlags encodes metadata about a document.
	DocFlags uint8
)

// NoDocID marks the absence of a document reference.
const NoDocID DocID = 0

// IsValid reports whether the id refers to an allocated document.
func (id DocID) IsValid() bool { return id != NoDocID }

const (
	// DocVirtual indicates the document was added from memory (editor buffer, test).
	DocVirtual DocFlags = 1 << iota // не с диска
	DocHadBOM
	DocNormalizedCRLF
)

// Document captures the text of a single version of a source file.
type Document struct {
	ID      DocID
	URI     string
	Version int32
	Content []byte
	LineIdx []uint32
	Flags   DocFlags
}

// LineCol represents a human-readable position in a document.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, в байтах
}

// ElementID identifies a syntax element across all documents. Two elements of
// the same document never share a start offset.
type ElementID struct {
	Doc DocID
	Pos uint32
}

// IsValid reports whether the element belongs to a document.
func (e ElementID) IsValid() bool { return e.Doc.IsValid() }
