package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDocSetKeepsIDAcrossVersions(t *testing.T) {
	ds := NewDocSet()

	first := ds.PutVirtual("file:///a.lua", "local a = 1", 1)
	second := ds.PutVirtual("file:///a.lua", "local a = 2", 2)
	other := ds.PutVirtual("file:///b.lua", "", 1)

	if first.ID != second.ID {
		t.Fatalf("expected stable id, got %d and %d", first.ID, second.ID)
	}
	if other.ID == first.ID {
		t.Fatalf("expected distinct ids for distinct uris")
	}
	if got := string(ds.Get(first.ID).Content); got != "local a = 2" {
		t.Fatalf("expected latest content, got %q", got)
	}

	ds.Remove(first.ID)
	ds.Remove(first.ID)
	if ds.Get(first.ID) != nil {
		t.Fatalf("expected document text to be dropped")
	}
	if id, ok := ds.Lookup("file:///a.lua"); !ok || id != first.ID {
		t.Fatalf("expected uri to keep its id after removal")
	}
	if ds.Len() != 1 {
		t.Fatalf("expected 1 live document, got %d", ds.Len())
	}
}

func TestDocumentLineCol(t *testing.T) {
	ds := NewDocSet()
	doc := ds.PutVirtual("mem://x", "ab\ncd\n\nef", 0)

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{2, LineCol{Line: 1, Col: 3}},
		{3, LineCol{Line: 2, Col: 1}},
		{6, LineCol{Line: 3, Col: 1}},
		{8, LineCol{Line: 4, Col: 2}},
	}
	for _, tt := range tests {
		if got := doc.LineCol(tt.off); got != tt.want {
			t.Errorf("LineCol(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
}

func TestDocumentUTF16Positions(t *testing.T) {
	ds := NewDocSet()
	// "é" is 2 bytes / 1 unit, "😀" is 4 bytes / 2 units
	doc := ds.PutVirtual("mem://u", "x = 'é😀'\ny", 0)

	off := doc.Offset(0, 8)
	line, char := doc.Position(off)
	if line != 0 || char != 8 {
		t.Fatalf("round trip mismatch: got %d:%d", line, char)
	}
	if got := doc.Offset(1, 0); doc.Content[got] != 'y' {
		t.Fatalf("expected offset of second line, got %d", got)
	}
	if got := doc.Offset(0, 100); got != doc.LineIdx[0] {
		t.Fatalf("expected clamp to line end, got %d", got)
	}
}

func TestLoadNormalizesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.lua")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFlocal a\r\nlocal b\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	ds := NewDocSet()
	doc, err := ds.Load(path, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Content) != "local a\nlocal b\n" {
		t.Fatalf("unexpected content %q", doc.Content)
	}
	if doc.Flags&DocHadBOM == 0 || doc.Flags&DocNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", doc.Flags)
	}
}

func TestPrepareDoesNotStore(t *testing.T) {
	ds := NewDocSet()
	doc := ds.Prepare("file:///a.lua", []byte("\ufefflocal a = 1\r\n"), 3, DocVirtual)
	if ds.Get(doc.ID) != nil {
		t.Fatalf("prepared document must not be stored")
	}
	if string(doc.Content) != "local a = 1\n" || doc.Flags&DocHadBOM == 0 || doc.Flags&DocVirtual == 0 {
		t.Fatalf("unexpected prepared document %q flags=%b", doc.Content, doc.Flags)
	}
	ds.Store(doc)
	if got := ds.Get(doc.ID); got != doc {
		t.Fatalf("expected stored document")
	}
}
