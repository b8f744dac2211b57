package source

import (
	"bytes"
	"sort"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a UTF-8 BOM and turns CRLF into LF. Lone \r are kept:
// Lua treats them as line breaks inside long strings only.
func normalize(content []byte) (out []byte, flags DocFlags) {
	if rest, ok := bytes.CutPrefix(content, utf8BOM); ok {
		content, flags = rest, flags|DocHadBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		content, flags = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")), flags|DocNormalizedCRLF
	}
	return content, flags
}

// lineStarts returns the offsets of every '\n'.
func lineStarts(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) // #nosec G115 -- documents are bounded by Document.Len
		}
	}
	return out
}

func lineColAt(newlines []uint32, off uint32) LineCol {
	// строка = число переводов строки строго до off
	line := sort.Search(len(newlines), func(i int) bool { return newlines[i] >= off })
	start := uint32(0)
	if line > 0 {
		start = newlines[line-1] + 1
	}
	return LineCol{Line: uint32(line) + 1, Col: off - start + 1} // #nosec G115 -- line count fits the offset range
}

// runeAt decodes one rune and always advances, even on invalid input.
func runeAt(b []byte) (rune, int) {
	r, size := utf8.DecodeRune(b)
	return r, max(size, 1)
}
