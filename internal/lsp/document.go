package lsp

import (
	"sort"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// document is an open text buffer with a line index for converting between
// byte offsets and LSP positions (0-based line, UTF-16 character).
type document struct {
	uri        protocol.DocumentUri
	text       string
	lineStarts []int
}

func newDocument(uri protocol.DocumentUri, text string) *document {
	d := &document{uri: uri, text: text, lineStarts: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
	return d
}

// position converts a byte offset to an LSP position.
func (d *document) position(offset int) protocol.Position {
	if offset > len(d.text) {
		offset = len(d.text)
	}
	if offset < 0 {
		offset = 0
	}
	line := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > offset }) - 1
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(utf16Len(d.text[d.lineStarts[line]:offset])),
	}
}

// offset converts an LSP position to a byte offset, clamping to the line
// end and the document end.
func (d *document) offset(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(d.lineStarts) {
		return len(d.text)
	}
	start := d.lineStarts[line]
	end := len(d.text)
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1] - 1
	}

	units := 0
	i := start
	for i < end && units < int(pos.Character) {
		r, size := utf8.DecodeRuneInString(d.text[i:])
		units += utf16Units(r)
		i += size
	}
	return i
}

func (d *document) rangeOf(start, end int) protocol.Range {
	return protocol.Range{Start: d.position(start), End: d.position(end)}
}

// applyChange returns the document after one content change event.
func (d *document) applyChange(change any) *document {
	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return newDocument(d.uri, c.Text)
	case protocol.TextDocumentContentChangeEvent:
		if c.Range == nil {
			return newDocument(d.uri, c.Text)
		}
		start, end := d.offset(c.Range.Start), d.offset(c.Range.End)
		if end < start {
			start, end = end, start
		}
		return newDocument(d.uri, d.text[:start]+c.Text+d.text[end:])
	}
	return d
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Units(r)
	}
	return n
}

func utf16Units(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
