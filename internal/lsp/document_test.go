package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDocumentPositions(t *testing.T) {
	doc := newDocument("u", "ab\n😀c\n")

	assert.Equal(t, protocol.Position{Line: 0, Character: 2}, doc.position(2))
	assert.Equal(t, protocol.Position{Line: 1, Character: 0}, doc.position(3))
	assert.Equal(t, protocol.Position{Line: 1, Character: 2}, doc.position(7), "astral runes are two UTF-16 units")
	assert.Equal(t, protocol.Position{Line: 2, Character: 0}, doc.position(99))

	assert.Equal(t, 7, doc.offset(protocol.Position{Line: 1, Character: 2}))
	assert.Equal(t, 8, doc.offset(protocol.Position{Line: 1, Character: 40}), "clamped to line end")
	assert.Equal(t, 9, doc.offset(protocol.Position{Line: 7}))
}

func TestApplyChange(t *testing.T) {
	doc := newDocument("u", "IF(a,\nb)")

	doc = doc.applyChange(protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{
			Start: protocol.Position{Line: 1, Character: 0},
			End:   protocol.Position{Line: 1, Character: 1},
		},
		Text: "[Amount]",
	})
	assert.Equal(t, "IF(a,\n[Amount])", doc.text)
	assert.Equal(t, []int{0, 6}, doc.lineStarts)

	doc = doc.applyChange(protocol.TextDocumentContentChangeEventWhole{Text: "x"})
	assert.Equal(t, "x", doc.text)
}
