package lsp

import (
	"strings"

	"formulight/internal/classify"
	"formulight/internal/scanner"
	"formulight/token"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions in UTF-16 code units
// TokenType is an index into SemanticTokenTypes
// TokenModifiers is a bitmask based on SemanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

type semanticKind struct {
	tokenType string
	modifiers []string
}

// Structural kinds (parentheses, commas, dots, whitespace) have no entry and
// are not reported.
var semanticKinds = map[token.Kind]semanticKind{
	token.FUNCTION:        {"function", []string{"defaultLibrary"}},
	token.CUSTOM_FUNCTION: {"function", nil},
	token.FIELD:           {"property", nil},
	token.NESTED_FIELD:    {"property", nil},
	token.FORMULA_FIELD:   {"variable", []string{"readonly"}},
	token.IDENTIFIER:      {"variable", nil},
	token.CONSTANT:        {"keyword", nil},
	token.OPERATOR:        {"operator", nil},
	token.STRING:          {"string", nil},
	token.NUMBER:          {"number", nil},
	token.COMMENT:         {"comment", nil},
}

func collectSemanticTokens(doc *document) []SemanticToken {
	var tokens []SemanticToken

	for _, tok := range classify.Classify(scanner.Tokenize(doc.text)) {
		sk, ok := semanticKinds[tok.Kind]
		if !ok {
			continue
		}
		tokens = append(tokens, makeTokens(doc, tok, sk)...)
	}

	return tokens
}

// makeTokens emits one entry per line the token covers; clients do not
// support multi-line semantic tokens. Lengths come from the source span,
// since a joined nested field's value drops the whitespace around its dots.
// Indentation at the start of a continuation line is not covered.
func makeTokens(doc *document, tok token.Token, sk semanticKind) []SemanticToken {
	var tokens []SemanticToken

	mods := 0
	for _, m := range sk.modifiers {
		mods |= 1 << indexOf(m, SemanticTokenModifiers)
	}

	offset := tok.Start
	for i, line := range strings.Split(doc.text[tok.Start:tok.End], "\n") {
		start := offset
		if i > 0 {
			start += len(line) - len(strings.TrimLeft(line, " \t"))
		}
		text := strings.TrimSuffix(doc.text[start:offset+len(line)], "\r")
		if text != "" {
			pos := doc.position(start)
			tokens = append(tokens, SemanticToken{
				Line:           uint32(pos.Line),
				StartChar:      uint32(pos.Character),
				Length:         uint32(utf16Len(text)),
				TokenType:      indexOf(sk.tokenType, SemanticTokenTypes),
				TokenModifiers: mods,
			})
		}
		offset += len(line) + 1 // the newline itself
	}

	return tokens
}

// encodeSemanticTokens packs tokens into the LSP wire format (delta line,
// delta start, length, type, modifiers).
func encodeSemanticTokens(tokens []SemanticToken) []uint32 {
	data := []uint32{}
	var prevLine, prevStart uint32

	for _, tok := range tokens {
		deltaLine := tok.Line - prevLine
		deltaStart := tok.StartChar
		if deltaLine == 0 {
			deltaStart = tok.StartChar - prevStart
		}

		data = append(data, deltaLine, deltaStart, tok.Length, uint32(tok.TokenType), uint32(tok.TokenModifiers))

		prevLine = tok.Line
		prevStart = tok.StartChar
	}

	return data
}

// indexOf returns the index of a string in a slice, or 0 if not found
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0
}
