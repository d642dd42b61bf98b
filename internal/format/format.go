package format

import (
	"strings"

	"formulight/internal/classify"
	"formulight/internal/keywords"
	"formulight/internal/scanner"
	"formulight/token"
)

// Prettify normalizes operator, comma and parenthesis spacing and uppercases
// built-in function and constant names. Line breaks are kept and indentation
// after them shrinks to one space; other whitespace is rebuilt from the
// tokens around it. Strings, comments and
// fields are copied as scanned. Empty input is returned unchanged.
func Prettify(text string) string {
	if text == "" {
		return text
	}
	trimmed := strings.TrimSpace(text)

	tokens := classify.Classify(scanner.Tokenize(trimmed))
	p := &printer{source: trimmed}
	for _, tok := range tokens {
		p.write(tok)
	}
	return strings.TrimSpace(p.b.String())
}

type printer struct {
	source string
	b      strings.Builder

	prev     *token.Token
	prevOp   opRole // role of prev when it is an operator
	spaced   bool   // whitespace seen since prev
	newlines string // line breaks seen since prev
	indented bool   // horizontal whitespace followed the last line break
}

type opRole int

const (
	notOperator opRole = iota
	binaryOp
	unaryOp
)

func (p *printer) write(tok token.Token) {
	if tok.Kind == token.WHITESPACE {
		p.spaced = true
		if breaks := lineBreaks(tok.Value); breaks != "" {
			p.newlines += breaks
			p.indented = strings.LastIndexAny(tok.Value, "\r\n") < len(tok.Value)-1
		}
		return
	}

	role := p.roleOf(tok)
	if p.newlines != "" {
		p.b.WriteString(p.newlines)
		if p.indented {
			p.b.WriteByte(' ')
		}
	} else if p.prev != nil && p.needsSpace(tok, role) {
		p.b.WriteByte(' ')
	}
	p.b.WriteString(p.text(tok))

	cur := tok
	p.prev = &cur
	p.prevOp = role
	p.spaced = false
	p.newlines = ""
	p.indented = false
}

// text returns the printed form of tok. Advanced-category functions keep
// their source casing.
func (p *printer) text(tok token.Token) string {
	if tok.Kind == token.FUNCTION && !keywords.IsFormattedFunction(tok.Value) {
		return p.source[tok.Start:tok.End]
	}
	return tok.Value
}

// roleOf decides whether an operator is unary: a sign at the start, or
// after another operator, a comma or an opening parenthesis.
func (p *printer) roleOf(tok token.Token) opRole {
	if tok.Kind != token.OPERATOR {
		return notOperator
	}
	if tok.Value != "-" && tok.Value != "+" {
		return binaryOp
	}
	if p.prev == nil || p.prev.Kind == token.OPERATOR || p.prev.Kind == token.COMMA || p.prev.Is(token.PARENTHESIS, "(") {
		return unaryOp
	}
	return binaryOp
}

func (p *printer) needsSpace(tok token.Token, role opRole) bool {
	prev := *p.prev

	switch {
	case tok.Kind == token.COMMA, tok.Is(token.PARENTHESIS, ")"):
		return false
	case prev.Is(token.PARENTHESIS, "("), p.prevOp == unaryOp:
		return false
	case tok.Kind == token.DOT, prev.Kind == token.DOT:
		return p.spaced
	case role != notOperator:
		return true
	case p.prevOp == binaryOp, prev.Kind == token.COMMA:
		return true
	case tok.Is(token.PARENTHESIS, "("):
		return !isCallee(prev) && (p.spaced || prev.Is(token.PARENTHESIS, ")"))
	case prev.Is(token.PARENTHESIS, ")"):
		return true
	}
	return p.spaced
}

func isCallee(tok token.Token) bool {
	switch tok.Kind {
	case token.FUNCTION, token.CUSTOM_FUNCTION, token.IDENTIFIER, token.FORMULA_FIELD, token.CONSTANT:
		return true
	}
	return false
}

// lineBreaks keeps the line terminators of a whitespace run, "\r\n" intact.
func lineBreaks(ws string) string {
	var b strings.Builder
	for i := 0; i < len(ws); i++ {
		switch ws[i] {
		case '\n':
			b.WriteByte('\n')
		case '\r':
			b.WriteByte('\r')
			if i+1 < len(ws) && ws[i+1] == '\n' {
				b.WriteByte('\n')
				i++
			}
		}
	}
	return b.String()
}
