package grammar

import (
	"io"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"

	"formulight/internal/classify"
	"formulight/internal/scanner"
	"formulight/token"
)

// FormulaLexer exposes the formula scanner as a participle lexer. Tokens are
// classified, so grammars can match @Function, @CustomFunction, @Field and
// so on. Elide "Whitespace" and "Comment" when they are not wanted.
var FormulaLexer = &Definition{}

var symbolNames = map[token.Kind]string{
	token.FUNCTION:        "Function",
	token.FIELD:           "Field",
	token.NESTED_FIELD:    "NestedField",
	token.CUSTOM_FUNCTION: "CustomFunction",
	token.FORMULA_FIELD:   "FormulaField",
	token.OPERATOR:        "Operator",
	token.STRING:          "String",
	token.NUMBER:          "Number",
	token.CONSTANT:        "Constant",
	token.PARENTHESIS:     "Parenthesis",
	token.BRACKET:         "Bracket",
	token.COMMA:           "Comma",
	token.WHITESPACE:      "Whitespace",
	token.IDENTIFIER:      "Ident",
	token.COMMENT:         "Comment",
	token.ERROR:           "Error",
	token.DOT:             "Dot",
}

var symbols, kindTypes = buildSymbols()

func buildSymbols() (map[string]lexer.TokenType, map[token.Kind]lexer.TokenType) {
	syms := map[string]lexer.TokenType{"EOF": lexer.EOF}
	types := make(map[token.Kind]lexer.TokenType, len(symbolNames))
	for i, k := range token.Kinds() {
		tt := lexer.EOF - lexer.TokenType(i+1)
		syms[symbolNames[k]] = tt
		types[k] = tt
	}
	return syms, types
}

// Definition implements lexer.Definition and lexer.StringDefinition.
type Definition struct{}

func (d *Definition) Symbols() map[string]lexer.TokenType {
	out := make(map[string]lexer.TokenType, len(symbols))
	for name, tt := range symbols {
		out[name] = tt
	}
	return out
}

func (d *Definition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return d.LexString(filename, string(source))
}

func (d *Definition) LexString(filename string, input string) (lexer.Lexer, error) {
	return &formulaLexer{
		source: input,
		tokens: classify.Classify(scanner.Tokenize(input)),
		pos:    lexer.Position{Filename: filename, Line: 1, Column: 1},
	}, nil
}

// Symbol returns the participle symbol name for a token kind.
func Symbol(k token.Kind) string {
	return symbolNames[k]
}

type formulaLexer struct {
	source string
	tokens []token.Token
	next   int
	pos    lexer.Position // position of source[pos.Offset]
}

func (l *formulaLexer) Next() (lexer.Token, error) {
	if l.next >= len(l.tokens) {
		l.advanceTo(len(l.source))
		return lexer.EOFToken(l.pos), nil
	}
	tok := l.tokens[l.next]
	l.next++
	l.advanceTo(tok.Start)
	return lexer.Token{Type: kindTypes[tok.Kind], Value: tok.Value, Pos: l.pos}, nil
}

// advanceTo moves the tracked position forward to offset, counting lines
// and rune columns.
func (l *formulaLexer) advanceTo(offset int) {
	for l.pos.Offset < offset {
		r, size := utf8.DecodeRuneInString(l.source[l.pos.Offset:])
		l.pos.Offset += size
		if r == '\n' {
			l.pos.Line++
			l.pos.Column = 1
		} else {
			l.pos.Column++
		}
	}
}
