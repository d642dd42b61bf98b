package grammar_test

import (
	"strings"
	"testing"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formulight/grammar"
	"formulight/token"
)

type call struct {
	Name string `parser:"@(Function | CustomFunction)"`
	Args []*arg `parser:"\"(\" ( @@ ( \",\" @@ )* )? \")\""`
}

type arg struct {
	Number *string `parser:"  @Number"`
	Field  *string `parser:"| @(Field | NestedField)"`
	Const  *string `parser:"| @Constant"`
	Call   *call   `parser:"| @@"`
}

func TestSymbolsCoverEveryKind(t *testing.T) {
	symbols := grammar.FormulaLexer.Symbols()

	assert.Equal(t, lexer.EOF, symbols["EOF"])
	seen := map[lexer.TokenType]bool{}
	for _, k := range token.Kinds() {
		name := grammar.Symbol(k)
		require.NotEmpty(t, name, "kind %s has no symbol", k)
		tt, ok := symbols[name]
		require.True(t, ok)
		assert.False(t, seen[tt], "duplicate token type for %s", name)
		seen[tt] = true
	}
}

func TestLexPositions(t *testing.T) {
	lex, err := grammar.FormulaLexer.Lex("f.formula", strings.NewReader("if(x,\n  [A])"))
	require.NoError(t, err)

	tokens, err := lexer.ConsumeAll(lex)
	require.NoError(t, err)

	symbols := grammar.FormulaLexer.Symbols()
	require.Len(t, tokens, 8)

	assert.Equal(t, symbols["Function"], tokens[0].Type)
	assert.Equal(t, "IF", tokens[0].Value)
	assert.Equal(t, lexer.Position{Filename: "f.formula", Offset: 0, Line: 1, Column: 1}, tokens[0].Pos)

	assert.Equal(t, symbols["Whitespace"], tokens[4].Type)
	assert.Equal(t, symbols["Field"], tokens[5].Type)
	assert.Equal(t, lexer.Position{Filename: "f.formula", Offset: 8, Line: 2, Column: 3}, tokens[5].Pos)

	assert.True(t, tokens[7].EOF())
	assert.Equal(t, 12, tokens[7].Pos.Offset)
}

func TestParticipleGrammarOnFormulaTokens(t *testing.T) {
	parser, err := participle.Build[call](
		participle.Lexer(grammar.FormulaLexer),
		participle.Elide("Whitespace", "Comment"),
	)
	require.NoError(t, err)

	got, err := parser.ParseString("", "if(1, [A].[B], myFn(true) /* note */)")
	require.NoError(t, err)

	assert.Equal(t, "IF", got.Name)
	require.Len(t, got.Args, 3)
	assert.Equal(t, "1", *got.Args[0].Number)
	assert.Equal(t, "[A].[B]", *got.Args[1].Field)
	require.NotNil(t, got.Args[2].Call)
	assert.Equal(t, "myFn", got.Args[2].Call.Name)
	assert.Equal(t, "TRUE", *got.Args[2].Call.Args[0].Const)
}

func TestParticipleReportsPosition(t *testing.T) {
	parser, err := participle.Build[call](
		participle.Lexer(grammar.FormulaLexer),
		participle.Elide("Whitespace"),
	)
	require.NoError(t, err)

	_, err = parser.ParseString("bad.formula", "IF(1,\n 2")
	require.Error(t, err)

	var perr participle.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Position().Line)
}
