package errors

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestErrorReporter(t *testing.T) {
	source := `IF(
    ISBLNK([Name]),
    1, 2)`

	reporter := NewErrorReporter("test.formula", source)

	err := InvalidFunction("Invalid function: ISBLNK", "ISBLNK", Position{Line: 2, Column: 5, Offset: 8})
	formatted := reporter.FormatError(err)

	// Should contain error level and code
	assert.Contains(t, formatted, "error["+ErrorInvalidFunction+"]")
	assert.Contains(t, formatted, "Invalid function: ISBLNK")

	// Should contain location
	assert.Contains(t, formatted, "test.formula:2:5")

	// Should show the offending line with context on both sides
	assert.Contains(t, formatted, "  1 │ IF(")
	assert.Contains(t, formatted, "  2 │     ISBLNK([Name]),")
	assert.Contains(t, formatted, "  3 │     1, 2)")

	// Should underline the whole name
	assert.Contains(t, formatted, "│     ^^^^^^ not a built-in function\n")

	// Should contain suggestions
	assert.Contains(t, formatted, "did you mean 'ISBLANK'")
	assert.Contains(t, formatted, "help:")
}

func TestPositionAt(t *testing.T) {
	source := "ab\ncé\nd"

	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, PositionAt(source, 0))
	assert.Equal(t, Position{Line: 1, Column: 3, Offset: 2}, PositionAt(source, 2))
	assert.Equal(t, Position{Line: 2, Column: 1, Offset: 3}, PositionAt(source, 3))
	assert.Equal(t, Position{Line: 2, Column: 3, Offset: 6}, PositionAt(source, 6), "columns count runes")
	assert.Equal(t, Position{Line: 3, Column: 2, Offset: 8}, PositionAt(source, 99), "clamped to end")
	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, PositionAt(source, -1))
}

func TestInvalidFunctionSuggestions(t *testing.T) {
	pos := Position{Line: 1, Column: 1}

	err := InvalidFunction("Invalid function: Iff", "Iff", pos)
	assert.Equal(t, ErrorInvalidFunction, err.Code)
	assert.Equal(t, 3, err.Length)
	if assert.NotEmpty(t, err.Suggestions) {
		assert.Contains(t, err.Suggestions[0].Message, "'IF'")
	}

	err = InvalidFunction("Invalid function: Quarterly_Report", "Quarterly_Report", pos)
	if assert.Len(t, err.Suggestions, 1) {
		assert.Contains(t, err.Suggestions[0].Message, "quarterly_Report")
		assert.Contains(t, err.Suggestions[0].Message, "custom function")
	}
}

func TestMissingClosingHasNote(t *testing.T) {
	err := MissingClosing(ErrorMissingClosingParen, "Missing 1 closing parenthesis", Position{Line: 1, Column: 4}, 2, Position{Line: 1, Column: 3})
	assert.Equal(t, Error, err.Level)
	assert.Equal(t, 2, err.Length)
	assert.Len(t, err.Notes, 1)
	assert.Equal(t, []Label{{Position: Position{Line: 1, Column: 3}, Length: 1, Text: "unclosed '('"}}, err.Labels)
	assert.Equal(t, HelpFor(ErrorMissingClosingParen), err.HelpText)

	err = MissingClosing(ErrorMissingClosingBracket, "Missing 1 closing bracket", Position{Line: 1, Column: 4}, 1)
	assert.Empty(t, err.Labels)
}

func TestMarksUnclosedParenOnEarlierLine(t *testing.T) {
	reporter := NewErrorReporter("f", "IF(\n[A],\n1,\n2,\n3")
	err := MissingClosing(ErrorMissingClosingParen, "Missing 1 closing parenthesis",
		Position{Line: 5, Column: 1, Offset: 15}, 1, Position{Line: 1, Column: 3, Offset: 2})

	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "f:5:1")
	assert.Contains(t, formatted, "  1 │ IF(\n    │   - unclosed '('\n...\n  4 │ 2,\n  5 │ 3\n    │ ^ formula ends here\n")
	assert.NotContains(t, formatted, "[A]", "lines between marks are elided")
}

func TestMarkerRow(t *testing.T) {
	reporter := NewErrorReporter("test.formula", "IF(x))")

	marker := reporter.markerRow([]mark{{column: 6, length: 1, primary: true}}, 6, Error)
	assert.Equal(t, "     ^", marker)

	marker = reporter.markerRow([]mark{{column: 1, length: 0, primary: true}}, 6, Error)
	assert.Equal(t, "^", marker, "zero length still draws one caret")

	marker = reporter.markerRow([]mark{{column: 3, length: 10, primary: true}}, 5, Error)
	assert.Equal(t, "  ^^^", marker, "stops at the end of the line")

	marker = reporter.markerRow([]mark{
		{column: 1, length: 1, text: "unclosed '('"},
		{column: 4, length: 1, text: "unclosed '('"},
		{column: 7, length: 1, primary: true, text: "formula ends here"},
	}, 7, Error)
	assert.Equal(t, "-  -  ^ unclosed '('; formula ends here", marker)
}

func TestFormatAll(t *testing.T) {
	reporter := NewErrorReporter("f", "IF(x))")
	out := reporter.FormatAll([]CompilerError{
		UnmatchedClosingParen("Unmatched closing parenthesis", Position{Line: 1, Column: 6, Offset: 5}),
		UnmatchedClosingParen("Unmatched closing parenthesis", Position{Line: 1, Column: 6, Offset: 5}),
	})
	assert.Equal(t, 2, strings.Count(out, "error["+ErrorUnmatchedClosingParen+"]"))
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("hello", "hello"))
	assert.Equal(t, 1, levenshteinDistance("hello", "hallo"))
	assert.Equal(t, 1, levenshteinDistance("hello", "helo"))
	assert.Equal(t, 5, levenshteinDistance("hello", ""))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}

func TestSimilarNameFinding(t *testing.T) {
	candidates := []string{"ISBLANK", "ISNULL", "ISNUMBER", "IF", "XYZZY"}

	similar := findSimilarNames("ISBLNK", candidates)
	assert.Contains(t, similar, "ISBLANK")
	assert.NotContains(t, similar, "XYZZY")

	assert.Empty(t, findSimilarNames("COMPLETELYDIFFERENT", candidates))
}

func TestErrorLevels(t *testing.T) {
	reporter := NewErrorReporter("f", "x")
	pos := Position{Line: 1, Column: 1}

	assert.Contains(t, reporter.FormatError(CompilerError{Level: Error, Message: "bad", Position: pos}), "error: bad")
	assert.Contains(t, reporter.FormatError(CompilerError{Level: Warning, Message: "meh", Position: pos}), "warning: meh")
}
