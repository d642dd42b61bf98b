package errors

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"formulight/internal/keywords"
)

// FormulaErrorBuilder provides a fluent interface for creating errors with suggestions
type FormulaErrorBuilder struct {
	err CompilerError
}

// NewFormulaError creates a new error builder
func NewFormulaError(code, message string, pos Position) *FormulaErrorBuilder {
	return &FormulaErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
			HelpText: HelpFor(code),
		},
	}
}

// WithLength sets the length of the error span
func (b *FormulaErrorBuilder) WithLength(length int) *FormulaErrorBuilder {
	b.err.Length = length
	return b
}

// WithLabel sets the text printed after the primary marker
func (b *FormulaErrorBuilder) WithLabel(text string) *FormulaErrorBuilder {
	b.err.Label = text
	return b
}

// WithRelated marks another span of the source
func (b *FormulaErrorBuilder) WithRelated(pos Position, length int, text string) *FormulaErrorBuilder {
	b.err.Labels = append(b.err.Labels, Label{Position: pos, Length: length, Text: text})
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *FormulaErrorBuilder) WithSuggestion(message string) *FormulaErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithReplacement adds a suggestion with replacement text
func (b *FormulaErrorBuilder) WithReplacement(message, replacement string) *FormulaErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message, Replacement: replacement})
	return b
}

// WithNote adds a note to the error
func (b *FormulaErrorBuilder) WithNote(note string) *FormulaErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// Build returns the completed error
func (b *FormulaErrorBuilder) Build() CompilerError {
	return b.err
}

// UnmatchedClosingParen reports a ')' with nothing open
func UnmatchedClosingParen(message string, pos Position) CompilerError {
	return NewFormulaError(ErrorUnmatchedClosingParen, message, pos).
		WithLabel("nothing to close").
		Build()
}

// MissingClosing reports unclosed parentheses or brackets at the end of
// input. length covers the last token; every opener left open is marked.
func MissingClosing(code, message string, pos Position, length int, openers ...Position) CompilerError {
	delim := "("
	if code == ErrorMissingClosingBracket {
		delim = "["
	}

	builder := NewFormulaError(code, message, pos).
		WithLength(length).
		WithLabel("formula ends here").
		WithNote("the formula ends before every opening delimiter is closed")
	for _, open := range openers {
		builder = builder.WithRelated(open, 1, fmt.Sprintf("unclosed '%s'", delim))
	}
	return builder.Build()
}

// InvalidFunction reports an unknown uppercase callee and suggests close
// built-in names
func InvalidFunction(message, name string, pos Position) CompilerError {
	builder := NewFormulaError(ErrorInvalidFunction, message, pos).
		WithLength(utf8.RuneCountInString(name)).
		WithLabel("not a built-in function")

	similar := findSimilarNames(strings.ToUpper(name), keywords.Functions())
	switch len(similar) {
	case 0:
		builder = builder.WithSuggestion(fmt.Sprintf("rename to %s to call it as a custom function", lowerFirst(name)))
	case 1:
		builder = builder.WithReplacement(fmt.Sprintf("did you mean '%s'?", similar[0]), similar[0])
	default:
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '")))
	}

	return builder.Build()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func findSimilarNames(target string, candidates []string) []string {
	var similar []string

	for _, candidate := range candidates {
		if levenshteinDistance(target, candidate) <= 2 && len(candidate) > 1 {
			similar = append(similar, candidate)
		}
	}

	return similar
}

// Simple Levenshtein distance implementation for finding similar names
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	previous := make([]int, len(b)+1)
	for j := range previous {
		previous[j] = j
	}

	for i := 1; i <= len(a); i++ {
		current := make([]int, len(b)+1)
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[j] = min(
				current[j-1]+1,     // insertion
				previous[j]+1,      // deletion
				previous[j-1]+cost, // substitution
			)
		}
		previous = current
	}

	return previous[len(b)]
}
