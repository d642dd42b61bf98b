package diagnostics

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"formulight/internal/classify"
	"formulight/internal/errors"
	"formulight/internal/keywords"
	"formulight/internal/scanner"
	"formulight/token"
)

type ErrorKind string

const (
	SyntaxError   ErrorKind = "syntax"
	FunctionError ErrorKind = "function"
)

// FormulaError is a structural problem found in formula text. Position is
// the byte offset of the offending token's first character; Code is one of
// the errors.Error* codes.
type FormulaError struct {
	Position int       `json:"position"`
	Message  string    `json:"message"`
	Kind     ErrorKind `json:"kind"`
	Code     string    `json:"code"`
}

// DetectErrors tokenizes text and reports unbalanced parentheses and calls
// to unknown uppercase functions. Lowercase callees are taken to be custom
// functions and never reported.
func DetectErrors(text string) []FormulaError {
	tokens := scanner.Tokenize(text)
	errs := []FormulaError{}
	parenDepth := 0
	bracketDepth := 0

	for i, tok := range tokens {
		switch tok.Kind {
		case token.PARENTHESIS:
			if tok.Value == "(" {
				parenDepth++
				continue
			}
			parenDepth--
			if parenDepth < 0 {
				errs = append(errs, FormulaError{
					Position: tok.Start,
					Message:  "Unmatched closing parenthesis",
					Kind:     SyntaxError,
					Code:     errors.ErrorUnmatchedClosingParen,
				})
			}
		case token.BRACKET:
			// The scanner folds brackets into field tokens today; the
			// counter only matters if standalone brackets are added.
			if tok.Value == "[" {
				bracketDepth++
			} else {
				bracketDepth--
			}
		case token.IDENTIFIER:
			if err, ok := checkCall(tokens, i); ok {
				errs = append(errs, err)
			}
		}
	}

	if parenDepth > 0 {
		errs = append(errs, FormulaError{
			Position: len(text) - 1,
			Message:  fmt.Sprintf("Missing %d closing %s", parenDepth, plural(parenDepth, "parenthesis", "parentheses")),
			Kind:     SyntaxError,
			Code:     errors.ErrorMissingClosingParen,
		})
	}
	if bracketDepth > 0 {
		errs = append(errs, FormulaError{
			Position: len(text) - 1,
			Message:  fmt.Sprintf("Missing %d closing %s", bracketDepth, plural(bracketDepth, "bracket", "brackets")),
			Kind:     SyntaxError,
			Code:     errors.ErrorMissingClosingBracket,
		})
	}

	return errs
}

func checkCall(tokens []token.Token, i int) (FormulaError, bool) {
	tok := tokens[i]
	if !classify.FollowedByCall(tokens, i) {
		return FormulaError{}, false
	}
	if keywords.IsFunction(strings.ToUpper(tok.Value)) || !classify.StartsUpper(tok.Value) {
		return FormulaError{}, false
	}
	return FormulaError{
		Position: tok.Start,
		Message:  "Invalid function: " + tok.Value,
		Kind:     FunctionError,
		Code:     errors.ErrorInvalidFunction,
	}, true
}

// MarkErrors rewrites to ERROR every token whose first or last character is
// a flagged position. Values and spans are kept.
func MarkErrors(tokens []token.Token, errs []FormulaError) []token.Token {
	flagged := make(map[int]struct{}, len(errs))
	for _, err := range errs {
		flagged[err.Position] = struct{}{}
	}

	out := make([]token.Token, len(tokens))
	for i, tok := range tokens {
		_, atStart := flagged[tok.Start]
		_, atEnd := flagged[tok.End-1]
		if atStart || atEnd {
			tok = tok.WithKind(token.ERROR)
		}
		out[i] = tok
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Report converts e into a reporter error positioned within source. The
// marker covers the flagged token up to the end of its line.
func Report(source string, e FormulaError) errors.CompilerError {
	return report(source, scanner.Tokenize(source), e)
}

// ReportAll converts every error for the reporter.
func ReportAll(source string, errs []FormulaError) []errors.CompilerError {
	tokens := scanner.Tokenize(source)
	out := make([]errors.CompilerError, len(errs))
	for i, e := range errs {
		out[i] = report(source, tokens, e)
	}
	return out
}

func report(source string, tokens []token.Token, e FormulaError) errors.CompilerError {
	start, end := e.Position, e.Position+1
	if tok, ok := flaggedToken(tokens, e.Position); ok {
		start, end = tok.Start, tok.End
	}
	pos := errors.PositionAt(source, start)
	length := lineRunes(source, start, end)

	switch e.Code {
	case errors.ErrorInvalidFunction:
		name := strings.TrimPrefix(e.Message, "Invalid function: ")
		return errors.InvalidFunction(e.Message, name, pos)
	case errors.ErrorMissingClosingParen:
		var openers []errors.Position
		for _, offset := range unclosedParens(tokens) {
			openers = append(openers, errors.PositionAt(source, offset))
		}
		return errors.MissingClosing(e.Code, e.Message, pos, length, openers...)
	case errors.ErrorMissingClosingBracket:
		return errors.MissingClosing(e.Code, e.Message, pos, length)
	case errors.ErrorUnmatchedClosingParen:
		return errors.UnmatchedClosingParen(e.Message, pos)
	}
	return errors.NewFormulaError(e.Code, e.Message, pos).WithLength(length).Build()
}

// flaggedToken finds the token MarkErrors would flag for offset, preferring
// one that starts there.
func flaggedToken(tokens []token.Token, offset int) (token.Token, bool) {
	for _, tok := range tokens {
		if tok.Start == offset {
			return tok, true
		}
	}
	for _, tok := range tokens {
		if tok.End-1 == offset {
			return tok, true
		}
	}
	return token.Token{}, false
}

// lineRunes counts the runes of source[start:end] that sit on start's line.
func lineRunes(source string, start, end int) int {
	end = min(end, len(source))
	if start >= end {
		return 1
	}
	text := source[start:end]
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return max(1, utf8.RuneCountInString(strings.TrimSuffix(text, "\r")))
}

// unclosedParens returns the offsets of every '(' left open at the end of
// tokens, outermost first.
func unclosedParens(tokens []token.Token) []int {
	var open []int
	for _, tok := range tokens {
		switch {
		case tok.Is(token.PARENTHESIS, "("):
			open = append(open, tok.Start)
		case tok.Is(token.PARENTHESIS, ")") && len(open) > 0:
			open = open[:len(open)-1]
		}
	}
	return open
}
