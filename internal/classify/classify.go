package classify

import (
	"strings"

	"formulight/internal/keywords"
	"formulight/token"
)

// Classify refines identifier tokens into functions, constants, custom
// function calls and formula fields. It returns a new slice with the same
// length and spans; the input is left untouched. Tokens that are not
// identifiers pass through unchanged, so Classify is idempotent.
func Classify(tokens []token.Token) []token.Token {
	out := make([]token.Token, len(tokens))
	for i, tok := range tokens {
		if tok.Kind != token.IDENTIFIER {
			out[i] = tok
			continue
		}
		out[i] = classifyIdentifier(tokens, i)
	}
	return out
}

func classifyIdentifier(tokens []token.Token, i int) token.Token {
	tok := tokens[i]
	upper := strings.ToUpper(tok.Value)

	switch {
	case keywords.IsFunction(upper):
		return tok.WithKind(token.FUNCTION).WithValue(upper)
	case keywords.IsConstant(upper):
		return tok.WithKind(token.CONSTANT).WithValue(upper)
	case startsLower(tok.Value) && FollowedByCall(tokens, i):
		return tok.WithKind(token.CUSTOM_FUNCTION)
	case isFormulaFieldName(tok.Value):
		return tok.WithKind(token.FORMULA_FIELD)
	}
	return tok
}

// FollowedByCall reports whether the first non-whitespace token after
// tokens[i] is an opening parenthesis.
func FollowedByCall(tokens []token.Token, i int) bool {
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].Kind == token.WHITESPACE {
			continue
		}
		return tokens[j].Is(token.PARENTHESIS, "(")
	}
	return false
}

func startsLower(s string) bool {
	return s != "" && 'a' <= s[0] && s[0] <= 'z'
}

// StartsUpper reports whether s begins with an ASCII uppercase letter.
func StartsUpper(s string) bool {
	return s != "" && 'A' <= s[0] && s[0] <= 'Z'
}

// isFormulaFieldName matches names like Total_Amount: an uppercase start,
// at least one underscore, and only letters, digits and underscores.
func isFormulaFieldName(s string) bool {
	if !StartsUpper(s) || !strings.Contains(s, "_") {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') && !('0' <= c && c <= '9') && c != '_' {
			return false
		}
	}
	return true
}
