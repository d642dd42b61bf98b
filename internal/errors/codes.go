package errors

// Error codes for formula diagnostics
// These codes appear in CLI reports and as LSP diagnostic codes.
//
// Error code ranges:
// E0100-E0199: Structural (syntax) errors
// E0200-E0299: Function resolution errors

const (
	// E0100: A ')' with no matching '('
	ErrorUnmatchedClosingParen = "E0100"

	// E0101: One or more '(' never closed
	ErrorMissingClosingParen = "E0101"

	// E0102: One or more '[' never closed
	ErrorMissingClosingBracket = "E0102"

	// E0200: Uppercase callee that is not a built-in function
	ErrorInvalidFunction = "E0200"
)

var codeHelp = map[string]string{
	ErrorUnmatchedClosingParen: "remove the extra ')' or add the missing '(' before it",
	ErrorMissingClosingParen:   "every '(' needs a matching ')'",
	ErrorMissingClosingBracket: "every '[' needs a matching ']'",
	ErrorInvalidFunction:       "built-in functions are listed by `formula-cli functions`; custom functions start with a lowercase letter",
}

// HelpFor returns the help line for an error code, or "".
func HelpFor(code string) string {
	return codeHelp[code]
}
