// Package token SPDX-License-Identifier: Apache-2.0
package token

type Kind string

// Token is a typed fragment of formula source. Start and End are half-open
// byte offsets into the original text.
type Token struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

const (
	FUNCTION        Kind = "function"
	FIELD           Kind = "field"
	NESTED_FIELD    Kind = "nested_field"
	CUSTOM_FUNCTION Kind = "custom_function"
	FORMULA_FIELD   Kind = "formula_field"
	OPERATOR        Kind = "operator"
	STRING          Kind = "string"
	NUMBER          Kind = "number"
	CONSTANT        Kind = "constant"
	PARENTHESIS     Kind = "parenthesis"
	BRACKET         Kind = "bracket"
	COMMA           Kind = "comma"
	WHITESPACE      Kind = "whitespace"
	IDENTIFIER      Kind = "identifier"
	COMMENT         Kind = "comment"
	ERROR           Kind = "error"
	DOT             Kind = "dot"
)

var kinds = []Kind{
	FUNCTION,
	FIELD,
	NESTED_FIELD,
	CUSTOM_FUNCTION,
	FORMULA_FIELD,
	OPERATOR,
	STRING,
	NUMBER,
	CONSTANT,
	PARENTHESIS,
	BRACKET,
	COMMA,
	WHITESPACE,
	IDENTIFIER,
	COMMENT,
	ERROR,
	DOT,
}

// Kinds returns every token kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

func (k Kind) String() string {
	return string(k)
}

func (t Token) Len() int {
	return t.End - t.Start
}

// WithKind returns a copy of t with its kind replaced.
func (t Token) WithKind(k Kind) Token {
	t.Kind = k
	return t
}

// WithValue returns a copy of t with its value replaced.
func (t Token) WithValue(v string) Token {
	t.Value = v
	return t
}

// Is reports whether t has kind k and, when given, one of the values.
func (t Token) Is(k Kind, values ...string) bool {
	if t.Kind != k {
		return false
	}
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if t.Value == v {
			return true
		}
	}
	return false
}
