package scanner

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"formulight/internal/keywords"
	"formulight/token"
)

// Scanner splits formula source into a flat token stream. Every byte of the
// source lands in exactly one token; nothing is ever reported as an error.
type Scanner struct {
	source  string
	tokens  []token.Token
	start   int
	current int
}

func NewScanner(source string) *Scanner {
	return &Scanner{source: source}
}

// Tokenize scans text and returns its tokens. Empty input yields an empty
// slice.
func Tokenize(text string) []token.Token {
	if text == "" {
		return []token.Token{}
	}
	return NewScanner(text).ScanTokens()
}

func (s *Scanner) ScanTokens() []token.Token {
	for !s.isAtEnd() {
		s.start = s.current
		s.scanToken()
	}
	if s.tokens == nil {
		s.tokens = []token.Token{}
	}
	return s.tokens
}

func (s *Scanner) scanToken() {
	c := s.peek()
	switch {
	case s.isSpaceAt(s.current):
		s.scanWhitespace()
	case c == '"' || c == '\'':
		s.scanString(c)
	case c == '/' && s.peekNext() == '*':
		s.scanBlockComment()
	case c == '/' && s.peekNext() == '/':
		s.scanLineComment()
	default:
		if op := keywords.MatchOperator(s.source, s.current); op != "" {
			s.current += len(op)
			s.addToken(token.OPERATOR)
			return
		}
		s.scanDefault(c)
	}
}

func (s *Scanner) scanDefault(c byte) {
	switch {
	case c == '[':
		s.scanField()
	case c == '(' || c == ')':
		s.advance()
		s.addToken(token.PARENTHESIS)
	case c == ',':
		s.advance()
		s.addToken(token.COMMA)
	case isDigit(c):
		s.scanNumber()
	case c == '.':
		s.scanDot()
	case isAlpha(c):
		s.scanIdentifier()
	default:
		// Unknown input still becomes a token so scanning stays total.
		_, size := utf8.DecodeRuneInString(s.source[s.current:])
		s.current += size
		s.addToken(token.IDENTIFIER)
	}
}

func (s *Scanner) scanWhitespace() {
	for !s.isAtEnd() && s.isSpaceAt(s.current) {
		_, size := utf8.DecodeRuneInString(s.source[s.current:])
		s.current += size
	}
	s.addToken(token.WHITESPACE)
}

// scanString consumes through the matching quote. A backslash always takes
// the following byte with it. Unterminated strings close at end of input.
func (s *Scanner) scanString(quote byte) {
	s.advance()
	for !s.isAtEnd() {
		c := s.advance()
		if c == '\\' {
			if !s.isAtEnd() {
				s.advance()
			}
			continue
		}
		if c == quote {
			break
		}
	}
	s.addToken(token.STRING)
}

func (s *Scanner) scanBlockComment() {
	s.advance() // /
	s.advance() // *
	for !s.isAtEnd() {
		if s.peek() == '*' && s.peekNext() == '/' {
			s.advance()
			s.advance()
			break
		}
		s.advance()
	}
	s.addToken(token.COMMENT)
}

func (s *Scanner) scanLineComment() {
	for !s.isAtEnd() && s.peek() != '\n' && s.peek() != '\r' {
		s.advance()
	}
	s.addToken(token.COMMENT)
}

// scanField handles [Name], [Account.Name] and the chained spelling
// [Account] . [Owner] . [Name]. Chained fields collapse into one token whose
// value joins the bracketed parts with "." and drops the whitespace between
// them; the span still covers everything consumed.
func (s *Scanner) scanField() {
	end := s.bracketEnd(s.current)
	value := s.source[s.start:end]
	joined := false

	for {
		i := s.skipSpace(end)
		if i >= len(s.source) || s.source[i] != '.' {
			break
		}
		i = s.skipSpace(i + 1)
		if i >= len(s.source) || s.source[i] != '[' {
			break
		}
		next := s.bracketEnd(i)
		value += "." + s.source[i:next]
		end = next
		joined = true
	}

	s.current = end
	kind := token.FIELD
	if joined || strings.Contains(value, ".") {
		kind = token.NESTED_FIELD
	}
	s.tokens = append(s.tokens, token.Token{Kind: kind, Value: value, Start: s.start, End: end})
}

// bracketEnd returns the offset just past the ']' that balances the '[' at
// i, or the end of input when it never balances.
func (s *Scanner) bracketEnd(i int) int {
	depth := 0
	for j := i; j < len(s.source); j++ {
		switch s.source[j] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return len(s.source)
}

func (s *Scanner) scanDot() {
	s.advance()
	if s.dotJoinsFields() {
		return
	}
	s.addToken(token.DOT)
}

// dotJoinsFields reports whether the dot just consumed sits between a field
// and a following '['. scanField normally swallows that shape already.
func (s *Scanner) dotJoinsFields() bool {
	if len(s.tokens) == 0 {
		return false
	}
	last := s.tokens[len(s.tokens)-1]
	if last.Kind != token.FIELD && last.Kind != token.NESTED_FIELD {
		return false
	}
	i := s.skipSpace(s.current)
	return i < len(s.source) && s.source[i] == '['
}

func (s *Scanner) scanNumber() {
	for !s.isAtEnd() && (isDigit(s.peek()) || s.peek() == '.') {
		s.advance()
	}
	s.addToken(token.NUMBER)
}

func (s *Scanner) scanIdentifier() {
	for !s.isAtEnd() && (isAlpha(s.peek()) || isDigit(s.peek())) {
		s.advance()
	}
	s.addToken(token.IDENTIFIER)
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) addToken(kind token.Kind) {
	s.tokens = append(s.tokens, token.Token{
		Kind:  kind,
		Value: s.source[s.start:s.current],
		Start: s.start,
		End:   s.current,
	})
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) isSpaceAt(i int) bool {
	if i >= len(s.source) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s.source[i:])
	return unicode.IsSpace(r)
}

func (s *Scanner) skipSpace(i int) int {
	for i < len(s.source) && s.isSpaceAt(i) {
		_, size := utf8.DecodeRuneInString(s.source[i:])
		i += size
	}
	return i
}

// Helper functions.

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}
