package highlight

import (
	"strings"

	"formulight/internal/classify"
	"formulight/internal/diagnostics"
	"formulight/internal/scanner"
	"formulight/token"
)

// Renderer turns a classified token stream into presentation markup.
type Renderer interface {
	Render(tokens []token.Token) string
}

// Options control the Highlight pipeline.
type Options struct {
	ShowErrors bool     // run the error detector and mark flagged tokens
	Renderer   Renderer // nil means an ANSIRenderer on the current theme
}

func DefaultOptions() Options {
	return Options{ShowErrors: true}
}

// Tokens runs the pipeline up to rendering: tokenize, classify and, when
// showErrors is set, mark the tokens flagged by the error detector.
func Tokens(text string, showErrors bool) []token.Token {
	tokens := classify.Classify(scanner.Tokenize(text))
	if showErrors {
		tokens = diagnostics.MarkErrors(tokens, diagnostics.DetectErrors(text))
	}
	return tokens
}

func Highlight(text string, opts Options) string {
	r := opts.Renderer
	if r == nil {
		r = &ANSIRenderer{}
	}
	return r.Render(Tokens(text, opts.ShowErrors))
}

// ANSIRenderer colors tokens for a terminal. A nil Theme follows
// CurrentTheme at render time.
type ANSIRenderer struct {
	Theme *Theme
}

func (r *ANSIRenderer) Render(tokens []token.Token) string {
	theme := r.Theme
	if theme == nil {
		theme = CurrentTheme()
	}

	var b strings.Builder
	for _, tok := range tokens {
		if tok.Kind == token.WHITESPACE {
			b.WriteString(tok.Value)
			continue
		}
		style, ok := theme.style(tok.Kind)
		if !ok {
			b.WriteString(tok.Value)
			continue
		}
		b.WriteString(style.Sprint(tok.Value))
	}
	return b.String()
}
