package highlight

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fatih/color"

	"formulight/token"
)

// Theme maps token kinds to terminal styles. Kinds without a style are
// printed as-is.
type Theme struct {
	Name   string
	Styles map[token.Kind]*color.Color
}

func (t *Theme) style(k token.Kind) (*color.Color, bool) {
	if t == nil {
		return nil, false
	}
	c, ok := t.Styles[k]
	return c, ok
}

const DefaultTheme = "dark"

var themes = map[string]*Theme{
	"dark": {
		Name: "dark",
		Styles: map[token.Kind]*color.Color{
			token.FUNCTION:        color.New(color.FgHiBlue, color.Bold),
			token.FIELD:           color.New(color.FgHiCyan),
			token.NESTED_FIELD:    color.New(color.FgCyan),
			token.CUSTOM_FUNCTION: color.New(color.FgHiMagenta),
			token.FORMULA_FIELD:   color.New(color.FgHiGreen),
			token.OPERATOR:        color.New(color.FgHiWhite),
			token.STRING:          color.New(color.FgHiYellow),
			token.NUMBER:          color.New(color.FgHiRed),
			token.CONSTANT:        color.New(color.FgMagenta, color.Bold),
			token.PARENTHESIS:     color.New(color.FgWhite),
			token.BRACKET:         color.New(color.FgWhite),
			token.COMMA:           color.New(color.FgWhite),
			token.IDENTIFIER:      color.New(color.FgWhite),
			token.COMMENT:         color.New(color.FgHiBlack, color.Italic),
			token.ERROR:           color.New(color.FgHiRed, color.Underline, color.Bold),
			token.DOT:             color.New(color.FgWhite),
		},
	},
	"light": {
		Name: "light",
		Styles: map[token.Kind]*color.Color{
			token.FUNCTION:        color.New(color.FgBlue, color.Bold),
			token.FIELD:           color.New(color.FgCyan),
			token.NESTED_FIELD:    color.New(color.FgCyan, color.Underline),
			token.CUSTOM_FUNCTION: color.New(color.FgMagenta),
			token.FORMULA_FIELD:   color.New(color.FgGreen),
			token.OPERATOR:        color.New(color.FgBlack),
			token.STRING:          color.New(color.FgYellow),
			token.NUMBER:          color.New(color.FgRed),
			token.CONSTANT:        color.New(color.FgMagenta, color.Bold),
			token.PARENTHESIS:     color.New(color.FgBlack),
			token.BRACKET:         color.New(color.FgBlack),
			token.COMMA:           color.New(color.FgBlack),
			token.IDENTIFIER:      color.New(color.FgBlack),
			token.COMMENT:         color.New(color.FgHiBlack, color.Italic),
			token.ERROR:           color.New(color.FgRed, color.Underline, color.Bold),
			token.DOT:             color.New(color.FgBlack),
		},
	},
	"mono": {
		Name: "mono",
		Styles: map[token.Kind]*color.Color{
			token.FUNCTION: color.New(color.Bold),
			token.CONSTANT: color.New(color.Bold),
			token.COMMENT:  color.New(color.Faint),
			token.ERROR:    color.New(color.Underline),
		},
	},
}

var (
	currentMu sync.RWMutex
	current   = themes[DefaultTheme]
)

// SetTheme selects the process-wide theme used by renderers built without
// an explicit one.
func SetTheme(name string) error {
	t, ok := themes[name]
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, ThemeNames())
	}
	currentMu.Lock()
	current = t
	currentMu.Unlock()
	return nil
}

func CurrentTheme() *Theme {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// LookupTheme returns a built-in theme by name.
func LookupTheme(name string) (*Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
