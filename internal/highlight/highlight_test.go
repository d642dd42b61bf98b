package highlight

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formulight/token"
)

type recordingRenderer struct {
	got []token.Token
}

func (r *recordingRenderer) Render(tokens []token.Token) string {
	r.got = tokens
	return "rendered"
}

func withColor(t *testing.T, enabled bool) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = !enabled
	t.Cleanup(func() { color.NoColor = prev })
}

func TestHighlightMarksErrorsByDefault(t *testing.T) {
	rec := &recordingRenderer{}
	opts := DefaultOptions()
	opts.Renderer = rec

	out := Highlight("FOO(1)", opts)

	assert.Equal(t, "rendered", out)
	require.NotEmpty(t, rec.got)
	assert.Equal(t, token.ERROR, rec.got[0].Kind)
}

func TestHighlightWithoutErrors(t *testing.T) {
	rec := &recordingRenderer{}

	Highlight("FOO(1)", Options{ShowErrors: false, Renderer: rec})

	require.NotEmpty(t, rec.got)
	assert.Equal(t, token.IDENTIFIER, rec.got[0].Kind)
}

func TestTokensClassifies(t *testing.T) {
	tokens := Tokens("if(x, true)", false)
	assert.Equal(t, token.FUNCTION, tokens[0].Kind)
	assert.Equal(t, "IF", tokens[0].Value)
	assert.Equal(t, token.CONSTANT, tokens[5].Kind)
}

func TestANSIRendererPlainOutput(t *testing.T) {
	withColor(t, false)

	out := Highlight("if( [A].[B] ,\n 'x')", Options{})
	assert.Equal(t, "IF( [A].[B] ,\n 'x')", out)
}

func TestANSIRendererColors(t *testing.T) {
	withColor(t, true)
	theme, ok := LookupTheme("dark")
	require.True(t, ok)

	out := (&ANSIRenderer{Theme: theme}).Render(Tokens("IF(1)", false))

	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "IF")
}

func TestANSIRendererFallsBackToRawValue(t *testing.T) {
	withColor(t, true)
	theme, _ := LookupTheme("mono")

	out := (&ANSIRenderer{Theme: theme}).Render(Tokens("1 + x", false))
	assert.Equal(t, "1 + x", out, "mono has no styles for numbers, operators or identifiers")
}

func TestEveryKindIsStyledByColorThemes(t *testing.T) {
	for _, name := range []string{"dark", "light"} {
		theme, ok := LookupTheme(name)
		require.True(t, ok)
		for _, k := range token.Kinds() {
			if k == token.WHITESPACE {
				continue
			}
			_, styled := theme.Styles[k]
			assert.True(t, styled, "theme %s has no style for %s", name, k)
		}
	}
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { _ = SetTheme(DefaultTheme) })

	require.NoError(t, SetTheme("light"))
	assert.Equal(t, "light", CurrentTheme().Name)

	err := SetTheme("neon")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "neon"))
	assert.Equal(t, "light", CurrentTheme().Name, "failed switch keeps the previous theme")
}

func TestThemeNames(t *testing.T) {
	assert.Equal(t, []string{"dark", "light", "mono"}, ThemeNames())
}
