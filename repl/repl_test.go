package repl

import (
	"bytes"
	"io"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formulight/internal/highlight"
)

func init() {
	color.NoColor = true
}

type scriptedReader struct {
	lines   []string
	prompts []string
	history []string
}

func (r *scriptedReader) Prompt(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) AppendHistory(item string) {
	r.history = append(r.history, item)
}

func session(t *testing.T, lines ...string) (*scriptedReader, string) {
	t.Helper()
	in := &scriptedReader{lines: lines}
	var out bytes.Buffer
	Start(in, &out)
	return in, out.String()
}

func TestEchoesFormula(t *testing.T) {
	_, out := session(t, "IF([A], 1, 2)")

	assert.Equal(t, "IF([A], 1, 2)\n\n", out)
}

func TestReportsErrors(t *testing.T) {
	_, out := session(t, "Iff(x)")

	assert.Contains(t, out, "error[E0200]: Invalid function: Iff")
	assert.Contains(t, out, "<repl>:1:1")
}

func TestContinuesUnbalancedInput(t *testing.T) {
	in, out := session(t, "IF(a,", "  1,", "  2)")

	assert.Equal(t, []string{PROMPT, CONTINUE, CONTINUE, PROMPT}, in.prompts)
	assert.Equal(t, "IF(a,\n  1,\n  2)\n\n", out)
	assert.Equal(t, []string{"IF(a,   1,   2)"}, in.history)
}

func TestBlankLineSubmitsPending(t *testing.T) {
	_, out := session(t, "IF(a", "")

	assert.Contains(t, out, "Missing 1 closing parenthesis")
}

func TestCommands(t *testing.T) {
	defer func() { require.NoError(t, highlight.SetTheme(highlight.DefaultTheme)) }()

	in, out := session(t,
		"if(a=1,true,false)",
		":fmt",
		":fmt len( x )",
		":theme light",
		":theme",
		":theme neon",
		":bogus",
		":quit",
		"never read",
	)

	assert.Contains(t, out, "IF(a = 1, TRUE, FALSE)\n")
	assert.Contains(t, out, "LEN(x)\n")
	assert.Contains(t, out, "theme: light (available: dark, light, mono)")
	assert.Contains(t, out, `unknown theme "neon"`)
	assert.Contains(t, out, "unknown command :bogus")
	assert.Equal(t, []string{"never read"}, in.lines, ":quit stops the loop")
}

func TestCompleteFunction(t *testing.T) {
	got := completeFunction("IF(isbl")
	assert.Equal(t, []string{"IF(ISBLANK("}, got)

	assert.Nil(t, completeFunction("IF("))
	assert.Empty(t, completeFunction("zzz"))
}
