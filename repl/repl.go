// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"formulight/internal/diagnostics"
	ferrors "formulight/internal/errors"
	"formulight/internal/format"
	"formulight/internal/highlight"
	"formulight/internal/keywords"
)

const (
	PROMPT      = ">> "
	CONTINUE    = ".. "
	historyFile = ".formula_history"
)

const help = `:theme [name]    show or switch the color theme
:fmt [formula]   prettify a formula (default: the last one entered)
:help            show this message
:quit            exit
`

// LineReader is the part of *liner.State the loop needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Run starts an interactive session on the terminal with line editing,
// function name completion and a history file in the home directory.
func Run(out io.Writer) {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completeFunction)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	Start(ln, out)
}

// Start reads formulas until EOF or :quit. Each formula is echoed
// highlighted, followed by a report of its errors.
func Start(in LineReader, out io.Writer) {
	red := color.New(color.FgRed).SprintFunc()
	var last string

	for {
		src, ok := readFormula(in)
		if !ok {
			fmt.Fprintln(out)
			return
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		in.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			cmd, arg, _ := strings.Cut(trimmed, " ")
			arg = strings.TrimSpace(arg)
			switch strings.ToLower(cmd) {
			case ":quit", ":q":
				return
			case ":help":
				fmt.Fprint(out, help)
			case ":theme":
				if arg == "" {
					fmt.Fprintf(out, "theme: %s (available: %s)\n",
						highlight.CurrentTheme().Name, strings.Join(highlight.ThemeNames(), ", "))
					continue
				}
				if err := highlight.SetTheme(arg); err != nil {
					fmt.Fprintln(out, red(err.Error()))
				}
			case ":fmt":
				if arg == "" {
					arg = last
				}
				fmt.Fprintln(out, highlight.Highlight(format.Prettify(arg), highlight.DefaultOptions()))
			default:
				fmt.Fprintf(out, "unknown command %s. Type :help for commands.\n", cmd)
			}
			continue
		}

		last = src
		fmt.Fprintln(out, highlight.Highlight(src, highlight.DefaultOptions()))

		errs := diagnostics.DetectErrors(src)
		if len(errs) > 0 {
			reporter := ferrors.NewErrorReporter("<repl>", src)
			fmt.Fprint(out, reporter.FormatAll(diagnostics.ReportAll(src, errs)))
		}
	}
}

// readFormula keeps prompting while the text so far only lacks closing
// parentheses. A blank continuation line submits what was typed.
func readFormula(in LineReader) (string, bool) {
	var b strings.Builder

	for {
		prompt := PROMPT
		if b.Len() > 0 {
			prompt = CONTINUE
		}
		line, err := in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			// Ctrl-C drops the pending formula.
			return "", true
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}

func incomplete(src string) bool {
	errs := diagnostics.DetectErrors(src)
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if e.Code != ferrors.ErrorMissingClosingParen {
			return false
		}
	}
	return true
}

// completeFunction completes the word under the cursor to built-in
// function names.
func completeFunction(line string) []string {
	i := strings.LastIndexFunc(line, func(r rune) bool {
		return !(r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9'))
	})
	head, word := line[:i+1], strings.ToUpper(line[i+1:])
	if word == "" {
		return nil
	}

	var out []string
	for _, name := range keywords.Functions() {
		if strings.HasPrefix(name, word) {
			out = append(out, head+name+"(")
		}
	}
	return out
}
