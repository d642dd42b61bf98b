// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"formulight/grammar"
	"formulight/internal/classify"
	"formulight/internal/diagnostics"
	"formulight/internal/errors"
	"formulight/internal/format"
	"formulight/internal/highlight"
	"formulight/internal/keywords"
	"formulight/internal/scanner"
)

const usage = `Usage: formula-cli <command> [flags] [file...]

Commands:
  tokens     print the classified token stream
  highlight  print the formula with ANSI colors
  check      report formula errors (exit status 1 if any); takes several files
  fmt        print the prettified formula
  functions  list the built-in functions by category

Flags:
  --theme <name>  color theme for highlight (dark, light, mono)
  --no-errors     highlight without marking tokens flagged as errors
  --json          machine-readable output for tokens and check
  --participle    tokens as the participle lexer emits them (symbol, line:col)

Reads standard input when no file is given or the file is "-".
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	theme      string
	showErrors bool
	json       bool
	participle bool
	paths      []string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	red := color.New(color.FgRed)

	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 1
	}
	command := args[0]

	opts, err := parseFlags(args[1:])
	if err != nil {
		red.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if opts.theme != "" {
		if err := highlight.SetTheme(opts.theme); err != nil {
			red.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}

	switch command {
	case "functions":
		listFunctions(stdout)
		return 0
	case "check":
		return check(opts, stdin, stdout, stderr)
	case "tokens", "highlight", "fmt":
	default:
		red.Fprintf(stderr, "error: unknown command %q\n\n", command)
		fmt.Fprint(stderr, usage)
		return 1
	}

	if len(opts.paths) > 1 {
		red.Fprintf(stderr, "error: %s takes one file, got %d\n", command, len(opts.paths))
		return 1
	}
	path := "-"
	if len(opts.paths) == 1 {
		path = opts.paths[0]
	}

	name, source, err := readSource(path, stdin)
	if err != nil {
		red.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	switch command {
	case "tokens":
		if opts.participle {
			if err := lexTokens(stdout, name, source, opts.json); err != nil {
				red.Fprintf(stderr, "error: %v\n", err)
				return 1
			}
			return 0
		}
		tokens := classify.Classify(scanner.Tokenize(source))
		if opts.json {
			if err := writeJSON(stdout, tokens); err != nil {
				red.Fprintf(stderr, "error: %v\n", err)
				return 1
			}
			return 0
		}
		for _, tok := range tokens {
			fmt.Fprintf(stdout, "%d:%d %s %q\n", tok.Start, tok.End, tok.Kind, tok.Value)
		}
	case "highlight":
		fmt.Fprintln(stdout, highlight.Highlight(source, highlight.Options{ShowErrors: opts.showErrors}))
	case "fmt":
		fmt.Fprintln(stdout, format.Prettify(source))
	}
	return 0
}

type lexedToken struct {
	Symbol string `json:"symbol"`
	Value  string `json:"value"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// lexTokens prints the stream grammar.FormulaLexer feeds a participle
// parser, without the trailing EOF.
func lexTokens(w io.Writer, name, source string, asJSON bool) error {
	lex, err := grammar.FormulaLexer.LexString(name, source)
	if err != nil {
		return fmt.Errorf("failed to lex %s: %w", name, err)
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return fmt.Errorf("failed to lex %s: %w", name, err)
	}

	symbols := grammar.FormulaLexer.Symbols()
	names := make(map[lexer.TokenType]string, len(symbols))
	for symbol, tt := range symbols {
		names[tt] = symbol
	}

	out := make([]lexedToken, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type == lexer.EOF {
			break
		}
		out = append(out, lexedToken{Symbol: names[tok.Type], Value: tok.Value, Line: tok.Pos.Line, Column: tok.Pos.Column})
	}

	if asJSON {
		return writeJSON(w, out)
	}
	for _, tok := range out {
		fmt.Fprintf(w, "%d:%d %s %q\n", tok.Line, tok.Column, tok.Symbol, tok.Value)
	}
	return nil
}

func parseFlags(args []string) (options, error) {
	opts := options{showErrors: true, theme: os.Getenv("FORMULA_THEME")}

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--no-errors":
			opts.showErrors = false
		case arg == "--json":
			opts.json = true
		case arg == "--participle":
			opts.participle = true
		case arg == "--theme":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--theme needs a value")
			}
			i++
			opts.theme = args[i]
		case strings.HasPrefix(arg, "--theme="):
			opts.theme = strings.TrimPrefix(arg, "--theme=")
		case strings.HasPrefix(arg, "--"):
			return opts, fmt.Errorf("unknown flag %s", arg)
		default:
			opts.paths = append(opts.paths, arg)
		}
	}
	return opts, nil
}

func readSource(path string, stdin io.Reader) (string, string, error) {
	if path == "" || path == "-" {
		source, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return "<stdin>", string(source), nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file: %w", err)
	}
	return path, string(source), nil
}

func stdinPaths(paths []string) int {
	n := 0
	for _, path := range paths {
		if path == "" || path == "-" {
			n++
		}
	}
	return n
}

type checkResult struct {
	name   string
	source string
	errs   []diagnostics.FormulaError
	err    error
}

// checkFiles reads and checks every path concurrently. Results keep the
// order of paths. At most one path may name stdin.
func checkFiles(paths []string, stdin io.Reader) []checkResult {
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	results := make([]checkResult, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			name, source, err := readSource(path, stdin)
			if err != nil {
				results[i] = checkResult{name: path, err: err}
				return nil
			}
			results[i] = checkResult{name: name, source: source, errs: diagnostics.DetectErrors(source)}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

type jsonFileReport struct {
	File   string      `json:"file"`
	Errors []jsonError `json:"errors"`
	Failed string      `json:"failed,omitempty"`
}

type jsonError struct {
	diagnostics.FormulaError
	Line   int `json:"line"`
	Column int `json:"column"`
}

func check(opts options, stdin io.Reader, stdout, stderr io.Writer) int {
	red := color.New(color.FgRed)
	startTime := time.Now()

	if stdinPaths(opts.paths) > 1 {
		red.Fprintf(stderr, "error: standard input (-) given more than once\n")
		return 1
	}

	results := checkFiles(opts.paths, stdin)

	total, failed := 0, 0
	reports := make([]jsonFileReport, 0, len(results))
	for _, res := range results {
		if res.err != nil {
			failed++
			if opts.json {
				reports = append(reports, jsonFileReport{File: res.name, Errors: []jsonError{}, Failed: res.err.Error()})
			} else {
				red.Fprintf(stderr, "error: %s: %v\n", res.name, res.err)
			}
			continue
		}
		total += len(res.errs)

		if opts.json {
			report := jsonFileReport{File: res.name, Errors: make([]jsonError, 0, len(res.errs))}
			for _, fe := range res.errs {
				pos := errors.PositionAt(res.source, fe.Position)
				report.Errors = append(report.Errors, jsonError{FormulaError: fe, Line: pos.Line, Column: pos.Column})
			}
			reports = append(reports, report)
			continue
		}

		reporter := errors.NewErrorReporter(res.name, res.source)
		fmt.Fprint(stdout, reporter.FormatAll(diagnostics.ReportAll(res.source, res.errs)))
	}

	if opts.json {
		if err := writeJSON(stdout, reports); err != nil {
			red.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		if total > 0 || failed > 0 {
			return 1
		}
		return 0
	}

	where := results[0].name
	if len(results) > 1 {
		where = fmt.Sprintf("%d files", len(results))
	}

	formattedDuration := formatDuration(time.Since(startTime))
	if total > 0 || failed > 0 {
		red.Fprintf(stderr, "Found %d %s in %s after %s\n",
			total, plural(total, "error", "errors"), where, formattedDuration)
		return 1
	}

	color.New(color.FgGreen).Fprintf(stdout, "No errors in %s (%s)\n", where, formattedDuration)
	return 0
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func listFunctions(w io.Writer) {
	bold := color.New(color.Bold)
	for _, c := range keywords.Categories() {
		names := make([]string, 0, len(c.Functions))
		for name := range c.Functions {
			names = append(names, name)
		}
		sort.Strings(names)
		bold.Fprintf(w, "%s:", c.Name)
		fmt.Fprintf(w, " %s\n", strings.Join(names, ", "))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
