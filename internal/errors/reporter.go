package errors

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of an error
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
	Help    ErrorLevel = "help"
)

// Position is a 1-based line and column plus the byte offset it came from.
// Columns count runes.
type Position struct {
	Line   int
	Column int
	Offset int
}

// PositionAt converts a byte offset into a line/column position. Offsets
// past the end clamp to the end of the source.
func PositionAt(source string, offset int) Position {
	if offset > len(source) {
		offset = len(source)
	}
	if offset < 0 {
		offset = 0
	}
	before := source[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return Position{
		Line:   line,
		Column: utf8.RuneCountInString(before[lineStart:]) + 1,
		Offset: offset,
	}
}

// CompilerError represents a structured error with suggestions and context
type CompilerError struct {
	Level       ErrorLevel
	Code        string       // Error code like E0100
	Message     string       // Primary error message
	Position    Position     // Location in source
	Length      int          // Length of the problematic region in runes
	Label       string       // Printed after the primary marker
	Labels      []Label      // Related spans, drawn with '-'
	Suggestions []Suggestion // Suggested fixes
	Notes       []string     // Additional context notes
	HelpText    string       // Help text for the error
}

// Label marks a span related to the error, such as the '(' a missing ')'
// belongs to.
type Label struct {
	Position Position
	Length   int
	Text     string
}

// Suggestion represents a suggested fix
type Suggestion struct {
	Message     string // Description of the suggestion
	Replacement string // Suggested replacement text (optional)
}

// ErrorReporter handles consistent error formatting and suggestions
type ErrorReporter struct {
	filename string
	source   string
	lines    []string
}

// NewErrorReporter creates a new error reporter for a formula source
func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{
		filename: filename,
		source:   source,
		lines:    strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n"),
	}
}

// mark is one underline on a source line. Columns are 1-based runes.
type mark struct {
	column  int
	length  int
	primary bool
	text    string
}

var dim = color.New(color.Faint).SprintFunc()

// FormatError renders err as a header, a location line, the source lines
// its marks fall on, and any suggestions, notes and help.
func (er *ErrorReporter) FormatError(err CompilerError) string {
	var b strings.Builder

	levelColor := er.getLevelColor(err.Level)
	if err.Code != "" {
		fmt.Fprintf(&b, "%s[%s]: %s\n", levelColor(string(err.Level)), err.Code, err.Message)
	} else {
		fmt.Fprintf(&b, "%s: %s\n", levelColor(string(err.Level)), err.Message)
	}

	marks := er.marksByLine(err)
	shown := er.shownLines(err.Position.Line, marks)

	width := er.getLineNumberWidth(err.Position.Line)
	if len(shown) > 0 {
		width = er.getLineNumberWidth(shown[len(shown)-1])
	}
	indent := strings.Repeat(" ", width)

	fmt.Fprintf(&b, "%s %s %s:%d:%d\n", indent, dim("-->"), er.filename, err.Position.Line, err.Position.Column)
	fmt.Fprintf(&b, "%s %s\n", indent, dim("│"))

	bold := color.New(color.Bold).SprintFunc()
	for i, line := range shown {
		if i > 0 && line > shown[i-1]+1 {
			fmt.Fprintf(&b, "%s\n", dim("..."))
		}
		number := fmt.Sprintf("%*d", width, line)
		if len(marks[line]) > 0 {
			number = bold(number)
		} else {
			number = dim(number)
		}
		content := er.lines[line-1]
		fmt.Fprintf(&b, "%s %s %s\n", number, dim("│"), content)
		if len(marks[line]) > 0 {
			fmt.Fprintf(&b, "%s %s %s\n", indent, dim("│"), er.markerRow(marks[line], utf8.RuneCountInString(content), err.Level))
		}
	}

	er.writeFooter(&b, indent, err)
	b.WriteString("\n")
	return b.String()
}

// marksByLine groups the primary span and every label by source line.
func (er *ErrorReporter) marksByLine(err CompilerError) map[int][]mark {
	marks := map[int][]mark{}
	add := func(pos Position, m mark) {
		if pos.Line < 1 || pos.Line > len(er.lines) {
			return
		}
		marks[pos.Line] = append(marks[pos.Line], m)
	}

	add(err.Position, mark{column: err.Position.Column, length: err.Length, primary: true, text: err.Label})
	for _, l := range err.Labels {
		add(l.Position, mark{column: l.Position.Column, length: l.Length, text: l.Text})
	}

	for _, ms := range marks {
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].column < ms[j].column })
	}
	return marks
}

// shownLines lists, in order, the lines around the primary position and
// every line carrying a mark.
func (er *ErrorReporter) shownLines(primary int, marks map[int][]mark) []int {
	want := map[int]bool{primary - 1: true, primary: true, primary + 1: true}
	for line := range marks {
		want[line] = true
	}

	lines := make([]int, 0, len(want))
	for line := range want {
		if line >= 1 && line <= len(er.lines) {
			lines = append(lines, line)
		}
	}
	sort.Ints(lines)
	return lines
}

// markerRow draws the marks of one line. Spans stop at the end of the line
// but always draw at least one character; overlapping marks are dropped.
// Distinct label texts follow the last mark.
func (er *ErrorReporter) markerRow(marks []mark, lineWidth int, level ErrorLevel) string {
	var b strings.Builder
	primaryColor := er.getMarkerColor(level)
	secondaryColor := color.New(color.FgBlue, color.Bold).SprintFunc()

	cursor := 1
	var texts []string
	for _, m := range marks {
		if m.column < cursor {
			continue
		}
		length := max(1, min(m.length, lineWidth-m.column+1))
		b.WriteString(strings.Repeat(" ", m.column-cursor))
		if m.primary {
			b.WriteString(primaryColor(strings.Repeat("^", length)))
		} else {
			b.WriteString(secondaryColor(strings.Repeat("-", length)))
		}
		cursor = m.column + length
		if m.text != "" && !slices.Contains(texts, m.text) {
			texts = append(texts, m.text)
		}
	}

	if len(texts) > 0 {
		b.WriteString(" " + strings.Join(texts, "; "))
	}
	return b.String()
}

func (er *ErrorReporter) writeFooter(b *strings.Builder, indent string, err CompilerError) {
	if len(err.Suggestions) > 0 {
		fmt.Fprintf(b, "%s %s\n", indent, dim("│"))
		suggestionColor := color.New(color.FgCyan).SprintFunc()
		for i, suggestion := range err.Suggestions {
			if i == 0 {
				fmt.Fprintf(b, "%s %s %s: %s\n", indent, suggestionColor("help"), suggestionColor("try"), suggestion.Message)
			} else {
				fmt.Fprintf(b, "%s %s %s\n", indent, suggestionColor("    "), suggestion.Message)
			}
			if suggestion.Replacement != "" {
				fmt.Fprintf(b, "%s %s %s\n", indent, suggestionColor("│"), suggestionColor(suggestion.Replacement))
			}
		}
	}

	noteColor := color.New(color.FgBlue).SprintFunc()
	for _, note := range err.Notes {
		fmt.Fprintf(b, "%s %s %s %s\n", indent, dim("│"), noteColor("note:"), note)
	}

	if err.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(b, "%s %s %s %s\n", indent, dim("│"), helpColor("help:"), err.HelpText)
	}
}

// FormatAll formats every error in order
func (er *ErrorReporter) FormatAll(errs []CompilerError) string {
	var b strings.Builder
	for _, err := range errs {
		b.WriteString(er.FormatError(err))
	}
	return b.String()
}

// getLevelColor returns the appropriate color function for an error level
func (er *ErrorReporter) getLevelColor(level ErrorLevel) func(...interface{}) string {
	switch level {
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func (er *ErrorReporter) getMarkerColor(level ErrorLevel) func(...interface{}) string {
	if level == Warning {
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return color.New(color.FgRed, color.Bold).SprintFunc()
}

// getLineNumberWidth calculates the width needed for line numbers
func (er *ErrorReporter) getLineNumberWidth(line int) int {
	return max(3, len(strconv.Itoa(line)))
}
