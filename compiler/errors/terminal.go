package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Renderer turns diagnostics into human-readable terminal output. The
// LineIndex is the caller-supplied indexer that resolves position handles;
// SourceName is used purely for display.
type Renderer struct {
	Index      *LineIndex
	SourceName string
	NoColor    bool
}

// Render formats a single diagnostic, including its underlying causes,
// with source context and a caret marker.
func (r *Renderer) Render(e *CompilerError) string {
	var b strings.Builder
	r.render(e, 0, &b)
	return b.String()
}

// RenderReport formats an ordered error report.
func (r *Renderer) RenderReport(errs []*CompilerError) string {
	var b strings.Builder
	for _, e := range errs {
		b.WriteString(r.Render(e))
	}

	header := color.New(color.FgRed, color.Bold)
	if r.NoColor {
		header.DisableColor()
	}
	header.Fprintf(&b, "Compilation failed with %d error(s)\n", len(errs))
	return b.String()
}

func (r *Renderer) render(e *CompilerError, depth int, b *strings.Builder) {
	header := color.New(color.FgRed, color.Bold)
	arrow := color.New(color.FgCyan)
	gutter := color.New(color.FgBlue)
	caret := color.New(color.FgRed)
	if r.NoColor {
		header.DisableColor()
		arrow.DisableColor()
		gutter.DisableColor()
		caret.DisableColor()
	}

	indent := strings.Repeat("  ", depth)

	severity := e.Severity.String()
	severity = strings.ToUpper(severity[:1]) + severity[1:]
	header.Fprintf(b, "%s%s", indent, severity)
	fmt.Fprintf(b, ": %s\n", e.Message)

	if e.Pos != nil && r.Index != nil {
		line, column := r.Index.Locate(*e.Pos)
		arrow.Fprintf(b, "%s  -->", indent)
		fmt.Fprintf(b, " %s:%d:%d\n", r.SourceName, line, column)

		text := r.Index.Line(line)
		gutter.Fprintf(b, "%s%4d |", indent, line)
		fmt.Fprintf(b, " %s\n", text)
		gutter.Fprintf(b, "%s     |", indent)
		fmt.Fprintf(b, " %s", strings.Repeat(" ", column-1))
		caret.Fprintln(b, "^")
	}

	for _, u := range e.Underlying {
		r.render(u, depth+1, b)
	}
}

// StripColors removes ANSI escape sequences from a string (useful for
// asserting on rendered output in tests).
func StripColors(s string) string {
	result := s
	for strings.Contains(result, "\033[") {
		start := strings.Index(result, "\033[")
		end := strings.Index(result[start:], "m")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+1:]
	}
	return result
}
