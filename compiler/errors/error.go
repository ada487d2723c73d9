// Package errors defines the diagnostic machinery shared by all compiler
// phases. Every fallible phase returns either a valid result or a non-empty,
// ordered list of *CompilerError, never both.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity represents the severity level of an error
type Severity int

const (
	// Error is a regular diagnostic; the phase keeps processing independent
	// definitions so that one run surfaces many unrelated problems.
	Error Severity = iota
	// Fatal aborts the phase immediately. The only fatal diagnostic in the
	// pipeline is an inheritance cycle, since antecedent lists are
	// meaningless without a total order.
	Fatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Position is an opaque handle into the source document: a byte offset.
// It is rendered as a 1-based line/column pair by a LineIndex, which the
// frontend retains for the duration of one compilation run.
type Position struct {
	Offset int
}

// CompilerError represents a single diagnostic produced by a compiler phase.
//
// Underlying errors form a shallow tree: a phase that fails on a composite
// construct (e.g. a constructor body) reports one error for the construct
// with the per-statement errors nested below it.
type CompilerError struct {
	Phase      string           // "lexer", "parser", "model", "construct", "ontology", "translate"
	Message    string           // Human-readable message
	Pos        *Position        // Optional source-position handle
	Severity   Severity         // Error or Fatal
	Underlying []*CompilerError // Nested causes (shallow tree)
}

// New creates a diagnostic at the given position. pos may be nil for
// diagnostics that concern the document as a whole.
func New(phase, message string, pos *Position) *CompilerError {
	return &CompilerError{
		Phase:    phase,
		Message:  message,
		Pos:      pos,
		Severity: Error,
	}
}

// NewFatal creates a diagnostic that aborts the phase.
func NewFatal(phase, message string, pos *Position) *CompilerError {
	e := New(phase, message, pos)
	e.Severity = Fatal
	return e
}

// WithUnderlying nests the given causes below the error and returns it.
func (e *CompilerError) WithUnderlying(underlying ...*CompilerError) *CompilerError {
	e.Underlying = append(e.Underlying, underlying...)
	return e
}

// Error implements the error interface. Positions are reported as raw byte
// offsets here; use Render with a LineIndex for line/column output.
func (e *CompilerError) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("@%d: %s: %s", e.Pos.Offset, e.Phase, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Phase, e.Message)
}

// MarshalJSON implements json.Marshaler
func (e *CompilerError) MarshalJSON() ([]byte, error) {
	type position struct {
		Offset int `json:"offset"`
	}
	var pos *position
	if e.Pos != nil {
		pos = &position{Offset: e.Pos.Offset}
	}
	return json.Marshal(struct {
		Phase      string           `json:"phase"`
		Message    string           `json:"message"`
		Severity   Severity         `json:"severity"`
		Pos        *position        `json:"pos,omitempty"`
		Underlying []*CompilerError `json:"underlying,omitempty"`
	}{
		Phase:      e.Phase,
		Message:    e.Message,
		Severity:   e.Severity,
		Pos:        pos,
		Underlying: e.Underlying,
	})
}

// LineIndex translates Position handles into 1-based line/column pairs.
// It is built once per source document.
type LineIndex struct {
	source     string
	lineStarts []int
}

// NewLineIndex indexes the line starts of the given source text.
func NewLineIndex(source string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{source: source, lineStarts: starts}
}

// Locate renders a position handle as a 1-based (line, column) pair.
// Offsets past the end of the document map to the last position.
func (ix *LineIndex) Locate(pos Position) (line, column int) {
	offset := pos.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(ix.source) {
		offset = len(ix.source)
	}

	// Binary search for the last line start <= offset.
	lo, hi := 0, len(ix.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if ix.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return lo + 1, offset - ix.lineStarts[lo] + 1
}

// Line returns the text of the given 1-based line, without the newline.
func (ix *LineIndex) Line(line int) string {
	if line < 1 || line > len(ix.lineStarts) {
		return ""
	}
	start := ix.lineStarts[line-1]
	end := len(ix.source)
	if line < len(ix.lineStarts) {
		end = ix.lineStarts[line] - 1
	}
	return strings.TrimSuffix(ix.source[start:end], "\r")
}
