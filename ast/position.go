package ast

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Position represents a location in the source file.
type Position struct {
	Filename string
	Offset   int // Byte offset
	Line     int // Line number (1-indexed)
	Column   int // Column number in runes (1-indexed)
}

// PositionAt computes the position of a byte offset within source.
// Offsets past the end of source are clamped to the end.
func PositionAt(filename, source string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}

	before := source[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1

	return Position{
		Filename: filename,
		Offset:   offset,
		Line:     line,
		Column:   utf8.RuneCountInString(before[lineStart:]) + 1,
	}
}

// IsValid reports whether the position points somewhere in a source.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// GoString returns a Go-syntax representation of the position.
func (p Position) GoString() string {
	return fmt.Sprintf("Position{Filename: %q, Line: %d, Column: %d}", p.Filename, p.Line, p.Column)
}

// Span represents a byte range in the source file.
type Span struct {
	Start int // Starting byte offset (inclusive)
	End   int // Ending byte offset (exclusive)
}

// IsZero returns true if this is an uninitialized span.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Text extracts the source text for this span.
// Returns empty string if span is invalid or out of range.
func (s Span) Text(source string) string {
	if s.Start < 0 || s.End <= s.Start || s.End > len(source) {
		return ""
	}
	return source[s.Start:s.End]
}
