package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

// input is an immutable view of the text that remains to be parsed. Grammar
// functions receive an input and return the input left after what they
// consumed; a failed attempt simply drops its result, so alternatives can be
// retried from the same input without undoing anything.
type input struct {
	src       string
	filename  string
	off       int
	line      int
	lineStart int
}

func newInput(filename, src string) input {
	return input{src: src, filename: filename, line: 1}
}

func (in input) rest() string { return in.src[in.off:] }

func (in input) atEnd() bool { return in.off >= len(in.src) }

// peek returns the next byte, or 0 at the end of the input.
func (in input) peek() byte {
	if in.atEnd() {
		return 0
	}
	return in.src[in.off]
}

func (in input) hasPrefix(prefix string) bool {
	return strings.HasPrefix(in.rest(), prefix)
}

// advance consumes n bytes, keeping line bookkeeping current.
func (in input) advance(n int) input {
	if n <= 0 {
		return in
	}
	if in.off+n > len(in.src) {
		n = len(in.src) - in.off
	}
	chunk := in.src[in.off : in.off+n]
	if nl := strings.Count(chunk, "\n"); nl > 0 {
		in.line += nl
		in.lineStart = in.off + strings.LastIndexByte(chunk, '\n') + 1
	}
	in.off += n
	return in
}

// consumed returns the text between in and a later input.
func (in input) consumed(later input) string {
	return in.src[in.off:later.off]
}

func (in input) position() ast.Position {
	if in.line == 0 {
		return ast.Position{Filename: in.filename}
	}
	return ast.Position{
		Filename: in.filename,
		Offset:   in.off,
		Line:     in.line,
		Column:   utf8.RuneCountInString(in.src[in.lineStart:in.off]) + 1,
	}
}

// takeWhile consumes bytes while pred holds and returns them.
func (in input) takeWhile(pred func(byte) bool) (string, input) {
	rest := in.rest()
	i := 0
	for i < len(rest) && pred(rest[i]) {
		i++
	}
	return rest[:i], in.advance(i)
}

// lineRest returns the text up to, not including, the line terminator.
func (in input) lineRest() string {
	rest := in.rest()
	if i := strings.IndexAny(rest, "\r\n"); i >= 0 {
		return rest[:i]
	}
	return rest
}
