package parser

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

var (
	// ErrInvalidDate is wrapped by errors for dates and times that do not exist.
	ErrInvalidDate = ast.ErrInvalidDate
	// ErrMalformedDecimal is wrapped by errors for quantities that are cut short.
	ErrMalformedDecimal = errors.New("malformed decimal")
	// ErrUnterminatedQuote is wrapped by errors for quoted commodities without a closing quote.
	ErrUnterminatedQuote = errors.New("unterminated quoted commodity")
	// ErrMoreThanOneElidedPosting is wrapped when a transaction has several postings
	// without amount and balance.
	ErrMoreThanOneElidedPosting = errors.New("more than one elided posting")
	// ErrNoPostingWithAmount is wrapped when the only posting of a transaction is elided.
	ErrNoPostingWithAmount = errors.New("no posting with an amount")
	// ErrEmptyIncludePath is wrapped for include directives without a path.
	ErrEmptyIncludePath = errors.New("empty include path")
	// ErrNoItemMatched is wrapped when no top-level item can be read from the remaining input.
	ErrNoItemMatched = errors.New("no item matched")
)

// ErrorKind classifies parse errors.
type ErrorKind int

const (
	// SyntaxError means the input matched no grammar alternative.
	SyntaxError ErrorKind = iota
	// SemanticError means the input is well formed but invalid, like a date that
	// does not exist or a transaction with two elided postings.
	SemanticError
	// TrailingInputError means the item loop stopped before the end of the input.
	TrailingInputError
)

func (k ErrorKind) String() string {
	switch k {
	case SemanticError:
		return "semantic error"
	case TrailingInputError:
		return "trailing input"
	default:
		return "syntax error"
	}
}

// ParseError represents a failure to parse a journal. Parsing is all or nothing:
// when a ParseError is returned no document is produced.
type ParseError struct {
	Pos     ast.Position
	Kind    ErrorKind
	Message string

	// Span covers all input from the failure to the end of Source.
	Span ast.Span

	// Trail is the chain of grammar rules from the top-level item down to the
	// rule that failed, outermost first.
	Trail []string

	// Expected lists the alternatives that were tried at Pos.
	Expected []string

	// Source is the full text that was parsed, kept for rendering context.
	Source string

	Underlying error
}

func (e *ParseError) Error() string {
	location := e.Pos.String()
	if e.Pos.Filename == "" {
		location = fmt.Sprintf("line %d, column %d", e.Pos.Line, e.Pos.Column)
	}

	msg := fmt.Sprintf("%s: %s", location, e.Message)
	if len(e.Trail) > 0 {
		msg += fmt.Sprintf(" (in %s)", strings.Join(e.Trail, " > "))
	}
	return msg
}

func (e *ParseError) GetPosition() ast.Position {
	return e.Pos
}

// GetSource returns the text the error points into.
func (e *ParseError) GetSource() string {
	return e.Source
}

// Remaining returns the input left unparsed at the failure.
func (e *ParseError) Remaining() string {
	return e.Span.Text(e.Source)
}

// RemainingLine returns the part of Remaining on the failing line.
func (e *ParseError) RemainingLine() string {
	rest := e.Remaining()
	if i := strings.IndexAny(rest, "\r\n"); i >= 0 {
		return rest[:i]
	}
	return rest
}

func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// failure is the internal error value threaded through the grammar functions.
// It is converted to a ParseError once parsing stops.
type failure struct {
	at        input
	expected  []string
	message   string
	kind      ErrorKind
	cause     error
	trail     []string
	committed bool
}

func (f *failure) Error() string {
	if f.message != "" {
		return f.message
	}
	return "expected " + joinAlternatives(f.expected)
}

// fail reports that the rule described by expected does not match at in.
func fail(in input, expected string) *failure {
	return &failure{at: in, expected: []string{expected}}
}

// failWith reports a committed failure caused by a sentinel error.
func failWith(in input, kind ErrorKind, cause error, format string, args ...any) *failure {
	return &failure{
		at:        in,
		message:   fmt.Sprintf(format, args...),
		kind:      kind,
		cause:     cause,
		committed: true,
	}
}

func asFailure(err error) *failure {
	var f *failure
	if errors.As(err, &f) {
		return f
	}
	return &failure{message: err.Error(), cause: err, committed: true}
}

// furthest picks the failure that got further into the input. Failures at the
// same offset merge their expectations.
func furthest(a, b *failure) *failure {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.at.off > a.at.off:
		return b
	case b.at.off < a.at.off:
		return a
	}

	merged := *a
	merged.expected = append([]string(nil), a.expected...)
	for _, exp := range b.expected {
		if !slices.Contains(merged.expected, exp) {
			merged.expected = append(merged.expected, exp)
		}
	}
	return &merged
}

func (f *failure) toParseError() *ParseError {
	pe := &ParseError{
		Pos:        f.at.position(),
		Kind:       f.kind,
		Message:    f.Error(),
		Span:       ast.Span{Start: f.at.off, End: len(f.at.src)},
		Trail:      f.trail,
		Expected:   f.expected,
		Source:     f.at.src,
		Underlying: f.cause,
	}
	return pe
}

func joinAlternatives(alts []string) string {
	switch len(alts) {
	case 0:
		return "input"
	case 1:
		return alts[0]
	default:
		return strings.Join(alts[:len(alts)-1], ", ") + " or " + alts[len(alts)-1]
	}
}
