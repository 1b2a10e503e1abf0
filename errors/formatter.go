// Package errors renders parse and validation errors for people and programs.
// Error types stay in the packages that produce them (parser, ledger); this
// package only deals with presentation.
//
// Two implementations of Formatter are provided:
//   - TextFormatter: source lines with a caret under the failing column, or the
//     offending transaction, for terminals
//   - JSONFormatter: structured JSON for tools
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/formatter"
	"github.com/robinvdvleuten/ledger-parser/parser"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// Style renders a fragment of text output, for example with terminal colors.
type Style func(string) string

func (s Style) apply(text string) string {
	if s == nil {
		return text
	}
	return s(text)
}

// TextFormatter formats errors for command-line output.
type TextFormatter struct {
	formatter     *formatter.Formatter
	sourceContent []byte // Optional source content for error context

	messageStyle Style
	caretStyle   Style
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the source content used to show the lines around an error.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.sourceContent = source
	}
}

// WithMessageStyle sets the style of the error message line.
func WithMessageStyle(s Style) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.messageStyle = s
	}
}

// WithCaretStyle sets the style of the caret under the failing column.
func WithCaretStyle(s Style) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.caretStyle = s
	}
}

// NewTextFormatter creates a new text formatter. Transactions shown as error
// context are written with f, or with a default formatter when f is nil.
func NewTextFormatter(f *formatter.Formatter, opts ...TextFormatterOption) *TextFormatter {
	if f == nil {
		f = formatter.New()
	}
	tf := &TextFormatter{formatter: f}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error.
func (tf *TextFormatter) Format(err error) string {
	// Errors about a transaction show the transaction
	if e, ok := err.(interface {
		GetTransaction() *ast.Transaction
		Error() string
	}); ok && e.GetTransaction() != nil {
		return tf.formatWithTransaction(e.Error(), e.GetTransaction())
	}

	var perr *parser.ParseError
	if stderrors.As(err, &perr) {
		source := tf.sourceContent
		if source == nil && perr.Source != "" {
			source = []byte(perr.Source)
		}
		if source != nil {
			return tf.formatWithSourceContext(perr.Pos, err.Error(), source)
		}
	}

	if e, ok := err.(interface {
		GetPosition() ast.Position
		Error() string
	}); ok && tf.sourceContent != nil {
		return tf.formatWithSourceContext(e.GetPosition(), e.Error(), tf.sourceContent)
	}

	return tf.messageStyle.apply(err.Error())
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(tf.Format(err))

		// Add blank line between errors (but not after the last one)
		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// formatWithSourceContext writes the message followed by the source lines
// around the error, with a caret under the failing column.
func (tf *TextFormatter) formatWithSourceContext(pos ast.Position, message string, sourceContent []byte) string {
	var buf bytes.Buffer

	buf.WriteString(tf.messageStyle.apply(message))
	buf.WriteString("\n\n")

	sourceLines := strings.Split(string(sourceContent), "\n")

	// Two lines before the error line and one after, 0-based
	startLine := max(pos.Line-3, 0)
	endLine := min(pos.Line, len(sourceLines)-1)

	for i := startLine; i <= endLine; i++ {
		line := strings.TrimSuffix(sourceLines[i], "\r")
		if line == "" && i == len(sourceLines)-1 {
			break
		}
		buf.WriteString("   ")
		buf.WriteString(line)
		buf.WriteByte('\n')

		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(caretPadding(line, pos.Column))
			buf.WriteString(tf.caretStyle.apply("^"))
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// caretPadding returns the whitespace that moves a caret below the given
// 1-based rune column of line. Tabs are kept so the caret lines up with them;
// every other rune is replaced by as many spaces as it is wide on screen.
func caretPadding(line string, column int) string {
	var pad strings.Builder
	n := 0
	for _, r := range line {
		if n >= column-1 {
			break
		}
		if r == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
		n++
	}
	// Columns past the end of the line, such as a missing line ending
	if n < column-1 {
		pad.WriteString(strings.Repeat(" ", column-1-n))
	}
	return pad.String()
}

// formatWithTransaction writes the message followed by the transaction the
// error is about, indented by three spaces.
func (tf *TextFormatter) formatWithTransaction(message string, txn *ast.Transaction) string {
	var buf bytes.Buffer

	buf.WriteString(tf.messageStyle.apply(message))
	buf.WriteString("\n\n")

	var txnBuf bytes.Buffer
	if err := tf.formatter.FormatTransaction(txn, &txnBuf); err == nil {
		for _, line := range strings.Split(txnBuf.String(), "\n") {
			line = strings.TrimSuffix(line, "\r")
			if line == "" {
				continue
			}
			buf.WriteString("   ")
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// Flatten expands errors that join several errors, such as the validation
// errors of the ledger package, into a flat list.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var errs []error
		for _, e := range joined.Unwrap() {
			errs = append(errs, Flatten(e)...)
		}
		return errs
	}
	return []error{err}
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string         `json:"type"`
	Message  string         `json:"message"`
	Position *PositionJSON  `json:"position,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Details: make(map[string]any),
	}

	if e, ok := err.(interface{ GetPosition() ast.Position }); ok {
		if pos := e.GetPosition(); pos.IsValid() {
			errJSON.Position = &PositionJSON{
				Filename: pos.Filename,
				Line:     pos.Line,
				Column:   pos.Column,
			}
		}
	}

	if e, ok := err.(interface{ GetAccount() string }); ok && e.GetAccount() != "" {
		errJSON.Details["account"] = e.GetAccount()
	}
	if e, ok := err.(interface{ GetTransaction() *ast.Transaction }); ok && e.GetTransaction() != nil {
		errJSON.Details["date"] = e.GetTransaction().Date.String()
	}

	var perr *parser.ParseError
	if stderrors.As(err, &perr) {
		errJSON.Details["kind"] = perr.Kind.String()
		if len(perr.Expected) > 0 {
			errJSON.Details["expected"] = perr.Expected
		}
		if len(perr.Trail) > 0 {
			errJSON.Details["trail"] = perr.Trail
		}
	}

	if len(errJSON.Details) == 0 {
		errJSON.Details = nil
	}
	return errJSON
}
