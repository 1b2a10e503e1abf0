package cli

import (
	stdErrors "errors"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/errors"
	"github.com/robinvdvleuten/ledger-parser/formatter"
	"github.com/robinvdvleuten/ledger-parser/loader"
	"github.com/robinvdvleuten/ledger-parser/parser"
)

var errCaretStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}).Bold(true)

// ErrorRenderer renders errors with terminal styling and the source lines
// of whichever loaded file they point into.
type ErrorRenderer struct {
	result    *loader.Result
	formatter *formatter.Formatter
}

// NewErrorRenderer creates a renderer. The result may be nil when loading
// failed; parse errors carry their own source.
func NewErrorRenderer(result *loader.Result, f *formatter.Formatter) *ErrorRenderer {
	return &ErrorRenderer{result: result, formatter: f}
}

// Render formats a single error.
func (r *ErrorRenderer) Render(err error) string {
	opts := []errors.TextFormatterOption{
		errors.WithMessageStyle(styleFunc(errorStyle)),
		errors.WithCaretStyle(styleFunc(errCaretStyle)),
	}
	if src, ok := r.source(err); ok {
		opts = append(opts, errors.WithSource([]byte(src)))
	}
	return errors.NewTextFormatter(r.formatter, opts...).Format(err)
}

func styleFunc(style lipgloss.Style) errors.Style {
	return func(s string) string { return style.Render(s) }
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	var out string
	for i, err := range errs {
		if i > 0 {
			out += "\n\n"
		}
		out += r.Render(err)
	}
	return out
}

func (r *ErrorRenderer) source(err error) (string, bool) {
	if r.result == nil {
		return "", false
	}
	// Parse errors already know their source.
	var perr *parser.ParseError
	if stdErrors.As(err, &perr) {
		return "", false
	}
	if e, ok := err.(interface{ GetPosition() ast.Position }); ok {
		return r.result.Source(e.GetPosition().Filename)
	}
	return "", false
}
