// Package output provides terminal styling for command output.
package output

import (
	"io"

	"github.com/muesli/termenv"
)

// Styles renders text for one output stream. Colors are dropped when the
// stream is not a terminal or NO_COLOR is set.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates styles for w. Options are passed on to termenv, for
// example to force a color profile.
func NewStyles(w io.Writer, opts ...termenv.OutputOption) *Styles {
	return &Styles{
		output: termenv.NewOutput(w, opts...),
	}
}

func (s *Styles) color(text, color string) termenv.Style {
	return s.output.String(text).Foreground(s.output.Color(color))
}

// Success is green and bold.
func (s *Styles) Success(text string) string {
	return s.color(text, "2").Bold().String()
}

// Error is red and bold.
func (s *Styles) Error(text string) string {
	return s.color(text, "1").Bold().String()
}

// Warning is yellow and bold.
func (s *Styles) Warning(text string) string {
	return s.color(text, "3").Bold().String()
}

// FilePath is cyan.
func (s *Styles) FilePath(text string) string {
	return s.color(text, "6").String()
}

// Account is yellow.
func (s *Styles) Account(text string) string {
	return s.color(text, "3").String()
}

// Amount is magenta.
func (s *Styles) Amount(text string) string {
	return s.color(text, "5").String()
}

// Balance renders an account balance, in red when it is negative.
func (s *Styles) Balance(text string, negative bool) string {
	if negative {
		return s.color(text, "1").String()
	}
	return s.Amount(text)
}

// Keyword is bold.
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim is used for secondary information.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Timing renders a duration, in red when the operation was slow.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.color(text, "1").String()
	}
	return s.Dim(text)
}

// Output returns the underlying termenv output.
func (s *Styles) Output() *termenv.Output {
	return s.output
}
