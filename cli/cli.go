// Package cli implements the ledger-parser command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/robinvdvleuten/ledger-parser/loader"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		errorStyle.Render(errorSymbol),
		errorStyle.Render(message),
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		formatted,
	)
}

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

// promptYesNo asks a yes/no question. It answers no without asking when
// stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !isTerminal(stdin) {
		return false, nil
	}

	var confirm bool

	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return confirm, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

const stdinFilename = "<stdin>"

// FileOrStdin accepts either a file path or "-" for stdin.
// For stdin: Filename="<stdin>", Contents populated.
// For files: Filename set, Contents nil (read by the loader).
type FileOrStdin struct {
	Filename string
	Contents []byte
}

// Decode implements kong.MapperValue.
func (f *FileOrStdin) Decode(ctx *kong.DecodeContext) error {
	var filename string
	if err := ctx.Scan.PopValueInto("filename", &filename); err != nil {
		return err
	}

	if filename == "-" || filename == "" {
		return f.readStdin()
	}

	if _, err := os.Stat(filename); err != nil {
		return err
	}
	f.Filename = filename
	f.Contents = nil

	return nil
}

// EnsureContents reads stdin when no file was given.
func (f *FileOrStdin) EnsureContents() error {
	if f.Filename == "" {
		return f.readStdin()
	}
	return nil
}

func (f *FileOrStdin) readStdin() error {
	contents, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("failed to read from stdin: %w", err)
	}
	f.Filename = stdinFilename
	f.Contents = contents
	return nil
}

// IsStdin reports whether the journal was read from stdin.
func (f *FileOrStdin) IsStdin() bool {
	return f.Filename == stdinFilename
}

// Base returns the file name without its directory.
func (f *FileOrStdin) Base() string {
	if f.IsStdin() {
		return f.Filename
	}
	return filepath.Base(f.Filename)
}

// Load loads the journal with ldr, from stdin or from the file.
func (f *FileOrStdin) Load(ctx context.Context, ldr *loader.Loader) (*loader.Result, error) {
	if f.IsStdin() {
		return ldr.LoadBytes(ctx, f.Filename, f.Contents)
	}
	return ldr.Load(ctx, f.Filename)
}
