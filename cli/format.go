package cli

import (
	"bytes"
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ledger-parser/config"
	"github.com/robinvdvleuten/ledger-parser/formatter"
	"github.com/robinvdvleuten/ledger-parser/loader"
)

type FormatCmd struct {
	File                  FileOrStdin `help:"Journal filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Indent                string      `help:"Indentation of postings and comment lines (\\t for a tab)."`
	CRLF                  bool        `help:"Terminate lines with CRLF instead of LF." name:"crlf"`
	TransactionDateFormat string      `help:"Go time layout for transaction dates."`
	CommodityDateFormat   string      `help:"Go time layout for commodity price timestamps."`
	SameLineComments      bool        `help:"Write a posting's first comment on the posting line."`
	Write                 bool        `help:"Write the result back to the file instead of stdout." short:"w"`
	Yes                   bool        `help:"Overwrite the file without asking." short:"y"`
}

func (cmd *FormatCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}
	if cmd.Write && cmd.File.IsStdin() {
		return stdErrors.New("--write needs a journal file, not stdin")
	}

	logger := globals.Logger(ctx.Stderr)
	defer func() { _ = logger.Sync() }()

	cfg, err := globals.LoadConfig(logger)
	if err != nil {
		return err
	}
	cmd.override(&cfg.Format)
	if err := cfg.Validate(); err != nil {
		return err
	}
	f := formatter.New(cfg.Format.Options()...)

	runCtx, reportTelemetry := globals.startTelemetry(context.Background(), "format "+cmd.File.Base(), ctx.Stderr)
	defer reportTelemetry()

	// Includes are written back as include lines, not inlined.
	result, err := cmd.File.Load(runCtx, loader.New(loader.WithLogger(logger)))
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(nil, f).Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "parse error")
		reportTelemetry()
		return NewCommandError(1)
	}

	var buf bytes.Buffer
	if err := f.Format(runCtx, result.Document, &buf); err != nil {
		return err
	}

	if !cmd.Write {
		_, err := ctx.Stdout.Write(buf.Bytes())
		return err
	}
	return cmd.writeBack(ctx, buf.Bytes())
}

// override applies the flags that were given on top of the configuration.
func (cmd *FormatCmd) override(fc *config.FormatConfig) {
	if cmd.Indent != "" {
		fc.Indent = strings.ReplaceAll(cmd.Indent, `\t`, "\t")
	}
	if cmd.CRLF {
		fc.LineEnding = "crlf"
	}
	if cmd.TransactionDateFormat != "" {
		fc.TransactionDateFormat = cmd.TransactionDateFormat
	}
	if cmd.CommodityDateFormat != "" {
		fc.CommodityDateFormat = cmd.CommodityDateFormat
	}
	if cmd.SameLineComments {
		fc.SameLinePostingComments = true
	}
}

func (cmd *FormatCmd) writeBack(ctx *kong.Context, formatted []byte) error {
	filename := cmd.File.Filename

	info, err := os.Stat(filename)
	if err != nil {
		return err
	}
	current, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if bytes.Equal(current, formatted) {
		printInfof(ctx.Stderr, "%s is already formatted", pathStyle.Render(filename))
		return nil
	}

	if !cmd.Yes {
		ok, err := promptYesNo(fmt.Sprintf("Overwrite %s?", filename))
		if err != nil {
			return err
		}
		if !ok {
			printInfof(ctx.Stderr, "Left %s unchanged (use --yes to overwrite without asking)", pathStyle.Render(filename))
			return NewCommandError(1)
		}
	}

	if err := os.WriteFile(filename, formatted, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	printSuccess(ctx.Stderr, fmt.Sprintf("Formatted %s", pathStyle.Render(filename)))
	return nil
}
