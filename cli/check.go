package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/ledger-parser/errors"
	"github.com/robinvdvleuten/ledger-parser/formatter"
	"github.com/robinvdvleuten/ledger-parser/ledger"
	"github.com/robinvdvleuten/ledger-parser/loader"
)

type CheckCmd struct {
	File   FileOrStdin `help:"Journal filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Watch  bool        `help:"Check again every time the journal or one of its includes changes." short:"w"`
	Output string      `help:"Output format (${enum})." enum:"text,json" default:"text" short:"o"`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	logger := globals.Logger(ctx.Stderr)
	defer func() { _ = logger.Sync() }()

	cfg, err := globals.LoadConfig(logger)
	if err != nil {
		return err
	}
	tolerance, err := cfg.Tolerance.Build()
	if err != nil {
		return err
	}

	c := &checker{
		stdout:    ctx.Stdout,
		stderr:    ctx.Stderr,
		json:      cmd.Output == "json",
		tolerance: tolerance,
		formatter: formatter.New(cfg.Format.Options()...),
	}
	ldr := loader.New(loader.WithFollowIncludes(), loader.WithLogger(logger))

	if cmd.Watch {
		return cmd.watch(ldr, c, logger)
	}

	runCtx, reportTelemetry := globals.startTelemetry(context.Background(), "check "+cmd.File.Base(), ctx.Stderr)
	defer reportTelemetry()

	result, err := cmd.File.Load(runCtx, ldr)
	if !c.check(runCtx, result, err) {
		reportTelemetry()
		return NewCommandError(1)
	}
	return nil
}

func (cmd *CheckCmd) watch(ldr *loader.Loader, c *checker, logger *zap.Logger) error {
	if cmd.File.IsStdin() {
		return stdErrors.New("--watch needs a journal file, not stdin")
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	printInfof(c.stderr, "Watching %s, press Ctrl+C to stop", pathStyle.Render(cmd.File.Filename))
	return ldr.Watch(runCtx, cmd.File.Filename, func(result *loader.Result, err error) {
		if err == nil {
			logger.Debug("reloaded journal", zap.Strings("files", result.Files()))
		}
		c.check(runCtx, result, err)
	})
}

// checker validates loaded journals and reports the outcome.
type checker struct {
	stdout, stderr io.Writer
	json           bool
	tolerance      *ledger.ToleranceConfig
	formatter      *formatter.Formatter
}

// check reports whether the journal loaded and every transaction in it
// balances. loadErr is the error returned by the loader, if any.
func (c *checker) check(ctx context.Context, result *loader.Result, loadErr error) bool {
	var errs []error
	summary := "parse error"

	if loadErr != nil {
		errs = []error{loadErr}
	} else {
		l := ledger.New(ledger.WithTolerance(c.tolerance))
		if err := l.Process(ctx, result.Document); err != nil {
			var validationErrors *ledger.ValidationErrors
			if !stdErrors.As(err, &validationErrors) {
				errs = []error{err}
				summary = "check failed"
			} else {
				errs = errors.Flatten(validationErrors)
				summary = fmt.Sprintf("%d validation error(s) found", len(errs))
			}
		}
	}

	if c.json {
		_, _ = fmt.Fprintln(c.stdout, errors.NewJSONFormatter().FormatAll(errs))
		return len(errs) == 0
	}

	if len(errs) == 0 {
		printSuccess(c.stdout, fmt.Sprintf("Check passed (%d transactions)", len(result.Document.Transactions())))
		return true
	}

	_, _ = fmt.Fprintln(c.stderr, NewErrorRenderer(result, c.formatter).RenderAll(errs))
	_, _ = fmt.Fprintln(c.stderr)
	printError(c.stderr, summary)
	return false
}
