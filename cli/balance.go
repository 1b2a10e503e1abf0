package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/errors"
	"github.com/robinvdvleuten/ledger-parser/formatter"
	"github.com/robinvdvleuten/ledger-parser/ledger"
	"github.com/robinvdvleuten/ledger-parser/loader"
	"github.com/robinvdvleuten/ledger-parser/output"
)

type BalanceCmd struct {
	File  FileOrStdin `help:"Journal filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Empty bool        `help:"Also list accounts whose balance is zero." short:"E"`
}

func (cmd *BalanceCmd) Run(ctx *kong.Context, globals *Globals) error {
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
	f := formatter.New(cfg.Format.Options()...)

	runCtx, reportTelemetry := globals.startTelemetry(context.Background(), "balance "+cmd.File.Base(), ctx.Stderr)
	defer reportTelemetry()

	result, err := cmd.File.Load(runCtx, loader.New(loader.WithFollowIncludes(), loader.WithLogger(logger)))
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(nil, f).Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "parse error")
		reportTelemetry()
		return NewCommandError(1)
	}

	l := ledger.New(ledger.WithTolerance(tolerance))
	if err := l.Process(runCtx, result.Document); err != nil {
		var validationErrors *ledger.ValidationErrors
		if !stdErrors.As(err, &validationErrors) {
			return err
		}
		errs := errors.Flatten(validationErrors)
		_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(result, f).RenderAll(errs))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, fmt.Sprintf("%d validation error(s) found", len(errs)))
		reportTelemetry()
		return NewCommandError(1)
	}

	writeBalanceReport(ctx.Stdout, l.Accounts(), output.NewStyles(ctx.Stdout), cmd.Empty)
	return nil
}

type balanceLine struct {
	amount  ast.Amount
	text    string
	account string // empty for the second and later commodities of an account
}

// writeBalanceReport writes one line per account and commodity with the
// amounts right-aligned, followed by the grand total:
//
//	$-20.00  Assets:Cash
//	 $20.00  Expenses:Food
//	--------
//	      0
func writeBalanceReport(w io.Writer, accounts []*ledger.Account, styles *output.Styles, showEmpty bool) {
	var lines []balanceLine
	total := ledger.NewInventory()

	for _, acct := range accounts {
		amounts := acct.Inventory.Amounts()
		if len(amounts) == 0 {
			if showEmpty {
				lines = append(lines, balanceLine{text: "0", account: acct.Name})
			}
			continue
		}
		for i, amount := range amounts {
			line := balanceLine{amount: amount, text: formatter.FormatAmount(amount)}
			if i == 0 {
				line.account = acct.Name
			}
			lines = append(lines, line)
		}
		total.Merge(acct.Inventory)
	}

	totals := total.Amounts()
	var totalLines []balanceLine
	for _, amount := range totals {
		totalLines = append(totalLines, balanceLine{amount: amount, text: formatter.FormatAmount(amount)})
	}
	if len(totalLines) == 0 {
		totalLines = []balanceLine{{text: "0"}}
	}

	width := 0
	for _, line := range append(lines, totalLines...) {
		width = max(width, runewidth.StringWidth(line.text))
	}

	writeLine := func(line balanceLine) {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(line.text))
		text := styles.Balance(line.text, line.amount.Quantity.IsNegative())
		if line.account == "" {
			_, _ = fmt.Fprintf(w, "%s%s\n", pad, text)
			return
		}
		_, _ = fmt.Fprintf(w, "%s%s  %s\n", pad, text, styles.Account(line.account))
	}

	for _, line := range lines {
		writeLine(line)
	}
	_, _ = fmt.Fprintln(w, styles.Dim(strings.Repeat("-", width)))
	for _, line := range totalLines {
		writeLine(line)
	}
}
