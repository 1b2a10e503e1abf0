package cli

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/robinvdvleuten/ledger-parser/config"
	"github.com/robinvdvleuten/ledger-parser/output"
	"github.com/robinvdvleuten/ledger-parser/telemetry"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool   `help:"Show timing telemetry for operations."`
	Verbose   bool   `help:"Log what is being loaded to stderr." short:"v"`
	Config    string `help:"Configuration file (defaults to ${config_file} when it exists)." type:"path"`
}

type Commands struct {
	Globals

	Check   CheckCmd   `cmd:"" help:"Parse a journal and check that its transactions balance."`
	Format  FormatCmd  `cmd:"" help:"Write a journal in its canonical layout."`
	Balance BalanceCmd `cmd:"" help:"Show the balance of every account."`
	Doctor  DoctorCmd  `cmd:"" help:"Doctor utilities for debugging journals."`
}

// Logger returns a development logger writing to w when --verbose is set,
// and a no-op logger otherwise.
func (g *Globals) Logger(w io.Writer) *zap.Logger {
	if !g.Verbose {
		return zap.NewNop()
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core, zap.Development())
}

// LoadConfig reads the configuration file and environment overrides.
func (g *Globals) LoadConfig(logger *zap.Logger) (*config.Config, error) {
	return config.Load(g.Config, config.WithLogger(logger))
}

// startTelemetry returns a context carrying a timing collector when
// --telemetry is set. The returned function ends the root timer and writes
// the report to w; it is safe to call more than once.
func (g *Globals) startTelemetry(ctx context.Context, name string, w io.Writer) (context.Context, func()) {
	if !g.Telemetry {
		return ctx, func() {}
	}

	collector := telemetry.NewTimingCollector()
	ctx = telemetry.WithCollector(ctx, collector)
	root := collector.Start(name)

	done := false
	return ctx, func() {
		if done {
			return
		}
		done = true
		root.End()
		_, _ = fmt.Fprintln(w)
		collector.Report(w, output.NewStyles(w))
	}
}
