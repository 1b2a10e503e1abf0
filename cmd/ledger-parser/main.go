package main

import (
	stdErrors "errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/ledger-parser/cli"
	"github.com/robinvdvleuten/ledger-parser/config"
)

var app struct {
	Version kong.VersionFlag `help:"Show version information"`
	cli.Commands
}

func main() {
	ctx := kong.Parse(&app,
		kong.Vars{
			"version":     buildVersion(),
			"config_file": config.DefaultFile,
		},
		kong.Name("ledger-parser"),
		kong.Description("A ledger-cli journal parser, checker and formatter."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals),
	)

	err := ctx.Run()

	var cmdErr *cli.CommandError
	if stdErrors.As(err, &cmdErr) {
		os.Exit(cmdErr.ExitCode())
	}
	ctx.FatalIfErrorf(err)
}

func buildVersion() string {
	version := cli.Version
	if version == "" {
		version = "dev"
	}
	if cli.CommitSHA == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, cli.CommitSHA)
}
