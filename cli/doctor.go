package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/formatter"
	"github.com/robinvdvleuten/ledger-parser/loader"
)

// DoctorCmd provides doctor utilities for debugging journals.
type DoctorCmd struct {
	Items ItemsCmd `cmd:"" help:"List the top-level items of a journal with their positions."`
	Dump  DumpCmd  `cmd:"" help:"Dump the syntax tree of a journal."`
}

// ItemsCmd lists the top-level items of a journal.
type ItemsCmd struct {
	File   FileOrStdin `help:"Journal filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Follow bool        `help:"Splice included files in place of their include items." short:"f"`
}

func (cmd *ItemsCmd) Run(ctx *kong.Context, globals *Globals) error {
	doc, err := loadForDoctor(ctx, globals, &cmd.File, cmd.Follow)
	if err != nil {
		return err
	}
	writeItems(ctx.Stdout, doc)
	return nil
}

// DumpCmd prints the syntax tree as Go values.
type DumpCmd struct {
	File      FileOrStdin `help:"Journal filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Follow    bool        `help:"Splice included files in place of their include items." short:"f"`
	Positions bool        `help:"Keep source positions in the dump." default:"true" negatable:""`
}

func (cmd *DumpCmd) Run(ctx *kong.Context, globals *Globals) error {
	doc, err := loadForDoctor(ctx, globals, &cmd.File, cmd.Follow)
	if err != nil {
		return err
	}
	if !cmd.Positions {
		ast.ClearPositions(doc)
	}
	repr.New(ctx.Stdout, repr.Indent("  "), repr.OmitEmpty(true)).Println(doc)
	return nil
}

func loadForDoctor(ctx *kong.Context, globals *Globals, file *FileOrStdin, follow bool) (*ast.Document, error) {
	if err := file.EnsureContents(); err != nil {
		return nil, err
	}

	logger := globals.Logger(ctx.Stderr)
	defer func() { _ = logger.Sync() }()

	opts := []loader.Option{loader.WithLogger(logger)}
	if follow {
		opts = append(opts, loader.WithFollowIncludes())
	}

	result, err := file.Load(context.Background(), loader.New(opts...))
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(nil, nil).Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "parse error")
		return nil, NewCommandError(1)
	}
	return result.Document, nil
}

// writeItems writes one line per item in the form "line:col  kind  summary".
func writeItems(w io.Writer, doc *ast.Document) {
	for _, item := range doc.Items {
		pos := item.Position()
		loc := fmt.Sprintf("%d:%d", pos.Line, pos.Column)
		kind, summary := describeItem(item)
		line := fmt.Sprintf("%-8s %-11s %s", loc, kind, summary)
		_, _ = fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func describeItem(item ast.Item) (string, string) {
	switch it := item.(type) {
	case *ast.EmptyLine:
		return "empty", ""
	case *ast.LineComment:
		return "comment", fmt.Sprintf("%q", it.Text)
	case *ast.Transaction:
		summary := fmt.Sprintf("%s %s (%d postings)", it.Date, it.Description, len(it.Postings))
		return "transaction", strings.TrimSpace(summary)
	case *ast.CommodityPrice:
		return "price", fmt.Sprintf("%s %s", it.Commodity, formatter.FormatAmount(it.Amount))
	case *ast.Include:
		return "include", it.Path
	default:
		return fmt.Sprintf("%T", item), ""
	}
}
