// Package parser reads ledger-cli journals into the ast package's Document.
//
// The grammar is written as small rule functions combined with ordered
// alternatives. Every rule works on an immutable view of the remaining input,
// so a failed alternative leaves nothing behind and the next one starts from
// the same place. Some rules commit once they have recognised their leading
// token (a transaction date, "P ", "include", a posting's account); failures
// after that point are reported as they are instead of trying other items.
//
// Parsing is all or nothing: either the whole input is read into a Document,
// or a *ParseError describes the first place no rule could continue.
package parser

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/telemetry"
)

const byteOrderMark = "\uFEFF"

// itemLabels name the top-level alternatives in the order they are tried.
var itemLabels = []string{"empty line", "comment", "transaction", "commodity price", "include"}

func asItem[T ast.Item](rule parseFunc[T]) parseFunc[ast.Item] {
	return func(in input) (ast.Item, input, error) {
		v, next, err := rule(in)
		if err != nil {
			return nil, in, err
		}
		return v, next, nil
	}
}

var item = alt(
	labeled("empty line", asItem(emptyLine)),
	labeled("comment", asItem(lineComment)),
	labeled("transaction", asItem(transaction)),
	labeled("commodity price", asItem(commodityPrice)),
	labeled("include", asItem(include)),
)

func newSourceInput(filename, src string) input {
	in := newInput(filename, src)
	if in.hasPrefix(byteOrderMark) {
		in = in.advance(len(byteOrderMark))
		in.lineStart = in.off
	}
	return in
}

// document strips one item at a time from the front of the input until
// nothing is left.
func document(in input) (*ast.Document, error) {
	doc := &ast.Document{}
	for !in.atEnd() {
		it, next, err := item(in)
		if err == nil && next.off == in.off {
			err = fail(in, "item")
		}
		if err != nil {
			return nil, trailingInput(in, asFailure(err))
		}
		doc.Items = append(doc.Items, it)
		in = next
	}
	return doc, nil
}

// trailingInput reports input that no item could be read from. Committed
// failures are kept as they are.
func trailingInput(in input, f *failure) *ParseError {
	if f.committed {
		return f.toParseError()
	}

	tf := *f
	tf.kind = TrailingInputError
	tf.cause = ErrNoItemMatched
	tf.trail = []string{"item"}
	if tf.at.off <= in.off {
		tf.at = in
		tf.expected = itemLabels
	}
	tf.message = fmt.Sprintf("%s: expected %s", ErrNoItemMatched, joinAlternatives(tf.expected))
	return tf.toParseError()
}

// ParseString parses a journal held in a string.
func ParseString(ctx context.Context, src string) (*ast.Document, error) {
	return parse(ctx, "", src)
}

// ParseBytes parses a journal held in a byte slice.
func ParseBytes(ctx context.Context, src []byte) (*ast.Document, error) {
	return parse(ctx, "", string(src))
}

// ParseBytesWithFilename parses a journal and records filename in every
// position of the resulting document and of any error.
func ParseBytesWithFilename(ctx context.Context, filename string, src []byte) (*ast.Document, error) {
	return parse(ctx, filename, string(src))
}

func parse(ctx context.Context, filename, src string) (*ast.Document, error) {
	name := "parser.parse"
	if filename != "" {
		name = fmt.Sprintf("parser.parse %s", filename)
	}
	timer := telemetry.FromContext(ctx).Start(name)
	defer timer.End()

	doc, err := document(newSourceInput(filename, src))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseDate parses a complete date such as 2017-03-24, 2017/03/24 or 2017.03.24.
func ParseDate(s string) (ast.Date, error) {
	return complete(date, newInput("", s))
}

// ParseDateTime parses a date with an optional time of day, such as
// "2017-11-12 12:00:00". Without a time it returns midnight UTC.
func ParseDateTime(s string) (time.Time, error) {
	return complete(dateTime, newInput("", s))
}

// ParseQuantity parses a decimal quantity such as -1,234.56.
func ParseQuantity(s string) (decimal.Decimal, error) {
	return complete(quantity, newInput("", s))
}

// ParseCommodity parses a quoted or unquoted commodity symbol.
func ParseCommodity(s string) (string, error) {
	return complete(commodity, newInput("", s))
}

// ParseAmount parses an amount such as $1.20 or "1.20 USD".
func ParseAmount(s string) (ast.Amount, error) {
	return complete(amount, newInput("", s))
}

// ParseAccount parses an account name and returns it without reality brackets.
func ParseAccount(s string) (string, ast.Reality, error) {
	acct, err := complete(accountWithReality, newInput("", s))
	if err != nil {
		return "", ast.Real, err
	}
	return acct.name, acct.reality, nil
}
