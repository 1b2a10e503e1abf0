// Package formatter writes an ast.Document back out as ledger-cli journal text.
//
// The output reads back into a structurally identical document, and formatting
// that output again gives the same bytes.
package formatter

import (
	"context"
	"io"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/telemetry"
)

const (
	// DefaultIndent is written before postings and comment lines.
	DefaultIndent = "  "

	// DefaultLineEnding terminates every line.
	DefaultLineEnding = "\n"

	// DefaultTransactionDateFormat is the Go layout for transaction and
	// metadata dates.
	DefaultTransactionDateFormat = "2006-01-02"

	// DefaultCommodityDateFormat is the Go layout for commodity price dates.
	DefaultCommodityDateFormat = "2006-01-02 15:04:05"

	// minimumSeparator is written between an account and its amount when the
	// indent itself would not end the account name.
	minimumSeparator = "  "
)

// Formatter serializes documents. The zero value is not usable; create one with New.
type Formatter struct {
	// Indent is written before postings and metadata lines. It must consist of
	// spaces and tabs only.
	Indent string

	// LineEnding is "\n" or "\r\n".
	LineEnding string

	// TransactionDateFormat is the Go time layout used for transaction dates,
	// effective dates and metadata dates.
	TransactionDateFormat string

	// CommodityDateFormat is the Go time layout used for commodity prices.
	CommodityDateFormat string

	// SameLinePostingComments keeps a single-line posting comment on the
	// posting line instead of the line below.
	SameLinePostingComments bool
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithIndent sets the indentation of postings and metadata lines.
func WithIndent(indent string) Option {
	return func(f *Formatter) {
		f.Indent = indent
	}
}

// WithLineEnding sets the line terminator.
func WithLineEnding(eol string) Option {
	return func(f *Formatter) {
		f.LineEnding = eol
	}
}

// WithTransactionDateFormat sets the Go time layout for transaction dates.
func WithTransactionDateFormat(layout string) Option {
	return func(f *Formatter) {
		f.TransactionDateFormat = layout
	}
}

// WithCommodityDateFormat sets the Go time layout for commodity price dates.
func WithCommodityDateFormat(layout string) Option {
	return func(f *Formatter) {
		f.CommodityDateFormat = layout
	}
}

// WithSameLinePostingComments enables or disables comments on the posting line.
func WithSameLinePostingComments(enabled bool) Option {
	return func(f *Formatter) {
		f.SameLinePostingComments = enabled
	}
}

// New creates a new Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		Indent:                DefaultIndent,
		LineEnding:            DefaultLineEnding,
		TransactionDateFormat: DefaultTransactionDateFormat,
		CommodityDateFormat:   DefaultCommodityDateFormat,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Format writes the document to w. Only the writer's error is returned.
func (f *Formatter) Format(ctx context.Context, doc *ast.Document, w io.Writer) error {
	timer := telemetry.FromContext(ctx).Start("formatter.format")
	defer timer.End()

	// Buffer all output, then write once
	var buf strings.Builder
	buf.Grow(len(doc.Items) * 64)

	f.formatItems(doc.Items, &buf)

	_, err := io.WriteString(w, buf.String())
	return err
}

// FormatString returns the serialized document.
func (f *Formatter) FormatString(doc *ast.Document) string {
	var buf strings.Builder
	f.formatItems(doc.Items, &buf)
	return buf.String()
}

// FormatItem writes a single item, including its line ending, to w.
func (f *Formatter) FormatItem(item ast.Item, w io.Writer) error {
	var buf strings.Builder
	f.formatItem(item, nil, &buf)
	_, err := io.WriteString(w, buf.String())
	return err
}

// FormatTransaction writes a transaction with its comments and postings to w.
func (f *Formatter) FormatTransaction(txn *ast.Transaction, w io.Writer) error {
	return f.FormatItem(txn, w)
}

// FormatAmount renders an amount the way it is written in a journal: $1.20 for
// left commodities and 1.20 USD for right ones.
func FormatAmount(a ast.Amount) string {
	var buf strings.Builder
	formatAmount(a, &buf)
	return buf.String()
}

func (f *Formatter) formatItems(items []ast.Item, buf *strings.Builder) {
	var prev ast.Item
	for _, item := range items {
		f.formatItem(item, prev, buf)
		prev = item
	}
}

func (f *Formatter) formatItem(item, prev ast.Item, buf *strings.Builder) {
	switch it := item.(type) {
	case *ast.EmptyLine:
		buf.WriteString(f.eol())
	case *ast.LineComment:
		_, afterTransaction := prev.(*ast.Transaction)
		f.formatLineComment(it, afterTransaction, buf)
	case *ast.Transaction:
		f.formatTransaction(it, buf)
	case *ast.CommodityPrice:
		f.formatCommodityPrice(it, buf)
	case *ast.Include:
		f.formatInclude(it, buf)
	}
}

// formatLineComment writes a standalone comment. Right after a transaction
// only "*" keeps it standalone; the other markers attach it to the last posting.
func (f *Formatter) formatLineComment(c *ast.LineComment, afterTransaction bool, buf *strings.Builder) {
	if afterTransaction {
		buf.WriteByte('*')
	} else {
		buf.WriteByte(';')
	}
	if c.Text != "" {
		buf.WriteByte(' ')
		buf.WriteString(c.Text)
	}
	buf.WriteString(f.eol())
}

func (f *Formatter) formatInclude(inc *ast.Include, buf *strings.Builder) {
	buf.WriteString("include ")
	buf.WriteString(inc.Path)
	buf.WriteString(f.eol())
}

// formatCommodityPrice writes "P 2017-11-12 12:00:00 mBH 5.00 PLN".
func (f *Formatter) formatCommodityPrice(p *ast.CommodityPrice, buf *strings.Builder) {
	buf.WriteString("P ")
	buf.WriteString(p.DateTime.Format(f.commodityDateFormat()))
	buf.WriteByte(' ')
	formatCommodityName(p.Commodity, buf)
	buf.WriteByte(' ')
	formatAmount(p.Amount, buf)
	buf.WriteString(f.eol())
}

func (f *Formatter) formatTransaction(t *ast.Transaction, buf *strings.Builder) {
	buf.WriteString(f.formatDate(t.Date))
	if t.EffectiveDate != nil {
		buf.WriteByte('=')
		buf.WriteString(f.formatDate(*t.EffectiveDate))
	}
	if t.Status != ast.NoStatus {
		buf.WriteByte(' ')
		buf.WriteString(t.Status.String())
	}
	if t.Code != "" {
		buf.WriteString(" (")
		buf.WriteString(t.Code)
		buf.WriteByte(')')
	}
	if t.Description != "" {
		buf.WriteByte(' ')
		buf.WriteString(t.Description)
	}
	buf.WriteString(f.eol())

	indent := f.indent()
	f.formatMetadataDates(t.Metadata, indent, buf)
	f.formatNotes(t.Metadata.Tags, t.Comment, indent, false, buf)

	for _, p := range t.Postings {
		f.formatPosting(p, buf)
	}
}

func (f *Formatter) formatPosting(p *ast.Posting, buf *strings.Builder) {
	indent := f.indent()
	sep := f.separator()

	buf.WriteString(indent)
	if p.Status != ast.NoStatus {
		buf.WriteString(p.Status.String())
		buf.WriteByte(' ')
	}
	buf.WriteString(p.Reality.Wrap(p.Account))

	if p.Amount != nil {
		buf.WriteString(sep)
		formatPostingAmount(p.Amount, buf)
	}

	if p.Balance != nil {
		if p.Amount != nil {
			buf.WriteByte(' ')
		} else {
			buf.WriteString(sep)
		}
		buf.WriteString("= ")
		formatBalance(p.Balance, buf)
	}

	comment := p.Comment
	if f.SameLinePostingComments && comment != "" && !strings.Contains(comment, "\n") && !readsAsMetadata(comment) {
		buf.WriteString(sep)
		buf.WriteString("; ")
		buf.WriteString(comment)
		comment = ""
	}
	buf.WriteString(f.eol())

	nested := indent + indent
	f.formatMetadataDates(p.Metadata, nested, buf)
	f.formatNotes(p.Metadata.Tags, comment, nested, true, buf)
}

// formatMetadataDates writes "; [date=effective]" when either date is set.
func (f *Formatter) formatMetadataDates(m ast.Metadata, indent string, buf *strings.Builder) {
	if m.Date == nil && m.EffectiveDate == nil {
		return
	}
	buf.WriteString(indent)
	buf.WriteString("; [")
	if m.Date != nil {
		buf.WriteString(f.formatDate(*m.Date))
	}
	if m.EffectiveDate != nil {
		buf.WriteByte('=')
		buf.WriteString(f.formatDate(*m.EffectiveDate))
	}
	buf.WriteByte(']')
	buf.WriteString(f.eol())
}

// formatNotes writes the tags and comment lines of a transaction or posting,
// tags first when tagsFirst is set. A comment line that would read back as a
// date or a value tag is written after a tag list on the same line, where it
// stays text.
func (f *Formatter) formatNotes(tags []ast.Tag, comment, indent string, tagsFirst bool, buf *strings.Builder) {
	var lines []string
	if comment != "" {
		lines = strings.Split(comment, "\n")
	}

	if tagsFirst && !slices.ContainsFunc(lines, readsAsMetadata) {
		f.formatTags(tags, indent, buf)
		f.formatCommentLines(lines, indent, buf)
		return
	}

	next := 0
	for _, line := range lines {
		if readsAsMetadata(line) {
			if i := nextFlagTag(tags, next); i >= 0 {
				f.formatTags(tags[next:i], indent, buf)
				buf.WriteString(indent)
				buf.WriteString("; :")
				buf.WriteString(tags[i].Name)
				buf.WriteString(": ")
				buf.WriteString(line)
				buf.WriteString(f.eol())
				next = i + 1
				continue
			}
		}
		f.formatCommentLines([]string{line}, indent, buf)
	}
	f.formatTags(tags[next:], indent, buf)
}

func (f *Formatter) formatCommentLines(lines []string, indent string, buf *strings.Builder) {
	for _, line := range lines {
		buf.WriteString(indent)
		buf.WriteByte(';')
		if line != "" {
			buf.WriteByte(' ')
			buf.WriteString(line)
		}
		buf.WriteString(f.eol())
	}
}

// nextFlagTag returns the index of the first tag without a value at or after
// from, or -1.
func nextFlagTag(tags []ast.Tag, from int) int {
	for i := from; i < len(tags); i++ {
		if tags[i].Value == nil {
			return i
		}
	}
	return -1
}

// readsAsMetadata reports whether a comment line on its own would be read as
// a "[date]" override or a "Name: value" tag.
func readsAsMetadata(line string) bool {
	line = strings.Trim(line, " \t")
	if line == "" {
		return false
	}
	if line[0] == '[' && line[len(line)-1] == ']' {
		return true
	}

	end := strings.IndexAny(line, ": \t")
	if end <= 0 || line[end] != ':' {
		return false
	}
	rest := strings.TrimPrefix(line[end+1:], ":")
	return rest != "" && (rest[0] == ' ' || rest[0] == '\t') && strings.Trim(rest, " \t") != ""
}

// formatTags writes one tag per line: "; :name:", "; Name: value" or
// "; Name:: 42" for typed values.
func (f *Formatter) formatTags(tags []ast.Tag, indent string, buf *strings.Builder) {
	for _, tag := range tags {
		buf.WriteString(indent)
		buf.WriteString("; ")
		switch v := tag.Value.(type) {
		case nil:
			buf.WriteByte(':')
			buf.WriteString(tag.Name)
			buf.WriteByte(':')
		case ast.StringValue:
			buf.WriteString(tag.Name)
			buf.WriteString(": ")
			buf.WriteString(string(v))
		case ast.DateValue:
			buf.WriteString(tag.Name)
			buf.WriteString(":: [")
			buf.WriteString(f.formatDate(v.Date))
			buf.WriteByte(']')
		default:
			buf.WriteString(tag.Name)
			buf.WriteString(":: ")
			buf.WriteString(v.String())
		}
		buf.WriteString(f.eol())
	}
}

func formatPostingAmount(pa *ast.PostingAmount, buf *strings.Builder) {
	formatAmount(pa.Amount, buf)

	if lot := pa.LotPrice; lot != nil {
		if lot.Total {
			buf.WriteString(" {{")
			formatAmount(lot.Amount, buf)
			buf.WriteString("}}")
		} else {
			buf.WriteString(" {")
			formatAmount(lot.Amount, buf)
			buf.WriteByte('}')
		}
	}

	if price := pa.Price; price != nil {
		if price.Total {
			buf.WriteString(" @@ ")
		} else {
			buf.WriteString(" @ ")
		}
		formatAmount(price.Amount, buf)
	}
}

func formatBalance(b ast.Balance, buf *strings.Builder) {
	switch b := b.(type) {
	case ast.ZeroBalance:
		buf.WriteByte('0')
	case ast.AmountBalance:
		formatAmount(b.Amount, buf)
	}
}

func formatAmount(a ast.Amount, buf *strings.Builder) {
	qty := ast.FormatQuantity(a.Quantity)
	if a.Commodity.Position == ast.Left {
		formatCommodity(a.Commodity, buf)
		buf.WriteString(qty)
		return
	}
	buf.WriteString(qty)
	buf.WriteByte(' ')
	formatCommodity(a.Commodity, buf)
}

func (f *Formatter) formatDate(d ast.Date) string {
	layout := f.TransactionDateFormat
	if layout == "" {
		layout = DefaultTransactionDateFormat
	}
	return d.Format(layout)
}

func (f *Formatter) commodityDateFormat() string {
	if f.CommodityDateFormat == "" {
		return DefaultCommodityDateFormat
	}
	return f.CommodityDateFormat
}

func (f *Formatter) eol() string {
	if f.LineEnding == "" {
		return DefaultLineEnding
	}
	return f.LineEnding
}

// indent returns the configured indent, falling back to the default when it
// is empty or holds anything but spaces and tabs.
func (f *Formatter) indent() string {
	if f.Indent == "" || strings.Trim(f.Indent, " \t") != "" {
		return DefaultIndent
	}
	return f.Indent
}

// separator returns what goes between an account and its amount. Account names
// may contain single spaces, so the name only ends at a tab or two spaces.
func (f *Formatter) separator() string {
	indent := f.indent()
	if strings.Contains(indent, "\t") || len(indent) >= 2 {
		return indent
	}
	return minimumSeparator
}
