package formatter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/parser"
)

const journal = `; Journal header
# hash comment

2018-10-01=2018-10-14 ! (123) Marek Ogarek ; first line
  ; second line
  ; :groceries:weekly:
  ; Payee: Corner Shop
  ; Receipt:: 42
  ; Rate:: 4.25
  ; Due:: [2018-11-01]
  ; [2018-10-02=2018-10-15]
  * Assets:Brokerage  10 AAPL {$150.00} @ $155.00
  [Budget:Food]  $-12.40 = $100.00
    ; posting note
  (Tracking:Miles)  120 MILES
  Assets:Checking  = 0
  Expenses:Misc  EUR-1.20 {{EUR2.40}} @@ 3 PLN
  Assets:Cash

P 2017-11-12 12:00:00 mBH 5.00 PLN
P 2017-11-13 "Frequent Flyer Miles" $0.01
include other.ledger
`

const formattedJournal = `; Journal header
; hash comment

2018-10-01=2018-10-14 ! (123) Marek Ogarek
  ; [2018-10-02=2018-10-15]
  ; first line
  ; second line
  ; :groceries:
  ; :weekly:
  ; Payee: Corner Shop
  ; Receipt:: 42
  ; Rate:: 4.25
  ; Due:: [2018-11-01]
  * Assets:Brokerage  10 AAPL {$150.00} @ $155.00
  [Budget:Food]  $-12.40 = $100.00
    ; posting note
  (Tracking:Miles)  120 MILES
  Assets:Checking  = 0
  Expenses:Misc  EUR-1.20 {{EUR2.40}} @@ 3 PLN
  Assets:Cash

P 2017-11-12 12:00:00 mBH 5.00 PLN
P 2017-11-13 00:00:00 "Frequent Flyer Miles" $0.01
include other.ledger
`

func parse(t *testing.T, src string) *ast.Document {
	t.Helper()
	doc, err := parser.ParseString(context.Background(), src)
	assert.NoError(t, err)
	return doc
}

func format(t *testing.T, f *Formatter, doc *ast.Document) string {
	t.Helper()
	var buf bytes.Buffer
	assert.NoError(t, f.Format(context.Background(), doc, &buf))
	return buf.String()
}

func TestFormatScenario(t *testing.T) {
	t.Run("DefaultIndent", func(t *testing.T) {
		src := "2018-10-01=2018-10-14 ! (123) Marek Ogarek\n" +
			"  TEST:ABC 123  $1.20\n" +
			"  TEST:ABC 123  $1.20\n"
		assert.Equal(t, src, format(t, New(), parse(t, src)))
	})

	t.Run("SingleSpaceIndent", func(t *testing.T) {
		src := "2018-10-01=2018-10-14 ! (123) Marek Ogarek\n" +
			" TEST:ABC 123  $1.20\n" +
			" TEST:ABC 123  $1.20\n"
		assert.Equal(t, src, format(t, New(WithIndent(" ")), parse(t, src)))
	})

	t.Run("CommodityPrice", func(t *testing.T) {
		src := "P 2017-11-12 12:00:00 mBH 5.00 PLN\n"
		assert.Equal(t, src, format(t, New(), parse(t, src)))
	})
}

func TestFormatJournal(t *testing.T) {
	assert.Equal(t, formattedJournal, format(t, New(), parse(t, journal)))
}

func TestFormatRoundTrip(t *testing.T) {
	configs := []struct {
		name string
		opts []Option
	}{
		{"Default", nil},
		{"TabIndent", []Option{WithIndent("\t")}},
		{"WideIndent", []Option{WithIndent("    ")}},
		{"CRLF", []Option{WithLineEnding("\r\n")}},
		{"SlashDates", []Option{WithTransactionDateFormat("2006/01/02"), WithCommodityDateFormat("2006/01/02 15:04:05")}},
		{"SameLineComments", []Option{WithSameLinePostingComments(true)}},
	}

	for _, cfg := range configs {
		t.Run(cfg.name, func(t *testing.T) {
			f := New(cfg.opts...)

			original := parse(t, journal)
			out := format(t, f, original)

			reparsed := parse(t, out)
			assert.Equal(t, out, format(t, f, reparsed))

			ast.ClearPositions(original)
			ast.ClearPositions(reparsed)
			assert.Equal(t, original, reparsed)
		})
	}
}

func TestFormatCommentsReadBackAsText(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name:     "ProseLikeValueTag",
			src:      "2018-10-01 Shop\n  ; :t: Note: x\n  A  $1\n  B\n",
			expected: "2018-10-01 Shop\n  ; :t: Note: x\n  A  $1\n  B\n",
		},
		{
			name:     "ProseLikeDate",
			src:      "2018-10-01 Shop\n  ; [2018-01-05] :t:\n  A  $1\n  B\n",
			expected: "2018-10-01 Shop\n  ; :t: [2018-01-05]\n  A  $1\n  B\n",
		},
		{
			name:     "ProseLikeInvalidDate",
			src:      "2018-10-01 Shop ;:0: [0000.00.00]\n  A  $1\n  B\n",
			expected: "2018-10-01 Shop\n  ; :0: [0000.00.00]\n  A  $1\n  B\n",
		},
		{
			name:     "ValueTagKeepsItsOrder",
			src:      "2018-10-01 Shop\n  ; Payee: Corner\n  ; :t: Rate: high\n  A  $1\n  B\n",
			expected: "2018-10-01 Shop\n  ; Payee: Corner\n  ; :t: Rate: high\n  A  $1\n  B\n",
		},
		{
			name:     "PostingWithSeveralTags",
			src:      "2018-10-01 Shop\n  A  $1\n    ; :a: :b: Payee: x\n  B\n",
			expected: "2018-10-01 Shop\n  A  $1\n    ; :a: Payee: x\n    ; :b:\n  B\n",
		},
		{
			name:     "HashCommentAfterPosting",
			src:      "2018-10-01 Shop\n  A  $1\n  B\n# note\n",
			expected: "2018-10-01 Shop\n  A  $1\n  B\n    ; note\n",
		},
		{
			name:     "StarCommentAfterTransaction",
			src:      "2018-10-01 Shop\n  A  $1\n  B\n* star\n; next\n",
			expected: "2018-10-01 Shop\n  A  $1\n  B\n* star\n; next\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			original := parse(t, test.src)
			out := format(t, New(), original)
			assert.Equal(t, test.expected, out)

			reparsed := parse(t, out)
			assert.Equal(t, out, format(t, New(), reparsed))

			ast.ClearPositions(original)
			ast.ClearPositions(reparsed)
			assert.Equal(t, original, reparsed)
		})
	}
}

func TestFormatSameLineSkipsMetadataLikeComments(t *testing.T) {
	txn := ast.NewTransaction(ast.MustDate(2018, 10, 1), "Shop", ast.WithPostings(
		ast.NewPosting("Expenses:Food",
			ast.WithAmount(ast.NewAmount("1.20", "$", ast.Left)),
			ast.WithPostingComment("Note: x"),
			ast.WithPostingTags(ast.NewTag("t")),
		),
		ast.NewPosting("Assets:Cash"),
	))

	var buf bytes.Buffer
	assert.NoError(t, New(WithSameLinePostingComments(true)).FormatTransaction(txn, &buf))
	assert.Equal(t, "2018-10-01 Shop\n"+
		"  Expenses:Food  $1.20\n"+
		"    ; :t: Note: x\n"+
		"  Assets:Cash\n", buf.String())
}

func TestFormatLineEnding(t *testing.T) {
	doc := parse(t, "2018-10-01 Shop\n  Expenses:Food  $1.20\n  Assets:Cash\n")
	out := format(t, New(WithLineEnding("\r\n")), doc)
	assert.Equal(t, "2018-10-01 Shop\r\n  Expenses:Food  $1.20\r\n  Assets:Cash\r\n", out)
}

func TestFormatDateFormats(t *testing.T) {
	doc := &ast.Document{Items: []ast.Item{
		ast.NewTransaction(ast.MustDate(2018, 10, 1), "Shop",
			ast.WithEffectiveDate(ast.MustDate(2018, 10, 14)),
			ast.WithPostings(
				ast.NewPosting("Expenses:Food", ast.WithAmount(ast.NewAmount("1.20", "$", ast.Left))),
				ast.NewPosting("Assets:Cash"),
			),
		),
		ast.NewCommodityPrice(time.Date(2017, 11, 12, 12, 0, 0, 0, time.UTC), "mBH", ast.NewAmount("5.00", "PLN", ast.Right)),
	}}

	out := New(
		WithTransactionDateFormat("2006/01/02"),
		WithCommodityDateFormat("2006.01.02 15:04"),
	).FormatString(doc)

	assert.Equal(t, "2018/10/01=2018/10/14 Shop\n"+
		"  Expenses:Food  $1.20\n"+
		"  Assets:Cash\n"+
		"P 2017.11.12 12:00 mBH 5.00 PLN\n", out)
}

func TestFormatPostings(t *testing.T) {
	usd := func(q string) ast.Amount { return ast.NewAmount(q, "$", ast.Left) }

	tests := []struct {
		name     string
		posting  *ast.Posting
		expected string
	}{
		{
			name:     "Elided",
			posting:  ast.NewPosting("Assets:Cash"),
			expected: "  Assets:Cash\n",
		},
		{
			name:     "BalancedVirtual",
			posting:  ast.NewPosting("Budget:Food", ast.WithReality(ast.BalancedVirtual), ast.WithAmount(usd("-12.40"))),
			expected: "  [Budget:Food]  $-12.40\n",
		},
		{
			name:     "UnbalancedVirtual",
			posting:  ast.NewPosting("Tracking:Miles", ast.WithReality(ast.UnbalancedVirtual), ast.WithAmount(ast.NewAmount("120", "MILES", ast.Right))),
			expected: "  (Tracking:Miles)  120 MILES\n",
		},
		{
			name:     "Status",
			posting:  ast.NewPosting("Assets:Cash", ast.WithPostingStatus(ast.Pending), ast.WithAmount(usd("1"))),
			expected: "  ! Assets:Cash  $1\n",
		},
		{
			name: "LotAndPrice",
			posting: ast.NewPosting("Assets:Brokerage",
				ast.WithAmount(ast.NewAmount("10", "AAPL", ast.Right)),
				ast.WithLotPrice(usd("150.00"), false),
				ast.WithPrice(usd("155.00"), false),
			),
			expected: "  Assets:Brokerage  10 AAPL {$150.00} @ $155.00\n",
		},
		{
			name: "TotalLotAndPrice",
			posting: ast.NewPosting("Assets:Brokerage",
				ast.WithAmount(ast.NewAmount("10", "AAPL", ast.Right)),
				ast.WithLotPrice(usd("1500.00"), true),
				ast.WithPrice(usd("1550.00"), true),
			),
			expected: "  Assets:Brokerage  10 AAPL {{$1500.00}} @@ $1550.00\n",
		},
		{
			name:     "AmountAndBalance",
			posting:  ast.NewPosting("Assets:Checking", ast.WithAmount(usd("100.00")), ast.WithBalance(ast.AmountBalance{Amount: usd("1250.00")})),
			expected: "  Assets:Checking  $100.00 = $1250.00\n",
		},
		{
			name:     "BalanceOnly",
			posting:  ast.NewPosting("Assets:Checking", ast.WithBalance(ast.ZeroBalance{})),
			expected: "  Assets:Checking  = 0\n",
		},
		{
			name: "CommentAndTags",
			posting: ast.NewPosting("Expenses:Food",
				ast.WithAmount(usd("1")),
				ast.WithPostingComment("first\nsecond"),
				ast.WithPostingTags(ast.NewTag("food"), ast.NewValueTag("Receipt", ast.IntegerValue(42))),
			),
			expected: "  Expenses:Food  $1\n" +
				"    ; :food:\n" +
				"    ; Receipt:: 42\n" +
				"    ; first\n" +
				"    ; second\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buf strings.Builder
			New().formatPosting(test.posting, &buf)
			assert.Equal(t, test.expected, buf.String())
		})
	}
}

func TestFormatSameLinePostingComments(t *testing.T) {
	txn := ast.NewTransaction(ast.MustDate(2018, 10, 1), "Shop", ast.WithPostings(
		ast.NewPosting("Expenses:Food", ast.WithAmount(ast.NewAmount("1.20", "$", ast.Left)), ast.WithPostingComment("lunch")),
		ast.NewPosting("Assets:Cash", ast.WithPostingComment("two\nlines")),
	))

	var buf bytes.Buffer
	assert.NoError(t, New(WithSameLinePostingComments(true)).FormatTransaction(txn, &buf))
	assert.Equal(t, "2018-10-01 Shop\n"+
		"  Expenses:Food  $1.20  ; lunch\n"+
		"  Assets:Cash\n"+
		"    ; two\n"+
		"    ; lines\n", buf.String())
}

func TestFormatTransactionMetadata(t *testing.T) {
	edate := ast.MustDate(2018, 10, 15)
	txn := ast.NewTransaction(ast.MustDate(2018, 10, 1), "",
		ast.WithStatus(ast.Cleared),
		ast.WithComment("note"),
		ast.WithTags(
			ast.NewValueTag("Payee", ast.StringValue("Corner Shop")),
			ast.NewValueTag("Rate", ast.FloatValue(2)),
			ast.NewValueTag("Due", ast.DateValue{Date: ast.MustDate(2018, 11, 1)}),
		),
		ast.WithPostings(
			ast.NewPosting("Expenses:Food", ast.WithAmount(ast.NewAmount("1", "EUR", ast.Right))),
			ast.NewPosting("Assets:Cash"),
		),
	)
	txn.Metadata.EffectiveDate = &edate

	var buf bytes.Buffer
	assert.NoError(t, New().FormatItem(txn, &buf))
	assert.Equal(t, "2018-10-01 *\n"+
		"  ; [=2018-10-15]\n"+
		"  ; note\n"+
		"  ; Payee: Corner Shop\n"+
		"  ; Rate:: 2.0\n"+
		"  ; Due:: [2018-11-01]\n"+
		"  Expenses:Food  1 EUR\n"+
		"  Assets:Cash\n", buf.String())
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   ast.Amount
		expected string
	}{
		{ast.NewAmount("1.20", "$", ast.Left), "$1.20"},
		{ast.NewAmount("-1.20", "$", ast.Left), "$-1.20"},
		{ast.NewAmount("1.20", "USD", ast.Right), "1.20 USD"},
		{ast.NewAmount("1000.00", "PLN", ast.Right), "1000.00 PLN"},
		{ast.NewAmount("5", "Frequent Flyer Miles", ast.Right), `5 "Frequent Flyer Miles"`},
		{ast.NewAmount("5", `say "hi"`, ast.Right), `5 "say \"hi\""`},
		{ast.NewAmount("5", "A1", ast.Left), `"A1"5`},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, FormatAmount(test.amount))
		})
	}
}

func TestFormatAmountReadsBack(t *testing.T) {
	for _, src := range []string{"$1.20", "1.20 USD", `5 "Frequent Flyer Miles"`, `"A1"5`, "€-1,000.50"} {
		t.Run(src, func(t *testing.T) {
			a, err := parser.ParseAmount(src)
			assert.NoError(t, err)

			again, err := parser.ParseAmount(FormatAmount(a))
			assert.NoError(t, err)
			assert.Equal(t, a, again)
		})
	}
}

func TestFormatFallsBackToDefaults(t *testing.T) {
	doc := parse(t, "2018-10-01 Shop\n  Expenses:Food  $1.20\n  Assets:Cash\n")
	f := &Formatter{Indent: "--"}
	assert.Equal(t, "2018-10-01 Shop\n  Expenses:Food  $1.20\n  Assets:Cash\n", f.FormatString(doc))
}

type failingWriter struct{}

var errWrite = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestFormatReturnsWriterError(t *testing.T) {
	err := New().Format(context.Background(), parse(t, "; only a comment\n"), failingWriter{})
	assert.True(t, errors.Is(err, errWrite))
}
