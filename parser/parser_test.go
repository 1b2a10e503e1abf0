package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

func parseDoc(t *testing.T, src string) *ast.Document {
	t.Helper()
	doc, err := ParseString(context.Background(), src)
	assert.NoError(t, err)
	ast.ClearPositions(doc)
	return doc
}

func doc(items ...ast.Item) *ast.Document {
	return &ast.Document{Items: items}
}

func usd(q string) ast.Amount { return ast.NewAmount(q, "$", ast.Left) }

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		ledger   string
		expected *ast.Document
	}{
		{
			name: "TransactionWithEffectiveDateStatusAndCode",
			ledger: "2018-10-01=2018-10-14 ! (123) Marek Ogarek\n" +
				" TEST:ABC 123  $1.20\n" +
				" TEST:ABC 123  $1.20\n",
			expected: doc(
				ast.NewTransaction(ast.MustDate(2018, 10, 1), "Marek Ogarek",
					ast.WithEffectiveDate(ast.MustDate(2018, 10, 14)),
					ast.WithStatus(ast.Pending),
					ast.WithCode("123"),
					ast.WithPostings(
						ast.NewPosting("TEST:ABC 123", ast.WithAmount(usd("1.20"))),
						ast.NewPosting("TEST:ABC 123", ast.WithAmount(usd("1.20"))),
					),
				),
			),
		},
		{
			name: "ElidedPosting",
			ledger: "2018-10-01 * Corner Shop\n" +
				"  Expenses:Food  $12.40\n" +
				"  Assets:Cash\n",
			expected: doc(
				ast.NewTransaction(ast.MustDate(2018, 10, 1), "Corner Shop",
					ast.WithStatus(ast.Cleared),
					ast.WithPostings(
						ast.NewPosting("Expenses:Food", ast.WithAmount(usd("12.40"))),
						ast.NewPosting("Assets:Cash"),
					),
				),
			),
		},
		{
			name: "LeftAndRightCommodities",
			ledger: "2018-10-01 Exchange\n" +
				" TEST:DEF 123  EUR-1.20\n" +
				" TEST:GHI 123\n" +
				" TEST:JKL 123  -2.00 PLN\n",
			expected: doc(
				ast.NewTransaction(ast.MustDate(2018, 10, 1), "Exchange",
					ast.WithPostings(
						ast.NewPosting("TEST:DEF 123", ast.WithAmount(ast.NewAmount("-1.20", "EUR", ast.Left))),
						ast.NewPosting("TEST:GHI 123"),
						ast.NewPosting("TEST:JKL 123", ast.WithAmount(ast.NewAmount("-2.00", "PLN", ast.Right))),
					),
				),
			),
		},
		{
			name: "VirtualPostings",
			ledger: "2018-10-01 Budget\n" +
				"  [Budget:Food]  $-12.40\n" +
				"  [Assets:Budget]  $12.40\n" +
				"  (Tracking:Miles)  120 MILES\n",
			expected: doc(
				ast.NewTransaction(ast.MustDate(2018, 10, 1), "Budget",
					ast.WithPostings(
						ast.NewPosting("Budget:Food", ast.WithReality(ast.BalancedVirtual), ast.WithAmount(usd("-12.40"))),
						ast.NewPosting("Assets:Budget", ast.WithReality(ast.BalancedVirtual), ast.WithAmount(usd("12.40"))),
						ast.NewPosting("Tracking:Miles", ast.WithReality(ast.UnbalancedVirtual),
							ast.WithAmount(ast.NewAmount("120", "MILES", ast.Right))),
					),
				),
			),
		},
		{
			name: "LotPriceAndPrice",
			ledger: "2018-10-01 Buy\n" +
				"  Assets:Brokerage  10 AAPL {$150.00} @ $155.00\n" +
				"  Assets:Brokerage  2 AAPL {{$300.00}} @@ $310.00\n" +
				"  Assets:Cash\n",
			expected: doc(
				ast.NewTransaction(ast.MustDate(2018, 10, 1), "Buy",
					ast.WithPostings(
						ast.NewPosting("Assets:Brokerage",
							ast.WithAmount(ast.NewAmount("10", "AAPL", ast.Right)),
							ast.WithLotPrice(usd("150.00"), false),
							ast.WithPrice(usd("155.00"), false),
						),
						ast.NewPosting("Assets:Brokerage",
							ast.WithAmount(ast.NewAmount("2", "AAPL", ast.Right)),
							ast.WithLotPrice(usd("300.00"), true),
							ast.WithPrice(usd("310.00"), true),
						),
						ast.NewPosting("Assets:Cash"),
					),
				),
			),
		},
		{
			name: "BalanceAssertions",
			ledger: "2018-10-01 Check\n" +
				"  Assets:Checking  $100.00 = $1,250.00\n" +
				"  Assets:Savings  = 0\n" +
				"  Income:Salary\n",
			expected: doc(
				ast.NewTransaction(ast.MustDate(2018, 10, 1), "Check",
					ast.WithPostings(
						ast.NewPosting("Assets:Checking",
							ast.WithAmount(usd("100.00")),
							ast.WithBalance(ast.AmountBalance{Amount: usd("1250.00")}),
						),
						ast.NewPosting("Assets:Savings", ast.WithBalance(ast.ZeroBalance{})),
						ast.NewPosting("Income:Salary"),
					),
				),
			),
		},
		{
			name: "Comments",
			ledger: "2018-10-01=2018-10-14 ! (123) Marek Ogarek ; Comment Line 3\n" +
				"; Comment Line 4\n" +
				"; Comment Line 5\n" +
				" TEST:ABC 123  $1.20; Posting comment line 1\n" +
				" ; Posting comment line 2\n" +
				" TEST:ABC 123  $1.20 = $2.40\n",
			expected: doc(
				ast.NewTransaction(ast.MustDate(2018, 10, 1), "Marek Ogarek",
					ast.WithEffectiveDate(ast.MustDate(2018, 10, 14)),
					ast.WithStatus(ast.Pending),
					ast.WithCode("123"),
					ast.WithComment("Comment Line 3\nComment Line 4\nComment Line 5"),
					ast.WithPostings(
						ast.NewPosting("TEST:ABC 123",
							ast.WithAmount(usd("1.20")),
							ast.WithPostingComment("Posting comment line 1\nPosting comment line 2"),
						),
						ast.NewPosting("TEST:ABC 123",
							ast.WithAmount(usd("1.20")),
							ast.WithBalance(ast.AmountBalance{Amount: usd("2.40")}),
						),
					),
				),
			),
		},
		{
			name: "PostingStatus",
			ledger: "2018-10-01 Test\n" +
				" ! TEST:ABC 123 ;test\n" +
				" * TEST:DEF  $1\n",
			expected: doc(
				ast.NewTransaction(ast.MustDate(2018, 10, 1), "Test",
					ast.WithPostings(
						ast.NewPosting("TEST:ABC 123", ast.WithPostingStatus(ast.Pending), ast.WithPostingComment("test")),
						ast.NewPosting("TEST:DEF", ast.WithPostingStatus(ast.Cleared), ast.WithAmount(usd("1"))),
					),
				),
			),
		},
		{
			name: "CommodityPrice",
			ledger: "P 2017-11-12 12:00:00 mBH 5.00 PLN\n" +
				"P 2017-11-13 \"Frequent Flyer\" $0.01 ; dropped\n",
			expected: doc(
				ast.NewCommodityPrice(time.Date(2017, 11, 12, 12, 0, 0, 0, time.UTC), "mBH", ast.NewAmount("5.00", "PLN", ast.Right)),
				ast.NewCommodityPrice(time.Date(2017, 11, 13, 0, 0, 0, 0, time.UTC), "Frequent Flyer", usd("0.01")),
			),
		},
		{
			name:     "Include",
			ledger:   "include other_file.ledger\ninclude   2018/*.ledger  \n",
			expected: doc(ast.NewInclude("other_file.ledger"), ast.NewInclude("2018/*.ledger")),
		},
		{
			name:   "LineCommentsAreNotTagParsed",
			ledger: "; :not:a:tag:\n# hash\n%percent\n| pipe\n* star  \n",
			expected: doc(
				ast.NewLineComment(":not:a:tag:"),
				ast.NewLineComment("hash"),
				ast.NewLineComment("percent"),
				ast.NewLineComment("pipe"),
				ast.NewLineComment("star"),
			),
		},
		{
			name: "CommentMarkersAfterPosting",
			ledger: "2018-10-01 Shop\n" +
				"# header note\n" +
				"  A  $1\n" +
				"  B\n" +
				"# hash\n" +
				"  % percent\n" +
				"| pipe\n" +
				"* star\n",
			expected: doc(
				ast.NewTransaction(ast.MustDate(2018, 10, 1), "Shop",
					ast.WithComment("header note"),
					ast.WithPostings(
						ast.NewPosting("A", ast.WithAmount(usd("1"))),
						ast.NewPosting("B", ast.WithPostingComment("hash\npercent\npipe")),
					),
				),
				ast.NewLineComment("star"),
			),
		},
		{
			name:   "TagListWithProse",
			ledger: "2018-10-01 Shop\n  ; :t: Note: x\n  ; [2018-01-05] :u:\n  A  $1\n  B\n",
			expected: doc(
				ast.NewTransaction(ast.MustDate(2018, 10, 1), "Shop",
					ast.WithComment("Note: x\n[2018-01-05]"),
					ast.WithTags(ast.NewTag("t"), ast.NewTag("u")),
					ast.WithPostings(
						ast.NewPosting("A", ast.WithAmount(usd("1"))),
						ast.NewPosting("B"),
					),
				),
			),
		},
		{
			name:     "EmptyInput",
			ledger:   "",
			expected: doc(),
		},
		{
			name:     "WhitespaceOnly",
			ledger:   "\n   \n\t",
			expected: doc(&ast.EmptyLine{}, &ast.EmptyLine{}, &ast.EmptyLine{}),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual := parseDoc(t, test.ledger)
			if len(test.expected.Items) == 0 {
				assert.Equal(t, 0, len(actual.Items))
				return
			}
			assert.Equal(t, test.expected, actual)
		})
	}
}

func TestParseMetadata(t *testing.T) {
	src := "2018-10-01 Shop ; inline\n" +
		"  ; :groceries:weekly:\n" +
		"  ; Payee: Corner Shop\n" +
		"  ; Receipt:: 42\n" +
		"  ; Rate:: 1.5\n" +
		"  ; Due:: [2018-10-30]\n" +
		"  ; [2018-10-02=2018-10-05]\n" +
		"  ; bought :food: some bread\n" +
		"  Expenses:Food  $12.40\n" +
		"    ; [=2018-10-07]\n" +
		"    ; Note: see receipt\n" +
		"  Assets:Cash\n"

	actual := parseDoc(t, src)
	assert.Equal(t, 1, len(actual.Items))
	txn := actual.Items[0].(*ast.Transaction)

	assert.Equal(t, "Shop", txn.Description)
	assert.Equal(t, "inline\nbought some bread", txn.Comment)
	assert.Equal(t, []ast.Tag{
		ast.NewTag("groceries"),
		ast.NewTag("weekly"),
		ast.NewValueTag("Payee", ast.StringValue("Corner Shop")),
		ast.NewValueTag("Receipt", ast.IntegerValue(42)),
		ast.NewValueTag("Rate", ast.FloatValue(1.5)),
		ast.NewValueTag("Due", ast.DateValue{Date: ast.MustDate(2018, 10, 30)}),
		ast.NewTag("food"),
	}, txn.Metadata.Tags)

	d := ast.MustDate(2018, 10, 2)
	e := ast.MustDate(2018, 10, 5)
	assert.Equal(t, &d, txn.Metadata.Date)
	assert.Equal(t, &e, txn.Metadata.EffectiveDate)

	food := txn.Postings[0]
	assert.Equal(t, (*ast.Date)(nil), food.Metadata.Date)
	assert.Equal(t, "2018-10-07", food.Metadata.EffectiveDate.String())
	assert.Equal(t, []ast.Tag{ast.NewValueTag("Note", ast.StringValue("see receipt"))}, food.Metadata.Tags)
	assert.Equal(t, "", food.Comment)
}

func TestParseMetadataOverrides(t *testing.T) {
	src := "2018-10-01 Shop\n" +
		"  ; [2018-10-02]\n" +
		"  ; [2018-10-03]\n" +
		"  ; Count:: -7\n" +
		"  ; Big:: 1e3\n" +
		"  ; Odd:: not a number\n" +
		"  A  $1\n" +
		"  B\n"

	txn := parseDoc(t, src).Items[0].(*ast.Transaction)
	assert.Equal(t, "2018-10-03", txn.Metadata.Date.String())
	assert.Equal(t, []ast.Tag{
		ast.NewValueTag("Count", ast.IntegerValue(-7)),
		ast.NewValueTag("Big", ast.FloatValue(1000)),
	}, txn.Metadata.Tags)
	assert.Equal(t, "Odd:: not a number", txn.Comment)
}

func TestParseDocumentItems(t *testing.T) {
	src := `; Example 1

include other_file.ledger

P 2017-11-12 12:00:00 mBH 5.00 PLN

; Comment
2018-10-01=2018-10-14 ! (123) Marek Ogarek
 TEST:ABC 123  $1.20
 TEST:ABC 123  $1.20

2018-10-01=2018-10-14 ! (123) Marek Ogarek
 TEST:ABC 123  $1.20
 TEST:ABC 123  $1.20
`
	actual, err := ParseString(context.Background(), src)
	assert.NoError(t, err)
	assert.Equal(t, 10, len(actual.Items))

	kinds := []string{}
	for _, item := range actual.Items {
		switch item.(type) {
		case *ast.EmptyLine:
			kinds = append(kinds, "empty")
		case *ast.LineComment:
			kinds = append(kinds, "comment")
		case *ast.Transaction:
			kinds = append(kinds, "transaction")
		case *ast.CommodityPrice:
			kinds = append(kinds, "price")
		case *ast.Include:
			kinds = append(kinds, "include")
		}
	}
	assert.Equal(t, []string{
		"comment", "empty", "include", "empty", "price",
		"empty", "comment", "transaction", "empty", "transaction",
	}, kinds)

	assert.Equal(t, 8, actual.Items[7].Position().Line)
	assert.Equal(t, 1, actual.Items[7].Position().Column)
	assert.Equal(t, 12, actual.Items[9].Position().Line)
}

func TestParseLineEndings(t *testing.T) {
	lf := parseDoc(t, "2018-10-01 Shop\n  A  $1\n  B\n")
	crlf := parseDoc(t, "2018-10-01 Shop\r\n  A  $1\r\n  B\r\n")
	bom := parseDoc(t, "\uFEFF2018-10-01 Shop\n  A  $1\n  B")
	assert.Equal(t, lf, crlf)
	assert.Equal(t, lf, bom)
}

func TestParsePositions(t *testing.T) {
	src := "; header\n\n2018-10-01 Shop\n  Expenses:Food  $1\n  Assets:Cash\n"
	actual, err := ParseBytesWithFilename(context.Background(), "main.ledger", []byte(src))
	assert.NoError(t, err)

	txn := actual.Items[2].(*ast.Transaction)
	assert.Equal(t, ast.Position{Filename: "main.ledger", Offset: 10, Line: 3, Column: 1}, txn.Pos)
	assert.Equal(t, ast.Position{Filename: "main.ledger", Offset: 28, Line: 4, Column: 3}, txn.Postings[0].Pos)
	assert.Equal(t, 5, txn.Postings[1].Pos.Line)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		ledger string
		err    error
		kind   ErrorKind
		line   int
		column int
	}{
		{
			name:   "NoItemMatched",
			ledger: "wrong input",
			err:    ErrNoItemMatched,
			kind:   TrailingInputError,
			line:   1,
			column: 1,
		},
		{
			name:   "TrailingInputAfterItems",
			ledger: "; fine\n\nwrong input\n",
			err:    ErrNoItemMatched,
			kind:   TrailingInputError,
			line:   3,
			column: 1,
		},
		{
			name:   "InvalidDate",
			ledger: "2017-13-24 Shop\n  A  $1\n  B\n",
			err:    ErrInvalidDate,
			kind:   SemanticError,
			line:   1,
			column: 1,
		},
		{
			name:   "InvalidEffectiveDate",
			ledger: "2017-03-24=2017-02-30 Shop\n  A  $1\n  B\n",
			err:    ErrInvalidDate,
			kind:   SemanticError,
			line:   1,
			column: 12,
		},
		{
			name:   "InvalidPriceTime",
			ledger: "P 2017-03-24 25:11:22 mBH 5.00 PLN\n",
			err:    ErrInvalidDate,
			kind:   SemanticError,
			line:   1,
			column: 3,
		},
		{
			name:   "InvalidMetadataDate",
			ledger: "2017-03-24 Shop\n  ; [2017-02-30]\n  A  $1\n  B\n",
			err:    ErrInvalidDate,
			kind:   SemanticError,
			line:   2,
			column: 6,
		},
		{
			name:   "MoreThanOneElidedPosting",
			ledger: "2018-10-01 Shop\n  A  $1\n  B\n  C\n",
			err:    ErrMoreThanOneElidedPosting,
			kind:   SemanticError,
			line:   4,
			column: 3,
		},
		{
			name:   "NoPostingWithAmount",
			ledger: "2018-10-01 Shop\n TEST:ABC 123   ; test\n",
			err:    ErrNoPostingWithAmount,
			kind:   SemanticError,
			line:   2,
			column: 2,
		},
		{
			name:   "UnterminatedQuote",
			ledger: "P 2017-11-12 \"mBH 5.00 PLN\n",
			err:    ErrUnterminatedQuote,
			kind:   SyntaxError,
			line:   1,
			column: 14,
		},
		{
			name:   "MalformedDecimal",
			ledger: "2018-10-01 Shop\n  A  $1.\n  B\n",
			err:    ErrMalformedDecimal,
			kind:   SyntaxError,
			line:   2,
			column: 9,
		},
		{
			name:   "EmptyIncludePath",
			ledger: "include   \n",
			err:    ErrEmptyIncludePath,
			kind:   SemanticError,
			line:   1,
			column: 8,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual, err := ParseString(context.Background(), test.ledger)
			assert.Error(t, err)
			assert.Zero(t, actual)
			assert.True(t, errors.Is(err, test.err), "expected %v, got %v", test.err, err)

			var perr *ParseError
			assert.True(t, errors.As(err, &perr))
			assert.Equal(t, test.kind, perr.Kind)
			assert.Equal(t, test.line, perr.Pos.Line)
			assert.Equal(t, test.column, perr.Pos.Column)
			assert.Equal(t, test.ledger, perr.GetSource())
		})
	}
}

func TestParseErrorExplainsAlternatives(t *testing.T) {
	_, err := ParseString(context.Background(), "wrong input")

	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, []string{"empty line", "comment", "transaction", "commodity price", "include"}, perr.Expected)
	assert.Equal(t, []string{"item"}, perr.Trail)
	assert.Equal(t, "wrong input", perr.Remaining())
	assert.Equal(t, ast.Span{Start: 0, End: 11}, perr.Span)
	assert.Equal(t,
		"line 1, column 1: no item matched: expected empty line, comment, transaction, commodity price or include (in item)",
		perr.Error())
}

func TestParseErrorTrail(t *testing.T) {
	_, err := ParseString(context.Background(), "2018-10-01 Shop\n  A  $1.\n  B\n")

	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, []string{"transaction", "posting", "amount"}, perr.Trail)
	assert.Equal(t, "\n  B\n", perr.Remaining())
	assert.Equal(t, "", perr.RemainingLine())
	assert.Equal(t, ast.Span{Start: 24, End: 29}, perr.Span)
}

func TestParseTransactionWithoutPostings(t *testing.T) {
	_, err := ParseString(context.Background(), "2018-10-01 Shop\n\n")

	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, SyntaxError, perr.Kind)
	assert.Equal(t, []string{"posting"}, perr.Expected)
	assert.Equal(t, 2, perr.Pos.Line)
}
