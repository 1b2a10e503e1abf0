package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2017-03-24", "2017/03/24", "2017.03.24", "2017-03/24"} {
		t.Run(s, func(t *testing.T) {
			d, err := ParseDate(s)
			assert.NoError(t, err)
			assert.Equal(t, ast.MustDate(2017, 3, 24), d)
		})
	}

	_, err := ParseDate("2017-13-24")
	assert.True(t, errors.Is(err, ErrInvalidDate))

	_, err = ParseDate("2017-3-24")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidDate))
}

func TestParseDateTime(t *testing.T) {
	dt, err := ParseDateTime("2017-03-24 17:15:23")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2017, 3, 24, 17, 15, 23, 0, time.UTC), dt)

	dt, err = ParseDateTime("2017-03-24")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2017, 3, 24, 0, 0, 0, 0, time.UTC), dt)

	for _, s := range []string{"2017-13-24 22:11:22", "2017-03-24 25:11:22", "2017-03-24 12:60:00"} {
		_, err := ParseDateTime(s)
		assert.True(t, errors.Is(err, ErrInvalidDate), "%s: %v", s, err)

		var perr *ParseError
		assert.True(t, errors.As(err, &perr))
		assert.Equal(t, SemanticError, perr.Kind)
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1000", "1000"},
		{"2.02", "2.02"},
		{"-12.13", "-12.13"},
		{"0.1", "0.1"},
		{"3", "3"},
		{"1,000", "1000"},
		{"12,456,132.14", "12456132.14"},
		{"1.20", "1.20"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			q, err := ParseQuantity(test.input)
			assert.NoError(t, err)
			assert.Equal(t, test.expected, ast.FormatQuantity(q))
		})
	}

	for _, s := range []string{"-", "1.", "-.5"} {
		t.Run("Malformed"+s, func(t *testing.T) {
			_, err := ParseQuantity(s)
			assert.True(t, errors.Is(err, ErrMalformedDecimal), "%v", err)
		})
	}
}

func TestCommodity(t *testing.T) {
	tests := []struct {
		input string
		name  string
		rest  string
	}{
		{`"ABC 123"`, "ABC 123", ""},
		{`"say \"hi\""`, `say "hi"`, ""},
		{"ABC ", "ABC", " "},
		{"$1", "$", "1"},
		{"€1", "€", "1"},
		{"€ ", "€", " "},
		{"€-1", "€", "-1"},
		{"mBH;x", "mBH", ";x"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			name, rest, err := commodity(newInput("", test.input))
			assert.NoError(t, err)
			assert.Equal(t, test.name, name)
			assert.Equal(t, test.rest, rest.rest())
		})
	}

	_, err := ParseCommodity(`"open`)
	assert.True(t, errors.Is(err, ErrUnterminatedQuote))

	_, err = ParseCommodity(`""`)
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected ast.Amount
	}{
		{"$1.20", ast.NewAmount("1.20", "$", ast.Left)},
		{"$-1.20", ast.NewAmount("-1.20", "$", ast.Left)},
		{"-$1.20", ast.NewAmount("-1.20", "$", ast.Left)},
		{"- $ 1.20", ast.NewAmount("-1.20", "$", ast.Left)},
		{"1.20USD", ast.NewAmount("1.20", "USD", ast.Right)},
		{"-1.20 USD", ast.NewAmount("-1.20", "USD", ast.Right)},
		{`5 "Frequent Flyer Miles"`, ast.NewAmount("5", "Frequent Flyer Miles", ast.Right)},
		{"€1,000.00", ast.NewAmount("1000.00", "€", ast.Left)},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			actual, err := ParseAmount(test.input)
			assert.NoError(t, err)
			assert.Equal(t, test.expected, actual)
		})
	}
}

func TestBalance(t *testing.T) {
	b, rest, err := balance(newInput("", "$1.20"))
	assert.NoError(t, err)
	assert.Equal(t, ast.Balance(ast.AmountBalance{Amount: ast.NewAmount("1.20", "$", ast.Left)}), b)
	assert.True(t, rest.atEnd())

	b, _, err = balance(newInput("", "0 PLN"))
	assert.NoError(t, err)
	assert.Equal(t, ast.Balance(ast.AmountBalance{Amount: ast.NewAmount("0", "PLN", ast.Right)}), b)

	b, _, err = balance(newInput("", "0"))
	assert.NoError(t, err)
	assert.Equal(t, ast.Balance(ast.ZeroBalance{}), b)
}

func TestAccountName(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		reality ast.Reality
		rest    string
	}{
		{"TEST:ABC 123  ", "TEST:ABC 123", ast.Real, "  "},
		{"TEST:ABC 123\t$1", "TEST:ABC 123", ast.Real, "\t$1"},
		{"TEST:ABC 123", "TEST:ABC 123", ast.Real, ""},
		{"TEST:ABC 123 \n", "TEST:ABC 123", ast.Real, " \n"},
		{"TEST:ABC 123 ;note", "TEST:ABC 123", ast.Real, " ;note"},
		{"[TEST:ABC 123]", "TEST:ABC 123", ast.BalancedVirtual, ""},
		{"(TEST:ABC 123)  $1", "TEST:ABC 123", ast.UnbalancedVirtual, "  $1"},
		{"Assets:Cash $5", "Assets:Cash $5", ast.Real, ""},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			acct, rest, err := accountWithReality(newInput("", test.input))
			assert.NoError(t, err)
			assert.Equal(t, test.name, acct.name)
			assert.Equal(t, test.reality, acct.reality)
			assert.Equal(t, test.rest, rest.rest())
		})
	}

	for _, s := range []string{"", ";comment", "#comment", "%comment", "|comment", " Assets", "\n"} {
		_, _, err := accountName(newInput("", s))
		assert.Error(t, err)
	}
}

func TestParseAccount(t *testing.T) {
	name, reality, err := ParseAccount("[Assets:Cash]")
	assert.NoError(t, err)
	assert.Equal(t, "Assets:Cash", name)
	assert.Equal(t, ast.BalancedVirtual, reality)

	name, reality, err = ParseAccount("(Assets:Cash)")
	assert.NoError(t, err)
	assert.Equal(t, "Assets:Cash", name)
	assert.Equal(t, ast.UnbalancedVirtual, reality)

	name, reality, err = ParseAccount("Assets:Cash")
	assert.NoError(t, err)
	assert.Equal(t, "Assets:Cash", name)
	assert.Equal(t, ast.Real, reality)
}

func TestFurthestMergesExpectations(t *testing.T) {
	in := newInput("", "abc")
	merged := furthest(fail(in, "date"), fail(in, "comment"))
	assert.Equal(t, []string{"date", "comment"}, merged.expected)

	further := fail(in.advance(2), "digit")
	assert.Equal(t, further, furthest(fail(in, "date"), further))
}

func TestInputTracksLines(t *testing.T) {
	in := newInput("f.ledger", "ab\ncd\r\néf")
	in = in.advance(9)
	assert.Equal(t, ast.Position{Filename: "f.ledger", Offset: 9, Line: 3, Column: 2}, in.position())
	assert.Equal(t, "f", in.rest())
}
