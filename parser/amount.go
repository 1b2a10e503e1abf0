package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

// malformed reports a quantity that started but could not be completed. The
// failure is not committed, so amount alternatives still get their turn.
func malformed(in input, expected string) *failure {
	f := fail(in, expected)
	f.cause = ErrMalformedDecimal
	f.message = "malformed decimal: expected " + expected
	return f
}

// groupedDigits reads 1 to 3 digits followed by one or more ",ddd" groups and
// returns the digits without separators.
func groupedDigits(in input) (string, input, error) {
	lead, next := in.takeWhile(isDigit)
	if lead == "" || len(lead) > 3 || next.peek() != ',' {
		return "", in, fail(in, "digit group")
	}

	var b strings.Builder
	b.WriteString(lead)
	groups := 0
	for next.peek() == ',' {
		group, after := next.advance(1).takeWhile(isDigit)
		if len(group) != 3 {
			break
		}
		b.WriteString(group)
		next = after
		groups++
	}
	if groups == 0 {
		return "", in, fail(in, "digit group")
	}
	return b.String(), next, nil
}

func plainDigits(in input) (string, input, error) {
	digits, next := in.takeWhile(isDigit)
	if digits == "" {
		return "", in, fail(in, "digit")
	}
	return digits, next, nil
}

var integerPart = alt(groupedDigits, plainDigits)

// quantity reads a signed decimal such as -1,234.50. Thousands grouping and a
// plain digit run are alternatives, tried in that order.
func quantity(in input) (decimal.Decimal, input, error) {
	next := in
	sign := ""
	if next.peek() == '-' {
		sign = "-"
		next = next.advance(1)
	}

	digits, next, err := integerPart(next)
	if err != nil {
		if sign != "" {
			return decimal.Decimal{}, in, malformed(next, "digit")
		}
		return decimal.Decimal{}, in, fail(in, "quantity")
	}

	fraction := ""
	if next.peek() == '.' {
		frac, after := next.advance(1).takeWhile(isDigit)
		if frac == "" {
			return decimal.Decimal{}, in, malformed(next.advance(1), "digit")
		}
		fraction = "." + frac
		next = after
	}

	q, err := decimal.NewFromString(sign + digits + fraction)
	if err != nil {
		return decimal.Decimal{}, in, malformed(in, "quantity")
	}
	return q, next, nil
}

func quotedCommodity(in input) (string, input, error) {
	if in.peek() != '"' {
		return "", in, fail(in, "quoted commodity")
	}

	var b strings.Builder
	next := in.advance(1)
	for {
		switch {
		case next.atEnd() || isLineEnd(next.peek()):
			return "", in, failWith(in, SyntaxError, ErrUnterminatedQuote, "unterminated quoted commodity")
		case next.hasPrefix(`\"`):
			b.WriteByte('"')
			next = next.advance(2)
		case next.peek() == '"':
			if b.Len() == 0 {
				return "", in, fail(in, "commodity")
			}
			return b.String(), next.advance(1), nil
		default:
			b.WriteByte(next.peek())
			next = next.advance(1)
		}
	}
}

func unquotedCommodity(in input) (string, input, error) {
	rest := in.rest()
	n := 0
	for n < len(rest) {
		r, size := utf8.DecodeRuneInString(rest[n:])
		if !ast.IsCommodityRune(r) {
			break
		}
		n += size
	}
	if n == 0 {
		return "", in, fail(in, "commodity")
	}
	return rest[:n], in.advance(n), nil
}

var commodity = alt(quotedCommodity, unquotedCommodity)

// leftAmount reads an amount with the commodity before the quantity: $1.20,
// -$1.20, $-1.20 or "- $ 1.20".
func leftAmount(in input) (ast.Amount, input, error) {
	next := in
	negative := next.peek() == '-'
	if negative {
		next = next.advance(1)
	}
	next = skipSpaces(next)

	name, next, err := commodity(next)
	if err != nil {
		return ast.Amount{}, in, err
	}
	next = skipSpaces(next)

	q, next, err := quantity(next)
	if err != nil {
		return ast.Amount{}, in, err
	}
	if negative {
		q = q.Neg()
	}

	return ast.Amount{
		Quantity:  q,
		Commodity: ast.Commodity{Name: name, Position: ast.Left},
	}, next, nil
}

// rightAmount reads an amount with the commodity after the quantity: 1.20 USD.
func rightAmount(in input) (ast.Amount, input, error) {
	q, next, err := quantity(in)
	if err != nil {
		return ast.Amount{}, in, err
	}
	next = skipSpaces(next)

	name, next, err := commodity(next)
	if err != nil {
		return ast.Amount{}, in, err
	}

	return ast.Amount{
		Quantity:  q,
		Commodity: ast.Commodity{Name: name, Position: ast.Right},
	}, next, nil
}

// amount tries the commodity-first form before the quantity-first one, since a
// leading "-" is ambiguous until the commodity has been seen.
var amount = labeled("amount", alt(leftAmount, rightAmount))

// bracketed reads open, an amount and close, with optional spaces inside.
func bracketed(open, close string, total bool) parseFunc[*ast.Price] {
	inner := cut(func(in input) (*ast.Price, input, error) {
		a, next, err := amount(skipSpaces(in))
		if err != nil {
			return nil, in, err
		}
		next = skipSpaces(next)
		if !next.hasPrefix(close) {
			return nil, in, fail(next, "'"+close+"'")
		}
		return &ast.Price{Amount: a, Total: total}, next.advance(len(close)), nil
	})
	return func(in input) (*ast.Price, input, error) {
		if !in.hasPrefix(open) {
			return nil, in, fail(in, "'"+open+"'")
		}
		return inner(in.advance(len(open)))
	}
}

// prefixed reads marker followed by an amount.
func prefixed(marker string, total bool) parseFunc[*ast.Price] {
	inner := cut(func(in input) (*ast.Price, input, error) {
		a, next, err := amount(skipSpaces(in))
		if err != nil {
			return nil, in, err
		}
		return &ast.Price{Amount: a, Total: total}, next, nil
	})
	return func(in input) (*ast.Price, input, error) {
		if !in.hasPrefix(marker) {
			return nil, in, fail(in, "'"+marker+"'")
		}
		return inner(in.advance(len(marker)))
	}
}

var (
	lotPrice = labeled("lot price", alt(bracketed("{{", "}}", true), bracketed("{", "}", false)))
	price    = labeled("price", alt(prefixed("@@", true), prefixed("@", false)))
)

// postingAmount reads an amount with its optional lot price and price.
func postingAmount(in input) (*ast.PostingAmount, input, error) {
	a, next, err := amount(in)
	if err != nil {
		return nil, in, err
	}
	pa := &ast.PostingAmount{Amount: a}

	lot, afterLot, err := optional(lotPrice)(skipSpaces(next))
	if err != nil {
		return nil, in, err
	}
	if lot != nil {
		pa.LotPrice = lot
		next = afterLot
	}

	p, afterPrice, err := optional(price)(skipSpaces(next))
	if err != nil {
		return nil, in, err
	}
	if p != nil {
		pa.Price = p
		next = afterPrice
	}

	return pa, next, nil
}

func zeroBalance(in input) (ast.Balance, input, error) {
	if in.peek() != '0' {
		return nil, in, fail(in, "'0'")
	}
	return ast.ZeroBalance{}, in.advance(1), nil
}

func amountBalance(in input) (ast.Balance, input, error) {
	a, next, err := amount(in)
	if err != nil {
		return nil, in, err
	}
	return ast.AmountBalance{Amount: a}, next, nil
}

// balance reads an amount, or a bare 0 asserting that nothing is held.
var balance = labeled("balance", alt(amountBalance, zeroBalance))
