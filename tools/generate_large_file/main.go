// Command generate_large_file writes a large, valid ledger journal for
// benchmarking and profiling the parser, ledger and formatter.
//
// Usage:
//
//	go run ./tools/generate_large_file > large.ledger
//	go run ./tools/generate_large_file --size=20000000 --seed=7 > large.ledger
package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/formatter"
)

var (
	expenses = []string{
		"Expenses:Food:Groceries",
		"Expenses:Food:Restaurant",
		"Expenses:Housing:Rent",
		"Expenses:Housing:Utilities",
		"Expenses:Transport:Fuel",
		"Expenses:Transport:Transit",
		"Expenses:Shopping:Clothing",
		"Expenses:Shopping:Electronics",
		"Expenses:Entertainment",
		"Expenses:Healthcare",
	}

	funding = []string{
		"Assets:Bank:Checking",
		"Assets:Cash",
		"Liabilities:CreditCard",
	}

	payees = []string{
		"Corner Shop", "Farmers Market", "Landlord", "Power Company",
		"Fuel Station", "City Transit", "Bookshop", "Pharmacy",
		"Cinema", "Hardware Store", "Bakery", "Café Central",
	}

	tags = []string{"personal", "business", "vacation", "reimbursable"}

	stocks = []string{"AAPL", "MSFT", "VTI", "VXUS"}
)

var cli struct {
	Size int64 `help:"Approximate size of the journal in bytes." default:"10485760"`
	Seed int64 `help:"Seed for the random generator, for reproducible journals." default:"1"`
}

func main() {
	kong.Parse(&cli, kong.Description("Generate a large ledger journal on stdout."))

	w := bufio.NewWriter(os.Stdout)
	g := &generator{
		rnd:       rand.New(rand.NewSource(cli.Seed)),
		formatter: formatter.New(),
		out:       &countingWriter{w: w},
	}
	if err := g.run(cli.Size); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "wrote %d bytes, %d transactions\n", g.out.n, g.transactions)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type generator struct {
	rnd          *rand.Rand
	formatter    *formatter.Formatter
	out          *countingWriter
	transactions int
}

func (g *generator) run(size int64) error {
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := g.write(ast.NewLineComment("Generated journal")); err != nil {
		return err
	}
	if err := g.write(g.opening(date)); err != nil {
		return err
	}

	for g.out.n < size {
		var item ast.Item
		switch g.rnd.Intn(10) {
		case 0, 1, 2, 3:
			item = g.purchase(date)
		case 4, 5:
			item = g.split(date)
		case 6:
			item = g.trade(date)
		case 7:
			item = g.budgeted(date)
		case 8:
			item = g.price(date)
		default:
			item = g.foreign(date)
		}
		if err := g.write(item); err != nil {
			return err
		}
		if g.rnd.Intn(3) == 0 {
			date = date.AddDate(0, 0, 1)
		}
	}
	return nil
}

func (g *generator) write(item ast.Item) error {
	if _, ok := item.(*ast.Transaction); ok {
		g.transactions++
	}
	if err := g.formatter.FormatItem(item, g.out); err != nil {
		return err
	}
	return g.formatter.FormatItem(&ast.EmptyLine{}, g.out)
}

func (g *generator) pick(from []string) string {
	return from[g.rnd.Intn(len(from))]
}

// dollars returns a random dollar amount of at least 1.00 and below limit+1.
func (g *generator) dollars(limit int) ast.Amount {
	cents := int64(100 + g.rnd.Intn(limit*100))
	return ast.Amount{
		Quantity:  decimal.New(cents, -2),
		Commodity: ast.Commodity{Name: "$", Position: ast.Left},
	}
}

func day(t time.Time) ast.Date {
	return ast.MustDate(t.Year(), int(t.Month()), t.Day())
}

func (g *generator) opening(t time.Time) *ast.Transaction {
	return ast.NewTransaction(day(t), "Opening balances",
		ast.WithStatus(ast.Cleared),
		ast.WithPostings(
			ast.NewPosting("Assets:Bank:Checking", ast.WithAmount(ast.NewAmount("25000.00", "$", ast.Left))),
			ast.NewPosting("Assets:Cash", ast.WithAmount(ast.NewAmount("500.00", "$", ast.Left))),
			ast.NewPosting("Equity:Opening-Balances"),
		),
	)
}

func (g *generator) purchase(t time.Time) *ast.Transaction {
	opts := []ast.TransactionOption{
		ast.WithPostings(
			ast.NewPosting(g.pick(expenses), ast.WithAmount(g.dollars(200))),
			ast.NewPosting(g.pick(funding)),
		),
	}
	if g.rnd.Intn(2) == 0 {
		opts = append(opts, ast.WithStatus(ast.Cleared))
	}
	if g.rnd.Intn(4) == 0 {
		opts = append(opts, ast.WithTags(ast.NewTag(g.pick(tags))))
	}
	if g.rnd.Intn(5) == 0 {
		opts = append(opts, ast.WithCode(fmt.Sprintf("%d", 1000+g.rnd.Intn(9000))))
	}
	return ast.NewTransaction(day(t), g.pick(payees), opts...)
}

func (g *generator) split(t time.Time) *ast.Transaction {
	n := 2 + g.rnd.Intn(3)
	postings := make([]*ast.Posting, 0, n+1)
	for i := range n {
		postings = append(postings, ast.NewPosting(g.pick(expenses),
			ast.WithAmount(g.dollars(80)),
			ast.WithPostingComment(fmt.Sprintf("item %d", i+1)),
		))
	}
	postings = append(postings, ast.NewPosting(g.pick(funding)))

	return ast.NewTransaction(day(t), g.pick(payees),
		ast.WithComment("split purchase"),
		ast.WithPostings(postings...),
	)
}

func (g *generator) trade(t time.Time) *ast.Transaction {
	shares := decimal.NewFromInt(int64(1 + g.rnd.Intn(20)))
	cost := g.dollars(400)
	return ast.NewTransaction(day(t), "Brokerage",
		ast.WithStatus(ast.Cleared),
		ast.WithPostings(
			ast.NewPosting("Assets:Brokerage",
				ast.WithAmount(ast.Amount{Quantity: shares, Commodity: ast.Commodity{Name: g.pick(stocks), Position: ast.Right}}),
				ast.WithLotPrice(cost, false),
			),
			ast.NewPosting("Assets:Bank:Checking"),
		),
	)
}

func (g *generator) budgeted(t time.Time) *ast.Transaction {
	amount := g.dollars(100)
	negated := amount
	negated.Quantity = amount.Quantity.Neg()
	return ast.NewTransaction(day(t), g.pick(payees),
		ast.WithPostings(
			ast.NewPosting("Expenses:Food:Groceries", ast.WithAmount(amount)),
			ast.NewPosting("Assets:Cash", ast.WithAmount(negated)),
			ast.NewPosting("Budget:Food", ast.WithReality(ast.BalancedVirtual), ast.WithAmount(negated)),
			ast.NewPosting("Budget:Available", ast.WithReality(ast.BalancedVirtual)),
			ast.NewPosting("Tracking:Visits", ast.WithReality(ast.UnbalancedVirtual), ast.WithAmount(ast.NewAmount("1", "visit", ast.Right))),
		),
	)
}

func (g *generator) price(t time.Time) *ast.CommodityPrice {
	at := t.Add(time.Duration(9+g.rnd.Intn(8)) * time.Hour)
	return ast.NewCommodityPrice(at, g.pick(stocks), g.dollars(400))
}

func (g *generator) foreign(t time.Time) *ast.Transaction {
	eur := ast.Amount{
		Quantity:  decimal.New(int64(500+g.rnd.Intn(20000)), -2),
		Commodity: ast.Commodity{Name: "EUR", Position: ast.Right},
	}
	return ast.NewTransaction(day(t), "Travel",
		ast.WithTags(ast.NewTag("vacation")),
		ast.WithPostings(
			ast.NewPosting("Expenses:Travel",
				ast.WithAmount(eur),
				ast.WithPrice(ast.NewAmount("1.08", "$", ast.Left), false),
			),
			ast.NewPosting("Liabilities:CreditCard"),
		),
	)
}
