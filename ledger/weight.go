package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

// weight is the contribution of an amount to the balance of a transaction.
type weight struct {
	Quantity  decimal.Decimal
	Commodity ast.Commodity
}

// calculateWeight returns what a posting amount contributes to the balance.
// A lot price takes precedence over a price: both express what the amount
// was exchanged for, and only one of them can balance the transaction.
//
//	10 AAPL {$150}     -> $1500
//	10 AAPL {{$1500}}  -> $1500
//	-10 AAPL @ $155    -> $-1550
//	-10 AAPL @@ $1550  -> $-1550
//	$20                -> $20
func calculateWeight(pa *ast.PostingAmount) weight {
	qty := pa.Amount.Quantity

	price := pa.LotPrice
	if price == nil {
		price = pa.Price
	}
	if price == nil {
		return weight{Quantity: qty, Commodity: pa.Amount.Commodity}
	}

	w := weight{Commodity: price.Amount.Commodity}
	if price.Total {
		w.Quantity = price.Amount.Quantity.Abs()
		if qty.IsNegative() {
			w.Quantity = w.Quantity.Neg()
		}
	} else {
		w.Quantity = qty.Mul(price.Amount.Quantity)
	}
	return w
}

// balanceGroup sums the weights of the postings that have to balance
// together. Real and balanced virtual postings each form their own group.
type balanceGroup struct {
	reality ast.Reality
	sums    map[string]decimal.Decimal
	// commodities remembers how each commodity was first written
	commodities map[string]ast.Commodity
	// written collects the quantities as they appear in the journal, per
	// commodity, to infer the tolerance from their precision
	written map[string][]decimal.Decimal
	elided  *ast.Posting
}

func newBalanceGroup(reality ast.Reality) *balanceGroup {
	return &balanceGroup{
		reality:     reality,
		sums:        getBalanceMap(),
		commodities: make(map[string]ast.Commodity),
		written:     make(map[string][]decimal.Decimal),
	}
}

// release returns the pooled sums; the group must not be used afterwards.
func (g *balanceGroup) release() {
	putBalanceMap(g.sums)
	g.sums = nil
}

func (g *balanceGroup) add(w weight) {
	name := w.Commodity.Name
	if _, ok := g.commodities[name]; !ok {
		g.commodities[name] = w.Commodity
	}
	g.sums[name] = g.sums[name].Add(w.Quantity)
}

// note records a written quantity for tolerance inference.
func (g *balanceGroup) note(a ast.Amount) {
	g.written[a.Commodity.Name] = append(g.written[a.Commodity.Name], a.Quantity)
}

// addPostingAmount adds the weight of a posting amount and notes every
// quantity written on it.
func (g *balanceGroup) addPostingAmount(pa *ast.PostingAmount) {
	g.add(calculateWeight(pa))
	g.note(pa.Amount)
	if pa.LotPrice != nil {
		g.note(pa.LotPrice.Amount)
	}
	if pa.Price != nil {
		g.note(pa.Price.Amount)
	}
}

// residuals returns the non-zero sums ordered by commodity name.
func (g *balanceGroup) residuals() []ast.Amount {
	var amounts []ast.Amount
	for name, sum := range g.sums {
		if sum.IsZero() {
			continue
		}
		amounts = append(amounts, ast.Amount{Quantity: sum, Commodity: g.commodities[name]})
	}
	slices.SortFunc(amounts, func(a, b ast.Amount) int {
		return strings.Compare(a.Commodity.Name, b.Commodity.Name)
	})
	return amounts
}

// unbalanced returns the residuals that exceed the tolerance of their commodity.
func (g *balanceGroup) unbalanced(config *ToleranceConfig) []ast.Amount {
	var out []ast.Amount
	for _, r := range g.residuals() {
		tolerance := InferTolerance(g.written[r.Commodity.Name], r.Commodity.Name, config)
		if !AmountEqual(r.Quantity, decimal.Zero, tolerance) {
			out = append(out, r)
		}
	}
	return out
}
