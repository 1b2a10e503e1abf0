package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

// PriceHistory keeps every known exchange rate between two commodities over
// time. Lookups use the most recent rate at or before the requested instant.
//
// Rates are stored in both directions: recording mBH in PLN also answers PLN
// in mBH with the inverse rate. A commodity always converts to itself at 1.
type PriceHistory struct {
	// rates maps from commodity -> to commodity -> observations sorted by time
	rates map[string]map[string][]rateAt
}

type rateAt struct {
	at   time.Time
	rate decimal.Decimal
}

// NewPriceHistory creates an empty price history.
func NewPriceHistory() *PriceHistory {
	return &PriceHistory{rates: make(map[string]map[string][]rateAt)}
}

// AddPrice records that one unit of commodity was worth price at the given
// instant. A later record for the same instant replaces the earlier one.
// Zero prices are rejected with an error.
//
// Example: AddPrice(t, "mBH", 5.00 PLN) records
//
//	mBH → PLN: 5.00
//	PLN → mBH: 0.2
func (ph *PriceHistory) AddPrice(at time.Time, commodity string, price ast.Amount) error {
	if price.Quantity.IsZero() {
		return fmt.Errorf("price of %s must be non-zero at %s", commodity, at.Format(time.DateTime))
	}
	if commodity == price.Commodity.Name {
		return nil
	}

	ph.add(at, commodity, price.Commodity.Name, price.Quantity)
	ph.add(at, price.Commodity.Name, commodity, decimal.NewFromInt(1).Div(price.Quantity))
	return nil
}

func (ph *PriceHistory) add(at time.Time, from, to string, rate decimal.Decimal) {
	if ph.rates[from] == nil {
		ph.rates[from] = make(map[string][]rateAt)
	}

	series := ph.rates[from][to]
	i, found := slices.BinarySearchFunc(series, at, func(r rateAt, t time.Time) int {
		return r.at.Compare(t)
	})
	if found {
		series[i].rate = rate
		return
	}
	ph.rates[from][to] = slices.Insert(series, i, rateAt{at: at, rate: rate})
}

// PriceAt returns how many units of to one unit of from was worth at the
// given instant, using the most recent rate at or before it. Reports false
// when no such rate exists.
func (ph *PriceHistory) PriceAt(at time.Time, from, to string) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}

	series := ph.rates[from][to]
	i, found := slices.BinarySearchFunc(series, at, func(r rateAt, t time.Time) int {
		return r.at.Compare(t)
	})
	if found {
		return series[i].rate, true
	}
	if i == 0 {
		return decimal.Zero, false
	}
	return series[i-1].rate, true
}

// Convert values an amount in another commodity at the given instant.
func (ph *PriceHistory) Convert(at time.Time, amount ast.Amount, to ast.Commodity) (ast.Amount, bool) {
	rate, ok := ph.PriceAt(at, amount.Commodity.Name, to.Name)
	if !ok {
		return ast.Amount{}, false
	}
	return ast.Amount{Quantity: amount.Quantity.Mul(rate), Commodity: to}, true
}

// Commodities returns every commodity that has a price, sorted by name.
func (ph *PriceHistory) Commodities() []string {
	names := make([]string, 0, len(ph.rates))
	for name := range ph.rates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of recorded observations, counting both directions.
func (ph *PriceHistory) Len() int {
	n := 0
	for _, to := range ph.rates {
		for _, series := range to {
			n += len(series)
		}
	}
	return n
}

// unitPrice returns the price of one unit of a posting amount, dividing total
// prices by the quantity.
func unitPrice(pa *ast.PostingAmount) (ast.Amount, bool) {
	if pa.Price == nil || pa.Amount.Quantity.IsZero() {
		return ast.Amount{}, false
	}
	price := pa.Price.Amount
	if pa.Price.Total {
		price.Quantity = price.Quantity.Div(pa.Amount.Quantity.Abs())
	}
	return price, true
}
