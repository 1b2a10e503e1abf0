package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/formatter"
)

// Inventory holds the quantity of every commodity in an account. It remembers
// on which side each commodity was first written so amounts read back the way
// the journal writes them.
type Inventory struct {
	quantities map[string]decimal.Decimal
	positions  map[string]ast.CommodityPosition
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{
		quantities: make(map[string]decimal.Decimal),
		positions:  make(map[string]ast.CommodityPosition),
	}
}

// Add adds a (possibly negative) amount.
func (inv *Inventory) Add(amount ast.Amount) {
	name := amount.Commodity.Name
	if _, ok := inv.positions[name]; !ok {
		inv.positions[name] = amount.Commodity.Position
	}
	inv.quantities[name] = inv.quantities[name].Add(amount.Quantity)
}

// Get returns the quantity of a commodity, zero when it is not held.
func (inv *Inventory) Get(commodity string) decimal.Decimal {
	return inv.quantities[commodity]
}

// Amount returns the held quantity of a commodity as an amount.
func (inv *Inventory) Amount(commodity string) ast.Amount {
	return ast.Amount{
		Quantity:  inv.quantities[commodity],
		Commodity: ast.Commodity{Name: commodity, Position: inv.positions[commodity]},
	}
}

// Amounts returns every non-zero amount, ordered by commodity name.
func (inv *Inventory) Amounts() []ast.Amount {
	amounts := make([]ast.Amount, 0, len(inv.quantities))
	for name, q := range inv.quantities {
		if q.IsZero() {
			continue
		}
		amounts = append(amounts, inv.Amount(name))
	}
	slices.SortFunc(amounts, func(a, b ast.Amount) int {
		return strings.Compare(a.Commodity.Name, b.Commodity.Name)
	})
	return amounts
}

// IsEmpty reports whether every commodity nets to zero.
func (inv *Inventory) IsEmpty() bool {
	for _, q := range inv.quantities {
		if !q.IsZero() {
			return false
		}
	}
	return true
}

// Merge adds every amount of other to the inventory.
func (inv *Inventory) Merge(other *Inventory) {
	for name := range other.quantities {
		inv.Add(other.Amount(name))
	}
}

// Clone returns an independent copy.
func (inv *Inventory) Clone() *Inventory {
	c := NewInventory()
	c.Merge(inv)
	return c
}

// String renders the amounts separated by commas, or "0" when empty.
func (inv *Inventory) String() string {
	amounts := inv.Amounts()
	if len(amounts) == 0 {
		return "0"
	}
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		parts[i] = formatter.FormatAmount(a)
	}
	return strings.Join(parts, ", ")
}
