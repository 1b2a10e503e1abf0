package ledger

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/formatter"
)

// Validation does not touch the ledger. It returns a delta describing the
// changes a transaction makes, and the ledger applies the delta only when
// validation found no errors.

// InventoryChange is a single change to an account's inventory.
type InventoryChange struct {
	Account string
	Amount  ast.Amount // Signed; negative amounts reduce the inventory
}

// String returns a human-readable representation of the inventory change
func (ic InventoryChange) String() string {
	return fmt.Sprintf("%s %s", ic.Account, formatter.FormatAmount(ic.Amount))
}

// TransactionDelta represents the mutations to be applied from a transaction.
type TransactionDelta struct {
	Transaction *ast.Transaction

	// InferredAmounts holds the amounts computed for elided postings and for
	// balance assignments. An elided posting can receive one amount per
	// commodity it has to balance.
	InferredAmounts map[*ast.Posting][]ast.Amount

	// InventoryChanges lists every change in the order it is applied. The
	// amounts of elided postings come last.
	InventoryChanges []InventoryChange

	// Prices holds the per-unit prices written on postings with "@" or "@@".
	Prices []PriceObservation
}

// PriceObservation is a price implied by a posting.
type PriceObservation struct {
	Commodity string
	Price     ast.Amount
}

// String returns a human-readable representation of the transaction delta
func (td *TransactionDelta) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Transaction on %s:\n", td.Transaction.Date)

	if len(td.InferredAmounts) > 0 {
		sb.WriteString("  Inferred amounts:\n")
		for _, p := range td.Transaction.Postings {
			if amounts, ok := td.InferredAmounts[p]; ok {
				fmt.Fprintf(&sb, "    %s: %s\n", p.Account, formatAmounts(amounts))
			}
		}
	}

	if len(td.InventoryChanges) > 0 {
		sb.WriteString("  Inventory changes:\n")
		for _, change := range td.InventoryChanges {
			fmt.Fprintf(&sb, "    %s\n", change)
		}
	}

	return sb.String()
}
