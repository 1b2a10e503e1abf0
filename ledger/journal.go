package ledger

import (
	"strings"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

// Journal is a simplified view of a document: its transactions and prices,
// without blank lines and standalone comments.
type Journal struct {
	Transactions []*ast.Transaction
	Prices       []*ast.CommodityPrice
}

// NewJournal builds the simplified view of a document.
//
// A block of comment lines written directly above a transaction belongs to
// that transaction: its text is put in front of the transaction's own
// comment. A blank line or a price between the block and the transaction
// breaks this. Transactions that receive comments are shallow copies; the
// document is not modified.
func NewJournal(doc *ast.Document) *Journal {
	j := &Journal{}

	var pending []string
	for _, item := range doc.Items {
		switch it := item.(type) {
		case *ast.LineComment:
			pending = append(pending, it.Text)
		case *ast.Transaction:
			if len(pending) > 0 {
				txn := *it
				txn.Comment = joinComment(pending, it.Comment)
				it = &txn
			}
			j.Transactions = append(j.Transactions, it)
			pending = nil
		case *ast.CommodityPrice:
			j.Prices = append(j.Prices, it)
			pending = nil
		default:
			pending = nil
		}
	}

	return j
}

func joinComment(pending []string, own string) string {
	text := strings.Join(pending, "\n")
	if own != "" {
		text += "\n" + own
	}
	return text
}
