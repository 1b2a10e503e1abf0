// Package ast declares the types used to represent syntax trees for ledger-cli journals.
//
// A journal is parsed into a Document: an ordered list of items (blank lines, global
// comments, transactions, commodity prices and include directives). Item order is
// significant. It is what makes a parse followed by a format reproduce the journal,
// and it decides which standalone comments belong to which transaction.
//
// Documents can be created by parsing a journal with the parser package, or
// constructed programmatically with the builders in this package and written out
// with the formatter package.
package ast

// Document is the root of a parsed journal.
type Document struct {
	Items []Item
}

// Item is a single top-level element of a Document. The set of items is closed:
// *EmptyLine, *LineComment, *Transaction, *CommodityPrice and *Include.
type Item interface {
	Position() Position
	item()
}

func (*EmptyLine) item()      {}
func (*LineComment) item()    {}
func (*Transaction) item()    {}
func (*CommodityPrice) item() {}
func (*Include) item()        {}

var (
	_ Item = &EmptyLine{}
	_ Item = &LineComment{}
	_ Item = &Transaction{}
	_ Item = &CommodityPrice{}
	_ Item = &Include{}
)

// Transactions returns the transactions of the document in order.
func (d *Document) Transactions() []*Transaction {
	var txns []*Transaction
	for _, item := range d.Items {
		if txn, ok := item.(*Transaction); ok {
			txns = append(txns, txn)
		}
	}
	return txns
}

// CommodityPrices returns the commodity price records of the document in order.
func (d *Document) CommodityPrices() []*CommodityPrice {
	var prices []*CommodityPrice
	for _, item := range d.Items {
		if price, ok := item.(*CommodityPrice); ok {
			prices = append(prices, price)
		}
	}
	return prices
}

// Includes returns the include directives of the document in order.
func (d *Document) Includes() []*Include {
	var includes []*Include
	for _, item := range d.Items {
		if inc, ok := item.(*Include); ok {
			includes = append(includes, inc)
		}
	}
	return includes
}

// ClearPositions zeroes the source position of every node in the document.
// Two documents parsed from differently laid out text compare equal after
// their positions are cleared.
func ClearPositions(doc *Document) {
	if doc == nil {
		return
	}
	for _, item := range doc.Items {
		switch it := item.(type) {
		case *EmptyLine:
			it.Pos = Position{}
		case *LineComment:
			it.Pos = Position{}
		case *Transaction:
			it.Pos = Position{}
			for _, p := range it.Postings {
				p.Pos = Position{}
			}
		case *CommodityPrice:
			it.Pos = Position{}
		case *Include:
			it.Pos = Position{}
		}
	}
}
