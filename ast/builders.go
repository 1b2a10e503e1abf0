package ast

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewAmount creates a new Amount from a decimal string and a commodity.
// Panics if quantity is not a valid decimal; it is meant for literals.
//
// Example:
//
//	amount := ast.NewAmount("1.20", "$", ast.Left)
//	amount := ast.NewAmount("5.00", "PLN", ast.Right)
func NewAmount(quantity, commodity string, position CommodityPosition) Amount {
	return Amount{
		Quantity:  decimal.RequireFromString(quantity),
		Commodity: Commodity{Name: commodity, Position: position},
	}
}

// NewCommodityPrice creates a price record for a commodity at the given instant.
//
// Example:
//
//	price := ast.NewCommodityPrice(t, "mBH", ast.NewAmount("5.00", "PLN", ast.Right))
func NewCommodityPrice(at time.Time, commodity string, amount Amount) *CommodityPrice {
	return &CommodityPrice{
		DateTime:  at,
		Commodity: commodity,
		Amount:    amount,
	}
}

// NewInclude creates an include directive for the given path.
func NewInclude(path string) *Include {
	return &Include{Path: path}
}

// NewLineComment creates a standalone comment line.
func NewLineComment(text string) *LineComment {
	return &LineComment{Text: text}
}

// NewTag creates a tag without a value.
func NewTag(name string) Tag {
	return Tag{Name: name}
}

// NewValueTag creates a tag carrying a value.
//
// Example:
//
//	tag := ast.NewValueTag("Payee", ast.StringValue("Corner Shop"))
//	tag := ast.NewValueTag("Receipt", ast.IntegerValue(42))
func NewValueTag(name string, value TagValue) Tag {
	return Tag{Name: name, Value: value}
}

// TransactionOption is a functional option for configuring a Transaction.
type TransactionOption func(*Transaction)

// NewTransaction creates a new Transaction with the given date and description.
// Additional fields can be set using functional options.
//
// Example:
//
//	txn := ast.NewTransaction(date, "Corner Shop",
//	    ast.WithStatus(ast.Cleared),
//	    ast.WithTags(ast.NewTag("groceries")),
//	    ast.WithPostings(
//	        ast.NewPosting("Expenses:Food", ast.WithAmount(ast.NewAmount("12.40", "$", ast.Left))),
//	        ast.NewPosting("Assets:Checking"),
//	    ),
//	)
func NewTransaction(date Date, description string, opts ...TransactionOption) *Transaction {
	txn := &Transaction{
		Date:        date,
		Description: description,
	}

	for _, opt := range opts {
		opt(txn)
	}

	return txn
}

// WithEffectiveDate sets the effective (auxiliary) date of the transaction.
func WithEffectiveDate(date Date) TransactionOption {
	return func(t *Transaction) {
		t.EffectiveDate = &date
	}
}

// WithStatus sets the transaction status.
func WithStatus(status Status) TransactionOption {
	return func(t *Transaction) {
		t.Status = status
	}
}

// WithCode sets the transaction code, written in parentheses after the status.
func WithCode(code string) TransactionOption {
	return func(t *Transaction) {
		t.Code = code
	}
}

// WithComment sets the transaction comment. Multiple lines are separated by "\n".
func WithComment(comment string) TransactionOption {
	return func(t *Transaction) {
		t.Comment = comment
	}
}

// WithTags appends tags to the transaction metadata.
func WithTags(tags ...Tag) TransactionOption {
	return func(t *Transaction) {
		t.Metadata.Tags = append(t.Metadata.Tags, tags...)
	}
}

// WithPostings appends postings to the transaction.
func WithPostings(postings ...*Posting) TransactionOption {
	return func(t *Transaction) {
		t.Postings = append(t.Postings, postings...)
	}
}

// PostingOption is a functional option for configuring a Posting.
type PostingOption func(*Posting)

// NewPosting creates a new real Posting for the given account.
// Without an amount or balance option the posting is elided.
func NewPosting(account string, opts ...PostingOption) *Posting {
	p := &Posting{Account: account}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithAmount sets the posting amount.
func WithAmount(amount Amount) PostingOption {
	return func(p *Posting) {
		if p.Amount == nil {
			p.Amount = &PostingAmount{}
		}
		p.Amount.Amount = amount
	}
}

// WithLotPrice sets the lot price of the posting amount ({..} or {{..}} when total).
// It must be combined with WithAmount.
func WithLotPrice(price Amount, total bool) PostingOption {
	return func(p *Posting) {
		if p.Amount == nil {
			p.Amount = &PostingAmount{}
		}
		p.Amount.LotPrice = &Price{Amount: price, Total: total}
	}
}

// WithPrice sets the price of the posting amount (@ or @@ when total).
// It must be combined with WithAmount.
func WithPrice(price Amount, total bool) PostingOption {
	return func(p *Posting) {
		if p.Amount == nil {
			p.Amount = &PostingAmount{}
		}
		p.Amount.Price = &Price{Amount: price, Total: total}
	}
}

// WithBalance sets the balance assertion of the posting.
func WithBalance(balance Balance) PostingOption {
	return func(p *Posting) {
		p.Balance = balance
	}
}

// WithReality sets whether the posting is real or virtual.
func WithReality(reality Reality) PostingOption {
	return func(p *Posting) {
		p.Reality = reality
	}
}

// WithPostingStatus sets the posting status.
func WithPostingStatus(status Status) PostingOption {
	return func(p *Posting) {
		p.Status = status
	}
}

// WithPostingComment sets the posting comment.
func WithPostingComment(comment string) PostingOption {
	return func(p *Posting) {
		p.Comment = comment
	}
}

// WithPostingTags appends tags to the posting metadata.
func WithPostingTags(tags ...Tag) PostingOption {
	return func(p *Posting) {
		p.Metadata.Tags = append(p.Metadata.Tags, tags...)
	}
}
