// Package ledger checks a parsed journal the way an accounting engine would.
// It keeps a running inventory per account, verifies that transactions
// balance, fills in the amounts a journal leaves implicit and records
// commodity prices over time.
//
// The ledger validates that:
//   - Real postings balance to zero per commodity, and so do balanced
//     virtual postings
//   - Balance assertions match the running balance of the account
//   - Every elided posting can be given an amount
//
// Accounts need no declaration; they come into existence with their first
// posting. All amounts use decimal arithmetic.
//
// Example usage:
//
//	doc, err := parser.ParseString(ctx, source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	l := ledger.New()
//	if err := l.Process(ctx, doc); err != nil {
//	    var verr *ledger.ValidationErrors
//	    if errors.As(err, &verr) {
//	        for _, e := range verr.Errors {
//	            fmt.Println(e)
//	        }
//	    }
//	}
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/telemetry"
)

// Ledger holds the state built from processing journals: account balances,
// the price history and every validation error found. Items are processed
// in file order, and a transaction that fails validation leaves the state
// untouched.
type Ledger struct {
	accounts  map[string]*Account
	prices    *PriceHistory
	errors    []error
	tolerance *ToleranceConfig
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithTolerance sets the configuration used to decide whether a residual is
// small enough to count as balanced.
func WithTolerance(config *ToleranceConfig) Option {
	return func(l *Ledger) {
		if config != nil {
			l.tolerance = config
		}
	}
}

// New creates a new empty ledger
func New(opts ...Option) *Ledger {
	l := &Ledger{
		accounts:  make(map[string]*Account),
		prices:    NewPriceHistory(),
		errors:    make([]error, 0),
		tolerance: NewToleranceConfig(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Process processes every item of a document and updates the ledger state.
// It returns a *ValidationErrors with the errors of this document, or the
// context error when the context is cancelled.
func (l *Ledger) Process(ctx context.Context, doc *ast.Document) error {
	timer := telemetry.FromContext(ctx).Start(fmt.Sprintf("ledger.process (%d items)", len(doc.Items)))
	defer timer.End()

	before := len(l.errors)
	for _, item := range doc.Items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		l.processItem(item)
	}

	if errs := l.errors[before:]; len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

// Errors returns all collected errors
func (l *Ledger) Errors() []error {
	return l.errors
}

// GetAccount returns an account by name
func (l *Ledger) GetAccount(name string) (*Account, bool) {
	acc, ok := l.accounts[name]
	return acc, ok
}

// Accounts returns all accounts ordered by name.
func (l *Ledger) Accounts() []*Account {
	accounts := make([]*Account, 0, len(l.accounts))
	for _, acc := range l.accounts {
		accounts = append(accounts, acc)
	}
	slices.SortFunc(accounts, func(a, b *Account) int {
		return strings.Compare(a.Name, b.Name)
	})
	return accounts
}

// Balance returns the non-zero amounts held by an account.
func (l *Ledger) Balance(account string) []ast.Amount {
	acc, ok := l.accounts[account]
	if !ok {
		return nil
	}
	return acc.Inventory.Amounts()
}

// Prices returns the price history.
func (l *Ledger) Prices() *PriceHistory {
	return l.prices
}

// PriceAt returns the price of one unit of from in to at the given instant.
func (l *Ledger) PriceAt(at time.Time, from, to string) (decimal.Decimal, bool) {
	return l.prices.PriceAt(at, from, to)
}

func (l *Ledger) processItem(item ast.Item) {
	switch it := item.(type) {
	case *ast.Transaction:
		l.processTransaction(it)
	case *ast.CommodityPrice:
		l.processCommodityPrice(it)
	default:
		// Blank lines, comments and includes carry no ledger state.
	}
}

func (l *Ledger) processTransaction(txn *ast.Transaction) {
	// Create validator with read-only view of current state
	v := newValidator(l.accounts, l.tolerance)

	errs, delta := v.validateTransaction(txn)
	if len(errs) > 0 {
		l.errors = append(l.errors, errs...)
		return
	}

	l.ApplyTransactionDelta(delta)
}

func (l *Ledger) processCommodityPrice(price *ast.CommodityPrice) {
	if err := l.prices.AddPrice(price.DateTime, price.Commodity, price.Amount); err != nil {
		l.errors = append(l.errors, &PriceError{
			Pos:       price.Pos,
			Commodity: price.Commodity,
			Reason:    "price must be non-zero",
		})
	}
}

// ApplyTransactionDelta mutates ledger state by applying a transaction delta.
// The delta contains all the inventory changes computed during validation.
func (l *Ledger) ApplyTransactionDelta(delta *TransactionDelta) {
	for _, posting := range delta.Transaction.Postings {
		l.account(posting.Account).Postings++
	}

	for _, change := range delta.InventoryChanges {
		l.account(change.Account).Inventory.Add(change.Amount)
	}

	at := delta.Transaction.Date.Time
	for _, obs := range delta.Prices {
		// Observations with a zero price are never part of a delta.
		_ = l.prices.AddPrice(at, obs.Commodity, obs.Price)
	}
}

func (l *Ledger) account(name string) *Account {
	acc, ok := l.accounts[name]
	if !ok {
		acc = newAccount(name)
		l.accounts[name] = acc
	}
	return acc
}
