package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

func TestErrorMessages(t *testing.T) {
	cash := ast.NewPosting("Assets:Cash", ast.WithAmount(ast.NewAmount("-19.00", "$", ast.Left)))
	txn := ast.NewTransaction(ast.MustDate(2024, 1, 15), "Groceries", ast.WithPostings(
		ast.NewPosting("Expenses:Food", ast.WithAmount(ast.NewAmount("20.00", "$", ast.Left))),
		cash,
	))
	txn.Pos = ast.Position{Filename: "main.ledger", Line: 10, Column: 1}
	cash.Pos = ast.Position{Filename: "main.ledger", Line: 12, Column: 3}

	t.Run("NotBalanced", func(t *testing.T) {
		err := NewTransactionNotBalancedError(txn, ast.Real, []ast.Amount{ast.NewAmount("1.00", "$", ast.Left)})
		assert.Equal(t, "main.ledger:10: Transaction do not balance: ($1.00)", err.Error())
		assert.Equal(t, txn.Pos, err.GetPosition())
		assert.Equal(t, txn, err.GetTransaction())
	})

	t.Run("BalancedVirtualNotBalanced", func(t *testing.T) {
		err := NewTransactionNotBalancedError(txn, ast.BalancedVirtual, []ast.Amount{
			ast.NewAmount("1.00", "$", ast.Left),
			ast.NewAmount("-2", "EUR", ast.Right),
		})
		assert.Contains(t, err.Error(), "Balanced virtual postings do not balance: ($1.00, -2 EUR)")
	})

	t.Run("BalanceAssertion", func(t *testing.T) {
		err := NewBalanceAssertionError(txn, cash, ast.NewAmount("90.00", "$", ast.Left), ast.NewAmount("100.00", "$", ast.Left))
		assert.Equal(t, "main.ledger:12: Balance assertion failed for Assets:Cash:\n  Expected: $90.00\n  Actual:   $100.00", err.Error())
		assert.Equal(t, cash.Pos, err.GetPosition())
		assert.Equal(t, "Assets:Cash", err.GetAccount())
	})

	t.Run("Inference", func(t *testing.T) {
		err := NewInferenceError(txn, cash, "only one posting without an amount is allowed")
		assert.Equal(t, "main.ledger:12: Cannot infer amount for Assets:Cash: only one posting without an amount is allowed", err.Error())
		assert.Equal(t, txn, err.GetTransaction())
	})

	t.Run("WithoutFilename", func(t *testing.T) {
		anon := *txn
		anon.Pos = ast.Position{Line: 3, Column: 1}
		err := NewTransactionNotBalancedError(&anon, ast.Real, []ast.Amount{ast.NewAmount("1.00", "$", ast.Left)})
		assert.Equal(t, "2024-01-15: Transaction do not balance: ($1.00)", err.Error())
	})

	t.Run("Price", func(t *testing.T) {
		err := &PriceError{Pos: ast.Position{Line: 4, Column: 1}, Commodity: "AAPL", Reason: "price must be non-zero"}
		assert.Equal(t, "4:1: Invalid price for AAPL: price must be non-zero", err.Error())
	})
}

func TestTransactionDeltaString(t *testing.T) {
	doc := parse(t, `2024-01-15 Groceries
  Expenses:Food  $20.00
  Assets:Cash
`)
	txn := doc.Transactions()[0]

	v := newValidator(map[string]*Account{}, NewToleranceConfig())
	errs, delta := v.validateTransaction(txn)
	assert.Equal(t, 0, len(errs))

	assert.Equal(t, "Transaction on 2024-01-15:\n"+
		"  Inferred amounts:\n"+
		"    Assets:Cash: $-20.00\n"+
		"  Inventory changes:\n"+
		"    Expenses:Food $20.00\n"+
		"    Assets:Cash $-20.00\n", delta.String())
}

func TestValidatorDoesNotMutateState(t *testing.T) {
	l := New()
	assert.NoError(t, l.Process(t.Context(), parse(t, `2024-01-01 Opening
  Assets:Cash  $100.00
  Equity:Opening
`)))

	txn := parse(t, `2024-01-02 Lunch
  Assets:Cash  $-20.00 = $80.00
  Expenses:Food
`).Transactions()[0]

	v := newValidator(l.accounts, l.tolerance)
	errs, delta := v.validateTransaction(txn)
	assert.Equal(t, 0, len(errs))
	assert.Equal(t, "$100.00", balance(l, "Assets:Cash"))

	l.ApplyTransactionDelta(delta)
	assert.Equal(t, "$80.00", balance(l, "Assets:Cash"))
	assert.Equal(t, "$20.00", balance(l, "Expenses:Food"))
}
