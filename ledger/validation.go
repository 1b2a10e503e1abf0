package ledger

import (
	"github.com/robinvdvleuten/ledger-parser/ast"
)

// validator validates transactions with read-only access to the ledger state.
// This is a separate type from Ledger to ensure validation cannot mutate state:
// every change it works out is returned as a TransactionDelta.
//
// Example:
//
//	v := newValidator(l.accounts, l.tolerance)
//	errs, delta := v.validateTransaction(txn)
//	if len(errs) == 0 {
//	    fmt.Println(delta) // inspect before applying
//	}
type validator struct {
	accounts  map[string]*Account
	tolerance *ToleranceConfig
}

// newValidator creates a validator with a read-only view of the current ledger state
func newValidator(accounts map[string]*Account, tolerance *ToleranceConfig) *validator {
	return &validator{
		accounts:  accounts,
		tolerance: tolerance,
	}
}

// scratch tracks the inventories touched by a transaction while it is being
// validated. Inventories are copied from the ledger on first use, so balance
// assertions see the postings that come before them in the same transaction.
type scratch struct {
	accounts    map[string]*Account
	inventories map[string]*Inventory
}

func newScratch(accounts map[string]*Account) *scratch {
	return &scratch{accounts: accounts, inventories: make(map[string]*Inventory)}
}

func (s *scratch) inventory(account string) *Inventory {
	if inv, ok := s.inventories[account]; ok {
		return inv
	}
	inv := NewInventory()
	if acc, ok := s.accounts[account]; ok {
		inv = acc.Inventory.Clone()
	}
	s.inventories[account] = inv
	return inv
}

// validateTransaction checks that a transaction balances and that its
// balance assertions hold, and computes the amounts it leaves implicit.
//
// Real postings and balanced virtual postings must each sum to zero per
// commodity, within the tolerance inferred from the written precision.
// Unbalanced virtual postings are never part of a sum.
//
// Postings are handled in order:
//   - a posting with an amount contributes its weight and, when it also has
//     a balance, asserts the running balance after the amount is applied
//   - a posting with only a balance is a balance assignment: its amount is
//     whatever brings the running balance to the written balance
//   - a posting with neither is elided and receives the residual of its
//     group, one amount per commodity
func (v *validator) validateTransaction(txn *ast.Transaction) ([]error, *TransactionDelta) {
	var errs []error

	delta := &TransactionDelta{
		Transaction:     txn,
		InferredAmounts: make(map[*ast.Posting][]ast.Amount),
	}

	groups := []*balanceGroup{
		newBalanceGroup(ast.Real),
		newBalanceGroup(ast.BalancedVirtual),
	}
	defer func() {
		for _, g := range groups {
			g.release()
		}
	}()

	s := newScratch(v.accounts)

	apply := func(account string, amount ast.Amount) {
		s.inventory(account).Add(amount)
		delta.InventoryChanges = append(delta.InventoryChanges, InventoryChange{Account: account, Amount: amount})
	}

	for _, posting := range txn.Postings {
		var group *balanceGroup
		if posting.Reality != ast.UnbalancedVirtual {
			group = groups[posting.Reality]
		}

		switch {
		case posting.Amount != nil:
			if group != nil {
				group.addPostingAmount(posting.Amount)
			}
			apply(posting.Account, posting.Amount.Amount)

			if price, ok := unitPrice(posting.Amount); ok && !price.Quantity.IsZero() {
				delta.Prices = append(delta.Prices, PriceObservation{
					Commodity: posting.Amount.Amount.Commodity.Name,
					Price:     price,
				})
			}

			if posting.Balance != nil {
				errs = append(errs, v.validateAssertion(txn, posting, s.inventory(posting.Account))...)
			}

		case posting.Balance != nil:
			amounts := assignBalance(posting.Balance, s.inventory(posting.Account))
			delta.InferredAmounts[posting] = amounts
			for _, amount := range amounts {
				if group != nil {
					group.add(weight{Quantity: amount.Quantity, Commodity: amount.Commodity})
				}
				apply(posting.Account, amount)
			}
			if ab, ok := posting.Balance.(ast.AmountBalance); ok && group != nil {
				group.note(ab.Amount)
			}

		default:
			switch {
			case group == nil:
				errs = append(errs, NewInferenceError(txn, posting, "unbalanced virtual postings need an amount"))
			case group.elided != nil:
				errs = append(errs, NewInferenceError(txn, posting, "only one posting without an amount is allowed"))
			default:
				group.elided = posting
			}
		}
	}

	for _, g := range groups {
		if g.elided != nil {
			residuals := g.residuals()
			inferred := make([]ast.Amount, len(residuals))
			for i, r := range residuals {
				inferred[i] = ast.Amount{Quantity: r.Quantity.Neg(), Commodity: r.Commodity}
				apply(g.elided.Account, inferred[i])
			}
			delta.InferredAmounts[g.elided] = inferred
			continue
		}

		if residuals := g.unbalanced(v.tolerance); len(residuals) > 0 {
			errs = append(errs, NewTransactionNotBalancedError(txn, g.reality, residuals))
		}
	}

	if len(errs) > 0 {
		return errs, nil
	}
	return nil, delta
}

// validateAssertion compares the running balance of a posting's account with
// the balance written on the posting.
func (v *validator) validateAssertion(txn *ast.Transaction, posting *ast.Posting, inv *Inventory) []error {
	switch b := posting.Balance.(type) {
	case ast.AmountBalance:
		actual := inv.Amount(b.Amount.Commodity.Name)
		if !actual.Quantity.Equal(b.Amount.Quantity) {
			return []error{NewBalanceAssertionError(txn, posting, b.Amount, actual)}
		}
	case ast.ZeroBalance:
		var errs []error
		for _, actual := range inv.Amounts() {
			expected := ast.Amount{Commodity: actual.Commodity}
			errs = append(errs, NewBalanceAssertionError(txn, posting, expected, actual))
		}
		return errs
	}
	return nil
}

// assignBalance returns the amounts that bring an inventory to the given
// balance. A zero balance empties every commodity; an amount balance only
// touches its own commodity.
func assignBalance(balance ast.Balance, inv *Inventory) []ast.Amount {
	switch b := balance.(type) {
	case ast.AmountBalance:
		held := inv.Get(b.Amount.Commodity.Name)
		return []ast.Amount{{
			Quantity:  b.Amount.Quantity.Sub(held),
			Commodity: b.Amount.Commodity,
		}}
	case ast.ZeroBalance:
		held := inv.Amounts()
		amounts := make([]ast.Amount, len(held))
		for i, a := range held {
			amounts[i] = ast.Amount{Quantity: a.Quantity.Neg(), Commodity: a.Commodity}
		}
		return amounts
	}
	return nil
}
