package ledger

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/ledger-parser/ast"
	"github.com/robinvdvleuten/ledger-parser/formatter"
)

// Error types for ledger validation errors. Each one carries the transaction
// it is about so it can be shown as context.

// location renders "file:line", or the transaction date when there is no file.
func location(pos ast.Position, txn *ast.Transaction) string {
	if pos.Filename != "" {
		return fmt.Sprintf("%s:%d", pos.Filename, pos.Line)
	}
	if txn != nil {
		return txn.Date.String()
	}
	return pos.String()
}

func formatAmounts(amounts []ast.Amount) string {
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		parts[i] = formatter.FormatAmount(a)
	}
	return strings.Join(parts, ", ")
}

// TransactionNotBalancedError is returned when the postings of a transaction
// do not sum to zero in some commodity.
type TransactionNotBalancedError struct {
	Pos         ast.Position
	Transaction *ast.Transaction
	Reality     ast.Reality  // Real or BalancedVirtual, the group that does not balance
	Residuals   []ast.Amount // Unbalanced amounts, ordered by commodity
}

func (e *TransactionNotBalancedError) Error() string {
	what := "Transaction"
	if e.Reality == ast.BalancedVirtual {
		what = "Balanced virtual postings"
	}
	return fmt.Sprintf("%s: %s do not balance: (%s)",
		location(e.Pos, e.Transaction), what, formatAmounts(e.Residuals))
}

func (e *TransactionNotBalancedError) GetPosition() ast.Position {
	return e.Pos
}

func (e *TransactionNotBalancedError) GetTransaction() *ast.Transaction {
	return e.Transaction
}

// BalanceAssertionError is returned when the running balance of an account
// differs from the balance written on a posting.
type BalanceAssertionError struct {
	Pos         ast.Position // Position of the posting
	Transaction *ast.Transaction
	Account     string
	Expected    ast.Amount
	Actual      ast.Amount
}

func (e *BalanceAssertionError) Error() string {
	return fmt.Sprintf("%s: Balance assertion failed for %s:\n  Expected: %s\n  Actual:   %s",
		location(e.Pos, e.Transaction), e.Account,
		formatter.FormatAmount(e.Expected), formatter.FormatAmount(e.Actual))
}

func (e *BalanceAssertionError) GetPosition() ast.Position {
	return e.Pos
}

func (e *BalanceAssertionError) GetTransaction() *ast.Transaction {
	return e.Transaction
}

func (e *BalanceAssertionError) GetAccount() string {
	return e.Account
}

// InferenceError is returned when the amount of an elided posting or of a
// balance assignment cannot be determined.
type InferenceError struct {
	Pos         ast.Position // Position of the posting
	Transaction *ast.Transaction
	Account     string
	Reason      string
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s: Cannot infer amount for %s: %s",
		location(e.Pos, e.Transaction), e.Account, e.Reason)
}

func (e *InferenceError) GetPosition() ast.Position {
	return e.Pos
}

func (e *InferenceError) GetTransaction() *ast.Transaction {
	return e.Transaction
}

func (e *InferenceError) GetAccount() string {
	return e.Account
}

// ValidationErrors wraps multiple validation errors
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// Constructor functions for ledger errors.

// NewTransactionNotBalancedError creates an error for a transaction whose
// postings of the given reality leave residuals.
func NewTransactionNotBalancedError(txn *ast.Transaction, reality ast.Reality, residuals []ast.Amount) *TransactionNotBalancedError {
	return &TransactionNotBalancedError{
		Pos:         txn.Pos,
		Transaction: txn,
		Reality:     reality,
		Residuals:   residuals,
	}
}

// NewBalanceAssertionError creates an error for a failed balance assertion.
func NewBalanceAssertionError(txn *ast.Transaction, posting *ast.Posting, expected, actual ast.Amount) *BalanceAssertionError {
	return &BalanceAssertionError{
		Pos:         posting.Pos,
		Transaction: txn,
		Account:     posting.Account,
		Expected:    expected,
		Actual:      actual,
	}
}

// NewInferenceError creates an error for a posting whose amount cannot be inferred.
func NewInferenceError(txn *ast.Transaction, posting *ast.Posting, reason string) *InferenceError {
	return &InferenceError{
		Pos:         posting.Pos,
		Transaction: txn,
		Account:     posting.Account,
		Reason:      reason,
	}
}

// PriceError is returned for a commodity price that cannot be recorded.
type PriceError struct {
	Pos       ast.Position
	Commodity string
	Reason    string
}

func (e *PriceError) Error() string {
	return fmt.Sprintf("%s: Invalid price for %s: %s", location(e.Pos, nil), e.Commodity, e.Reason)
}

func (e *PriceError) GetPosition() ast.Position {
	return e.Pos
}
