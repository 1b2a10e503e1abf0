package ledger

import (
	"strings"
)

// AccountType represents the type of account
type AccountType int

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeAssets
	AccountTypeLiabilities
	AccountTypeEquity
	AccountTypeIncome
	AccountTypeExpenses
)

// String returns the string representation of the account type
func (t AccountType) String() string {
	switch t {
	case AccountTypeAssets:
		return "Assets"
	case AccountTypeLiabilities:
		return "Liabilities"
	case AccountTypeEquity:
		return "Equity"
	case AccountTypeIncome:
		return "Income"
	case AccountTypeExpenses:
		return "Expenses"
	default:
		return "Unknown"
	}
}

// Account is an account that at least one posting referred to. Real and
// virtual postings to the same name share one account.
type Account struct {
	Name      string
	Type      AccountType
	Postings  int        // Number of postings applied
	Inventory *Inventory // Running balance
}

func newAccount(name string) *Account {
	return &Account{
		Name:      name,
		Type:      ParseAccountType(name),
		Inventory: NewInventory(),
	}
}

// Parent returns the name of the parent account, or an empty string for a
// top-level account.
func (a *Account) Parent() string {
	i := strings.LastIndexByte(a.Name, ':')
	if i < 0 {
		return ""
	}
	return a.Name[:i]
}

// Depth returns the number of segments in the account name.
func (a *Account) Depth() int {
	return strings.Count(a.Name, ":") + 1
}

// ParseAccountType derives the account type from the first segment of the
// account name. The comparison ignores case since ledger-cli does not
// prescribe top-level names.
func ParseAccountType(name string) AccountType {
	root, _, _ := strings.Cut(name, ":")

	switch strings.ToLower(root) {
	case "assets", "asset":
		return AccountTypeAssets
	case "liabilities", "liability":
		return AccountTypeLiabilities
	case "equity":
		return AccountTypeEquity
	case "income", "revenue", "revenues":
		return AccountTypeIncome
	case "expenses", "expense":
		return AccountTypeExpenses
	default:
		return AccountTypeUnknown
	}
}
