package parser

import (
	"strings"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

type account struct {
	name    string
	reality ast.Reality
}

// accountName finds where an account name ends. Names may hold single spaces;
// two consecutive spaces end the name just before the first of them, and a tab,
// line break or ";" ends it at once with trailing spaces dropped.
func accountName(in input) (string, input, error) {
	rest := in.rest()
	if rest == "" || strings.IndexByte(metadataMarkers, rest[0]) >= 0 || isSpace(rest[0]) || isLineEnd(rest[0]) {
		return "", in, fail(in, "account")
	}

	sawSpace := false
	end := len(rest)
scan:
	for i := 0; i < len(rest); i++ {
		switch c := rest[i]; {
		case c == '\t' || c == '\r' || c == '\n' || c == ';':
			end = i
			break scan
		case c == ' ' && sawSpace:
			end = i - 1
			break scan
		case c == ' ':
			sawSpace = true
		default:
			sawSpace = false
		}
	}

	name := strings.TrimRight(rest[:end], " ")
	return name, in.advance(len(name)), nil
}

// splitReality strips the brackets of a virtual account.
func splitReality(raw string) account {
	switch {
	case len(raw) > 2 && raw[0] == '[' && raw[len(raw)-1] == ']':
		return account{name: raw[1 : len(raw)-1], reality: ast.BalancedVirtual}
	case len(raw) > 2 && raw[0] == '(' && raw[len(raw)-1] == ')':
		return account{name: raw[1 : len(raw)-1], reality: ast.UnbalancedVirtual}
	}
	return account{name: raw, reality: ast.Real}
}

func accountWithReality(in input) (account, input, error) {
	raw, next, err := accountName(in)
	if err != nil {
		return account{}, in, err
	}
	return splitReality(raw), next, nil
}

func status(in input) (ast.Status, input, error) {
	switch in.peek() {
	case '*':
		return ast.Cleared, in.advance(1), nil
	case '!':
		return ast.Pending, in.advance(1), nil
	}
	return ast.NoStatus, in, fail(in, "status")
}
