package parser

import (
	"strings"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

// postingTail reads what follows the account of a posting: the optional amount
// with lot price and price, the optional balance assertion, the optional inline
// comment and the end of the line.
func postingTail(in input) (*ast.Posting, input, error) {
	p := &ast.Posting{}
	next := in

	if ws, afterWS := in.takeWhile(isSpace); ws != "" {
		pa, afterAmount, err := postingAmount(afterWS)
		if err == nil {
			p.Amount = pa
			next = afterAmount
		} else if f := asFailure(err); f.committed || f.at.off > afterWS.off {
			// Something amount-like was started but not finished.
			return nil, in, err
		}
	}

	afterWS := skipSpaces(next)
	if afterWS.peek() == '=' {
		b, afterBalance, err := balance(skipSpaces(afterWS.advance(1)))
		if err != nil {
			return nil, in, err
		}
		p.Balance = b
		next = afterBalance
	}

	var inline *commentLine
	afterWS = skipSpaces(next)
	if afterWS.peek() == ';' {
		at := afterWS.advance(1)
		text := at.lineRest()
		inline = &commentLine{at: at, text: text}
		next = at.advance(len(text))
	} else {
		next = afterWS
	}

	_, next, err := eol(next)
	if err != nil {
		f := fail(next, "end of line")
		if p.Amount == nil && p.Balance == nil {
			f.expected = []string{"amount", "'='", "comment", "end of line"}
		}
		return nil, in, f
	}

	meta, comment, next, err := metadataBlock(next, inline)
	if err != nil {
		return nil, in, err
	}
	p.Metadata = meta
	p.Comment = comment
	return p, next, nil
}

var committedPostingTail = cut(postingTail)

// posting reads one indented posting line and its comment lines. Once the
// account has been read the posting is committed.
func posting(in input) (*ast.Posting, input, error) {
	_, start, err := spaces1(in)
	if err != nil {
		return nil, in, fail(in, "posting")
	}

	st, next, _ := optional(status)(start)
	next = skipSpaces(next)

	acct, next, err := accountWithReality(next)
	if err != nil {
		return nil, in, err
	}

	p, next, err := committedPostingTail(next)
	if err != nil {
		return nil, in, err
	}
	p.Pos = start.position()
	p.Status = st
	p.Account = acct.name
	p.Reality = acct.reality
	return p, next, nil
}

type positionedPosting struct {
	at      input
	posting *ast.Posting
}

func locatedPosting(in input) (positionedPosting, input, error) {
	p, next, err := posting(in)
	if err != nil {
		return positionedPosting{}, in, err
	}
	return positionedPosting{at: skipSpaces(in), posting: p}, next, nil
}

var postings = many0(labeled("posting", locatedPosting))

func effectiveDate(in input) (*ast.Date, input, error) {
	if in.peek() != '=' {
		return nil, in, fail(in, "'='")
	}
	d, next, err := date(in.advance(1))
	if err != nil {
		return nil, in, err
	}
	return &d, next, nil
}

func code(in input) (string, input, error) {
	if in.peek() != '(' {
		return "", in, fail(in, "code")
	}
	rest := in.lineRest()
	end := strings.IndexByte(rest, ')')
	if end <= 1 {
		return "", in, fail(in, "code")
	}
	return rest[1:end], in.advance(end + 1), nil
}

// description splits the rest of a header line into the description and an
// optional inline comment, which starts at a ";" preceded by whitespace or at
// the start of the text.
func description(in input) (string, *commentLine, input) {
	rest := in.lineRest()
	for i := 0; i < len(rest); i++ {
		if rest[i] == ';' && (i == 0 || isSpace(rest[i-1])) {
			at := in.advance(i + 1)
			text := at.lineRest()
			return strings.TrimRight(rest[:i], " \t"), &commentLine{at: at, text: text}, at.advance(len(text))
		}
	}
	return strings.TrimRight(rest, " \t"), nil, in.advance(len(rest))
}

// transactionTail reads a transaction after its date.
func transactionTail(in input) (*ast.Transaction, input, error) {
	txn := &ast.Transaction{}

	edate, next, err := optional(effectiveDate)(in)
	if err != nil {
		return nil, in, err
	}
	txn.EffectiveDate = edate

	ws, next := next.takeWhile(isSpace)
	if ws == "" && !next.atEnd() && !isLineEnd(next.peek()) {
		return nil, in, fail(next, "whitespace")
	}

	txn.Status, next, _ = optional(status)(next)
	next = skipSpaces(next)

	txn.Code, next, _ = optional(code)(next)
	next = skipSpaces(next)

	desc, inline, next := description(next)
	txn.Description = desc

	if _, next, err = eol(next); err != nil {
		return nil, in, err
	}

	meta, comment, next, err := metadataBlock(next, inline)
	if err != nil {
		return nil, in, err
	}
	txn.Metadata = meta
	txn.Comment = comment

	located, next, err := postings(next)
	if err != nil {
		return nil, in, err
	}
	if len(located) == 0 {
		return nil, in, fail(next, "posting")
	}

	if err := checkElided(located); err != nil {
		return nil, in, err
	}

	for _, lp := range located {
		txn.Postings = append(txn.Postings, lp.posting)
	}
	return txn, next, nil
}

// checkElided enforces that at most one posting leaves out both amount and
// balance, and that such a posting has another one to balance against.
func checkElided(located []positionedPosting) error {
	var elided *positionedPosting
	for i := range located {
		if !located[i].posting.IsElided() {
			continue
		}
		if elided != nil {
			return failWith(located[i].at, SemanticError, ErrMoreThanOneElidedPosting,
				"more than one elided posting")
		}
		elided = &located[i]
	}
	if elided != nil && len(located) == 1 {
		return failWith(elided.at, SemanticError, ErrNoPostingWithAmount,
			"no posting with an amount")
	}
	return nil
}

var committedTransactionTail = cut(transactionTail)

// transaction reads a header line, its comment lines and its postings.
func transaction(in input) (*ast.Transaction, input, error) {
	d, next, err := date(in)
	if err != nil {
		return nil, in, err
	}

	txn, next, err := committedTransactionTail(next)
	if err != nil {
		return nil, in, err
	}
	txn.Pos = in.position()
	txn.Date = d
	return txn, next, nil
}
