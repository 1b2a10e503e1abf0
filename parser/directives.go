package parser

import (
	"strings"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

// lineCommentMarkers start a standalone comment line.
const lineCommentMarkers = ";#%|*"

func emptyLine(in input) (*ast.EmptyLine, input, error) {
	ws, next := in.takeWhile(isSpace)
	switch {
	case next.atEnd() && ws != "":
		return &ast.EmptyLine{Pos: in.position()}, next, nil
	case next.atEnd():
		return nil, in, fail(in, "empty line")
	}
	_, next, err := eol(next)
	if err != nil {
		return nil, in, fail(in, "empty line")
	}
	return &ast.EmptyLine{Pos: in.position()}, next, nil
}

// lineComment reads a standalone comment. Its text is kept as written, without
// looking for tags.
func lineComment(in input) (*ast.LineComment, input, error) {
	next := skipSpaces(in)
	if next.atEnd() || !strings.ContainsRune(lineCommentMarkers, rune(next.peek())) {
		return nil, in, fail(next, "comment")
	}
	next = skipSpaces(next.advance(1))

	text := next.lineRest()
	_, next, err := eol(next.advance(len(text)))
	if err != nil {
		return nil, in, err
	}
	return &ast.LineComment{Pos: in.position(), Text: strings.TrimRight(text, " \t")}, next, nil
}

// commodityPriceTail reads a price record after its "P ".
func commodityPriceTail(in input) (*ast.CommodityPrice, input, error) {
	at, next, err := dateTime(in)
	if err != nil {
		return nil, in, err
	}
	if _, next, err = spaces1(next); err != nil {
		return nil, in, err
	}

	name, next, err := commodity(next)
	if err != nil {
		return nil, in, err
	}
	if _, next, err = spaces1(next); err != nil {
		return nil, in, err
	}

	a, next, err := amount(next)
	if err != nil {
		return nil, in, err
	}

	// An inline comment is accepted and dropped.
	if _, afterComment, cerr := trailingComment(next); cerr == nil {
		next = afterComment
	} else {
		next = skipSpaces(next)
	}
	if _, next, err = eol(next); err != nil {
		return nil, in, err
	}

	return &ast.CommodityPrice{DateTime: at, Commodity: name, Amount: a}, next, nil
}

var committedCommodityPriceTail = cut(commodityPriceTail)

// commodityPrice reads "P <datetime> <commodity> <amount>".
func commodityPrice(in input) (*ast.CommodityPrice, input, error) {
	if in.peek() != 'P' {
		return nil, in, fail(in, "commodity price")
	}
	_, next, err := spaces1(in.advance(1))
	if err != nil {
		return nil, in, fail(in, "commodity price")
	}

	cp, next, err := committedCommodityPriceTail(next)
	if err != nil {
		return nil, in, err
	}
	cp.Pos = in.position()
	return cp, next, nil
}

// includeTail reads the path of an include directive after its keyword.
func includeTail(in input) (string, input, error) {
	if _, _, err := spaces1(in); err != nil && !in.atEnd() && !isLineEnd(in.peek()) {
		return "", in, err
	}

	text := in.lineRest()
	path := strings.TrimSpace(text)
	if path == "" {
		return "", in, failWith(in, SemanticError, ErrEmptyIncludePath, "empty include path")
	}

	_, next, err := eol(in.advance(len(text)))
	if err != nil {
		return "", in, err
	}
	return path, next, nil
}

var committedIncludeTail = cut(includeTail)

// include reads "include <path>". The path is not resolved here.
func include(in input) (*ast.Include, input, error) {
	start := skipSpaces(in)
	if !start.hasPrefix("include") {
		return nil, in, fail(start, "include")
	}

	path, next, err := committedIncludeTail(start.advance(len("include")))
	if err != nil {
		return nil, in, err
	}
	return &ast.Include{Pos: in.position(), Path: path}, next, nil
}
