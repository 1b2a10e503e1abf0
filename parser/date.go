package parser

import (
	"strconv"
	"time"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

func isDateSeparator(b byte) bool { return b == '-' || b == '/' || b == '.' }

// digitsN reads exactly n decimal digits.
func digitsN(n int) parseFunc[int] {
	return func(in input) (int, input, error) {
		rest := in.rest()
		if len(rest) < n {
			return 0, in, fail(in, strconv.Itoa(n)+" digits")
		}
		for i := 0; i < n; i++ {
			if !isDigit(rest[i]) {
				return 0, in, fail(in.advance(i), "digit")
			}
		}
		v, _ := strconv.Atoi(rest[:n])
		return v, in.advance(n), nil
	}
}

func dateSeparator(in input) (struct{}, input, error) {
	if !isDateSeparator(in.peek()) {
		return struct{}{}, in, fail(in, "date separator")
	}
	return struct{}{}, in.advance(1), nil
}

// dateFields reads YYYY-MM-DD, where each separator is one of - / or .
func dateFields(in input) ([3]int, input, error) {
	var fields [3]int
	widths := [3]int{4, 2, 2}
	next := in
	for i, w := range widths {
		if i > 0 {
			var err error
			if _, next, err = dateSeparator(next); err != nil {
				return fields, in, err
			}
		}
		v, after, err := digitsN(w)(next)
		if err != nil {
			return fields, in, err
		}
		fields[i] = v
		next = after
	}
	return fields, next, nil
}

// date reads a calendar date. Well formed text that names a day which does not
// exist is a semantic failure rather than a mismatch.
func date(in input) (ast.Date, input, error) {
	fields, next, err := dateFields(in)
	if err != nil {
		return ast.Date{}, in, fail(in, "date")
	}
	d, err := ast.NewDate(fields[0], fields[1], fields[2])
	if err != nil {
		return ast.Date{}, in, failWith(in, SemanticError, ErrInvalidDate, "invalid date %q", in.consumed(next))
	}
	return d, next, nil
}

// timeFields reads HH:MM:SS.
func timeFields(in input) ([3]int, input, error) {
	var fields [3]int
	next := in
	for i := 0; i < 3; i++ {
		if i > 0 {
			if next.peek() != ':' {
				return fields, in, fail(next, "':'")
			}
			next = next.advance(1)
		}
		v, after, err := digitsN(2)(next)
		if err != nil {
			return fields, in, err
		}
		fields[i] = v
		next = after
	}
	return fields, next, nil
}

// dateTime reads a date optionally followed by whitespace and a time of day.
// Without a time the result is midnight.
func dateTime(in input) (time.Time, input, error) {
	d, next, err := dateFields(in)
	if err != nil {
		return time.Time{}, in, fail(in, "date")
	}

	var clock [3]int
	if ws, afterWS := next.takeWhile(isSpace); ws != "" {
		if t, afterTime, terr := timeFields(afterWS); terr == nil {
			clock = t
			next = afterTime
		}
	}

	t, err := ast.NewDateTime(d[0], d[1], d[2], clock[0], clock[1], clock[2])
	if err != nil {
		return time.Time{}, in, failWith(in, SemanticError, ErrInvalidDate, "invalid date and time %q", in.consumed(next))
	}
	return t, next, nil
}
