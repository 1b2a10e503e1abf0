package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

// commentLine is the text of one ";" comment together with the input it starts
// at, so that errors found while folding it point into the source.
type commentLine struct {
	at   input
	text string
}

// metadataMarkers start a comment line that belongs to the transaction header
// or posting above it. "*" is left out since it marks a cleared posting.
const metadataMarkers = ";#%|"

// metadataLine reads a whole line holding only a comment. The comment may be
// indented or start in the first column.
func metadataLine(in input) (commentLine, input, error) {
	start := skipSpaces(in)
	if start.atEnd() || strings.IndexByte(metadataMarkers, start.peek()) < 0 {
		return commentLine{}, in, fail(start, "comment")
	}
	at := start.advance(1)
	text := at.lineRest()
	_, next, err := eol(at.advance(len(text)))
	if err != nil {
		return commentLine{}, in, err
	}
	return commentLine{at: at, text: text}, next, nil
}

var metadataLines = many0(metadataLine)

// metadataBlock reads the comment lines following a transaction header or a
// posting and folds them, after the inline comment if there was one.
func metadataBlock(in input, inline *commentLine) (ast.Metadata, string, input, error) {
	lines, next, err := metadataLines(in)
	if err != nil {
		return ast.Metadata{}, "", in, err
	}
	if inline != nil {
		lines = append([]commentLine{*inline}, lines...)
	}

	var meta ast.Metadata
	var comments []string
	for _, line := range lines {
		if err := foldComment(&meta, &comments, line); err != nil {
			return ast.Metadata{}, "", in, err
		}
	}
	return meta, strings.Join(comments, "\n"), next, nil
}

// foldComment applies one comment line to the metadata. A line is, in order of
// priority, a bracketed date override, a "Name: value" or "Name:: value" tag,
// or free text from which ":tag:list:" words are extracted.
func foldComment(meta *ast.Metadata, comments *[]string, line commentLine) error {
	trimmed := strings.TrimLeft(line.text, " \t")
	at := line.at.advance(len(line.text) - len(trimmed))
	text := strings.TrimRight(trimmed, " \t")
	if text == "" {
		return nil
	}

	if ok, err := foldDates(meta, at, text); ok || err != nil {
		return err
	}
	if ok, err := foldValueTag(meta, at, text); ok || err != nil {
		return err
	}

	var kept []string
	found := false
	for _, word := range strings.Fields(text) {
		if names, ok := tagList(word); ok {
			for _, name := range names {
				meta.Tags = append(meta.Tags, ast.Tag{Name: name})
			}
			found = true
			continue
		}
		kept = append(kept, word)
	}
	if found {
		text = strings.Join(kept, " ")
	}
	if text != "" {
		*comments = append(*comments, text)
	}
	return nil
}

// foldDates recognises [date], [date=effective] and [=effective]. Later
// overrides replace earlier ones.
func foldDates(meta *ast.Metadata, at input, text string) (bool, error) {
	if text[0] != '[' || text[len(text)-1] != ']' {
		return false, nil
	}

	next := at.advance(1)
	primary, next, err := optional(date)(next)
	if err != nil {
		return false, err
	}
	hasPrimary := next.off > at.off+1

	var effective ast.Date
	hasEffective := false
	if next.peek() == '=' {
		effective, next, err = date(next.advance(1))
		if err != nil {
			if asFailure(err).committed {
				return false, err
			}
			return false, nil
		}
		hasEffective = true
	}

	if (!hasPrimary && !hasEffective) || next.off != at.off+len(text)-1 {
		return false, nil
	}

	if hasPrimary {
		meta.Date = &primary
	}
	if hasEffective {
		meta.EffectiveDate = &effective
	}
	return true, nil
}

// foldValueTag recognises "Name: value" and the typed "Name:: value".
func foldValueTag(meta *ast.Metadata, at input, text string) (bool, error) {
	end := strings.IndexAny(text, ": \t")
	if end <= 0 || text[end] != ':' {
		return false, nil
	}
	name := text[:end]

	rest := text[end+1:]
	typed := strings.HasPrefix(rest, ":")
	if typed {
		rest = rest[1:]
	}
	if rest == "" || !isSpace(rest[0]) {
		return false, nil
	}
	value := strings.TrimLeft(rest, " \t")
	if value == "" {
		return false, nil
	}

	if !typed {
		meta.Tags = append(meta.Tags, ast.Tag{Name: name, Value: ast.StringValue(value)})
		return true, nil
	}

	tv, err := typedValue(at.advance(len(text)-len(value)), value)
	if err != nil || tv == nil {
		return false, err
	}
	meta.Tags = append(meta.Tags, ast.Tag{Name: name, Value: tv})
	return true, nil
}

// typedValue reads an integer, a float or a bracketed date. It returns nil when
// value is none of those.
func typedValue(at input, value string) (ast.TagValue, error) {
	if isInteger(value) {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return ast.IntegerValue(n), nil
		}
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(f) {
		return ast.FloatValue(f), nil
	}

	if len(value) > 2 && value[0] == '[' && value[len(value)-1] == ']' {
		d, next, err := date(at.advance(1))
		if err != nil {
			if asFailure(err).committed {
				return nil, err
			}
			return nil, nil
		}
		if next.off == at.off+len(value)-1 {
			return ast.DateValue{Date: d}, nil
		}
	}

	return nil, nil
}

func isInteger(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if !isDigit(digits[i]) {
			return false
		}
	}
	return true
}

// tagList splits a word such as ":groceries:weekly:" into tag names.
func tagList(word string) ([]string, bool) {
	if len(word) < 3 || word[0] != ':' || word[len(word)-1] != ':' {
		return nil, false
	}
	names := strings.Split(word[1:len(word)-1], ":")
	for _, name := range names {
		if name == "" {
			return nil, false
		}
	}
	return names, true
}
