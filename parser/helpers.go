package parser

// Lexical helpers shared by the grammar rules.

func isSpace(b byte) bool { return b == ' ' || b == '\t' }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isLineEnd(b byte) bool { return b == '\n' || b == '\r' }

// skipSpaces consumes spaces and tabs. It never fails.
func skipSpaces(in input) input {
	_, next := in.takeWhile(isSpace)
	return next
}

// spaces1 consumes at least one space or tab.
func spaces1(in input) (string, input, error) {
	ws, next := in.takeWhile(isSpace)
	if ws == "" {
		return "", in, fail(in, "whitespace")
	}
	return ws, next, nil
}

// eol consumes a line terminator, "\n" or "\r\n", or matches the end of input.
func eol(in input) (struct{}, input, error) {
	switch {
	case in.atEnd():
		return struct{}{}, in, nil
	case in.hasPrefix("\r\n"):
		return struct{}{}, in.advance(2), nil
	case in.peek() == '\n':
		return struct{}{}, in.advance(1), nil
	}
	return struct{}{}, in, fail(in, "end of line")
}

// trailingComment matches optional spaces followed by a ";" comment running
// to the end of the line, and returns the comment text without its marker.
func trailingComment(in input) (string, input, error) {
	next := skipSpaces(in)
	if next.peek() != ';' {
		return "", in, fail(next, "comment")
	}
	text := next.advance(1).lineRest()
	return text, next.advance(1 + len(text)), nil
}
