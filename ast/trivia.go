package ast

// EmptyLine is a blank (or whitespace only) line between items. Blank lines end a
// block of standalone comments, so a comment separated from a transaction by an
// empty line does not belong to it.
type EmptyLine struct {
	Pos Position
}

func (e *EmptyLine) Position() Position { return e.Pos }

// LineComment is a standalone comment line outside of any transaction, starting
// with one of ; # % | or *. Text holds the comment without its marker.
type LineComment struct {
	Pos  Position
	Text string
}

func (c *LineComment) Position() Position { return c.Pos }
