package formatter

import (
	"strings"

	"github.com/robinvdvleuten/ledger-parser/ast"
)

func formatCommodity(c ast.Commodity, buf *strings.Builder) {
	if !c.NeedsQuoting() {
		buf.WriteString(c.Name)
		return
	}
	buf.WriteByte('"')
	buf.WriteString(escapeQuotes(c.Name))
	buf.WriteByte('"')
}

func formatCommodityName(name string, buf *strings.Builder) {
	formatCommodity(ast.Commodity{Name: name}, buf)
}

// escapeQuotes escapes double quotes for a quoted commodity name.
func escapeQuotes(s string) string {
	// Quick check if escaping is needed
	if !strings.ContainsRune(s, '"') {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + 4)

	for _, c := range s {
		if c == '"' {
			buf.WriteString(`\"`)
			continue
		}
		buf.WriteRune(c)
	}

	return buf.String()
}
