package tui

import (
	"fmt"
	"strings"

	"github.com/jffjs/kyev/internal/resp"
)

// renderValue formats a decoded RSP reply the way redis-cli does: simple
// strings and errors unquoted, bulk strings quoted, integers as
// "(integer) N", "(nil)" for a null bulk string, and arrays as numbered,
// indented lines.
func renderValue(v resp.Value) string {
	return renderValueIndent(v, 0)
}

func renderValueIndent(v resp.Value, depth int) string {
	indent := strings.Repeat("  ", depth)

	switch v.Kind {
	case resp.SimpleString:
		return indent + v.Str
	case resp.Error:
		return indent + v.Str
	case resp.Integer:
		return indent + fmt.Sprintf("(integer) %d", v.Int)
	case resp.BulkString:
		if v.IsNull {
			return indent + "(nil)"
		}
		return indent + fmt.Sprintf("%q", string(v.Bulk))
	case resp.Array:
		if len(v.Elems) == 0 {
			return indent + "(empty array)"
		}
		lines := make([]string, len(v.Elems))
		for i, elem := range v.Elems {
			lines[i] = fmt.Sprintf("%s%d) %s", indent, i+1, strings.TrimLeft(renderValueIndent(elem, depth+1), " "))
		}
		return strings.Join(lines, "\n")
	default:
		return indent + "(unknown reply)"
	}
}
