package monkey

import (
	"strconv"
	"strings"
)

// FormatValue renders a runtime value for display: integers in decimal,
// booleans as true/false, null as "null", strings quoted, and functions as
// their source text. A return marker renders as the value it carries.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTInt:
		return strconv.FormatInt(int64(v.Data.(int32)), 10)
	case VTStr:
		return quoteString(v.Data.(string))
	case VTReturn:
		return FormatValue(v.Data.(Value))
	case VTFun:
		f := v.Data.(*Fun)
		return "fn(" + strings.Join(f.Params, ", ") + ") " + f.Body.String()
	default:
		return "<unknown>"
	}
}

// FormatProgram renders one statement per line, expressions fully
// parenthesised.
func FormatProgram(p *Program) string {
	if p == nil {
		return ""
	}
	return p.String()
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
