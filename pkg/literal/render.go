package literal

import (
	"strconv"
	"strings"
)

// String renders the canonical text form of the value. Decoding the result
// yields a value equal to the original under Equal; constructed series render
// as plain numeric sequences since the constructor call is not retained.
func (v Value) String() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

func (v Value) render(sb *strings.Builder) {
	switch v.Kind {
	case KindBool:
		if v.BoolVal {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.IntVal, 10))
	case KindFloat:
		sb.WriteString(formatFloat(v.FloatVal))
	case KindString:
		sb.WriteString(quote(v.StrVal))
	case KindNone:
		sb.WriteString("None")
	case KindTuple:
		sb.WriteByte('(')
		for i, n := range v.Nums {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatFloat(n))
		}
		if len(v.Nums) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case KindList, KindSeries:
		sb.WriteByte('[')
		if v.Kind == KindSeries {
			for i, n := range v.Nums {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(formatFloat(n))
			}
		} else {
			for i, item := range v.ListVal {
				if i > 0 {
					sb.WriteString(", ")
				}
				item.render(sb)
			}
		}
		sb.WriteByte(']')
	case KindDict:
		sb.WriteByte('{')
		for i, entry := range v.DictVal {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(quote(entry.Key))
			sb.WriteString(": ")
			entry.Value.render(sb)
		}
		sb.WriteByte('}')
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func quote(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "'", `\'`)
	return "'" + escaped + "'"
}
