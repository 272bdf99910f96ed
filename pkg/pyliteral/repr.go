// SPDX-License-Identifier: MPL-2.0

package pyliteral

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Repr renders v as literal source, following the conventions of Python's
// repr(): single-quoted strings unless the text contains a single quote and
// no double quote, "(x,)" for one-element tuples, and "True"/"False"/"None".
func Repr(v any) string {
	var sb strings.Builder
	writeRepr(&sb, v)
	return sb.String()
}

func writeRepr(sb *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		sb.WriteString("None")
	case bool:
		if t {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case string:
		writeQuoted(sb, t, false)
	case []byte:
		sb.WriteByte('b')
		writeQuoted(sb, string(t), true)
	case int64:
		sb.WriteString(strconv.FormatInt(t, 10))
	case *big.Int:
		sb.WriteString(t.String())
	case float64:
		sb.WriteString(formatFloat(t))
	case []any:
		sb.WriteByte('[')
		writeItems(sb, t)
		sb.WriteByte(']')
	case Tuple:
		sb.WriteByte('(')
		writeItems(sb, t)
		if len(t) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case *Dict:
		sb.WriteByte('{')
		for i, it := range t.Items() {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeRepr(sb, it.Key)
			sb.WriteString(": ")
			writeRepr(sb, it.Value)
		}
		sb.WriteByte('}')
	case *Set:
		if t.Len() == 0 {
			sb.WriteString("set()")
			return
		}
		sb.WriteByte('{')
		writeItems(sb, t.Items())
		sb.WriteByte('}')
	default:
		fmt.Fprintf(sb, "<%T>", v)
	}
}

func writeItems(sb *strings.Builder, items []any) {
	for i, x := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeRepr(sb, x)
	}
}

func writeQuoted(sb *strings.Builder, s string, bytesMode bool) {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	sb.WriteByte(quote)
	if bytesMode {
		for i := 0; i < len(s); i++ {
			writeByteEscaped(sb, s[i], quote)
		}
	} else {
		for _, r := range s {
			writeRuneEscaped(sb, r, quote)
		}
	}
	sb.WriteByte(quote)
}

func writeRuneEscaped(sb *strings.Builder, r rune, quote byte) {
	switch {
	case r == '\\' || r == rune(quote):
		sb.WriteByte('\\')
		sb.WriteRune(r)
	case r == '\n':
		sb.WriteString(`\n`)
	case r == '\r':
		sb.WriteString(`\r`)
	case r == '\t':
		sb.WriteString(`\t`)
	case r == unicode.ReplacementChar || unicode.IsPrint(r):
		sb.WriteRune(r)
	case r < 0x100:
		fmt.Fprintf(sb, `\x%02x`, r)
	case r < 0x10000:
		fmt.Fprintf(sb, `\u%04x`, r)
	default:
		fmt.Fprintf(sb, `\U%08x`, r)
	}
}

func writeByteEscaped(sb *strings.Builder, b, quote byte) {
	switch {
	case b == '\\' || b == quote:
		sb.WriteByte('\\')
		sb.WriteByte(b)
	case b == '\n':
		sb.WriteString(`\n`)
	case b == '\r':
		sb.WriteString(`\r`)
	case b == '\t':
		sb.WriteString(`\t`)
	case b >= 0x20 && b < 0x7f:
		sb.WriteByte(b)
	default:
		fmt.Fprintf(sb, `\x%02x`, b)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
