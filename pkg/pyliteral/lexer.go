// SPDX-License-Identifier: MPL-2.0

package pyliteral

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type (
	tokenKind int

	token struct {
		kind tokenKind
		pos  Position
		// text is the name or operator for tokName and tokOp, and the
		// decoded contents of a tokString.
		text string
		// value is the decoded tokNumber.
		value   any
		imag    bool
		bytes   bool
		fstring bool
	}

	// lexer splits Python expression source into tokens. Newlines are only
	// significant outside brackets, where they end the logical line.
	lexer struct {
		src       string
		off       int
		line, col int
		filename  string
		depth     int
		pending   bool // a token was emitted on the current logical line
	}
)

const (
	tokEOF tokenKind = iota
	tokNewline
	tokName
	tokNumber
	tokString
	tokOp
)

// operators is ordered longest first so that the first prefix match wins.
var operators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"**", "//", "<<", ">>", "<=", ">=", "==", "!=", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "@=", "&=", "|=", "^=",
	"(", ")", "[", "]", "{", "}", ",", ":", ".", ";",
	"+", "-", "*", "/", "%", "@", "<", ">", "=", "&", "|", "^", "~",
}

func newLexer(filename, src string) *lexer {
	src = strings.TrimPrefix(src, "\ufeff")
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	return &lexer{src: src, line: 1, col: 1, filename: filename}
}

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNewline:
		return "end of line"
	case tokName:
		return "name"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	default:
		return "operator"
	}
}

func (t token) String() string {
	switch t.kind {
	case tokName, tokOp:
		return fmt.Sprintf("%s %q", t.kind, t.text)
	default:
		return t.kind.String()
	}
}

func (l *lexer) pos() Position {
	return Position{Filename: l.filename, Line: l.line, Col: l.col}
}

func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) byteAt(i int) byte {
	if l.off+i < len(l.src) {
		return l.src[l.off+i]
	}
	return 0
}

func (l *lexer) errorf(pos Position, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) next() (token, error) {
	for {
		if l.off >= len(l.src) {
			if l.pending && l.depth == 0 {
				l.pending = false
				return token{kind: tokNewline, pos: l.pos()}, nil
			}
			return token{kind: tokEOF, pos: l.pos()}, nil
		}
		switch c := l.src[l.off]; c {
		case ' ', '\t', '\f':
			l.advance()
		case '#':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance()
			}
		case '\\':
			if l.byteAt(1) != '\n' {
				return token{}, l.errorf(l.pos(), "unexpected character after line continuation character")
			}
			l.advance()
			l.advance()
		case '\n':
			p := l.pos()
			l.advance()
			if l.depth == 0 && l.pending {
				l.pending = false
				return token{kind: tokNewline, pos: p}, nil
			}
		default:
			tok, err := l.scan()
			if err != nil {
				return token{}, err
			}
			l.pending = true
			return tok, nil
		}
	}
}

func (l *lexer) scan() (token, error) {
	start := l.pos()
	if n, ok := l.stringPrefix(); ok {
		return l.scanString(start, l.src[l.off:l.off+n])
	}
	c := l.src[l.off]
	if isDigit(c) || (c == '.' && isDigit(l.byteAt(1))) {
		return l.scanNumber(start)
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	if r == '_' || unicode.IsLetter(r) {
		from := l.off
		for l.off < len(l.src) {
			r, _ := utf8.DecodeRuneInString(l.src[l.off:])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			l.advance()
		}
		return token{kind: tokName, pos: start, text: l.src[from:l.off]}, nil
	}
	for _, op := range operators {
		if strings.HasPrefix(l.src[l.off:], op) {
			for range op {
				l.advance()
			}
			switch op {
			case "(", "[", "{":
				l.depth++
			case ")", "]", "}":
				if l.depth > 0 {
					l.depth--
				}
			}
			return token{kind: tokOp, pos: start, text: op}, nil
		}
	}
	return token{}, l.errorf(start, "invalid character %q", r)
}

// stringPrefix reports whether a string literal starts at the current
// offset, and the length of its prefix letters.
func (l *lexer) stringPrefix() (int, bool) {
	for n := 0; n <= 2; n++ {
		q := l.byteAt(n)
		if q == '\'' || q == '"' {
			return n, true
		}
		if !strings.ContainsRune("rRuUbBfF", rune(q)) {
			return 0, false
		}
	}
	return 0, false
}

func (l *lexer) scanString(start Position, prefix string) (token, error) {
	lower := strings.ToLower(prefix)
	switch lower {
	case "", "r", "u", "b", "f", "br", "rb", "fr", "rf":
	default:
		return token{}, l.errorf(start, "invalid string prefix %q", prefix)
	}
	raw := strings.Contains(lower, "r")
	tok := token{
		kind:    tokString,
		pos:     start,
		bytes:   strings.Contains(lower, "b"),
		fstring: strings.Contains(lower, "f"),
	}
	for range prefix {
		l.advance()
	}

	q := l.src[l.off]
	triple := l.byteAt(1) == q && l.byteAt(2) == q
	delim := string(q)
	if triple {
		delim = strings.Repeat(delim, 3)
	}
	for range delim {
		l.advance()
	}

	var body strings.Builder
	for {
		if l.off >= len(l.src) {
			if triple {
				return token{}, l.errorf(start, "unterminated triple-quoted string literal")
			}
			return token{}, l.errorf(start, "unterminated string literal")
		}
		switch c := l.src[l.off]; {
		case strings.HasPrefix(l.src[l.off:], delim):
			for range delim {
				l.advance()
			}
			return l.decodeString(tok, body.String(), raw)
		case c == '\\':
			// The escaped rune never terminates the literal, even in raw mode.
			body.WriteByte('\\')
			l.advance()
			if l.off < len(l.src) {
				body.WriteRune(l.advance())
			}
		case c == '\n' && !triple:
			return token{}, l.errorf(start, "unterminated string literal")
		default:
			body.WriteRune(l.advance())
		}
	}
}

func (l *lexer) decodeString(tok token, body string, raw bool) (token, error) {
	if tok.bytes {
		for i := 0; i < len(body); i++ {
			if body[i] >= utf8.RuneSelf {
				return token{}, l.errorf(tok.pos, "bytes can only contain ASCII literal characters")
			}
		}
	}
	if raw {
		tok.text = body
		return tok, nil
	}
	s, err := unescape(body, tok.bytes)
	if err != nil {
		return token{}, l.errorf(tok.pos, "%v", err)
	}
	tok.text = s
	return tok, nil
}

// unescape decodes backslash escapes the way Python does. Unrecognized
// escapes are kept verbatim, backslash included. In bytes mode \x and octal
// escapes produce raw bytes and \u, \U and \N are not escapes.
func unescape(s string, bytesMode bool) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			i++
			continue
		}
		e := s[i+1]
		i += 2
		switch e {
		case '\n':
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			n := int(e - '0')
			for k := 0; k < 2 && i < len(s) && s[i] >= '0' && s[i] <= '7'; k++ {
				n = n*8 + int(s[i]-'0')
				i++
			}
			if err := writeCode(&b, n, bytesMode); err != nil {
				return "", err
			}
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[e]
			if e != 'x' && bytesMode {
				b.WriteByte('\\')
				b.WriteByte(e)
				continue
			}
			if i+width > len(s) || !isHex(s[i:i+width]) {
				return "", fmt.Errorf("truncated \\%c%s escape", e, strings.Repeat("X", width))
			}
			n, _ := strconv.ParseUint(s[i:i+width], 16, 32)
			i += width
			if n > unicode.MaxRune {
				return "", errors.New("illegal Unicode character")
			}
			if err := writeCode(&b, int(n), bytesMode); err != nil {
				return "", err
			}
		case 'N':
			if !bytesMode {
				return "", errors.New(`\N{...} escapes are not supported`)
			}
			b.WriteString(`\N`)
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return b.String(), nil
}

func writeCode(b *strings.Builder, n int, bytesMode bool) error {
	if !bytesMode {
		b.WriteRune(rune(n))
		return nil
	}
	if n > 0xff {
		return fmt.Errorf("invalid octal escape sequence: value %#o is out of range", n)
	}
	b.WriteByte(byte(n))
	return nil
}

func (l *lexer) scanNumber(start Position) (token, error) {
	from := l.off
	base := 10
	if l.src[l.off] == '0' {
		switch l.byteAt(1) | 0x20 {
		case 'x':
			base = 16
		case 'o':
			base = 8
		case 'b':
			base = 2
		}
	}

	isFloat := false
	if base != 10 {
		l.advance()
		l.advance()
		for l.off < len(l.src) && (isHex(l.src[l.off:l.off+1]) || l.src[l.off] == '_') {
			l.advance()
		}
	} else {
		l.digits()
		if l.byteAt(0) == '.' {
			isFloat = true
			l.advance()
			l.digits()
		}
		if c := l.byteAt(0) | 0x20; c == 'e' {
			if isDigit(l.byteAt(1)) || ((l.byteAt(1) == '+' || l.byteAt(1) == '-') && isDigit(l.byteAt(2))) {
				isFloat = true
				l.advance()
				if l.byteAt(0) == '+' || l.byteAt(0) == '-' {
					l.advance()
				}
				l.digits()
			}
		}
	}

	tok := token{kind: tokNumber, pos: start}
	if l.byteAt(0)|0x20 == 'j' && base == 10 {
		l.advance()
		tok.imag = true
	}
	lit := l.src[from:l.off]
	if l.off < len(l.src) {
		if r, _ := utf8.DecodeRuneInString(l.src[l.off:]); r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return token{}, l.errorf(start, "invalid decimal literal %q", lit+string(r))
		}
	}

	digits := lit
	if base != 10 {
		digits = lit[2:]
	}
	if !validUnderscores(digits, base != 10) {
		return token{}, l.errorf(start, "invalid number literal %q", lit)
	}
	digits = strings.ReplaceAll(digits, "_", "")
	if tok.imag {
		digits = strings.TrimRight(digits, "jJ")
	}

	switch {
	case isFloat || tok.imag:
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return token{}, l.errorf(start, "invalid number literal %q", lit)
		}
		tok.value = f
	default:
		if base == 10 && len(digits) > 1 && digits[0] == '0' && strings.Trim(digits, "0") != "" {
			return token{}, l.errorf(start, "leading zeros in decimal integer literals are not permitted")
		}
		if n, err := strconv.ParseInt(digits, base, 64); err == nil {
			tok.value = n
			break
		}
		n, ok := new(big.Int).SetString(digits, base)
		if !ok {
			return token{}, l.errorf(start, "invalid number literal %q", lit)
		}
		tok.value = n
	}
	return tok, nil
}

func (l *lexer) digits() {
	for isDigit(l.byteAt(0)) || (l.byteAt(0) == '_' && isDigit(l.byteAt(1))) {
		l.advance()
	}
}

// validUnderscores reports whether every underscore in digits sits between
// two digits. A base prefix may be directly followed by one.
func validUnderscores(digits string, prefixed bool) bool {
	if digits == "" || digits == "_" {
		return false
	}
	if prefixed {
		digits = strings.TrimPrefix(digits, "_")
	}
	return !strings.HasPrefix(digits, "_") && !strings.HasSuffix(digits, "_") && !strings.Contains(digits, "__")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if !isDigit(s[i]) && (c < 'a' || c > 'f') {
			return false
		}
	}
	return s != ""
}
