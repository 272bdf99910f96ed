// SPDX-License-Identifier: MPL-2.0

package pyliteral

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrSyntax is the sentinel error wrapped by SyntaxError.
	ErrSyntax = errors.New("invalid literal syntax")
	// ErrMalformed is the sentinel error wrapped by MalformedError.
	ErrMalformed = errors.New("malformed literal")
)

// binaryOps are the tokens that may follow a complete operand in a valid
// Python expression, making it a non-literal rather than a syntax error.
var binaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "//": true, "%": true, "@": true, "**": true,
	"<<": true, ">>": true, "&": true, "|": true, "^": true,
	"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true,
	"(": true, "[": true, ".": true,
}

var exprKeywords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true,
	"if": true, "else": true, "for": true, "lambda": true, "await": true,
}

type (
	// Position is a 1-based line and column in a named source.
	Position struct {
		Filename string
		Line     int
		Col      int
	}

	// SyntaxError is returned when the source is not a syntactically valid expression.
	SyntaxError struct {
		Pos Position
		Msg string
	}

	// MalformedError is returned when the expression parses but contains a
	// node that is not a literal (a name, a call, an operator...), or a
	// dictionary key or set element that cannot be hashed.
	MalformedError struct {
		Pos    Position
		Reason string
	}

	parser struct {
		lex *lexer
		tok token
	}
)

// IsValid reports whether the position points into a source.
func (p Position) IsValid() bool { return p.Line > 0 }

// String renders "file:line:col", omitting the file when unnamed.
func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Col)
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: invalid syntax: %s", e.Pos, e.Msg)
}

// Unwrap returns ErrSyntax for errors.Is() compatibility.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Error implements the error interface.
func (e *MalformedError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: malformed node or string: %s", e.Pos, e.Reason)
	}
	return "malformed node or string: " + e.Reason
}

// Unwrap returns ErrMalformed for errors.Is() compatibility.
func (e *MalformedError) Unwrap() error { return ErrMalformed }

// Parse evaluates src as a single literal expression. filename is only used
// in error positions.
func Parse(filename string, src []byte) (any, error) {
	return ParseString(filename, string(src))
}

// ParseString is like Parse for string sources.
func ParseString(filename, src string) (any, error) {
	p := &parser{lex: newLexer(filename, src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return nil, p.syntaxf("empty expression")
	}
	v, err := p.testlist()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokNewline {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.tok.kind != tokEOF {
		return nil, p.unexpected()
	}
	return v, nil
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) isOp(op string) bool {
	return p.tok.kind == tokOp && p.tok.text == op
}

func (p *parser) syntaxf(format string, args ...any) error {
	return &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func malformed(pos Position, format string, args ...any) error {
	return &MalformedError{Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

// unexpected reports the current token, found after a complete operand.
func (p *parser) unexpected() error {
	t := p.tok
	switch {
	case t.kind == tokOp && binaryOps[t.text]:
		return malformed(t.pos, "operator %s", t.text)
	case t.kind == tokName && exprKeywords[t.text]:
		return malformed(t.pos, "keyword %s", t.text)
	default:
		return p.syntaxf("unexpected %s", t)
	}
}

// testlist parses a top-level expression, where a bare comma builds a tuple.
func (p *parser) testlist() (any, error) {
	first, err := p.expr()
	if err != nil || !p.isOp(",") {
		return first, err
	}
	items := []any{first}
	for p.isOp(",") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokNewline || p.tok.kind == tokEOF {
			break
		}
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return Tuple(items), nil
}

func (p *parser) expr() (any, error) {
	t := p.tok
	switch t.kind {
	case tokNumber:
		if t.imag {
			return nil, malformed(t.pos, "complex literal")
		}
		return t.value, p.advance()
	case tokString:
		return p.strings()
	case tokName:
		return p.name()
	case tokOp:
		switch t.text {
		case "-", "+":
			return p.unary()
		case "(":
			return p.parenthesized()
		case "[":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return p.elements("]", []any{})
		case "{":
			return p.braces()
		case "~", "*", "**":
			return nil, malformed(t.pos, "operator %s", t.text)
		}
	}
	return nil, p.syntaxf("unexpected %s", t)
}

func (p *parser) name() (any, error) {
	t := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	switch t.text {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	case "set":
		if p.isOp("(") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.isOp(")") {
				return NewSet(), p.advance()
			}
			return nil, malformed(t.pos, "call of set with arguments")
		}
	}
	if exprKeywords[t.text] {
		return nil, malformed(t.pos, "keyword %s", t.text)
	}
	return nil, malformed(t.pos, "name %q", t.text)
}

// strings concatenates adjacent string literals.
func (p *parser) strings() (any, error) {
	first := p.tok
	s := []byte{}
	for p.tok.kind == tokString {
		t := p.tok
		if t.fstring {
			return nil, malformed(t.pos, "f-string")
		}
		if t.bytes != first.bytes {
			return nil, p.syntaxf("cannot mix bytes and nonbytes literals")
		}
		s = append(s, t.text...)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if first.bytes {
		return s, nil
	}
	return string(s), nil
}

// unary evaluates a sign, which is only allowed directly on a number.
func (p *parser) unary() (any, error) {
	op := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokNumber || p.tok.imag {
		if _, err := p.expr(); err != nil {
			return nil, err
		}
		return nil, malformed(op.pos, "operand of unary %s", op.text)
	}
	v := p.tok.value
	if err := p.advance(); err != nil {
		return nil, err
	}
	if op.text == "+" {
		return v, nil
	}
	switch n := v.(type) {
	case int64:
		return -n, nil
	case *big.Int:
		return new(big.Int).Neg(n), nil
	case float64:
		return -n, nil
	}
	return nil, malformed(op.pos, "numeric literal %T", v)
}

func (p *parser) parenthesized() (any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.isOp(")") {
		return Tuple{}, p.advance()
	}
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	switch {
	case p.isOp(")"):
		return first, p.advance()
	case p.isOp(","):
		if err := p.advance(); err != nil {
			return nil, err
		}
		items, err := p.elements(")", []any{first})
		if err != nil {
			return nil, err
		}
		return Tuple(items), nil
	default:
		return nil, p.unexpected()
	}
}

// elements parses comma-separated values up to and including closer, where
// a trailing comma is allowed.
func (p *parser) elements(closer string, items []any) ([]any, error) {
	for !p.isOp(closer) {
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		if p.isOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if !p.isOp(closer) {
			return nil, p.unexpected()
		}
	}
	return items, p.advance()
}

// braces parses a dict or a set display.
func (p *parser) braces() (any, error) {
	open := p.tok.pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.isOp("}") {
		return NewDict(), p.advance()
	}
	keyPos := p.tok.pos
	first, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.isOp(":") {
		return p.dict(first, keyPos)
	}

	items := []any{first}
	switch {
	case p.isOp(","):
		if err := p.advance(); err != nil {
			return nil, err
		}
		if items, err = p.elements("}", items); err != nil {
			return nil, err
		}
	case p.isOp("}"):
		if err := p.advance(); err != nil {
			return nil, err
		}
	default:
		return nil, p.unexpected()
	}
	s := NewSet()
	for _, v := range items {
		if err := s.Add(v); err != nil {
			return nil, malformed(open, "%v", err)
		}
	}
	return s, nil
}

// dict parses the rest of a dict display whose first key was already read.
func (p *parser) dict(key any, keyPos Position) (any, error) {
	d := NewDict()
	for {
		if !p.isOp(":") {
			return nil, p.unexpected()
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := d.Set(key, v); err != nil {
			return nil, malformed(keyPos, "%v", err)
		}
		if p.isOp("}") {
			break
		}
		if !p.isOp(",") {
			return nil, p.unexpected()
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isOp("}") {
			break
		}
		keyPos = p.tok.pos
		if key, err = p.expr(); err != nil {
			return nil, err
		}
	}
	return d, p.advance()
}
