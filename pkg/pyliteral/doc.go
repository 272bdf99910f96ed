// SPDX-License-Identifier: MPL-2.0

// Package pyliteral evaluates literal data-structure expressions written in
// Python syntax, such as addon manifest files, without executing them.
//
// The source is tokenized with Python's lexical rules (string prefixes,
// adjacent string concatenation, escape sequences, numeric literal forms,
// comments and line joining inside brackets) and evaluated by a parser that
// only accepts literal displays: strings, bytes, integers, floats, True,
// False, None, lists, tuples, dictionaries, sets, parenthesized expressions
// and unary signs on numbers. Anything else that is valid Python (names,
// calls, operators, comprehensions) is rejected as malformed; anything that
// is not valid Python is a syntax error.
//
// Evaluated values map to Go as follows:
//
//	str            string
//	bytes          []byte
//	int            int64, or *big.Int when it does not fit
//	float          float64
//	True/False     bool
//	None           nil
//	list           []any
//	tuple          Tuple
//	dict           *Dict (insertion ordered)
//	set            *Set (insertion ordered)
//
// [Repr] is the inverse: it renders such a value back to literal source that
// [Parse] reads to an equal value.
package pyliteral
