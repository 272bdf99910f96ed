// SPDX-License-Identifier: MPL-2.0

package pyliteral

import (
	"errors"
	"fmt"
	"maps"
	"math/big"
	"slices"
)

// ErrUnhashable is returned when a list, dict or similar value is used as a dict key.
var ErrUnhashable = errors.New("unhashable type")

type (
	// Tuple is an immutable sequence. It is deliberately distinct from []any:
	// a tuple is never accepted where a list is expected.
	Tuple []any

	// Item is one key/value pair of a Dict.
	Item struct {
		Key   any
		Value any
	}

	// Dict is an insertion-ordered mapping with arbitrary hashable keys.
	// Setting an existing key replaces its value and keeps its position.
	Dict struct {
		items []Item
		index map[string]int
	}

	// Set is an insertion-ordered collection of distinct hashable values.
	Set struct {
		items []any
		index map[string]struct{}
	}
)

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Set stores value under key.
func (d *Dict) Set(key, value any) error {
	if !Hashable(key) {
		return fmt.Errorf("%w: %s", ErrUnhashable, TypeName(key))
	}
	if d.index == nil {
		d.index = make(map[string]int)
	}
	k := Repr(key)
	if i, ok := d.index[k]; ok {
		d.items[i].Value = value
		return nil
	}
	d.index[k] = len(d.items)
	d.items = append(d.items, Item{Key: key, Value: value})
	return nil
}

// Get returns the value stored under key.
func (d *Dict) Get(key any) (any, bool) {
	if d == nil || !Hashable(key) {
		return nil, false
	}
	i, ok := d.index[Repr(key)]
	if !ok {
		return nil, false
	}
	return d.items[i].Value, true
}

// Len returns the number of items.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.items)
}

// Items returns a copy of the items in insertion order.
func (d *Dict) Items() []Item {
	if d == nil {
		return nil
	}
	return slices.Clone(d.items)
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{index: make(map[string]struct{})}
}

// Add inserts v unless an equal value is already present.
func (s *Set) Add(v any) error {
	if !Hashable(v) {
		return fmt.Errorf("%w: %s", ErrUnhashable, TypeName(v))
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	k := Repr(v)
	if _, ok := s.index[k]; ok {
		return nil
	}
	s.index[k] = struct{}{}
	s.items = append(s.items, v)
	return nil
}

// Contains reports whether v is an element of s.
func (s *Set) Contains(v any) bool {
	if s == nil || !Hashable(v) {
		return false
	}
	_, ok := s.index[Repr(v)]
	return ok
}

// Len returns the number of elements.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns a copy of the elements in insertion order.
func (s *Set) Items() []any {
	if s == nil {
		return nil
	}
	return slices.Clone(s.items)
}

// Hashable reports whether v may be used as a Dict key or Set element.
func Hashable(v any) bool {
	switch t := v.(type) {
	case nil, string, bool, int64, *big.Int, float64, []byte:
		return true
	case Tuple:
		for _, x := range t {
			if !Hashable(x) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// TypeName returns the literal type name of v ("str", "list", ...).
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "NoneType"
	case string:
		return "str"
	case []byte:
		return "bytes"
	case bool:
		return "bool"
	case int64, *big.Int:
		return "int"
	case float64:
		return "float"
	case []any:
		return "list"
	case Tuple:
		return "tuple"
	case *Dict:
		return "dict"
	case *Set:
		return "set"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// FromGo converts common Go values into their literal representation:
// []string and other slices become lists, map[string]T becomes a Dict with
// keys in sorted order, and every integer kind becomes int64.
func FromGo(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, int64, *big.Int, float64, []byte, *Dict, *Set:
		return v, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float32:
		return float64(t), nil
	case Tuple:
		items, err := fromGoSlice(t)
		if err != nil {
			return nil, err
		}
		return Tuple(items), nil
	case []any:
		return fromGoSlice(t)
	case []string:
		items := make([]any, len(t))
		for i, s := range t {
			items[i] = s
		}
		return items, nil
	case map[string]any:
		return fromGoMap(t)
	case map[string]string:
		return fromGoMap(t)
	case map[string][]string:
		return fromGoMap(t)
	default:
		return nil, fmt.Errorf("cannot represent %T as a literal", v)
	}
}

func fromGoSlice(s []any) ([]any, error) {
	items := make([]any, len(s))
	for i, x := range s {
		v, err := FromGo(x)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}

func fromGoMap[V any](m map[string]V) (*Dict, error) {
	d := NewDict()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		v, err := FromGo(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		if err := d.Set(k, v); err != nil {
			return nil, err
		}
	}
	return d, nil
}
