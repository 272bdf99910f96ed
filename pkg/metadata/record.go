// SPDX-License-Identifier: MPL-2.0

package metadata

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Version is the Core Metadata version the assembler produces.
const Version = "2.1"

// multiValued lists the fields that may appear more than once.
var multiValued = []string{
	"Classifier",
	"Dynamic",
	"License-File",
	"Obsoletes-Dist",
	"Platform",
	"Project-URL",
	"Provides-Dist",
	"Provides-Extra",
	"Requires-Dist",
	"Requires-External",
	"Supported-Platform",
}

type (
	// Field is one "Name: value" entry of a Record.
	Field struct {
		Name  string
		Value string
	}

	// Record is an ordered, multi-valued set of metadata fields plus a free
	// text payload holding the long description.
	Record struct {
		fields  []Field
		payload string
	}
)

// NewRecord returns an empty Record.
func NewRecord() *Record { return &Record{} }

// Add appends a field. Runs of whitespace in value, line breaks included,
// collapse to one space so that a value never spans header lines. Values
// left empty are dropped.
func (r *Record) Add(name, value string) {
	value = noNL(value)
	if value == "" {
		return
	}
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// AddAll appends one field per non-empty value.
func (r *Record) AddAll(name string, values []string) {
	for _, v := range values {
		r.Add(name, v)
	}
}

// noNL collapses every run of whitespace, line breaks included, into one space.
func noNL(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Get returns the first value of name.
func (r *Record) Get(name string) (string, bool) {
	for _, f := range r.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// GetAll returns every value of name in insertion order.
func (r *Record) GetAll(name string) []string {
	var out []string
	for _, f := range r.fields {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Fields returns a copy of the fields in insertion order.
func (r *Record) Fields() []Field { return slices.Clone(r.fields) }

// SetPayload sets the long description.
func (r *Record) SetPayload(s string) { r.payload = s }

// Payload returns the long description.
func (r *Record) Payload() string { return r.payload }

// WriteTo writes the record in PKG-INFO format: one header line per field,
// then a blank line and the payload when there is one.
func (r *Record) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, f := range r.fields {
		c, err := fmt.Fprintf(bw, "%s: %s\n", f.Name, f.Value)
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	if r.payload != "" {
		c, err := fmt.Fprintf(bw, "\n%s", r.payload)
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// String returns the PKG-INFO rendering of the record.
func (r *Record) String() string {
	var sb strings.Builder
	_, _ = r.WriteTo(&sb)
	return sb.String()
}

// Map returns the record as a map keyed by lower-cased field names with
// dashes replaced by underscores. Multi-valued fields map to string slices,
// and the payload is stored under "description".
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.fields)+1)
	for _, f := range r.fields {
		key := jsonKey(f.Name)
		if isMultiValued(f.Name) {
			list, _ := out[key].([]string)
			out[key] = append(list, f.Value)
			continue
		}
		if _, ok := out[key]; !ok {
			out[key] = f.Value
		}
	}
	if r.payload != "" {
		out["description"] = r.payload
	}
	return out
}

// MarshalJSON encodes Map as JSON.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// MarshalTOML encodes Map as a TOML document.
func (r *Record) MarshalTOML() ([]byte, error) {
	return toml.Marshal(r.Map())
}

func jsonKey(field string) string {
	return strings.ReplaceAll(strings.ToLower(field), "-", "_")
}

func isMultiValued(field string) bool {
	return slices.ContainsFunc(multiValued, func(m string) bool {
		return strings.EqualFold(m, field)
	})
}
