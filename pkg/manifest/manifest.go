// SPDX-License-Identifier: MPL-2.0

// Package manifest reads addon manifest files.
//
// A manifest is a literal dictionary expression. It is parsed once, without
// being executed, and its fields are type-checked lazily on access: a field
// with the wrong type only fails when that field is read, so unrelated
// malformed fields do not prevent access to valid ones.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifestoo/manifestoo/pkg/errdefs"
	"github.com/manifestoo/manifestoo/pkg/pyliteral"
)

// DefaultSource is the source label used when none is given.
const DefaultSource = "<manifest>"

// Names lists the recognized manifest file names in lookup priority order.
var Names = []string{"__manifest__.py", "__openerp__.py", "__terp__.py"}

type (
	// Manifest is an immutable, parsed addon manifest.
	Manifest struct {
		values *pyliteral.Dict
		source string
	}

	// InvalidFieldError is returned by an accessor when the stored value does
	// not have the type the field requires.
	InvalidFieldError struct {
		Key    string
		Value  any
		Source string
	}
)

// Error implements the error interface.
func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("%s has invalid type for %s in %s", pyliteral.Repr(e.Value), pyliteral.Repr(e.Key), e.Source)
}

// Unwrap returns errdefs.ErrInvalidManifest for errors.Is() compatibility.
func (e *InvalidFieldError) Unwrap() error { return errdefs.ErrInvalidManifest }

// PathIn returns the path of the first manifest file found in dir.
func PathIn(dir string) (string, bool) {
	for _, name := range Names {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// FromString parses manifest source text. source labels the manifest in
// error messages.
func FromString(src, source string) (*Manifest, error) {
	if source == "" {
		source = DefaultSource
	}
	v, err := pyliteral.ParseString(source, src)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrInvalidManifest, err, "manifest %s has invalid syntax", source)
	}
	return FromValue(v, source)
}

// FromFile reads and parses the manifest file at path.
func FromFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrInvalidManifest, err, "cannot read manifest %s", path)
	}
	return FromString(string(data), path)
}

// FromValue builds a manifest from an already evaluated literal value. The
// value must be a *pyliteral.Dict with string keys.
func FromValue(v any, source string) (*Manifest, error) {
	if source == "" {
		source = DefaultSource
	}
	d, ok := v.(*pyliteral.Dict)
	if !ok {
		return nil, errdefs.New(errdefs.ErrInvalidManifest, "manifest %s is not a dictionary", source)
	}
	for _, it := range d.Items() {
		if _, ok := it.Key.(string); !ok {
			return nil, errdefs.New(errdefs.ErrInvalidManifest, "manifest %s has non-string keys", source)
		}
	}
	return &Manifest{values: d, source: source}, nil
}

// FromMap builds a manifest from Go values. Slices become lists and maps become
// dictionaries, so the usual accessors apply.
func FromMap(m map[string]any) (*Manifest, error) {
	v, err := pyliteral.FromGo(m)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrInvalidManifest, err, "manifest %s has unsupported values", DefaultSource)
	}
	return FromValue(v, DefaultSource)
}

// Source returns the label the manifest was created with.
func (m *Manifest) Source() string { return m.source }

// Get returns the raw value stored under key, without type checking.
func (m *Manifest) Get(key string) (any, bool) { return m.values.Get(key) }

// Keys returns the declared field names in source order.
func (m *Manifest) Keys() []string {
	items := m.values.Items()
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key.(string)
	}
	return keys
}

// String renders the manifest back to literal source.
func (m *Manifest) String() string { return pyliteral.Repr(m.values) }

// Name returns the name field, or "" when unset.
func (m *Manifest) Name() (string, error) { return m.optionalString("name") }

// Summary returns the summary field, or "" when unset.
func (m *Manifest) Summary() (string, error) { return m.optionalString("summary") }

// Description returns the description field, or "" when unset.
func (m *Manifest) Description() (string, error) { return m.optionalString("description") }

// Version returns the version field, or "" when unset.
func (m *Manifest) Version() (string, error) { return m.optionalString("version") }

// License returns the license field, or "" when unset.
func (m *Manifest) License() (string, error) { return m.optionalString("license") }

// Author returns the author field, or "" when unset.
func (m *Manifest) Author() (string, error) { return m.optionalString("author") }

// Category returns the category field, or "" when unset.
func (m *Manifest) Category() (string, error) { return m.optionalString("category") }

// Website returns the website field, or "" when unset.
func (m *Manifest) Website() (string, error) { return m.optionalString("website") }

// DevelopmentStatus returns the development_status field, or "" when unset.
func (m *Manifest) DevelopmentStatus() (string, error) {
	return m.optionalString("development_status")
}

// Installable returns the installable field, true when unset.
func (m *Manifest) Installable() (bool, error) {
	return field(m, "installable", true, func(v any) (bool, bool) {
		b, ok := v.(bool)
		return b, ok
	})
}

// Depends returns the depends field, empty when unset.
func (m *Manifest) Depends() ([]string, error) {
	return field(m, "depends", []string{}, stringList)
}

// ExternalDependencies returns the external_dependencies field, keyed by
// ecosystem ("python", "bin", ...). It is empty when unset.
func (m *Manifest) ExternalDependencies() (map[string][]string, error) {
	return field(m, "external_dependencies", map[string][]string{}, func(v any) (map[string][]string, bool) {
		d, ok := v.(*pyliteral.Dict)
		if !ok {
			return nil, false
		}
		out := make(map[string][]string, d.Len())
		for _, it := range d.Items() {
			k, ok := it.Key.(string)
			if !ok {
				return nil, false
			}
			deps, ok := stringList(it.Value)
			if !ok {
				return nil, false
			}
			out[k] = deps
		}
		return out, true
	})
}

func (m *Manifest) optionalString(key string) (string, error) {
	return field(m, key, "", func(v any) (string, bool) {
		if v == nil {
			return "", true
		}
		s, ok := v.(string)
		return s, ok
	})
}

func field[T any](m *Manifest, key string, def T, check func(any) (T, bool)) (T, error) {
	v, ok := m.values.Get(key)
	if !ok {
		return def, nil
	}
	out, ok := check(v)
	if !ok {
		var zero T
		return zero, &InvalidFieldError{Key: key, Value: v, Source: m.source}
	}
	return out, nil
}

// stringList accepts a list (not a tuple) whose items are all strings.
func stringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, len(items))
	for i, x := range items {
		s, ok := x.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}
