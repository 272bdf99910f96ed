// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/manifestoo/manifestoo/pkg/errdefs"
	"github.com/manifestoo/manifestoo/pkg/pyliteral"
)

// read calls the accessor named key and returns its result.
func read(t *testing.T, m *Manifest, key string) (any, error) {
	t.Helper()

	switch key {
	case "name":
		return m.Name()
	case "summary":
		return m.Summary()
	case "description":
		return m.Description()
	case "version":
		return m.Version()
	case "license":
		return m.License()
	case "author":
		return m.Author()
	case "category":
		return m.Category()
	case "website":
		return m.Website()
	case "development_status":
		return m.DevelopmentStatus()
	case "installable":
		return m.Installable()
	case "depends":
		return m.Depends()
	case "external_dependencies":
		return m.ExternalDependencies()
	}
	t.Fatalf("no accessor for %q", key)
	return nil, nil
}

func TestManifest_ValidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		src  string
		want any
	}{
		{"name", `'the name'`, "the name"},
		{"name", `None`, ""},
		{"version", `'1.0.0'`, "1.0.0"},
		{"version", `None`, ""},
		{"license", `'GPL-3'`, "GPL-3"},
		{"author", `'Odoo Community Association (OCA)'`, "Odoo Community Association (OCA)"},
		{"author", `u"Odoo Community Association (OCA), " u"ACSONE SA/NV"`, "Odoo Community Association (OCA), ACSONE SA/NV"},
		{"name", `u'Caf\xe9'`, "Café"},
		{"version", `"8.0" ".1.0.0"`, "8.0.1.0.0"},
		{"development_status", `'Beta'`, "Beta"},
		{"development_status", `None`, ""},
		{"depends", `['a', 'b']`, []string{"a", "b"}},
		{"depends", `[]`, []string{}},
		{"external_dependencies", `{'python': ['httpx']}`, map[string][]string{"python": {"httpx"}}},
		{"installable", `True`, true},
		{"installable", `False`, false},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.src, func(t *testing.T) {
			t.Parallel()

			m, err := FromString("{"+pyliteral.Repr(tt.key)+": "+tt.src+"}", "")
			if err != nil {
				t.Fatalf("FromString() error: %v", err)
			}
			got, err := read(t, m, tt.key)
			if err != nil {
				t.Fatalf("%s accessor error: %v", tt.key, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s = %#v, want %#v", tt.key, got, tt.want)
			}
		})
	}
}

func TestManifest_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key string
		src string
	}{
		{"name", `1`},
		{"version", `1`},
		{"license", `['i']`},
		{"development_status", `{}`},
		{"depends", `1`},
		{"depends", `{}`},
		{"depends", `None`},
		{"depends", `('a', 'b')`},
		{"depends", `['a', 1]`},
		{"depends", `{'a', 'b'}`},
		{"external_dependencies", `{1: {}}`},
		{"external_dependencies", `{'python': {}}`},
		{"external_dependencies", `None`},
		{"external_dependencies", `[1]`},
		{"installable", `1`},
		{"installable", `None`},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.src, func(t *testing.T) {
			t.Parallel()

			m, err := FromString("{"+pyliteral.Repr(tt.key)+": "+tt.src+"}", "test")
			if err != nil {
				t.Fatalf("FromString() error: %v", err)
			}
			_, err = read(t, m, tt.key)
			if !errors.Is(err, errdefs.ErrInvalidManifest) {
				t.Fatalf("%s accessor error = %v, want ErrInvalidManifest", tt.key, err)
			}
			var fe *InvalidFieldError
			if !errors.As(err, &fe) {
				t.Fatalf("error should be *InvalidFieldError, got %T", err)
			}
			if fe.Key != tt.key {
				t.Errorf("Key = %q, want %q", fe.Key, tt.key)
			}
			if !strings.Contains(err.Error(), "has invalid type for '"+tt.key+"' in test") {
				t.Errorf("unexpected message: %s", err)
			}
		})
	}
}

func TestManifest_Defaults(t *testing.T) {
	t.Parallel()

	m, err := FromString("{}", "")
	if err != nil {
		t.Fatalf("FromString() error: %v", err)
	}

	defaults := map[string]any{
		"name":                  "",
		"summary":               "",
		"description":           "",
		"version":               "",
		"license":               "",
		"author":                "",
		"category":              "",
		"website":               "",
		"development_status":    "",
		"installable":           true,
		"depends":               []string{},
		"external_dependencies": map[string][]string{},
	}
	for key, want := range defaults {
		got, err := read(t, m, key)
		if err != nil {
			t.Errorf("%s error: %v", key, err)
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s = %#v, want %#v", key, got, want)
		}
	}
}

func TestManifest_LazyValidation(t *testing.T) {
	t.Parallel()

	m, err := FromString(`{'name': 'ok', 'depends': 'not a list'}`, "")
	if err != nil {
		t.Fatalf("FromString() error: %v", err)
	}
	if name, err := m.Name(); err != nil || name != "ok" {
		t.Errorf("Name() = %q, %v", name, err)
	}
	if _, err := m.Depends(); err == nil {
		t.Error("Depends() should fail")
	}
}

func TestFromString_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{"syntax", `{'installable':}`, "has invalid syntax"},
		{"not a dict", `[]`, "is not a dictionary"},
		{"non-string key", `{1: 'a'}`, "has non-string keys"},
		{"code", `__import__('os')`, "has invalid syntax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := FromString(tt.src, "m.py")
			if !errors.Is(err, errdefs.ErrInvalidManifest) {
				t.Fatalf("FromString(%q) error = %v, want ErrInvalidManifest", tt.src, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestFromMap_RoundTrip(t *testing.T) {
	t.Parallel()

	m, err := FromMap(map[string]any{
		"name":                  "Addon 1",
		"version":               "14.0.1.0.0",
		"installable":           false,
		"depends":               []string{"mail", "base"},
		"external_dependencies": map[string][]string{"python": {"dateutil"}, "bin": {"wkhtmltopdf"}},
	})
	if err != nil {
		t.Fatalf("FromMap() error: %v", err)
	}

	again, err := FromString(m.String(), "roundtrip")
	if err != nil {
		t.Fatalf("FromString(String()) error: %v", err)
	}
	for _, key := range m.Keys() {
		want, err := read(t, m, key)
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		got, err := read(t, again, key)
		if err != nil {
			t.Fatalf("%s after round trip: %v", key, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s = %#v after round trip, want %#v", key, got, want)
		}
	}
}

func TestFromValue_NotADict(t *testing.T) {
	t.Parallel()

	if _, err := FromValue([]any{}, ""); !errors.Is(err, errdefs.ErrInvalidManifest) {
		t.Errorf("FromValue([]) error = %v", err)
	}
}

func TestPathIn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, ok := PathIn(dir); ok {
		t.Fatal("PathIn() on an empty dir should report false")
	}

	if err := os.WriteFile(filepath.Join(dir, "__terp__.py"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p, ok := PathIn(dir); !ok || filepath.Base(p) != "__terp__.py" {
		t.Errorf("PathIn() = %q, %v", p, ok)
	}

	if err := os.WriteFile(filepath.Join(dir, "__openerp__.py"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p, _ := PathIn(dir); filepath.Base(p) != "__openerp__.py" {
		t.Errorf("PathIn() = %q, want __openerp__.py to take priority", p)
	}

	if err := os.Mkdir(filepath.Join(dir, "__manifest__.py"), 0o755); err != nil {
		t.Fatal(err)
	}
	if p, _ := PathIn(dir); filepath.Base(p) != "__openerp__.py" {
		t.Errorf("PathIn() = %q, a directory named __manifest__.py must be ignored", p)
	}
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "__manifest__.py")
	if err := os.WriteFile(p, []byte("# comment\n{'name': 'x'}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := FromFile(p)
	if err != nil {
		t.Fatalf("FromFile() error: %v", err)
	}
	if m.Source() != p {
		t.Errorf("Source() = %q, want %q", m.Source(), p)
	}

	if _, err := FromFile(p + ".missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("FromFile(missing) error = %v, want os.ErrNotExist", err)
	}
}
