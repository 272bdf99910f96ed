// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/manifestoo/manifestoo/pkg/pyliteral"
)

// ManifestSource renders a Go map as manifest source text.
func ManifestSource(t testing.TB, fields map[string]any) string {
	t.Helper()
	v, err := pyliteral.FromGo(fields)
	if err != nil {
		t.Fatalf("cannot render manifest: %v", err)
	}
	return pyliteral.Repr(v)
}

// WriteAddon creates dir as an addon with an empty __init__.py and a
// __manifest__.py rendered from fields. It returns dir.
func WriteAddon(t testing.TB, dir string, fields map[string]any) string {
	t.Helper()
	MustWriteFile(t, filepath.Join(dir, "__init__.py"), "")
	MustWriteFile(t, filepath.Join(dir, "__manifest__.py"), ManifestSource(t, fields))
	return dir
}

// PopulateAddonsDir creates one addon per entry of addons under addonsDir.
func PopulateAddonsDir(t testing.TB, addonsDir string, addons map[string]map[string]any) {
	t.Helper()
	MustMkdirAll(t, addonsDir)
	for name, fields := range addons {
		WriteAddon(t, filepath.Join(addonsDir, name), fields)
	}
}
