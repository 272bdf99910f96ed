// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFilesystemPath_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path FilesystemPath
		want bool
	}{
		{"absolute path", FilesystemPath("/srv/odoo/addons"), true},
		{"relative path", FilesystemPath("addons/mis_builder"), true},
		{"path with spaces", FilesystemPath("/path/to/my addons"), true},
		{"dot path", FilesystemPath("."), true},
		{"empty is invalid", FilesystemPath(""), false},
		{"whitespace only is invalid", FilesystemPath("   "), false},
		{"tab only is invalid", FilesystemPath("\t"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.path.Validate()
			if (err == nil) != tt.want {
				t.Fatalf("FilesystemPath(%q).Validate() error = %v, wantValid %v", tt.path, err, tt.want)
			}
			if tt.want {
				return
			}
			if !errors.Is(err, ErrInvalidFilesystemPath) {
				t.Errorf("error should wrap ErrInvalidFilesystemPath, got: %v", err)
			}
			var fpErr *InvalidFilesystemPathError
			if !errors.As(err, &fpErr) {
				t.Errorf("error should be *InvalidFilesystemPathError, got: %T", err)
			}
		})
	}
}

func TestFilesystemPath_Expand(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	tests := []struct {
		in   FilesystemPath
		want FilesystemPath
	}{
		{"~", FilesystemPath(filepath.Clean(home))},
		{"~/addons", FilesystemPath(filepath.Join(home, "addons"))},
		{"a/../b/", "b"},
		{"~other/x", "~other/x"},
	}
	for _, tt := range tests {
		got, err := tt.in.Expand()
		if err != nil || got != tt.want {
			t.Errorf("Expand(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestFilesystemPath_IsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if !FilesystemPath(dir).IsDir() {
		t.Error("IsDir(dir) = false")
	}
	if FilesystemPath(file).IsDir() || FilesystemPath(filepath.Join(dir, "missing")).IsDir() {
		t.Error("IsDir() must be false for files and missing paths")
	}
	if FilesystemPath("/srv/odoo").String() != "/srv/odoo" {
		t.Error("String() mismatch")
	}
}
