// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/manifestoo/manifestoo/internal/testutil"
	"github.com/manifestoo/manifestoo/pkg/errdefs"
	"github.com/manifestoo/manifestoo/pkg/manifest"
)

func writeAddonDir(t *testing.T, name, manifestSrc string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	testutil.MustWriteFile(t, filepath.Join(dir, InitFile), "")
	testutil.MustWriteFile(t, filepath.Join(dir, "__manifest__.py"), manifestSrc)
	return dir
}

func TestFromDir(t *testing.T) {
	t.Parallel()

	dir := writeAddonDir(t, "theaddon", `{'name': 'the addon'}`)
	a, err := FromDir(dir)
	if err != nil {
		t.Fatalf("FromDir() error: %v", err)
	}
	if a.Name != "theaddon" {
		t.Errorf("Name = %q, want theaddon", a.Name)
	}
	if a.Path != dir {
		t.Errorf("Path = %q, want %q", a.Path, dir)
	}
	if a.ManifestPath != filepath.Join(dir, "__manifest__.py") {
		t.Errorf("ManifestPath = %q", a.ManifestPath)
	}
	if name, _ := a.Manifest.Name(); name != "the addon" {
		t.Errorf("manifest name = %q", name)
	}
}

func TestFromDir_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string
		setup    func(t *testing.T, dir string)
		want     error
	}{
		{"not installable", `{'installable': False}`, nil, errdefs.ErrAddonNotFoundNotInstallable},
		{"not a dict", `[]`, nil, errdefs.ErrAddonNotFoundInvalidManifest},
		{"syntax error", `{'installable':}`, nil, errdefs.ErrAddonNotFoundInvalidManifest},
		{"type error", `{'installable': '?'}`, nil, errdefs.ErrAddonNotFoundInvalidManifest},
		{"no manifest", `{}`, func(t *testing.T, dir string) {
			testutil.MustRemove(t, filepath.Join(dir, "__manifest__.py"))
		}, errdefs.ErrAddonNotFoundNoManifest},
		{"no init", `{}`, func(t *testing.T, dir string) {
			testutil.MustRemove(t, filepath.Join(dir, InitFile))
		}, errdefs.ErrAddonNotFoundNoInit},
		{"invalid manifest before missing init", `[]`, func(t *testing.T, dir string) {
			testutil.MustRemove(t, filepath.Join(dir, InitFile))
		}, errdefs.ErrAddonNotFoundInvalidManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := writeAddonDir(t, "a", tt.manifest)
			if tt.setup != nil {
				tt.setup(t, dir)
			}
			_, err := FromDir(dir)
			if !errors.Is(err, tt.want) {
				t.Fatalf("FromDir() error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, errdefs.ErrAddonNotFound) {
				t.Errorf("error should derive from ErrAddonNotFound: %v", err)
			}
		})
	}
}

func TestFromDir_NotADirectory(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	if _, err := FromDir(filepath.Join(tmp, "missing")); !errors.Is(err, errdefs.ErrAddonNotFoundNotADirectory) {
		t.Errorf("missing dir error = %v", err)
	}

	file := filepath.Join(tmp, "file")
	testutil.MustWriteFile(t, file, "")
	if _, err := FromDir(file); !errors.Is(err, errdefs.ErrAddonNotFoundNotADirectory) {
		t.Errorf("regular file error = %v", err)
	}
}

func TestFromDir_AllowNotInstallable(t *testing.T) {
	t.Parallel()

	dir := writeAddonDir(t, "a", `{'installable': False}`)
	if _, err := FromDir(dir, AllowNotInstallable()); err != nil {
		t.Errorf("FromDir(AllowNotInstallable) error: %v", err)
	}
}

func TestFromDir_LegacyManifestName(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "legacy")
	testutil.MustWriteFile(t, filepath.Join(dir, InitFile), "")
	testutil.MustWriteFile(t, filepath.Join(dir, "__openerp__.py"), `{'version': '8.0.1.0.0'}`)

	a, err := FromDir(dir)
	if err != nil {
		t.Fatalf("FromDir() error: %v", err)
	}
	if filepath.Base(a.ManifestPath) != "__openerp__.py" {
		t.Errorf("ManifestPath = %q", a.ManifestPath)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	m, err := manifest.FromMap(map[string]any{"name": "the addon"})
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(os.TempDir(), "theaddon", "__manifest__.py")
	if a := New(m, p, ""); a.Name != "theaddon" {
		t.Errorf("Name = %q, want theaddon", a.Name)
	}
	if a := New(m, filepath.Join(os.TempDir(), "tmp", "__manifest__.py"), "theaddon"); a.Name != "theaddon" {
		t.Errorf("Name = %q, want theaddon", a.Name)
	}
}

func TestIsAddonDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		manifest            string
		allowNotInstallable bool
		want                bool
	}{
		{`{}`, false, true},
		{`{'installable': '?'}`, false, false},
		{`{'installable': False}`, false, false},
		{`{'installable': False}`, true, true},
	}

	for _, tt := range tests {
		dir := writeAddonDir(t, "a", tt.manifest)
		if got := IsAddonDir(dir, tt.allowNotInstallable); got != tt.want {
			t.Errorf("IsAddonDir(%s, %v) = %v, want %v", tt.manifest, tt.allowNotInstallable, got, tt.want)
		}
	}
}
