// SPDX-License-Identifier: MPL-2.0

// Package addon locates addon directories and collects them into sets.
package addon

import (
	"os"
	"path/filepath"

	"github.com/manifestoo/manifestoo/pkg/errdefs"
	"github.com/manifestoo/manifestoo/pkg/manifest"
)

// InitFile is the initializer marker every addon directory must contain.
const InitFile = "__init__.py"

type (
	// Addon is a validated addon directory.
	Addon struct {
		Manifest     *manifest.Manifest
		ManifestPath string
		// Name is the technical name, the base name of Path unless given explicitly.
		Name string
		Path string
	}

	// Option configures FromDir.
	Option func(*options)

	options struct {
		allowNotInstallable bool
	}
)

// AllowNotInstallable accepts addons whose manifest sets installable to False.
func AllowNotInstallable() Option {
	return func(o *options) { o.allowNotInstallable = true }
}

// New returns an Addon for a manifest already read from manifestPath. When
// name is empty it is derived from the manifest's directory.
func New(m *manifest.Manifest, manifestPath, name string) *Addon {
	dir := filepath.Dir(manifestPath)
	if name == "" {
		name = filepath.Base(dir)
	}
	return &Addon{Manifest: m, ManifestPath: manifestPath, Name: name, Path: dir}
}

// FromDir validates dir and returns the addon it contains. Failures derive
// from errdefs.ErrAddonNotFound and are checked in this order: not a
// directory, no manifest, invalid or not installable manifest, missing
// initializer marker.
func FromDir(dir string, opts ...Option) (*Addon, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, errdefs.New(errdefs.ErrAddonNotFoundNotADirectory, "%s is not a directory", dir)
	}
	manifestPath, ok := manifest.PathIn(dir)
	if !ok {
		return nil, errdefs.New(errdefs.ErrAddonNotFoundNoManifest, "no manifest file found in %s", dir)
	}
	m, err := manifest.FromFile(manifestPath)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrAddonNotFoundInvalidManifest, err, "%s", err.Error())
	}
	if !o.allowNotInstallable {
		installable, err := m.Installable()
		if err != nil {
			return nil, errdefs.Wrap(errdefs.ErrAddonNotFoundInvalidManifest, err, "%s", err.Error())
		}
		if !installable {
			return nil, errdefs.New(errdefs.ErrAddonNotFoundNotInstallable, "%s is not installable", dir)
		}
	}
	if info, err := os.Stat(filepath.Join(dir, InitFile)); err != nil || !info.Mode().IsRegular() {
		return nil, errdefs.New(errdefs.ErrAddonNotFoundNoInit, "%s is missing an %s", dir, InitFile)
	}
	return New(m, manifestPath, ""), nil
}

// IsAddonDir reports whether dir holds a valid addon.
func IsAddonDir(dir string, allowNotInstallable bool) bool {
	var opts []Option
	if allowNotInstallable {
		opts = append(opts, AllowNotInstallable())
	}
	_, err := FromDir(dir, opts...)
	return err == nil
}
