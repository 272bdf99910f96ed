// SPDX-License-Identifier: MPL-2.0

// Package metadata assembles Python package metadata (Core Metadata 2.1)
// for an Odoo addon from its manifest, its README, its series parameters and
// the version computed from its version-control history.
package metadata

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/mail"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/manifestoo/manifestoo/pkg/addon"
	"github.com/manifestoo/manifestoo/pkg/errdefs"
	"github.com/manifestoo/manifestoo/pkg/manifest"
	"github.com/manifestoo/manifestoo/pkg/postversion"
	"github.com/manifestoo/manifestoo/pkg/series"
	"github.com/manifestoo/manifestoo/pkg/vcs"
)

const ocaAuthor = "Odoo Community Association (OCA)"

var (
	// externalDependenciesMap maps Python import names commonly found in
	// manifests to the distribution providing them.
	externalDependenciesMap = map[string]string{
		"Asterisk":           "py-Asterisk",
		"coda":               "pycoda",
		"cups":               "pycups",
		"dateutil":           "python-dateutil",
		"ldap":               "python-ldap",
		"serial":             "pyserial",
		"suds":               "suds-jurko",
		"stdnum":             "python-stdnum",
		"Crypto.Cipher.DES3": "pycrypto",
		"OpenSSL":            "pyOpenSSL",
	}

	licenseClassifiers = map[string]string{
		"agpl-3":                      "License :: OSI Approved :: GNU Affero General Public License v3",
		"agpl-3 or any later version": "License :: OSI Approved :: GNU Affero General Public License v3 or later (AGPLv3+)",
		"gpl-2":                       "License :: OSI Approved :: GNU General Public License v2 (GPLv2)",
		"gpl-2 or any later version":  "License :: OSI Approved :: GNU General Public License v2 or later (GPLv2+)",
		"gpl-3":                       "License :: OSI Approved :: GNU General Public License v3 (GPLv3)",
		"gpl-3 or any later version":  "License :: OSI Approved :: GNU General Public License v3 or later (GPLv3+)",
		"lgpl-2":                      "License :: OSI Approved :: GNU Lesser General Public License v2 (LGPLv2)",
		"lgpl-2 or any later version": "License :: OSI Approved :: GNU Lesser General Public License v2 or later (LGPLv2+)",
		"lgpl-3":                      "License :: OSI Approved :: GNU Lesser General Public License v3 (LGPLv3)",
		"lgpl-3 or any later version": "License :: OSI Approved :: GNU Lesser General Public License v3 or later (LGPLv3+)",
	}

	developmentStatusClassifiers = map[string]string{
		"alpha":             "Development Status :: 3 - Alpha",
		"beta":              "Development Status :: 4 - Beta",
		"production/stable": "Development Status :: 5 - Production/Stable",
		"stable":            "Development Status :: 5 - Production/Stable",
		"production":        "Development Status :: 5 - Production/Stable",
		"mature":            "Development Status :: 6 - Mature",
	}

	// readmes are tried in order; the first existing file is the long description.
	readmes = []struct{ name, contentType string }{
		{"README.rst", "text/x-rst"},
		{"README.md", "text/markdown"},
		{"README.txt", "text/plain"},
	}
)

// FromAddonDir returns the metadata of the addon in dir. The long
// description is stored in the record payload; no other value contains a
// line break.
//
// Failures are all-or-nothing: dir must hold an installable addon whose
// series is supported, and any manifest field of the wrong type aborts the
// assembly.
func FromAddonDir(ctx context.Context, dir string, opts Options) (*Record, error) {
	a, err := addon.FromDir(dir)
	if err != nil {
		return nil, err
	}
	return FromAddon(ctx, a, opts)
}

// FromAddon is FromAddonDir for an already located addon.
func FromAddon(ctx context.Context, a *addon.Addon, opts Options) (*Record, error) {
	s, info, err := resolveSeries(a, opts.SeriesOverride)
	if err != nil {
		return nil, err
	}

	name, version, precomputed, err := readPrecomputed(opts.PrecomputedMetadataFile)
	if err != nil {
		return nil, err
	}
	if !precomputed {
		abs, err := filepath.Abs(a.Path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", a.Path, err)
		}
		name = filepath.Base(abs)
		version, err = computeVersion(ctx, a, info, opts)
		if err != nil {
			return nil, err
		}
	}

	m := a.Manifest
	reqs, err := installRequires(info, m, opts)
	if err != nil {
		return nil, err
	}
	if opts.ExternalDependenciesOnly {
		reqs = filterExternal(reqs)
	}

	fields, err := readFields(m)
	if err != nil {
		return nil, err
	}
	classifiers, err := Classifiers(s, m)
	if err != nil {
		return nil, err
	}
	longDesc, contentType, err := LongDescription(a)
	if err != nil {
		return nil, err
	}

	rec := NewRecord()
	rec.Add("Metadata-Version", Version)
	rec.Add("Name", distributionName(name, info))
	rec.Add("Version", version)
	rec.Add("Requires-Python", info.PythonRequires)
	rec.AddAll("Requires-Dist", reqs)
	rec.Add("Summary", cmp.Or(fields.summary, fields.name))
	rec.Add("Home-page", fields.website)
	rec.Add("License", fields.license)
	rec.Add("Author", fields.author)
	rec.Add("Author-email", authorEmail(fields.author))
	rec.AddAll("Classifier", classifiers)
	rec.SetPayload(longDesc)
	rec.Add("Description-Content-Type", contentType)
	return rec, nil
}

// resolveSeries returns the series of the addon, derived from the first two
// components of its manifest version unless override is set.
func resolveSeries(a *addon.Addon, override string) (series.Series, series.Info, error) {
	version, err := a.Manifest.Version()
	if err != nil {
		return "", series.Info{}, err
	}
	if version == "" {
		slog.Warn("no version in manifest, using default", "path", a.Path, "version", postversion.DefaultVersion)
		version = postversion.DefaultVersion
	}

	seriesStr := override
	if seriesStr == "" {
		parts := strings.Split(version, ".")
		if len(parts) < series.MinVersionParts {
			return "", series.Info{}, errdefs.New(errdefs.ErrUnsupportedManifestVersion,
				"Version in manifest must have at least %d components and start with the Odoo series number (in %s)",
				series.MinVersionParts, a.Path)
		}
		seriesStr = parts[0] + "." + parts[1]
	}
	info, err := series.Lookup(seriesStr, a.Path)
	if err != nil {
		return "", series.Info{}, err
	}
	return info.Series, info, nil
}

func computeVersion(ctx context.Context, a *addon.Addon, info series.Info, opts Options) (string, error) {
	repo := opts.Repository
	if repo == nil {
		repo = vcs.NewGitCLI()
	}
	strategy := info.PostVersionStrategy.Or(opts.PostVersionStrategy)
	return postversion.NewEngine(repo).Compute(ctx, a, strategy)
}

// readPrecomputed reads Name and Version from a PKG-INFO file. It reports
// false when path is empty or is not a regular file.
func readPrecomputed(path string) (addonName, version string, ok bool, err error) {
	if path == "" {
		return "", "", false, nil
	}
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() {
		return "", "", false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", false, fmt.Errorf("reading precomputed metadata: %w", err)
	}
	// The body separator is optional in PKG-INFO files without a description.
	msg, err := mail.ReadMessage(bytes.NewReader(append(data, '\n', '\n')))
	if err != nil {
		return "", "", false, fmt.Errorf("parsing precomputed metadata %s: %w", path, err)
	}
	addonName, err = DistributionNameToAddonName(msg.Header.Get("Name"))
	if err != nil {
		return "", "", false, err
	}
	return addonName, msg.Header.Get("Version"), true, nil
}

// installRequires returns the sorted requirements of the addon: Odoo itself,
// the non-core addons it depends on and its Python external dependencies.
func installRequires(info series.Info, m *manifest.Manifest, opts Options) ([]string, error) {
	depends, err := m.Depends()
	if err != nil {
		return nil, err
	}
	external, err := m.ExternalDependencies()
	if err != nil {
		return nil, err
	}

	reqs := []string{info.OdooDep}
	for _, dep := range depends {
		if info.IsCoreAddon(dep) {
			continue
		}
		req, overridden := opts.DependsOverride[dep]
		if !overridden {
			req = requirement(dep, info)
		}
		if req != "" {
			reqs = append(reqs, req)
		}
	}
	pythonOverride := opts.ExternalDependenciesOverride["python"]
	for _, dep := range external["python"] {
		if override, ok := pythonOverride[dep]; ok {
			reqs = append(reqs, override...)
			continue
		}
		if mapped, ok := externalDependenciesMap[dep]; ok {
			dep = mapped
		}
		reqs = append(reqs, dep)
	}
	slices.Sort(reqs)
	return reqs, nil
}

// Classifiers returns the trove classifiers of an addon of series s.
func Classifiers(s series.Series, m *manifest.Manifest) ([]string, error) {
	out := []string{
		"Programming Language :: Python",
		"Framework :: Odoo",
		"Framework :: Odoo :: " + s.String(),
	}
	license, err := m.License()
	if err != nil {
		return nil, err
	}
	if c, ok := licenseClassifiers[strings.ToLower(license)]; ok {
		out = append(out, c)
	}
	status, err := m.DevelopmentStatus()
	if err != nil {
		return nil, err
	}
	if c, ok := developmentStatusClassifiers[strings.ToLower(status)]; ok {
		out = append(out, c)
	}
	return out, nil
}

// LongDescription returns the first README found in the addon directory and
// its content type, or the manifest description as reStructuredText.
func LongDescription(a *addon.Addon) (text, contentType string, err error) {
	for _, r := range readmes {
		p := filepath.Join(a.Path, r.name)
		st, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", "", fmt.Errorf("reading %s: %w", p, err)
		}
		if !st.Mode().IsRegular() {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", p, err)
		}
		return string(data), r.contentType, nil
	}
	desc, err := a.Manifest.Description()
	if err != nil {
		return "", "", err
	}
	return desc, "text/x-rst", nil
}

type manifestFields struct {
	name, summary, website, license, author string
}

func readFields(m *manifest.Manifest) (manifestFields, error) {
	var f manifestFields
	for _, get := range []struct {
		dst *string
		fn  func() (string, error)
	}{
		{&f.name, m.Name},
		{&f.summary, m.Summary},
		{&f.website, m.Website},
		{&f.license, m.License},
		{&f.author, m.Author},
	} {
		v, err := get.fn()
		if err != nil {
			return manifestFields{}, err
		}
		*get.dst = v
	}
	return f, nil
}

func authorEmail(author string) string {
	if strings.Contains(author, ocaAuthor) {
		return "support@odoo-community.org"
	}
	return ""
}
