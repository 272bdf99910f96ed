// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/manifestoo/manifestoo/pkg/manifest"
)

// Set maps addon names to addons. Adding an addon whose name is already
// present replaces the previous entry.
type Set map[string]*Addon

// NewSet returns an empty Set.
func NewSet() Set { return make(Set) }

// Add inserts a into the set.
func (s Set) Add(a *Addon) { s[a.Name] = a }

// AddFromDir adds every valid addon found directly under addonsDir.
// Entries that are not addons are skipped and logged at debug level.
func (s Set) AddFromDir(addonsDir string) error {
	info, err := os.Stat(addonsDir)
	if err != nil || !info.IsDir() {
		slog.Warn("ignoring addons directory", "dir", addonsDir, "reason", "not a directory")
		return nil
	}
	entries, err := os.ReadDir(addonsDir)
	if err != nil {
		return fmt.Errorf("reading addons directory %s: %w", addonsDir, err)
	}
	for _, e := range entries {
		s.addCandidate(filepath.Join(addonsDir, e.Name()))
	}
	return nil
}

// AddFromDirs calls AddFromDir for each directory in turn.
func (s Set) AddFromDirs(addonsDirs ...string) error {
	for _, d := range addonsDirs {
		if err := s.AddFromDir(d); err != nil {
			return err
		}
	}
	return nil
}

// AddFromGlob adds the addons matched by a doublestar pattern. A match may be
// an addon directory ("addons/*") or a manifest file ("**/__manifest__.py"),
// in which case its parent directory is used.
func (s Set) AddFromGlob(pattern string) error {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("invalid addons pattern %q: %w", pattern, err)
	}
	for _, m := range matches {
		if slices.Contains(manifest.Names, filepath.Base(m)) {
			m = filepath.Dir(m)
		}
		s.addCandidate(m)
	}
	return nil
}

func (s Set) addCandidate(dir string) {
	a, err := FromDir(dir)
	if err != nil {
		slog.Debug("ignoring directory", "dir", dir, "reason", err)
		return
	}
	s.Add(a)
}

// Names returns the addon names in sorted order.
func (s Set) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// String returns the sorted addon names separated by commas.
func (s Set) String() string {
	return strings.Join(s.Names(), ",")
}
