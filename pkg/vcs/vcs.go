// SPDX-License-Identifier: MPL-2.0

// Package vcs queries version-control history for addon directories.
//
// All access goes through the read-only [Repository] interface. [GitCLI]
// shells out to a git binary once per query; [GoGit] reads the repository
// in-process. [History] pages through the commits touching a directory and
// [ManifestAt] reads the manifest an addon had at a given commit.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path"
	"path/filepath"

	"github.com/manifestoo/manifestoo/pkg/manifest"
)

// DefaultBatchSize is the number of revisions History fetches per Log call.
const DefaultBatchSize = 10

// ErrManifestNotFound is returned by ManifestAt when no manifest file name
// could be read at the revision.
var ErrManifestNotFound = errors.New("no manifest at revision")

type (
	// Revision is an opaque commit identifier.
	Revision string

	// Repository is the version-control collaborator. Implementations must
	// be safe for concurrent use; no method writes to the repository.
	Repository interface {
		// IsControlled reports whether dir is inside a working tree. Any
		// failure counts as "not controlled".
		IsControlled(ctx context.Context, dir string) bool
		// HasUncommitted reports whether tracked files under dir have
		// modifications that are not staged.
		HasUncommitted(ctx context.Context, dir string) (bool, error)
		// Root returns the top-level directory of the working tree holding dir.
		Root(ctx context.Context, dir string) (string, error)
		// Log returns at most limit revisions that touch dir, most recent
		// first, after skipping the skip most recent ones.
		Log(ctx context.Context, dir string, skip, limit int) ([]Revision, error)
		// Show returns the content of relPath (slash separated, relative to
		// root) as of rev.
		Show(ctx context.Context, root string, rev Revision, relPath string) ([]byte, error)
	}

	// Walker is implemented by backends that can stream the revisions
	// touching dir in a single pass, most recent first. History prefers it
	// over paged Log calls.
	Walker interface {
		Walk(ctx context.Context, dir string) iter.Seq2[Revision, error]
	}
)

// String returns the revision identifier.
func (r Revision) String() string { return string(r) }

// Short returns the first seven characters of the revision.
func (r Revision) Short() string {
	if len(r) > 7 {
		return string(r[:7])
	}
	return string(r)
}

// History returns the revisions touching dir, most recent first. When repo
// is a Walker its stream is used as is. Otherwise revisions are requested
// batchSize at a time and the walk ends with the first short batch. A
// failure is yielded once and ends the sequence.
func History(ctx context.Context, repo Repository, dir string, batchSize int) iter.Seq2[Revision, error] {
	if w, ok := repo.(Walker); ok {
		return w.Walk(ctx, dir)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return func(yield func(Revision, error) bool) {
		skip := 0
		for {
			revs, err := repo.Log(ctx, dir, skip, batchSize)
			if err != nil {
				yield("", err)
				return
			}
			for _, rev := range revs {
				if !yield(rev, nil) {
					return
				}
			}
			skip += len(revs)
			if len(revs) < batchSize {
				return
			}
		}
	}
}

// ManifestAt reads the manifest of the addon at relDir (relative to root) as
// of rev. Manifest names are tried in lookup priority order: a name that
// cannot be read falls through to the next one, while a name that is read
// but fails to parse ends the lookup with that parse error. It returns
// ErrManifestNotFound when no name can be read.
func ManifestAt(ctx context.Context, repo Repository, root string, rev Revision, relDir string) (*manifest.Manifest, error) {
	relDir = filepath.ToSlash(relDir)
	for _, name := range manifest.Names {
		p := path.Join(relDir, name)
		data, err := repo.Show(ctx, root, rev, p)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			continue
		}
		m, err := manifest.FromString(string(data), fmt.Sprintf("%s:%s", rev.Short(), p))
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w %s in %s", ErrManifestNotFound, rev.Short(), relDir)
}
