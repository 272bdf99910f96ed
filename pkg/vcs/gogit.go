// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GoGit is a Repository and Walker that reads git repositories in-process
// with go-git. The repository is reopened on every call, so a GoGit value
// holds no state.
type GoGit struct{}

// NewGoGit creates a go-git backed Repository.
func NewGoGit() *GoGit { return &GoGit{} }

// IsControlled reports whether dir or one of its parents holds a .git.
func (GoGit) IsControlled(ctx context.Context, dir string) bool {
	_, _, err := open(ctx, dir)
	return err == nil
}

// HasUncommitted reports whether a tracked file under dir differs between
// the worktree and the index. Untracked files are ignored.
func (GoGit) HasUncommitted(ctx context.Context, dir string) (bool, error) {
	repo, root, err := open(ctx, dir)
	if err != nil {
		return false, err
	}
	rel, err := relSlash(root, dir)
	if err != nil {
		return false, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("opening worktree of %s: %w", root, err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("reading status of %s: %w", root, err)
	}
	for file, st := range status {
		if !within(rel, file) {
			continue
		}
		if st.Worktree != git.Unmodified && st.Worktree != git.Untracked {
			return true, nil
		}
	}
	return false, nil
}

// Root returns the worktree root holding dir.
func (GoGit) Root(ctx context.Context, dir string) (string, error) {
	_, root, err := open(ctx, dir)
	return root, err
}

// Log returns one page of the commits reachable from HEAD that touch dir.
func (g GoGit) Log(ctx context.Context, dir string, skip, limit int) ([]Revision, error) {
	var revs []Revision
	seen := 0
	for rev, err := range g.Walk(ctx, dir) {
		if err != nil {
			return nil, err
		}
		if seen++; seen <= skip {
			continue
		}
		if len(revs) >= limit {
			break
		}
		revs = append(revs, rev)
	}
	return revs, nil
}

// Walk streams the commits reachable from HEAD that touch dir over a single
// commit iterator, so the repository is opened once per walk.
func (GoGit) Walk(ctx context.Context, dir string) iter.Seq2[Revision, error] {
	return func(yield func(Revision, error) bool) {
		commits, root, err := logIter(ctx, dir)
		if err != nil {
			yield("", err)
			return
		}
		defer commits.Close()
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			c, err := commits.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("reading log of %s: %w", root, err))
				return
			}
			if !yield(Revision(c.Hash.String()), nil) {
				return
			}
		}
	}
}

func logIter(ctx context.Context, dir string) (object.CommitIter, string, error) {
	repo, root, err := open(ctx, dir)
	if err != nil {
		return nil, "", err
	}
	rel, err := relSlash(root, dir)
	if err != nil {
		return nil, "", err
	}
	opts := &git.LogOptions{}
	if rel != "." {
		opts.PathFilter = func(p string) bool { return within(rel, p) }
	}
	commits, err := repo.Log(opts)
	if err != nil {
		return nil, "", fmt.Errorf("reading log of %s: %w", root, err)
	}
	return commits, root, nil
}

// Show returns the content of relPath in the tree of rev.
func (GoGit) Show(ctx context.Context, root string, rev Revision, relPath string) ([]byte, error) {
	repo, _, err := open(ctx, root)
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(plumbing.NewHash(string(rev)))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rev.Short(), err)
	}
	f, err := commit.File(relPath)
	if err != nil {
		return nil, fmt.Errorf("%s:%s: %w", rev.Short(), relPath, err)
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("%s:%s: %w", rev.Short(), relPath, err)
	}
	return []byte(contents), nil
}

func open(ctx context.Context, dir string) (*git.Repository, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, "", fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, "", fmt.Errorf("opening worktree at %s: %w", dir, err)
	}
	return repo, wt.Filesystem.Root(), nil
}

func relSlash(root, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("%s is not inside %s: %w", dir, root, err)
	}
	return filepath.ToSlash(rel), nil
}

// within reports whether the slash path p is rel or below it.
func within(rel, p string) bool {
	return rel == "." || p == rel || strings.HasPrefix(p, rel+"/")
}
