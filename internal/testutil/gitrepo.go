// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// fixtureEpoch is the author time of the first fixture commit. Each following
// commit is one minute later so that log order is deterministic.
var fixtureEpoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// GitRepo is a throwaway git repository driven through go-git.
type GitRepo struct {
	Dir string

	t       testing.TB
	repo    *git.Repository
	wt      *git.Worktree
	commits int
}

// InitGitRepo creates an empty repository in dir.
func InitGitRepo(t testing.TB, dir string) *GitRepo {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("git init %s: %v", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree %s: %v", dir, err)
	}
	return &GitRepo{Dir: dir, t: t, repo: repo, wt: wt}
}

// Path returns the absolute path of rel inside the repository.
func (r *GitRepo) Path(rel string) string {
	return filepath.Join(r.Dir, filepath.FromSlash(rel))
}

// WriteFile writes content to rel without staging it.
func (r *GitRepo) WriteFile(rel, content string) {
	r.t.Helper()
	MustWriteFile(r.t, r.Path(rel), content)
}

// WriteManifest writes rel/__manifest__.py (and an empty rel/__init__.py)
// rendered from fields, without staging them.
func (r *GitRepo) WriteManifest(rel string, fields map[string]any) {
	r.t.Helper()
	WriteAddon(r.t, r.Path(rel), fields)
}

// Remove deletes rel from the worktree and the index.
func (r *GitRepo) Remove(rel string) {
	r.t.Helper()
	if _, err := r.wt.Remove(filepath.ToSlash(rel)); err != nil {
		r.t.Fatalf("git rm %s: %v", rel, err)
	}
}

// Commit stages every change in the worktree and commits it. It returns the
// new commit hash.
func (r *GitRepo) Commit(msg string) string {
	r.t.Helper()
	if err := r.wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		r.t.Fatalf("git add: %v", err)
	}
	when := fixtureEpoch.Add(time.Duration(r.commits) * time.Minute)
	r.commits++
	sig := &object.Signature{Name: "Fixture", Email: "fixture@example.com", When: when}
	h, err := r.wt.Commit(msg, &git.CommitOptions{Author: sig, Committer: sig, AllowEmptyCommits: true})
	if err != nil {
		r.t.Fatalf("git commit %q: %v", msg, err)
	}
	return h.String()
}
