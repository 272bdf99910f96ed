// SPDX-License-Identifier: MPL-2.0

// Package postversion derives an addon's package version from its manifest
// version and the version-control history of its directory.
//
// The history is walked most recent first. The most recent commit that still
// declares the current manifest version is the anchor; every older commit
// with that same version counts as one change, plus one for uncommitted
// modifications. The walk stops at the first commit whose manifest has a
// different version, is missing or cannot be parsed. A positive count is then
// folded into the version according to a [Strategy].
package postversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	goversion "github.com/hashicorp/go-version"

	"github.com/manifestoo/manifestoo/pkg/addon"
	"github.com/manifestoo/manifestoo/pkg/errdefs"
	"github.com/manifestoo/manifestoo/pkg/vcs"
)

// DefaultVersion is used for manifests that declare no version.
const DefaultVersion = "0.0.0"

const (
	stateSeeking walkState = iota
	stateCounting
	stateDone
)

type (
	// Engine computes post-release versions against a Repository.
	Engine struct {
		repo      vcs.Repository
		batchSize int
	}

	// EngineOption configures an Engine.
	EngineOption func(*Engine)

	// Result is the outcome of a history walk.
	Result struct {
		// Base is the current manifest version, DefaultVersion when unset.
		Base string
		// Controlled is false when the addon is not under version control,
		// in which case no other field below is meaningful.
		Controlled bool
		// Dirty reports unstaged changes to tracked files of the addon.
		Dirty bool
		// Anchor is the most recent commit declaring Base, if any.
		Anchor vcs.Revision
		// Count is the number of changes since the anchor, the uncommitted
		// changes included.
		Count int
	}

	walkState int

	walker struct {
		base   string
		state  walkState
		anchor vcs.Revision
		count  int
	}
)

// WithBatchSize sets how many revisions are fetched per log query.
func WithBatchSize(n int) EngineOption {
	return func(e *Engine) {
		e.batchSize = n
	}
}

// NewEngine creates an Engine reading history from repo.
func NewEngine(repo vcs.Repository, opts ...EngineOption) *Engine {
	e := &Engine{repo: repo, batchSize: vcs.DefaultBatchSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute returns the package version of a. With StrategyNone, or when the
// addon is not under version control, this is the manifest version itself
// and no history is read.
func (e *Engine) Compute(ctx context.Context, a *addon.Addon, strategy Strategy) (string, error) {
	if err := strategy.Validate(); err != nil {
		return "", err
	}
	if strategy == StrategyNone {
		return baseVersion(a)
	}
	res, err := e.Analyze(ctx, a)
	if err != nil {
		return "", err
	}
	return res.Version(strategy)
}

// Analyze walks the history of a without formatting a version.
func (e *Engine) Analyze(ctx context.Context, a *addon.Addon) (*Result, error) {
	base, err := baseVersion(a)
	if err != nil {
		return nil, err
	}
	res := &Result{Base: base}

	dir, err := resolveDir(a.Path)
	if err != nil {
		return nil, err
	}
	if !e.repo.IsControlled(ctx, dir) {
		return res, nil
	}
	res.Controlled = true

	if res.Dirty, err = e.repo.HasUncommitted(ctx, dir); err != nil {
		return nil, fmt.Errorf("checking uncommitted changes in %s: %w", dir, err)
	}
	root, err := e.repo.Root(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("locating repository root of %s: %w", dir, err)
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return nil, fmt.Errorf("%s is outside repository %s: %w", dir, root, err)
	}

	w := &walker{base: base}
	if res.Dirty {
		w.count = 1
	}
	for rev, err := range vcs.History(ctx, e.repo, dir, e.batchSize) {
		if err != nil {
			return nil, fmt.Errorf("reading history of %s: %w", dir, err)
		}
		m, err := vcs.ManifestAt(ctx, e.repo, root, rev, rel)
		if err != nil {
			if !errors.Is(err, vcs.ErrManifestNotFound) && !errors.Is(err, errdefs.ErrInvalidManifest) {
				return nil, err
			}
			slog.Debug("history walk boundary", "addon", a.Name, "revision", rev.Short(), "reason", err)
			w.stop()
			break
		}
		v, err := m.Version()
		if err != nil {
			slog.Debug("history walk boundary", "addon", a.Name, "revision", rev.Short(), "reason", err)
			w.stop()
			break
		}
		if w.visit(rev, v); w.state == stateDone {
			break
		}
	}

	res.Anchor = w.anchor
	res.Count = w.count
	return res, nil
}

// Version formats the result with strategy.
func (r *Result) Version(strategy Strategy) (string, error) {
	if err := strategy.Validate(); err != nil {
		return "", err
	}
	switch {
	case strategy == StrategyNone, !r.Controlled, r.Count == 0:
		return r.Base, nil
	case r.Anchor != "":
		return strategy.Format(r.Base, r.Count)
	case r.Dirty:
		return r.Base + ".dev1", nil
	default:
		// A clean tree always matches some commit, so an anchor exists.
		return r.Base, nil
	}
}

// visit advances the walk with the version declared at rev.
func (w *walker) visit(rev vcs.Revision, version string) {
	if version == "" {
		version = DefaultVersion
	}
	if w.state == stateDone {
		return
	}
	if !sameVersion(version, w.base) {
		w.stop()
		return
	}
	if w.state == stateSeeking {
		w.anchor = rev
		w.state = stateCounting
		return
	}
	w.count++
}

func (w *walker) stop() { w.state = stateDone }

// sameVersion compares versions numerically ("1.0" equals "1.0.0") and falls
// back to string equality when either does not parse.
func sameVersion(a, b string) bool {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return va.Equal(vb)
}

func baseVersion(a *addon.Addon) (string, error) {
	v, err := a.Manifest.Version()
	if err != nil {
		return "", err
	}
	if v == "" {
		return DefaultVersion, nil
	}
	return v, nil
}

func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
