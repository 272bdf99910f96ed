// SPDX-License-Identifier: MPL-2.0

package postversion

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/manifestoo/manifestoo/internal/testutil"
	"github.com/manifestoo/manifestoo/pkg/addon"
	"github.com/manifestoo/manifestoo/pkg/errdefs"
	"github.com/manifestoo/manifestoo/pkg/vcs"
)

const addonRel = "addons/addon1"

type (
	// scenario builds a repository and reports the addon under test.
	scenario func(t *testing.T, r *testutil.GitRepo)

	// panicRepo fails the test when any version-control query is made.
	panicRepo struct{ t *testing.T }
)

func (p panicRepo) IsControlled(context.Context, string) bool {
	p.t.Error("IsControlled called")
	return false
}

func (p panicRepo) HasUncommitted(context.Context, string) (bool, error) {
	p.t.Error("HasUncommitted called")
	return false, nil
}

func (p panicRepo) Root(context.Context, string) (string, error) {
	p.t.Error("Root called")
	return "", nil
}

func (p panicRepo) Log(context.Context, string, int, int) ([]vcs.Revision, error) {
	p.t.Error("Log called")
	return nil, nil
}

func (p panicRepo) Show(context.Context, string, vcs.Revision, string) ([]byte, error) {
	p.t.Error("Show called")
	return nil, nil
}

func backends(t *testing.T) map[string]vcs.Repository {
	t.Helper()
	repos := map[string]vcs.Repository{"go-git": vcs.NewGoGit()}
	if _, err := exec.LookPath("git"); err == nil {
		repos["git"] = vcs.NewGitCLI()
	}
	return repos
}

func newRepo(t *testing.T) *testutil.GitRepo {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return testutil.InitGitRepo(t, dir)
}

func loadAddon(t *testing.T, dir string) *addon.Addon {
	t.Helper()
	a, err := addon.FromDir(dir)
	if err != nil {
		t.Fatalf("addon.FromDir(%s) error: %v", dir, err)
	}
	return a
}

func manifestV(version string) map[string]any {
	return map[string]any{"name": "Addon 1", "version": version}
}

// twoCommitsAfterVersion commits version V, then two more changes.
func twoCommitsAfterVersion(version string) scenario {
	return func(t *testing.T, r *testutil.GitRepo) {
		r.WriteManifest(addonRel, manifestV(version))
		r.Commit("add addon1")
		r.WriteFile(addonRel+"/models.py", "# 1")
		r.Commit("change 1")
		r.WriteFile(addonRel+"/models.py", "# 2")
		r.Commit("change 2")
	}
}

func TestEngine_Compute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		setup    scenario
		strategy Strategy
		want     string
	}{
		{
			name: "version commit only",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteManifest(addonRel, manifestV("14.0.1.0.0"))
				r.Commit("add addon1")
			},
			strategy: StrategyDotN,
			want:     "14.0.1.0.0",
		},
		{"two commits .N", twoCommitsAfterVersion("16.0.1.0.0"), StrategyDotN, "16.0.1.0.0.2"},
		{"two commits +1.devN", twoCommitsAfterVersion("14.0.1.0.0"), StrategyP1DevN, "14.0.1.0.1.dev2"},
		{"two commits .99.devN", twoCommitsAfterVersion("8.0.1.0.0"), StrategyNinetyNineDevN, "8.0.1.0.0.99.dev2"},
		{"two commits none", twoCommitsAfterVersion("16.0.1.0.0"), StrategyNone, "16.0.1.0.0"},
		{
			name: "version bump resets the count",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				twoCommitsAfterVersion("16.0.1.0.0")(t, r)
				r.WriteManifest(addonRel, manifestV("16.0.1.1.0"))
				r.Commit("bump")
				r.WriteFile(addonRel+"/models.py", "# 3")
				r.Commit("change 3")
			},
			strategy: StrategyDotN,
			want:     "16.0.1.1.0.1",
		},
		{
			name: "uncommitted change after version commit",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
				r.WriteFile(addonRel+"/models.py", "# 1")
				r.Commit("add addon1")
				r.WriteFile(addonRel+"/models.py", "# dirty")
			},
			strategy: StrategyDotN,
			want:     "16.0.1.0.0.1",
		},
		{
			name: "uncommitted version change only",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
				r.Commit("add addon1")
				r.WriteManifest(addonRel, manifestV("16.0.2.0.0"))
			},
			strategy: StrategyDotN,
			want:     "16.0.2.0.0.dev1",
		},
		{
			name: "untracked files are not changes",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
				r.Commit("add addon1")
				r.WriteFile(addonRel+"/new.py", "")
			},
			strategy: StrategyDotN,
			want:     "16.0.1.0.0",
		},
		{
			name: "invalid historical manifest stops the walk",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
				r.Commit("add addon1")
				r.WriteFile(addonRel+"/__manifest__.py", "{'version': ")
				r.Commit("break manifest")
				r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
				r.Commit("fix manifest")
				r.WriteFile(addonRel+"/models.py", "# 1")
				r.Commit("change 1")
			},
			strategy: StrategyDotN,
			want:     "16.0.1.0.0.1",
		},
		{
			name: "wrongly typed historical version stops the walk",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteFile(addonRel+"/__init__.py", "")
				r.WriteFile(addonRel+"/__manifest__.py", "{'version': 16}")
				r.Commit("add addon1")
				r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
				r.Commit("fix version")
				r.WriteFile(addonRel+"/models.py", "# 1")
				r.Commit("change 1")
			},
			strategy: StrategyDotN,
			want:     "16.0.1.0.0.1",
		},
		{
			name: "commit without manifest ends history",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteFile(addonRel+"/README.rst", "wip")
				r.Commit("readme first")
				r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
				r.Commit("add manifest")
				r.WriteFile(addonRel+"/models.py", "# 1")
				r.Commit("change 1")
			},
			strategy: StrategyDotN,
			want:     "16.0.1.0.0.1",
		},
		{
			name: "legacy manifest name in history",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteFile(addonRel+"/__init__.py", "")
				r.WriteFile(addonRel+"/__openerp__.py", testutil.ManifestSource(t, manifestV("8.0.1.0.0")))
				r.Commit("add addon1")
				r.Remove(addonRel + "/__openerp__.py")
				r.WriteManifest(addonRel, manifestV("8.0.1.0.0"))
				r.Commit("rename manifest")
			},
			strategy: StrategyNinetyNineDevN,
			want:     "8.0.1.0.0.99.dev1",
		},
		{
			name: "numerically equal versions",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
				r.Commit("add addon1")
				r.WriteManifest(addonRel, manifestV("16.0.1.0"))
				r.Commit("shorten version")
			},
			strategy: StrategyDotN,
			want:     "16.0.1.0.1",
		},
		{
			name: "missing version defaults to 0.0.0",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteManifest(addonRel, map[string]any{"name": "x"})
				r.Commit("add addon1")
				r.WriteFile(addonRel+"/models.py", "# 1")
				r.Commit("change 1")
			},
			strategy: StrategyDotN,
			want:     "0.0.0.1",
		},
		{
			name: "other addons do not count",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
				r.Commit("add addon1")
				r.WriteManifest("addons/addon2", manifestV("16.0.1.0.0"))
				r.Commit("add addon2")
				r.WriteFile("addons/addon2/models.py", "# 1")
				r.Commit("change addon2")
				r.WriteFile(addonRel+"/models.py", "# 1")
				r.Commit("change addon1")
			},
			strategy: StrategyDotN,
			want:     "16.0.1.0.0.1",
		},
		{
			// Known edge case: only the most recent run of commits carrying
			// the current version is counted.
			name: "reverted version counts the latest run only",
			setup: func(t *testing.T, r *testutil.GitRepo) {
				r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
				r.Commit("add addon1")
				r.WriteFile(addonRel+"/models.py", "# 1")
				r.Commit("change 1")
				r.WriteManifest(addonRel, manifestV("16.0.2.0.0"))
				r.Commit("bump")
				r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
				r.Commit("revert bump")
				r.WriteFile(addonRel+"/models.py", "# 2")
				r.Commit("change 2")
			},
			strategy: StrategyDotN,
			want:     "16.0.1.0.0.1",
		},
	}

	for name, repo := range backends(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				t.Parallel()

				r := newRepo(t)
				tt.setup(t, r)
				a := loadAddon(t, r.Path(addonRel))

				got, err := NewEngine(repo).Compute(t.Context(), a, tt.strategy)
				if err != nil {
					t.Fatalf("Compute() error: %v", err)
				}
				if got != tt.want {
					t.Errorf("Compute() = %q, want %q", got, tt.want)
				}
			})
		}
	}
}

func TestEngine_Compute_Idempotent(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	twoCommitsAfterVersion("16.0.1.0.0")(t, r)
	a := loadAddon(t, r.Path(addonRel))
	e := NewEngine(vcs.NewGoGit())

	first, err := e.Compute(t.Context(), a, StrategyDotN)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Compute(t.Context(), a, StrategyDotN)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Compute() not stable: %q then %q", first, second)
	}
}

func TestEngine_Compute_AcrossBatches(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
	r.Commit("add addon1")
	for i := range 7 {
		r.WriteFile(addonRel+"/models.py", "# "+string(rune('a'+i)))
		r.Commit("change")
	}
	a := loadAddon(t, r.Path(addonRel))

	got, err := NewEngine(vcs.NewGoGit(), WithBatchSize(3)).Compute(t.Context(), a, StrategyDotN)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if got != "16.0.1.0.0.7" {
		t.Errorf("Compute() = %q, want 16.0.1.0.0.7", got)
	}
}

func TestEngine_Compute_NotControlled(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteAddon(t, filepath.Join(t.TempDir(), "addon1"), manifestV("16.0.1.0.0"))
	a := loadAddon(t, dir)

	for name, repo := range backends(t) {
		for _, s := range Strategies() {
			got, err := NewEngine(repo).Compute(t.Context(), a, s)
			if err != nil {
				t.Fatalf("%s/%s: Compute() error: %v", name, s, err)
			}
			if got != "16.0.1.0.0" {
				t.Errorf("%s/%s: Compute() = %q, want the manifest version", name, s, got)
			}
		}
	}
}

func TestEngine_Compute_NoneSkipsHistory(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteAddon(t, filepath.Join(t.TempDir(), "addon1"), manifestV("16.0.1.0.0"))
	got, err := NewEngine(panicRepo{t}).Compute(t.Context(), loadAddon(t, dir), StrategyNone)
	if err != nil || got != "16.0.1.0.0" {
		t.Errorf("Compute(none) = %q, %v", got, err)
	}
}

func TestEngine_Compute_UnknownStrategy(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteAddon(t, filepath.Join(t.TempDir(), "addon1"), manifestV("16.0.1.0.0"))
	_, err := NewEngine(panicRepo{t}).Compute(t.Context(), loadAddon(t, dir), "bogus")
	if !errors.Is(err, errdefs.ErrUnknownPostVersionStrategy) {
		t.Errorf("Compute(bogus) error = %v, want ErrUnknownPostVersionStrategy", err)
	}
}

func TestEngine_Compute_BumpNonNumeric(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	twoCommitsAfterVersion("14.0.1.0.0b")(t, r)
	_, err := NewEngine(vcs.NewGoGit()).Compute(t.Context(), loadAddon(t, r.Path(addonRel)), StrategyP1DevN)
	if !errors.Is(err, errdefs.ErrUnsupportedManifestVersion) {
		t.Errorf("Compute() error = %v, want ErrUnsupportedManifestVersion", err)
	}
}

func TestEngine_Analyze(t *testing.T) {
	t.Parallel()

	r := newRepo(t)
	r.WriteManifest(addonRel, manifestV("16.0.1.0.0"))
	anchorless := r.Commit("add addon1")
	r.WriteFile(addonRel+"/models.py", "# 1")
	head := r.Commit("change 1")
	r.WriteFile(addonRel+"/models.py", "# dirty")

	res, err := NewEngine(vcs.NewGoGit()).Analyze(t.Context(), loadAddon(t, r.Path(addonRel)))
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if !res.Controlled || !res.Dirty {
		t.Errorf("Controlled = %v, Dirty = %v", res.Controlled, res.Dirty)
	}
	if res.Anchor != vcs.Revision(head) {
		t.Errorf("Anchor = %s, want HEAD %s (not %s)", res.Anchor, head, anchorless)
	}
	if res.Count != 2 {
		t.Errorf("Count = %d, want 2", res.Count)
	}
	if v, _ := res.Version(StrategyP1DevN); v != "16.0.1.0.1.dev2" {
		t.Errorf("Version(+1.devN) = %q", v)
	}
}

func TestResult_Version(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		res  Result
		want string
	}{
		{"not controlled", Result{Base: "1.0", Count: 3, Anchor: "a"}, "1.0"},
		{"zero count", Result{Base: "1.0", Controlled: true, Anchor: "a"}, "1.0"},
		{"anchored", Result{Base: "1.0", Controlled: true, Anchor: "a", Count: 2}, "1.0.2"},
		{"dirty without anchor", Result{Base: "1.0", Controlled: true, Dirty: true, Count: 1}, "1.0.dev1"},
		{"clean without anchor", Result{Base: "1.0", Controlled: true, Count: 1}, "1.0"},
	}

	for _, tt := range tests {
		got, err := tt.res.Version(StrategyDotN)
		if err != nil || got != tt.want {
			t.Errorf("%s: Version() = %q, %v, want %q", tt.name, got, err, tt.want)
		}
	}
}
