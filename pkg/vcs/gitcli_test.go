// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
)

type (
	// MockGit answers git invocations through the TestHelperProcess pattern.
	// Responses are keyed by the space-joined argument list; unknown
	// invocations exit with status 128.
	MockGit struct {
		mu          sync.Mutex
		Responses   map[string]MockResponse
		Invocations []MockInvocation
	}

	// MockResponse is the simulated outcome of one git invocation.
	MockResponse struct {
		Stdout   string
		ExitCode int
	}

	// MockInvocation records the arguments and working directory of a call.
	MockInvocation struct {
		Name string
		Args []string
		Dir  string
	}
)

func (m *MockGit) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Invocations = append(m.Invocations, MockInvocation{Name: name, Args: args})
	resp, ok := m.Responses[strings.Join(args, " ")]
	if !ok {
		resp = MockResponse{ExitCode: 128}
	}

	//nolint:gosec // TestHelperProcess is a test-only pattern
	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess", "--")
	cmd.Env = []string{
		"GO_WANT_HELPER_PROCESS=1",
		"GO_HELPER_EXIT_CODE=" + strconv.Itoa(resp.ExitCode),
		"GO_HELPER_STDOUT=" + resp.Stdout,
	}
	return cmd
}

// TestHelperProcess is not a real test; it is the body of the mocked git process.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Fprint(os.Stdout, os.Getenv("GO_HELPER_STDOUT"))
	code, _ := strconv.Atoi(os.Getenv("GO_HELPER_EXIT_CODE"))
	if code != 0 {
		fmt.Fprint(os.Stderr, "fatal: simulated failure")
	}
	os.Exit(code)
}

func newMockGitCLI(responses map[string]MockResponse) (*GitCLI, *MockGit) {
	m := &MockGit{Responses: responses}
	return NewGitCLI(WithGitBinary("mygit"), WithExecCommand(m.command)), m
}

func TestGitCLI_IsControlled(t *testing.T) {
	t.Parallel()

	g, m := newMockGitCLI(map[string]MockResponse{"rev-parse": {}})
	if !g.IsControlled(t.Context(), t.TempDir()) {
		t.Error("IsControlled() = false on exit status 0")
	}
	if m.Invocations[0].Name != "mygit" {
		t.Errorf("binary = %q, want mygit", m.Invocations[0].Name)
	}

	g, _ = newMockGitCLI(map[string]MockResponse{"rev-parse": {ExitCode: 128}})
	if g.IsControlled(t.Context(), t.TempDir()) {
		t.Error("IsControlled() = true on exit status 128")
	}
}

func TestGitCLI_IsControlled_MissingBinary(t *testing.T) {
	t.Parallel()

	g := NewGitCLI(WithGitBinary("manifestoo-no-such-git"))
	if g.IsControlled(t.Context(), t.TempDir()) {
		t.Error("IsControlled() should be false when git cannot be run")
	}
	if err := g.Available(); err == nil {
		t.Error("Available() should fail for a missing binary")
	}
}

func TestGitCLI_HasUncommitted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		exitCode int
		want     bool
	}{
		{0, false},
		{1, true},
	}

	for _, tt := range tests {
		g, _ := newMockGitCLI(map[string]MockResponse{"diff --quiet --exit-code .": {ExitCode: tt.exitCode}})
		got, err := g.HasUncommitted(t.Context(), t.TempDir())
		if err != nil {
			t.Fatalf("HasUncommitted() error: %v", err)
		}
		if got != tt.want {
			t.Errorf("HasUncommitted() with exit %d = %v, want %v", tt.exitCode, got, tt.want)
		}
	}
}

func TestGitCLI_Root(t *testing.T) {
	t.Parallel()

	g, _ := newMockGitCLI(map[string]MockResponse{"rev-parse --show-toplevel": {Stdout: "/srv/repo\n"}})
	root, err := g.Root(t.Context(), t.TempDir())
	if err != nil {
		t.Fatalf("Root() error: %v", err)
	}
	if root != "/srv/repo" && root != `\srv\repo` {
		t.Errorf("Root() = %q", root)
	}
}

func TestGitCLI_Log(t *testing.T) {
	t.Parallel()

	g, m := newMockGitCLI(map[string]MockResponse{
		"log --format=%H -n 10 --skip 20 -- .": {Stdout: "aaaa\nbbbb\n\n"},
	})
	dir := t.TempDir()
	revs, err := g.Log(t.Context(), dir, 20, 10)
	if err != nil {
		t.Fatalf("Log() error: %v", err)
	}
	if !slices.Equal(revs, []Revision{"aaaa", "bbbb"}) {
		t.Errorf("Log() = %v", revs)
	}

	if _, err := g.Log(t.Context(), dir, 0, 10); err == nil {
		t.Error("Log() should fail on a non-zero exit")
	} else if !strings.Contains(err.Error(), "simulated failure") {
		t.Errorf("error should carry stderr, got %v", err)
	}
	if len(m.Invocations) != 2 {
		t.Errorf("got %d invocations", len(m.Invocations))
	}
}

func TestGitCLI_Show(t *testing.T) {
	t.Parallel()

	g, _ := newMockGitCLI(map[string]MockResponse{
		"show cafe:addons/a/__manifest__.py": {Stdout: "{'version': '1.0'}"},
	})
	data, err := g.Show(t.Context(), t.TempDir(), "cafe", "addons/a/__manifest__.py")
	if err != nil {
		t.Fatalf("Show() error: %v", err)
	}
	if string(data) != "{'version': '1.0'}" {
		t.Errorf("Show() = %q", data)
	}
	if _, err := g.Show(t.Context(), t.TempDir(), "cafe", "addons/a/__terp__.py"); err == nil {
		t.Error("Show() of a missing path should fail")
	}
}
