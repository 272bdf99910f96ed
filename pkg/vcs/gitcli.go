// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultGitBinary is the git executable looked up on PATH.
const DefaultGitBinary = "git"

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// GitCLIOption configures a GitCLI.
	GitCLIOption func(*GitCLI)

	// GitCLI is a Repository that runs one git process per query.
	GitCLI struct {
		binary      string
		execCommand ExecCommandFunc
	}

	// CommandError is returned when a git invocation fails.
	CommandError struct {
		Args   []string
		Stderr string
		Err    error
	}
)

// WithGitBinary sets the git executable name or path.
func WithGitBinary(binary string) GitCLIOption {
	return func(g *GitCLI) {
		if binary != "" {
			g.binary = binary
		}
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) GitCLIOption {
	return func(g *GitCLI) {
		g.execCommand = fn
	}
}

// NewGitCLI creates a git CLI backed Repository.
func NewGitCLI(opts ...GitCLIOption) *GitCLI {
	g := &GitCLI{
		binary:      DefaultGitBinary,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying process error.
func (e *CommandError) Unwrap() error { return e.Err }

// Binary returns the git executable the backend runs.
func (g *GitCLI) Binary() string { return g.binary }

// Available reports an error when the git executable cannot be found.
func (g *GitCLI) Available() error {
	if _, err := exec.LookPath(g.binary); err != nil {
		return fmt.Errorf("git executable %q: %w", g.binary, err)
	}
	return nil
}

// IsControlled runs "git rev-parse" in dir.
func (g *GitCLI) IsControlled(ctx context.Context, dir string) bool {
	_, err := g.run(ctx, dir, "rev-parse")
	if errors.Is(err, exec.ErrNotFound) {
		slog.Warn("git executable not found, treating directory as not version controlled", "dir", dir, "git", g.binary)
	}
	return err == nil
}

// HasUncommitted runs "git diff --quiet --exit-code ." in dir. A non-zero
// exit status means dir has unstaged changes.
func (g *GitCLI) HasUncommitted(ctx context.Context, dir string) (bool, error) {
	_, err := g.run(ctx, dir, "diff", "--quiet", "--exit-code", ".")
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return true, nil
	}
	return false, err
}

// Root runs "git rev-parse --show-toplevel" in dir.
func (g *GitCLI) Root(ctx context.Context, dir string) (string, error) {
	out, err := g.run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(strings.TrimSpace(string(out))), nil
}

// Log runs "git log" restricted to dir.
func (g *GitCLI) Log(ctx context.Context, dir string, skip, limit int) ([]Revision, error) {
	out, err := g.run(ctx, dir, "log", "--format=%H", "-n", strconv.Itoa(limit), "--skip", strconv.Itoa(skip), "--", ".")
	if err != nil {
		return nil, err
	}
	var revs []Revision
	for line := range strings.Lines(string(out)) {
		if sha := strings.TrimSpace(line); sha != "" {
			revs = append(revs, Revision(sha))
		}
	}
	return revs, nil
}

// Show runs "git show rev:relPath" in root.
func (g *GitCLI) Show(ctx context.Context, root string, rev Revision, relPath string) ([]byte, error) {
	return g.run(ctx, root, "show", fmt.Sprintf("%s:%s", rev, relPath))
}

func (g *GitCLI) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := g.execCommand(ctx, g.binary, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.Bytes(), nil
}
