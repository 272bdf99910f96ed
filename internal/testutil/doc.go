// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test fixtures and helpers that fail the test on
// error instead of returning it.
//
// Besides environment and filesystem helpers (MustSetenv, MustChdir,
// MustWriteFile), it builds addon directories from Go maps (WriteAddon,
// PopulateAddonsDir) and in-process git repositories with go-git (GitRepo),
// so version-control tests do not depend on a git binary.
package testutil
