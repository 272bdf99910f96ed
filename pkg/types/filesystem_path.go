// SPDX-License-Identifier: MPL-2.0

// Package types holds small validated value types shared by the manifestoo
// command and its configuration layer.
package types

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath is an absolute or relative path to an addon, an addons
	// directory or a configuration file. The zero value is invalid.
	FilesystemPath string

	// InvalidFilesystemPathError is returned when a FilesystemPath value is
	// empty or whitespace-only.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}
)

// String returns the string representation of the FilesystemPath.
func (p FilesystemPath) String() string { return string(p) }

// IsValid returns whether the FilesystemPath is non-empty and not whitespace-only.
func (p FilesystemPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilesystemPathError{Value: p}}
	}
	return true, nil
}

// Validate returns the first validation error, or nil.
func (p FilesystemPath) Validate() error {
	if ok, errs := p.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

// Expand replaces a leading "~" with the user's home directory and cleans
// the result. Paths that do not start with "~" are only cleaned.
func (p FilesystemPath) Expand() (FilesystemPath, error) {
	s := string(p)
	if s == "~" || strings.HasPrefix(s, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %q: %w", s, err)
		}
		s = filepath.Join(home, strings.TrimPrefix(s, "~"))
	}
	return FilesystemPath(filepath.Clean(s)), nil
}

// IsDir reports whether the path names an existing directory.
func (p FilesystemPath) IsDir() bool {
	info, err := os.Stat(string(p))
	return err == nil && info.IsDir()
}

// Error implements the error interface for InvalidFilesystemPathError.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
