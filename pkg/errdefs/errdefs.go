// SPDX-License-Identifier: MPL-2.0

// Package errdefs defines the error taxonomy shared by every manifestoo package.
//
// All kinds derive from [ErrManifestoo], so callers can match broadly
// (errors.Is(err, errdefs.ErrManifestoo)), by family
// (errors.Is(err, errdefs.ErrAddonNotFound)), or narrowly
// (errors.Is(err, errdefs.ErrAddonNotFoundNoInit)).
package errdefs

import (
	"errors"
	"fmt"
)

type (
	// kind is a sentinel error that belongs to a parent kind.
	kind struct {
		msg    string
		parent error
	}

	// Error is a concrete failure of a given kind. Msg is the full user-facing
	// message; Err, when set, is the underlying cause.
	Error struct {
		Kind error
		Msg  string
		Err  error
	}
)

var (
	// ErrManifestoo is the root of the taxonomy.
	ErrManifestoo = errors.New("manifestoo error")

	// ErrInvalidManifest is returned when a manifest cannot be parsed or a field
	// has the wrong type.
	ErrInvalidManifest = newKind("invalid manifest", ErrManifestoo)

	// ErrAddonNotFound is the family of addon resolution failures.
	ErrAddonNotFound = newKind("addon not found", ErrManifestoo)
	// ErrAddonNotFoundNotADirectory is returned when the addon path is not a directory.
	ErrAddonNotFoundNotADirectory = newKind("not a directory", ErrAddonNotFound)
	// ErrAddonNotFoundNoManifest is returned when no manifest file exists.
	ErrAddonNotFoundNoManifest = newKind("no manifest file", ErrAddonNotFound)
	// ErrAddonNotFoundInvalidManifest is returned when the manifest exists but is invalid.
	ErrAddonNotFoundInvalidManifest = newKind("invalid manifest file", ErrAddonNotFound)
	// ErrAddonNotFoundNotInstallable is returned when installable is false.
	ErrAddonNotFoundNotInstallable = newKind("not installable", ErrAddonNotFound)
	// ErrAddonNotFoundNoInit is returned when the initializer marker is missing.
	ErrAddonNotFoundNoInit = newKind("missing __init__.py", ErrAddonNotFound)

	// ErrUnsupportedOdooSeries is returned for an unrecognized release series.
	ErrUnsupportedOdooSeries = newKind("unsupported release series", ErrManifestoo)
	// ErrUnsupportedManifestVersion is returned when a manifest version cannot
	// identify a series, or cannot be bumped.
	ErrUnsupportedManifestVersion = newKind("unsupported manifest version", ErrManifestoo)

	// ErrInvalidDistributionName is returned when a package name does not look
	// like an addon distribution.
	ErrInvalidDistributionName = newKind("invalid distribution name", ErrManifestoo)

	// ErrUnknownPostVersionStrategy is returned for an unrecognized strategy identifier.
	ErrUnknownPostVersionStrategy = newKind("unknown postversion strategy", ErrManifestoo)
)

func newKind(msg string, parent error) error {
	return &kind{msg: msg, parent: parent}
}

func (k *kind) Error() string { return k.msg }

func (k *kind) Unwrap() error { return k.parent }

// New returns an *Error of the given kind with a formatted message.
func New(k error, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind caused by err.
func Wrap(k, err error, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
