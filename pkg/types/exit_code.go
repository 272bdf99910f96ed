// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/manifestoo/manifestoo/pkg/errdefs"
)

// Exit codes returned by the manifestoo command. Each failure family of
// errdefs has its own code so that scripts can branch on it.
const (
	ExitSuccess ExitCode = 0
	// ExitFailure covers errors outside the manifestoo taxonomy (I/O, VCS).
	ExitFailure ExitCode = 1
	// ExitUsage reports invalid flags, arguments or configuration.
	ExitUsage               ExitCode = 2
	ExitAddonNotFound       ExitCode = 3
	ExitInvalidManifest     ExitCode = 4
	ExitUnsupportedSeries   ExitCode = 5
	ExitInvalidDistribution ExitCode = 6
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// ExitCodeFor maps an error to the exit code of its errdefs family.
// A nil error is ExitSuccess.
func ExitCodeFor(err error) ExitCode {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errdefs.ErrAddonNotFound):
		return ExitAddonNotFound
	case errors.Is(err, errdefs.ErrInvalidManifest):
		return ExitInvalidManifest
	case errors.Is(err, errdefs.ErrUnsupportedOdooSeries), errors.Is(err, errdefs.ErrUnsupportedManifestVersion):
		return ExitUnsupportedSeries
	case errors.Is(err, errdefs.ErrInvalidDistributionName):
		return ExitInvalidDistribution
	case errors.Is(err, errdefs.ErrUnknownPostVersionStrategy):
		return ExitUsage
	default:
		return ExitFailure
	}
}
