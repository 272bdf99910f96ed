// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/manifestoo/manifestoo/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// newUsageError wraps err as an ExitUsage failure.
func newUsageError(format string, args ...any) *ExitError {
	return &ExitError{Code: types.ExitUsage, Err: fmt.Errorf(format, args...)}
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor returns the process exit code for err. The errdefs family
// decides when it is known, then an ExitError code, then ExitFailure.
func exitCodeFor(err error) types.ExitCode {
	if code := types.ExitCodeFor(err); code != types.ExitFailure {
		return code
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}
