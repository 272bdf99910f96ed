// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

type (
	// ActionableError is a user-facing failure of one manifestoo operation:
	// what was attempted, on which file or addon, and how to recover.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("load configuration").
	//		WithResource(path).
	//		WithIssue(issue.ConfigLoadFailedId).
	//		WithSuggestion("Run 'manifestoo config dump'").
	//		Wrap(cause).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "read manifest" or "compute version".
		Operation string
		// Resource is the file, directory or name involved (optional).
		Resource string
		// IssueID selects the catalog page shown in verbose mode (optional).
		IssueID Id
		// Suggestions are recovery hints, printed as bullets (optional).
		Suggestions []string
		// Cause is the underlying error (optional).
		Cause error
	}

	// ErrorContext accumulates the fields of an ActionableError.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext starts an empty ActionableError builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error renders "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the cause so that errdefs kinds stay visible to errors.Is.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format returns Error() followed by one bullet per suggestion. Verbose
// output also lists every error of the cause chain, outermost first.
func (e *ActionableError) Format(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if e.HasSuggestions() {
		sb.WriteString("\n")
		for _, s := range e.Suggestions {
			fmt.Fprintf(&sb, "\n  • %s", s)
		}
	}

	if verbose && e.Cause != nil {
		sb.WriteString("\n\nError chain:")
		for i, err := 1, e.Cause; err != nil; i, err = i+1, errors.Unwrap(err) {
			fmt.Fprintf(&sb, "\n  %d. %s", i, err)
		}
	}
	return sb.String()
}

// HasSuggestions reports whether any recovery hint is attached.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// WithOperation sets the operation that failed.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithResource sets the file, directory or name involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithIssue links the error to a catalog page.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.IssueID = id
	return c
}

// WithSuggestion appends recovery hints. It can be called repeatedly.
func (c *ErrorContext) WithSuggestion(sugs ...string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sugs...)
	return c
}

// Wrap sets the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns a copy of the accumulated error, or nil when no operation
// was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	ae := c.err
	ae.Suggestions = slices.Clone(c.err.Suggestions)
	return &ae
}

// BuildError is Build returning an untyped nil error when no operation is set.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
