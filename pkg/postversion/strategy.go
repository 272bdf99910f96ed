// SPDX-License-Identifier: MPL-2.0

package postversion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifestoo/manifestoo/pkg/errdefs"
)

const (
	// StrategyNone returns the manifest version unchanged.
	StrategyNone Strategy = "none"
	// StrategyDotN appends ".N": 16.0.1.0.0 becomes 16.0.1.0.0.N.
	StrategyDotN Strategy = ".N"
	// StrategyP1DevN bumps the last component and appends ".devN":
	// 14.0.1.0.0 becomes 14.0.1.0.1.devN.
	StrategyP1DevN Strategy = "+1.devN"
	// StrategyNinetyNineDevN appends ".99.devN": 8.0.1.0.0 becomes 8.0.1.0.0.99.devN.
	StrategyNinetyNineDevN Strategy = ".99.devN"
)

type (
	// Strategy selects how the commit count is folded into the version.
	Strategy string

	// UnknownStrategyError is returned for an unrecognized strategy identifier.
	UnknownStrategyError struct {
		Value Strategy
	}
)

// Strategies lists every known strategy.
func Strategies() []Strategy {
	return []Strategy{StrategyNone, StrategyDotN, StrategyP1DevN, StrategyNinetyNineDevN}
}

// ParseStrategy validates s as a strategy identifier.
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(s)
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

// Error implements the error interface.
func (e *UnknownStrategyError) Error() string {
	known := make([]string, 0, len(Strategies()))
	for _, s := range Strategies() {
		known = append(known, string(s))
	}
	return fmt.Sprintf("unknown postversion strategy: %s (expected one of %s)", string(e.Value), strings.Join(known, ", "))
}

// Unwrap returns errdefs.ErrUnknownPostVersionStrategy for errors.Is() compatibility.
func (e *UnknownStrategyError) Unwrap() error { return errdefs.ErrUnknownPostVersionStrategy }

// IsValid returns whether the Strategy is one of the known strategies,
// and a list of validation errors if it is not.
func (s Strategy) IsValid() (bool, []error) {
	switch s {
	case StrategyNone, StrategyDotN, StrategyP1DevN, StrategyNinetyNineDevN:
		return true, nil
	default:
		return false, []error{&UnknownStrategyError{Value: s}}
	}
}

// Validate returns an *UnknownStrategyError when s is not a known strategy.
func (s Strategy) Validate() error {
	if ok, errs := s.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

// String returns the string representation of the Strategy.
func (s Strategy) String() string { return string(s) }

// Or returns override when it is set, s otherwise.
func (s Strategy) Or(override Strategy) Strategy {
	if override != "" {
		return override
	}
	return s
}

// Format folds count into version. count must be positive.
func (s Strategy) Format(version string, count int) (string, error) {
	switch s {
	case StrategyNone:
		return version, nil
	case StrategyDotN:
		return fmt.Sprintf("%s.%d", version, count), nil
	case StrategyP1DevN:
		bumped, err := BumpLast(version)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.dev%d", bumped, count), nil
	case StrategyNinetyNineDevN:
		return fmt.Sprintf("%s.99.dev%d", version, count), nil
	default:
		return "", &UnknownStrategyError{Value: s}
	}
}

// BumpLast increments the last dot-separated component of version. Every
// component must be a non-negative integer.
func BumpLast(version string) (string, error) {
	parts := strings.Split(version, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return "", errdefs.New(errdefs.ErrUnsupportedManifestVersion,
				"cannot bump version %q: component %q is not a number", version, p)
		}
		nums[i] = n
	}
	nums[len(nums)-1]++
	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = strconv.Itoa(n)
	}
	return strings.Join(out, "."), nil
}
