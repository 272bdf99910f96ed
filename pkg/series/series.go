// SPDX-License-Identifier: MPL-2.0

// Package series identifies Odoo release series and editions, and carries
// the static packaging parameters and core addon lists of each series.
package series

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/manifestoo/manifestoo/pkg/addon"
	"github.com/manifestoo/manifestoo/pkg/errdefs"
)

// MinVersionParts is the number of dot-separated components an addon
// version needs for its series to be derived from it.
const MinVersionParts = 5

const (
	Series8  Series = "8.0"
	Series9  Series = "9.0"
	Series10 Series = "10.0"
	Series11 Series = "11.0"
	Series12 Series = "12.0"
	Series13 Series = "13.0"
	Series14 Series = "14.0"
	Series15 Series = "15.0"
	Series16 Series = "16.0"
	Series17 Series = "17.0"
	Series18 Series = "18.0"
)

const (
	// EditionCE is the Community Edition.
	EditionCE Edition = "c"
	// EditionEE is the Enterprise Edition.
	EditionEE Edition = "e"
)

type (
	// Series is an Odoo release series such as "16.0".
	Series string

	// Edition is an Odoo edition.
	Edition string

	// UnsupportedSeriesError is returned when a string does not name a known series.
	UnsupportedSeriesError struct {
		Value string
		// Context describes where Value came from; it may be empty.
		Context string
	}
)

var all = []Series{
	Series8, Series9, Series10, Series11, Series12, Series13,
	Series14, Series15, Series16, Series17, Series18,
}

// All returns every supported series, oldest first.
func All() []Series { return slices.Clone(all) }

// Parse returns the series named by value. context, when not empty, is
// appended to the error message.
func Parse(value, context string) (Series, error) {
	s := Series(value)
	if !slices.Contains(all, s) {
		return "", &UnsupportedSeriesError{Value: value, Context: context}
	}
	return s, nil
}

// Error implements the error interface.
func (e *UnsupportedSeriesError) Error() string {
	msg := "Unsupported Odoo Series: " + e.Value
	if e.Context != "" {
		msg += " in " + e.Context
	}
	return msg
}

// Unwrap returns errdefs.ErrUnsupportedOdooSeries for errors.Is() compatibility.
func (e *UnsupportedSeriesError) Unwrap() error { return errdefs.ErrUnsupportedOdooSeries }

// IsValid returns whether the Series is supported, and a list of validation
// errors if it is not.
func (s Series) IsValid() (bool, []error) {
	if slices.Contains(all, s) {
		return true, nil
	}
	return false, []error{&UnsupportedSeriesError{Value: string(s)}}
}

// Validate returns an *UnsupportedSeriesError when s is not supported.
func (s Series) Validate() error {
	if ok, errs := s.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

// String returns the string representation of the Series.
func (s Series) String() string { return string(s) }

// Major returns the major release number, 0 for an unsupported series.
func (s Series) Major() int {
	major, _, _ := strings.Cut(string(s), ".")
	n, err := strconv.Atoi(major)
	if err != nil || !slices.Contains(all, s) {
		return 0
	}
	return n
}

// Compare orders series by release, like cmp.Compare.
func (s Series) Compare(other Series) int {
	return cmp.Compare(s.Major(), other.Major())
}

// IsValid returns whether the Edition is known, and a list of validation
// errors if it is not.
func (e Edition) IsValid() (bool, []error) {
	switch e {
	case EditionCE, EditionEE:
		return true, nil
	default:
		return false, []error{fmt.Errorf("unknown edition %q (expected %q or %q)", string(e), EditionCE, EditionEE)}
	}
}

// String returns the string representation of the Edition.
func (e Edition) String() string { return string(e) }

// DetectFromAddonVersion returns the series encoded in the first two
// components of an addon version such as "16.0.1.0.0". It reports false when
// the version is too short or names an unsupported series.
func DetectFromAddonVersion(version string) (Series, bool) {
	parts := strings.Split(version, ".")
	if len(parts) < MinVersionParts {
		return "", false
	}
	s := Series(parts[0] + "." + parts[1])
	if !slices.Contains(all, s) {
		return "", false
	}
	return s, true
}

// DetectFromAddonsSet returns the distinct series of the addons in set,
// sorted oldest first. Addons without a version, or whose version does not
// identify a series, are ignored.
func DetectFromAddonsSet(set addon.Set) ([]Series, error) {
	seen := make(map[Series]struct{})
	for _, name := range set.Names() {
		v, err := set[name].Manifest.Version()
		if err != nil {
			return nil, err
		}
		if v == "" {
			continue
		}
		if s, ok := DetectFromAddonVersion(v); ok {
			seen[s] = struct{}{}
		}
	}
	out := make([]Series, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	slices.SortFunc(out, Series.Compare)
	return out, nil
}
