// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize caps the size of a CUE document accepted by ParseAndDecode.
const DefaultMaxFileSize int64 = 1 << 20

type (
	// Option configures ParseAndDecode.
	Option func(*options)

	options struct {
		filename    string
		maxFileSize int64
		concrete    bool
	}
)

func defaultOptions() options {
	return options{maxFileSize: DefaultMaxFileSize}
}

// WithFilename sets the file name reported in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithMaxFileSize overrides DefaultMaxFileSize. Non-positive values are ignored.
func WithMaxFileSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxFileSize = n
		}
	}
}

// WithConcrete requires every field of the unified value to be concrete.
// Without it, fields left open by the schema are allowed and omitted from
// the decoded result.
func WithConcrete(concrete bool) Option {
	return func(o *options) { o.concrete = concrete }
}
