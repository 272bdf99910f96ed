// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"

	"github.com/manifestoo/manifestoo/pkg/errdefs"
)

func TestEnumsIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		isValid  func() (bool, []error)
		want     bool
		sentinel error
	}{
		{"git backend", VCSBackendGit.IsValid, true, nil},
		{"go-git backend", VCSBackendGoGit.IsValid, true, nil},
		{"unknown backend", VCSBackend("hg").IsValid, false, ErrInvalidVCSBackend},
		{"json format", OutputFormatJSON.IsValid, true, nil},
		{"unknown format", OutputFormat("yaml").IsValid, false, ErrInvalidOutputFormat},
		{"warn level", LogLevelWarn.IsValid, true, nil},
		{"unknown level", LogLevel("trace").IsValid, false, ErrInvalidLogLevel},
		{"light scheme", ColorSchemeLight.IsValid, true, nil},
		{"empty scheme", ColorScheme("").IsValid, false, ErrInvalidColorScheme},
		{"empty binary", BinaryFilePath("").IsValid, true, nil},
		{"blank binary", BinaryFilePath("  ").IsValid, false, ErrInvalidBinaryFilePath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, errs := tt.isValid()
			if got != tt.want {
				t.Fatalf("IsValid() = %v, want %v (errs: %v)", got, tt.want, errs)
			}
			if tt.sentinel != nil && (len(errs) != 1 || !errors.Is(errs[0], tt.sentinel)) {
				t.Errorf("errs = %v, want one wrapping %v", errs, tt.sentinel)
			}
		})
	}
}

func TestConfigIsValid(t *testing.T) {
	t.Parallel()

	if valid, errs := DefaultConfig().IsValid(); !valid {
		t.Fatalf("DefaultConfig() is invalid: %v", errs)
	}

	cfg := DefaultConfig()
	cfg.VCS.Backend = "svn"
	cfg.PostVersionStrategy = "bogus"
	cfg.UI.ColorScheme = "pink"
	valid, errs := cfg.IsValid()
	if valid || len(errs) != 1 {
		t.Fatalf("IsValid() = %v, %v", valid, errs)
	}
	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) || len(cfgErr.FieldErrors) != 3 {
		t.Fatalf("errs[0] = %#v, want InvalidConfigError with 3 field errors", errs[0])
	}
	if !errors.Is(cfgErr.FieldErrors[0], ErrInvalidVCSConfig) {
		t.Errorf("FieldErrors[0] = %v", cfgErr.FieldErrors[0])
	}
	if !errors.Is(cfgErr.FieldErrors[1], errdefs.ErrUnknownPostVersionStrategy) {
		t.Errorf("FieldErrors[1] = %v", cfgErr.FieldErrors[1])
	}
	if !errors.Is(cfgErr.FieldErrors[2], ErrInvalidUIConfig) {
		t.Errorf("FieldErrors[2] = %v", cfgErr.FieldErrors[2])
	}
}
