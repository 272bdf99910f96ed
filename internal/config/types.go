// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifestoo/manifestoo/pkg/postversion"
)

const (
	// VCSBackendGit shells out to the git binary.
	VCSBackendGit VCSBackend = "git"
	// VCSBackendGoGit reads repositories in-process with go-git.
	VCSBackendGoGit VCSBackend = "go-git"

	// OutputFormatPkgInfo prints core metadata in PKG-INFO header form.
	OutputFormatPkgInfo OutputFormat = "pkg-info"
	// OutputFormatJSON prints core metadata as a JSON object.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatTOML prints core metadata as a TOML document.
	OutputFormatTOML OutputFormat = "toml"

	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidVCSBackend is returned when a VCSBackend value is not recognized.
	ErrInvalidVCSBackend = errors.New("invalid vcs backend")
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidBinaryFilePath is returned when a BinaryFilePath value is whitespace-only.
	ErrInvalidBinaryFilePath = errors.New("invalid binary file path")
	// ErrInvalidVCSConfig is the sentinel error wrapped by InvalidVCSConfigError.
	ErrInvalidVCSConfig = errors.New("invalid vcs config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// VCSBackend selects the repository implementation used for version history.
	VCSBackend string

	// InvalidVCSBackendError is returned when a VCSBackend value is not recognized.
	InvalidVCSBackendError struct {
		Value VCSBackend
	}

	// OutputFormat selects how the metadata command renders a record.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// LogLevel is the minimum level emitted by the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// BinaryFilePath is a name or path of an executable.
	// The zero value is valid and means "use the default binary".
	BinaryFilePath string

	// InvalidBinaryFilePathError is returned when a BinaryFilePath value is
	// non-empty but whitespace-only.
	InvalidBinaryFilePathError struct {
		Value BinaryFilePath
	}

	// InvalidVCSConfigError collects field-level errors of a VCSConfig.
	InvalidVCSConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError collects field-level errors of a UIConfig.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects field-level errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// VCS configures how addon history is read.
		VCS VCSConfig `json:"vcs" mapstructure:"vcs"`
		// PostVersionStrategy, when set, overrides the series default strategy.
		PostVersionStrategy postversion.Strategy `json:"post_version_strategy,omitempty" mapstructure:"post_version_strategy"`
		// OutputFormat is the default format of the metadata command.
		OutputFormat OutputFormat `json:"output_format" mapstructure:"output_format"`
		// LogLevel is the minimum log level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// VCSConfig configures the version control backend.
	VCSConfig struct {
		Backend VCSBackend `json:"backend" mapstructure:"backend"`
		// GitBinary is only used by the git backend.
		GitBinary BinaryFilePath `json:"git_binary" mapstructure:"git_binary"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose lowers the log level to debug
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidVCSBackendError.
func (e *InvalidVCSBackendError) Error() string {
	return fmt.Sprintf("invalid vcs backend %q (valid: git, go-git)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidVCSBackendError) Unwrap() error { return ErrInvalidVCSBackend }

// String returns the string representation of the VCSBackend.
func (b VCSBackend) String() string { return string(b) }

// IsValid returns whether the VCSBackend is one of the defined backends,
// and a list of validation errors if it is not.
func (b VCSBackend) IsValid() (bool, []error) {
	switch b {
	case VCSBackendGit, VCSBackendGoGit:
		return true, nil
	default:
		return false, []error{&InvalidVCSBackendError{Value: b}}
	}
}

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: pkg-info, json, toml)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is one of the defined formats,
// and a list of validation errors if it is not.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case OutputFormatPkgInfo, OutputFormatJSON, OutputFormatTOML:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// String returns the string representation of the BinaryFilePath.
func (p BinaryFilePath) String() string { return string(p) }

// IsValid returns whether the BinaryFilePath is valid.
// The zero value is valid; non-zero values must not be whitespace-only.
func (p BinaryFilePath) IsValid() (bool, []error) {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidBinaryFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidBinaryFilePathError.
func (e *InvalidBinaryFilePathError) Error() string {
	return fmt.Sprintf("invalid binary file path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidBinaryFilePath for errors.Is() compatibility.
func (e *InvalidBinaryFilePathError) Unwrap() error { return ErrInvalidBinaryFilePath }

// IsValid returns whether the VCSConfig has valid fields.
func (c VCSConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Backend.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.GitBinary.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidVCSConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidVCSConfigError.
func (e *InvalidVCSConfigError) Error() string {
	return fmt.Sprintf("invalid vcs config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidVCSConfig for errors.Is() compatibility.
func (e *InvalidVCSConfigError) Unwrap() error { return ErrInvalidVCSConfig }

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		return false, []error{&InvalidUIConfigError{FieldErrors: fieldErrs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields. An empty
// PostVersionStrategy is valid and means "use the series default".
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.VCS.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.PostVersionStrategy != "" {
		if valid, fieldErrs := c.PostVersionStrategy.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.OutputFormat.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		VCS: VCSConfig{
			Backend:   VCSBackendGit,
			GitBinary: "git",
		},
		OutputFormat: OutputFormatPkgInfo,
		LogLevel:     LogLevelWarn,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}
