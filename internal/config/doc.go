// SPDX-License-Identifier: MPL-2.0

// Package config handles manifestoo configuration using Viper with CUE as the file format.
//
// Configuration is loaded from <config dir>/manifestoo/config.cue (XDG on Linux,
// ~/Library/Application Support on macOS, %APPDATA% on Windows), falling back to
// ./config.cue. Files are validated against the embedded config_schema.cue, and
// MANIFESTOO_* environment variables override file values.
package config
