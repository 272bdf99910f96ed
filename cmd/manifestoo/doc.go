// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the manifestoo command-line interface.
//
// The root command loads configuration once per invocation (config.cue plus
// MANIFESTOO_* environment overrides), installs a charmbracelet/log handler
// as the slog default, and dispatches to the metadata, version, show, list,
// series, dist-name, addon-name and config subcommands.
package cmd
