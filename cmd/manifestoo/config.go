// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/manifestoo/manifestoo/internal/config"
)

// newConfigCommand creates the `manifestoo config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage manifestoo configuration",
		Long: `Manage manifestoo configuration.

Configuration is stored in:
  - Linux: $XDG_CONFIG_HOME/manifestoo/config.cue (default ~/.config)
  - macOS: ~/Library/Application Support/manifestoo/config.cue
  - Windows: %APPDATA%\manifestoo\config.cue

A config.cue in the working directory is used when the above is missing.
Environment variables such as MANIFESTOO_VCS_BACKEND override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfgErr != nil {
				return app.cfgErr
			}
			showConfig(app)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfgPath != "" {
				fmt.Fprintln(app.stdout, app.cfgPath)
				return nil
			}
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s/%s.%s (not found, using defaults)\n", dir, config.ConfigFileName, config.ConfigFileExt)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig("")
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Configuration already exists:"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s\n", ValueStyle.Render("Created configuration:"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfgErr != nil {
				return app.cfgErr
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(app.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(app *App) {
	cfg := app.cfg
	source := app.cfgPath
	if source == "" {
		source = "(using defaults)"
	}
	strategy := cfg.PostVersionStrategy.String()
	if strategy == "" {
		strategy = "(series default)"
	}

	for _, line := range []string{
		TitleStyle.Render("Current Configuration"),
		"",
		keyValue("config file", source),
		"",
		keyValue("vcs.backend", cfg.VCS.Backend.String()),
		keyValue("vcs.git_binary", cfg.VCS.GitBinary.String()),
		keyValue("post_version_strategy", strategy),
		keyValue("output_format", cfg.OutputFormat.String()),
		keyValue("log_level", cfg.LogLevel.String()),
		keyValue("ui.color_scheme", cfg.UI.ColorScheme.String()),
		keyValue("ui.verbose", strconv.FormatBool(cfg.UI.Verbose)),
	} {
		fmt.Fprintln(app.stdout, line)
	}
}
