// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/manifestoo/manifestoo/internal/config"
	"github.com/manifestoo/manifestoo/internal/issue"
	"github.com/manifestoo/manifestoo/pkg/types"
	"github.com/manifestoo/manifestoo/pkg/vcs"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// App wires CLI services and per-invocation state. Every command handler
	// receives the App; nothing reads package-level configuration.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer

		// Populated by the root PersistentPreRunE.
		cfg        *config.Config
		cfgPath    string
		cfgErr     error
		configFlag string
		verbose    bool
		logLevel   string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{Config: deps.Config, stdout: deps.Stdout, stderr: deps.Stderr, cfg: config.DefaultConfig()}
}

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "manifestoo",
		Short: "Inspect Odoo addons and compute their Python package metadata",
		Long: TitleStyle.Render("manifestoo") + SubtitleStyle.Render(" - Odoo addon manifests as Python packages") + `

manifestoo reads addon manifests, detects their Odoo series and builds
the core metadata (PKG-INFO) of the corresponding Python distribution,
including a version derived from the addon's git history.

` + SubtitleStyle.Render("Examples:") + `
  manifestoo metadata addons/mis_builder           Print PKG-INFO
  manifestoo metadata --format json addons/x       Print metadata as JSON
  manifestoo version addons/mis_builder            Print the computed version
  manifestoo list addons                           List addons of a directory
  manifestoo dist-name mis_builder --series 14.0   Map an addon to its package`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.initialize(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&app.configFlag, "config", "", "config file (default is <config dir>/manifestoo/config.cue)")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output and debug logging")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "log level: debug, info, warn or error (default from config)")

	root.AddCommand(
		newMetadataCommand(app),
		newVersionCommand(app),
		newShowCommand(app),
		newListCommand(app),
		newSeriesCommand(app),
		newDistNameCommand(app),
		newAddonNameCommand(app),
		newConfigCommand(app),
	)
	return root
}

// initialize loads configuration and installs the logger. A configuration
// that fails to load is reported and replaced by the defaults so that
// commands not depending on it keep working.
func (a *App) initialize(ctx context.Context) error {
	cfg, path, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.configFlag)})
	if err != nil {
		a.cfgErr = err
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.verbose))
		cfg = config.DefaultConfig()
	}
	a.cfg, a.cfgPath = cfg, path
	if !a.verbose {
		a.verbose = cfg.UI.Verbose
	}

	level := config.LogLevel(a.logLevel)
	if level == "" {
		level = cfg.LogLevel
	}
	if valid, errs := level.IsValid(); !valid {
		return &ExitError{Code: types.ExitUsage, Err: errs[0]}
	}
	if a.verbose {
		level = config.LogLevelDebug
	}
	slog.SetDefault(slog.New(newLogHandler(a.stderr, level)))

	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	}
	return nil
}

// repository returns the VCS backend selected by configuration. The git
// backend falls back to go-git when its executable cannot be found.
func (a *App) repository() vcs.Repository {
	if a.cfg.VCS.Backend == config.VCSBackendGoGit {
		return vcs.NewGoGit()
	}
	var opts []vcs.GitCLIOption
	if a.cfg.VCS.GitBinary != "" {
		opts = append(opts, vcs.WithGitBinary(a.cfg.VCS.GitBinary.String()))
	}
	g := vcs.NewGitCLI(opts...)
	if err := g.Available(); err != nil {
		slog.Debug("using the go-git backend", "binary", g.Binary(), "error", err)
		return vcs.NewGoGit()
	}
	return g
}

// markdownStyle returns the glamour style matching the configured color scheme.
func (a *App) markdownStyle() string {
	switch a.cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the manifestoo command line and returns the process exit code.
func Execute() int {
	app := NewApp(Dependencies{})
	err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err == nil {
		return int(types.ExitSuccess)
	}
	app.renderIssue(err)
	return int(exitCodeFor(err))
}

// renderIssue prints the catalog help page of err in verbose mode.
func (a *App) renderIssue(err error) {
	if !a.verbose {
		return
	}
	is := issue.ForError(err)
	var cmdErr *vcs.CommandError
	if is == nil && errors.As(err, &cmdErr) {
		is = issue.Get(issue.VCSFailedId)
	}
	if is == nil {
		return
	}
	if rendered, renderErr := is.Render(a.markdownStyle()); renderErr == nil {
		fmt.Fprint(a.stderr, rendered)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
