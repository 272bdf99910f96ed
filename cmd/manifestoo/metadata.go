// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manifestoo/manifestoo/internal/config"
	"github.com/manifestoo/manifestoo/pkg/metadata"
	"github.com/manifestoo/manifestoo/pkg/postversion"
	"github.com/manifestoo/manifestoo/pkg/types"
)

// metadataFlags are the flags shared by the metadata and version commands.
type metadataFlags struct {
	format          string
	series          string
	strategy        string
	externalsOnly   bool
	dependsOverride []string
	optionsFile     string
	precomputed     string
}

func (f *metadataFlags) register(cmd *cobra.Command, withFormat bool) {
	flags := cmd.Flags()
	if withFormat {
		flags.StringVarP(&f.format, "format", "f", "", "output format: pkg-info, json or toml (default from config)")
		flags.BoolVar(&f.externalsOnly, "externals-only", false, "keep only requirements that are not Odoo or Odoo addons")
		flags.StringArrayVar(&f.dependsOverride, "depends-override", nil, "replace the requirement of an addon dependency (name=requirement, repeatable)")
	}
	flags.StringVar(&f.series, "series", "", "Odoo series to use instead of the manifest version prefix")
	flags.StringVar(&f.strategy, "post-version-strategy", "", "post version strategy: "+strategyList()+" (default from config)")
	flags.StringVar(&f.optionsFile, "options", "", "TOML file with depends/external dependency overrides")
	flags.StringVar(&f.precomputed, "precomputed", "", "PKG-INFO file providing Name and Version")
}

func strategyList() string {
	names := make([]string, 0, len(postversion.Strategies()))
	for _, s := range postversion.Strategies() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}

// options merges, from lowest to highest precedence, the configuration,
// the options file and the command-line flags.
func (f *metadataFlags) options(app *App) (metadata.Options, error) {
	var opts metadata.Options
	if f.optionsFile != "" {
		path, err := types.FilesystemPath(f.optionsFile).Expand()
		if err != nil {
			return metadata.Options{}, err
		}
		loaded, err := metadata.LoadOptionsFile(path.String())
		if err != nil {
			return metadata.Options{}, err
		}
		opts = loaded
	}
	if opts.PostVersionStrategy == "" {
		opts.PostVersionStrategy = app.cfg.PostVersionStrategy
	}
	if f.strategy != "" {
		s, err := postversion.ParseStrategy(f.strategy)
		if err != nil {
			return metadata.Options{}, err
		}
		opts.PostVersionStrategy = s
	}
	if f.series != "" {
		opts.SeriesOverride = f.series
	}
	if f.externalsOnly {
		opts.ExternalDependenciesOnly = true
	}
	for _, kv := range f.dependsOverride {
		name, req, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return metadata.Options{}, newUsageError("invalid --depends-override %q: expected name=requirement", kv)
		}
		if opts.DependsOverride == nil {
			opts.DependsOverride = make(map[string]string)
		}
		opts.DependsOverride[name] = req
	}
	opts.PrecomputedMetadataFile = f.precomputed
	opts.Repository = app.repository()
	return opts, nil
}

func newMetadataCommand(app *App) *cobra.Command {
	var flags metadataFlags
	cmd := &cobra.Command{
		Use:   "metadata <addon-dir>",
		Short: "Print the Python package metadata of an addon",
		Long: `Print the core metadata (PKG-INFO) of the Python distribution built
from an addon: name, version, requirements, classifiers and long description.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := config.OutputFormat(flags.format)
			if format == "" {
				format = app.cfg.OutputFormat
			}
			if valid, errs := format.IsValid(); !valid {
				return newUsageError("%w", errs[0])
			}
			opts, err := flags.options(app)
			if err != nil {
				return err
			}
			rec, err := metadata.FromAddonDir(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return writeRecord(app, rec, format)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func writeRecord(app *App, rec *metadata.Record, format config.OutputFormat) error {
	switch format {
	case config.OutputFormatJSON:
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	case config.OutputFormatTOML:
		data, err := rec.MarshalTOML()
		if err != nil {
			return err
		}
		_, err = app.stdout.Write(data)
		return err
	default:
		_, err := rec.WriteTo(app.stdout)
		return err
	}
}

func newVersionCommand(app *App) *cobra.Command {
	var flags metadataFlags
	cmd := &cobra.Command{
		Use:   "version <addon-dir>",
		Short: "Print the computed package version of an addon",
		Long: `Print the version of the Python distribution built from an addon: the
manifest version, plus a post-release suffix counting the commits made
since the version was last changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(app)
			if err != nil {
				return err
			}
			rec, err := metadata.FromAddonDir(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			v, _ := rec.Get("Version")
			fmt.Fprintln(app.stdout, v)
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}
