// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/manifestoo/manifestoo/pkg/addon"
	"github.com/manifestoo/manifestoo/pkg/metadata"
	"github.com/manifestoo/manifestoo/pkg/series"
)

const globMeta = "*?[{"

func newShowCommand(app *App) *cobra.Command {
	var readme bool
	cmd := &cobra.Command{
		Use:   "show <addon-dir>",
		Short: "Show a summary of an addon manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := addon.FromDir(args[0], addon.AllowNotInstallable())
			if err != nil {
				return err
			}
			if readme {
				return showReadme(app, a)
			}
			return showManifest(app, a)
		},
	}
	cmd.Flags().BoolVar(&readme, "readme", false, "render the long description instead of the manifest summary")
	return cmd
}

func showManifest(app *App, a *addon.Addon) error {
	m := a.Manifest
	name, err := m.Name()
	if err != nil {
		return err
	}
	version, err := m.Version()
	if err != nil {
		return err
	}
	summary, err := m.Summary()
	if err != nil {
		return err
	}
	author, err := m.Author()
	if err != nil {
		return err
	}
	license, err := m.License()
	if err != nil {
		return err
	}
	website, err := m.Website()
	if err != nil {
		return err
	}
	installable, err := m.Installable()
	if err != nil {
		return err
	}
	depends, err := m.Depends()
	if err != nil {
		return err
	}
	externals, err := m.ExternalDependencies()
	if err != nil {
		return err
	}

	s, _ := series.DetectFromAddonVersion(version)

	lines := []string{
		TitleStyle.Render(a.Name) + " " + SubtitleStyle.Render(a.ManifestPath),
		"",
		keyValue("name", name),
		keyValue("version", version),
		keyValue("series", s.String()),
		keyValue("summary", summary),
		keyValue("author", author),
		keyValue("license", license),
		keyValue("website", website),
		keyValue("installable", strconv.FormatBool(installable)),
		keyValue("depends", strings.Join(annotateCore(depends, s), ", ")),
	}
	for _, eco := range sortedKeys(externals) {
		lines = append(lines, keyValue("external ("+eco+")", strings.Join(externals[eco], ", ")))
	}
	_, err = fmt.Fprintln(app.stdout, strings.Join(lines, "\n"))
	return err
}

// annotateCore marks the dependencies shipped with Odoo itself.
func annotateCore(depends []string, s series.Series) []string {
	out := make([]string, len(depends))
	for i, d := range depends {
		out[i] = d
		if s != "" && series.IsCoreAddon(d, s) {
			out[i] += " (core)"
		}
	}
	return out
}

func showReadme(app *App, a *addon.Addon) error {
	text, contentType, err := metadata.LongDescription(a)
	if err != nil {
		return err
	}
	if contentType == "text/markdown" {
		rendered, err := glamour.Render(text, app.markdownStyle())
		if err != nil {
			return err
		}
		text = rendered
	}
	_, err = fmt.Fprint(app.stdout, text)
	return err
}

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <addons-dir|glob>...",
		Short: "List the addons found in directories or glob patterns",
		Long: `List the installable addons found directly under each addons directory,
or matched by a doublestar pattern such as "src/**/__manifest__.py".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := collectAddons(args)
			if err != nil {
				return err
			}
			for _, name := range set.Names() {
				v, err := set[name].Manifest.Version()
				if err != nil {
					return err
				}
				s, _ := series.DetectFromAddonVersion(v)
				fmt.Fprintf(app.stdout, "%-40s %-16s %s\n", name, v, s)
			}
			return nil
		},
	}
}

func newSeriesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "series [<addons-dir|addon-dir|glob>...]",
		Short: "Print the Odoo series of a set of addons",
		Long: `Print the distinct Odoo series of the given addons, oldest first.
Without arguments, print every supported series.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := series.All()
			if len(args) > 0 {
				set, err := collectAddons(args)
				if err != nil {
					return err
				}
				if all, err = series.DetectFromAddonsSet(set); err != nil {
					return err
				}
			}
			for _, s := range all {
				fmt.Fprintln(app.stdout, s)
			}
			return nil
		},
	}
}

// collectAddons builds a set from addon directories, addons directories and
// glob patterns.
func collectAddons(args []string) (addon.Set, error) {
	set := addon.NewSet()
	for _, arg := range args {
		switch {
		case strings.ContainsAny(arg, globMeta):
			if err := set.AddFromGlob(arg); err != nil {
				return nil, newUsageError("%w", err)
			}
		case addon.IsAddonDir(arg, false):
			a, err := addon.FromDir(arg)
			if err != nil {
				return nil, err
			}
			set.Add(a)
		default:
			if err := set.AddFromDir(arg); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
