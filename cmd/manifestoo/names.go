// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manifestoo/manifestoo/pkg/metadata"
	"github.com/manifestoo/manifestoo/pkg/series"
)

func newDistNameCommand(app *App) *cobra.Command {
	var (
		odooSeries  string
		requirement bool
	)
	cmd := &cobra.Command{
		Use:   "dist-name <addon>...",
		Short: "Print the Python distribution name of addons",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := series.Parse(odooSeries, "")
			if err != nil {
				return err
			}
			convert := metadata.AddonNameToDistributionName
			if requirement {
				convert = metadata.AddonNameToRequirement
			}
			for _, name := range args {
				out, err := convert(name, s)
				if err != nil {
					return err
				}
				fmt.Fprintln(app.stdout, out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&odooSeries, "series", "", "Odoo series, e.g. 16.0 (required)")
	cmd.Flags().BoolVar(&requirement, "requirement", false, "print a requirement pinned to the series instead of the bare name")
	_ = cmd.MarkFlagRequired("series")
	return cmd
}

func newAddonNameCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "addon-name <distribution>...",
		Short: "Print the addon name of Python distributions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, dist := range args {
				name, err := metadata.DistributionNameToAddonName(dist)
				if err != nil {
					return err
				}
				fmt.Fprintln(app.stdout, name)
			}
			return nil
		},
	}
}
