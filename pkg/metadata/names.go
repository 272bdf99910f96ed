// SPDX-License-Identifier: MPL-2.0

package metadata

import (
	"regexp"
	"strings"

	"github.com/manifestoo/manifestoo/pkg/errdefs"
	"github.com/manifestoo/manifestoo/pkg/series"
)

var (
	// odooDistRE matches requirements on Odoo itself or on packaged addons.
	odooDistRE = regexp.MustCompile(`(?i)^(odoo(\d{1,2})?[-_]addon[-_].*|odoo$|odoo[^a-zA-Z0-9._-]+)`)

	addonDistNameRE = regexp.MustCompile(`^odoo(\d{1,2})?[-_]addon[-_]([a-zA-Z0-9_-]+)$`)
)

// DistributionNameToAddonName converts a distribution name such as
// "odoo14-addon-mis_builder" back to its addon name. Dashes in the addon
// part become underscores.
func DistributionNameToAddonName(name string) (string, error) {
	m := addonDistNameRE.FindStringSubmatch(name)
	if m == nil {
		return "", errdefs.New(errdefs.ErrInvalidDistributionName,
			"%s does not look like an Odoo addon package name", name)
	}
	return strings.ReplaceAll(m[2], "-", "_"), nil
}

// AddonNameToDistributionName returns the distribution name of an addon in s.
func AddonNameToDistributionName(name string, s series.Series) (string, error) {
	info, err := series.InfoFor(s)
	if err != nil {
		return "", err
	}
	return distributionName(name, info), nil
}

// AddonNameToRequirement returns the requirement specifier that selects the
// addon's distribution for s.
func AddonNameToRequirement(name string, s series.Series) (string, error) {
	info, err := series.InfoFor(s)
	if err != nil {
		return "", err
	}
	return requirement(name, info), nil
}

func distributionName(name string, info series.Info) string {
	return info.PkgNamePrefix + "-" + name
}

func requirement(name string, info series.Info) string {
	return distributionName(name, info) + info.PkgVersionSpecifier
}

// filterExternal drops requirements on Odoo and on Odoo addons.
func filterExternal(reqs []string) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if strings.HasPrefix(r, "odoo>=") || odooDistRE.MatchString(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}
