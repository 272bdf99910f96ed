// SPDX-License-Identifier: MPL-2.0

package series

import (
	"slices"

	"github.com/manifestoo/manifestoo/pkg/postversion"
)

// Info holds the packaging parameters of a series.
type Info struct {
	Series Series
	// OdooDep is the requirement on the Odoo distribution itself.
	OdooDep string
	// PkgNamePrefix prefixes addon distribution names ("odoo14-addon").
	PkgNamePrefix string
	// PkgVersionSpecifier is appended to addon requirements; empty before 15.0.
	PkgVersionSpecifier string
	// AddonsNamespace is the Python package holding addons.
	AddonsNamespace string
	// NamespacePackages lists the declared namespace packages, if any.
	NamespacePackages []string
	PythonRequires    string
	UniversalWheel    bool
	// PostVersionStrategy is the default postversion strategy.
	PostVersionStrategy postversion.Strategy
}

var infos = map[Series]Info{
	Series8: {
		OdooDep:             "odoo>=8.0a,<9.0a",
		PkgNamePrefix:       "odoo8-addon",
		AddonsNamespace:     "odoo_addons",
		NamespacePackages:   []string{"odoo_addons"},
		PythonRequires:      "~=2.7",
		PostVersionStrategy: postversion.StrategyNinetyNineDevN,
	},
	Series9: {
		OdooDep:             "odoo>=9.0a,<9.1a",
		PkgNamePrefix:       "odoo9-addon",
		AddonsNamespace:     "odoo_addons",
		NamespacePackages:   []string{"odoo_addons"},
		PythonRequires:      "~=2.7",
		PostVersionStrategy: postversion.StrategyNinetyNineDevN,
	},
	Series10: {
		OdooDep:             "odoo>=10.0,<10.1dev",
		PkgNamePrefix:       "odoo10-addon",
		AddonsNamespace:     "odoo.addons",
		NamespacePackages:   []string{"odoo", "odoo.addons"},
		PythonRequires:      "~=2.7",
		PostVersionStrategy: postversion.StrategyNinetyNineDevN,
	},
	Series11: {
		OdooDep:             "odoo>=11.0a,<11.1dev",
		PkgNamePrefix:       "odoo11-addon",
		AddonsNamespace:     "odoo.addons",
		PythonRequires:      ">=2.7, !=3.0.*, !=3.1.*, !=3.2.*, !=3.3.*, !=3.4.*",
		UniversalWheel:      true,
		PostVersionStrategy: postversion.StrategyNinetyNineDevN,
	},
	Series12: {
		OdooDep:             "odoo>=12.0a,<12.1dev",
		PkgNamePrefix:       "odoo12-addon",
		AddonsNamespace:     "odoo.addons",
		PythonRequires:      ">=3.5",
		PostVersionStrategy: postversion.StrategyNinetyNineDevN,
	},
	Series13: {
		OdooDep:             "odoo>=13.0a,<13.1dev",
		PkgNamePrefix:       "odoo13-addon",
		AddonsNamespace:     "odoo.addons",
		PythonRequires:      ">=3.5",
		PostVersionStrategy: postversion.StrategyP1DevN,
	},
	Series14: {
		OdooDep:             "odoo>=14.0a,<14.1dev",
		PkgNamePrefix:       "odoo14-addon",
		AddonsNamespace:     "odoo.addons",
		PythonRequires:      ">=3.6",
		PostVersionStrategy: postversion.StrategyP1DevN,
	},
	Series15: {
		OdooDep:             "odoo>=15.0a,<15.1dev",
		PkgNamePrefix:       "odoo-addon",
		PkgVersionSpecifier: ">=15.0dev,<15.1dev",
		AddonsNamespace:     "odoo.addons",
		PythonRequires:      ">=3.8",
		PostVersionStrategy: postversion.StrategyDotN,
	},
	Series16: {
		OdooDep:             "odoo>=16.0a,<16.1dev",
		PkgNamePrefix:       "odoo-addon",
		PkgVersionSpecifier: ">=16.0dev,<16.1dev",
		AddonsNamespace:     "odoo.addons",
		PythonRequires:      ">=3.10",
		PostVersionStrategy: postversion.StrategyDotN,
	},
	Series17: {
		OdooDep:             "odoo>=17.0a,<17.1dev",
		PkgNamePrefix:       "odoo-addon",
		PkgVersionSpecifier: ">=17.0dev,<17.1dev",
		AddonsNamespace:     "odoo.addons",
		PythonRequires:      ">=3.10",
		PostVersionStrategy: postversion.StrategyDotN,
	},
	Series18: {
		OdooDep:             "odoo==18.0.*",
		PkgNamePrefix:       "odoo-addon",
		PkgVersionSpecifier: "==18.0.*",
		AddonsNamespace:     "odoo.addons",
		PythonRequires:      ">=3.10",
		PostVersionStrategy: postversion.StrategyDotN,
	},
}

// InfoFor returns the packaging parameters of s.
func InfoFor(s Series) (Info, error) {
	info, ok := infos[s]
	if !ok {
		return Info{}, &UnsupportedSeriesError{Value: string(s)}
	}
	info.Series = s
	info.NamespacePackages = slices.Clone(info.NamespacePackages)
	return info, nil
}

// Lookup parses value and returns the packaging parameters of that series.
func Lookup(value, context string) (Info, error) {
	s, err := Parse(value, context)
	if err != nil {
		return Info{}, err
	}
	return InfoFor(s)
}

// IsCoreAddon reports whether name ships with Odoo in the info's series.
func (i Info) IsCoreAddon(name string) bool { return IsCoreAddon(name, i.Series) }
