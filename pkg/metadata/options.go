// SPDX-License-Identifier: MPL-2.0

package metadata

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/manifestoo/manifestoo/pkg/postversion"
	"github.com/manifestoo/manifestoo/pkg/vcs"
)

type (
	// Options tune metadata assembly. The zero value is usable.
	Options struct {
		// DependsOverride replaces the requirement generated for an addon
		// dependency. An empty requirement drops the dependency.
		DependsOverride map[string]string
		// ExternalDependenciesOverride maps an ecosystem ("python") and an
		// external dependency name to the requirements replacing it.
		ExternalDependenciesOverride map[string]map[string][]string
		// ExternalDependenciesOnly keeps only requirements that are neither
		// Odoo nor Odoo addons.
		ExternalDependenciesOnly bool
		// SeriesOverride sets the series instead of deriving it from the
		// manifest version.
		SeriesOverride string
		// PostVersionStrategy overrides the series default strategy.
		PostVersionStrategy postversion.Strategy
		// PrecomputedMetadataFile points to a PKG-INFO file providing Name and
		// Version. It is ignored when the file does not exist.
		PrecomputedMetadataFile string
		// Repository reads version-control history. Defaults to the git CLI.
		Repository vcs.Repository
	}

	// optionsFile is the on-disk TOML layout of Options. Override values may
	// be a single string or a list of strings.
	optionsFile struct {
		DependsOverride              map[string]string         `toml:"depends_override"`
		ExternalDependenciesOverride map[string]map[string]any `toml:"external_dependencies_override"`
		ExternalDependenciesOnly     bool                      `toml:"external_dependencies_only"`
		SeriesOverride               string                    `toml:"odoo_series_override"`
		VersionOverride              string                    `toml:"odoo_version_override"`
		PostVersionStrategy          string                    `toml:"post_version_strategy_override"`
	}
)

// LoadOptionsFile reads Options from a TOML file using the keys of the
// packaging tool configuration:
//
//	depends_override = { mis_builder = "odoo14-addon-mis_builder>=14.0.4.0.0" }
//	external_dependencies_only = false
//	odoo_series_override = "14.0"
//	post_version_strategy_override = "+1.devN"
//
//	[external_dependencies_override.python]
//	lxml = ["lxml>=3.8.0", "cssselect"]
func LoadOptionsFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading options file: %w", err)
	}
	return ParseOptions(data, path)
}

// ParseOptions decodes TOML options; source labels errors.
func ParseOptions(data []byte, source string) (Options, error) {
	var f optionsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return Options{}, fmt.Errorf("parsing options file %s: %w", source, err)
	}

	opts := Options{
		DependsOverride:          f.DependsOverride,
		ExternalDependenciesOnly: f.ExternalDependenciesOnly,
		SeriesOverride:           f.SeriesOverride,
	}
	if opts.SeriesOverride == "" {
		opts.SeriesOverride = f.VersionOverride
	}
	if f.PostVersionStrategy != "" {
		s, err := postversion.ParseStrategy(f.PostVersionStrategy)
		if err != nil {
			return Options{}, fmt.Errorf("options file %s: %w", source, err)
		}
		opts.PostVersionStrategy = s
	}
	if len(f.ExternalDependenciesOverride) > 0 {
		opts.ExternalDependenciesOverride = make(map[string]map[string][]string, len(f.ExternalDependenciesOverride))
		for eco, deps := range f.ExternalDependenciesOverride {
			m := make(map[string][]string, len(deps))
			for name, v := range deps {
				reqs, err := stringOrList(v)
				if err != nil {
					return Options{}, fmt.Errorf("options file %s: external_dependencies_override.%s.%s: %w", source, eco, name, err)
				}
				m[name] = reqs
			}
			opts.ExternalDependenciesOverride[eco] = m
		}
	}
	return opts, nil
}

func stringOrList(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("list item %v is not a string", item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a string or a list of strings, got %T", v)
	}
}
