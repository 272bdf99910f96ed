// SPDX-License-Identifier: MPL-2.0

package series

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

//go:embed coreaddons/*.txt
var coreAddonsFS embed.FS

type addonNames map[string]struct{}

// loadCoreAddons reads every embedded list once. Missing or unreadable files
// are a build defect.
var loadCoreAddons = sync.OnceValue(func() map[Series]map[Edition]addonNames {
	out := make(map[Series]map[Edition]addonNames, len(all))
	for _, s := range all {
		out[s] = map[Edition]addonNames{}
		for _, e := range []Edition{EditionCE, EditionEE} {
			name := fmt.Sprintf("coreaddons/addons-%s-%s.txt", s, e)
			data, err := coreAddonsFS.ReadFile(name)
			if err != nil {
				panic(fmt.Sprintf("embedded core addons list %s: %v", name, err))
			}
			out[s][e] = parseAddonList(data)
		}
	}
	return out
})

// parseAddonList reads one addon name per line; lines starting with "#" and
// blank lines are ignored.
func parseAddonList(data []byte) addonNames {
	names := addonNames{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		if line = strings.TrimSpace(line); line != "" {
			names[line] = struct{}{}
		}
	}
	return names
}

func coreSet(s Series, e Edition) addonNames {
	return loadCoreAddons()[s][e]
}

// CoreAddons returns the sorted names of the addons shipped with Odoo for s,
// both editions included.
func CoreAddons(s Series) []string {
	names := slices.Collect(maps.Keys(coreSet(s, EditionCE)))
	for n := range coreSet(s, EditionEE) {
		if _, ok := coreSet(s, EditionCE)[n]; !ok {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}

// EditionAddons returns the sorted names of the core addons of one edition.
func EditionAddons(s Series, e Edition) []string {
	return slices.Sorted(maps.Keys(coreSet(s, e)))
}

// IsCoreCEAddon reports whether name is part of the Community Edition of s.
func IsCoreCEAddon(name string, s Series) bool {
	_, ok := coreSet(s, EditionCE)[name]
	return ok
}

// IsCoreEEAddon reports whether name is part of the Enterprise Edition of s.
func IsCoreEEAddon(name string, s Series) bool {
	_, ok := coreSet(s, EditionEE)[name]
	return ok
}

// IsCoreAddon reports whether name ships with Odoo for s, in either edition.
func IsCoreAddon(name string, s Series) bool {
	return IsCoreCEAddon(name, s) || IsCoreEEAddon(name, s)
}

// CoreAddonLicense returns the license Odoo applies to a core addon, which
// takes precedence over whatever its manifest declares. It reports false
// when name is not a core addon of s.
func CoreAddonLicense(name string, s Series) (string, bool) {
	switch {
	case IsCoreCEAddon(name, s):
		if s == Series8 {
			return "AGPL-3", true
		}
		return "LGPL-3", true
	case IsCoreEEAddon(name, s):
		return "OEEL-1", true
	default:
		return "", false
	}
}
