// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/manifestoo/manifestoo/pkg/errdefs"
)

type Id int

const (
	AddonNotFoundId Id = iota + 1
	InvalidManifestId
	UnsupportedSeriesId
	UnsupportedManifestVersionId
	InvalidDistributionNameId
	UnknownPostVersionStrategyId
	ConfigLoadFailedId
	VCSFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal Markdown with the given glamour style
// ("dark", "light", "notty", "auto" or a JSON style path).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range append(i.DocLinks(), i.extLinks...) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	addonNotFoundIssue = &Issue{
		id: AddonNotFoundId,
		mdMsg: `
# Not an addon directory!

An addon is a directory containing a manifest (` + "`__manifest__.py`" + `,
` + "`__openerp__.py`" + ` or ` + "`__terp__.py`" + `) and an ` + "`__init__.py`" + `.

## Things you can try:
- Check the path points at the addon itself, not at its parent
- Add the missing ` + "`__init__.py`" + `
- If the manifest sets ` + "`'installable': False`" + `, the addon is skipped on purpose`,
		docLinks: []HttpLink{"https://www.odoo.com/documentation/master/developer/reference/backend/module.html"},
	}

	invalidManifestIssue = &Issue{
		id: InvalidManifestId,
		mdMsg: `
# Invalid manifest!

The manifest must be a single Python dict literal. Only literals are accepted:
strings, numbers, booleans, ` + "`None`" + `, lists, tuples and dicts.

## Things you can try:
- Remove expressions, comprehensions and variables from the manifest
- Check the types: ` + "`depends`" + ` is a list of strings,
  ` + "`external_dependencies`" + ` a dict of lists, ` + "`installable`" + ` a boolean
- Validate it with:
~~~
$ python -c "import ast; ast.literal_eval(open('__manifest__.py').read())"
~~~`,
	}

	unsupportedSeriesIssue = &Issue{
		id: UnsupportedSeriesId,
		mdMsg: `
# Unsupported Odoo series!

The release series must be one of 8.0 to 18.0.

## Things you can try:
- Fix the series prefix of the manifest version
- Pass ` + "`--series`" + ` or set ` + "`odoo_series_override`" + ` in the options file
~~~
$ manifestoo series
~~~`,
	}

	unsupportedManifestVersionIssue = &Issue{
		id: UnsupportedManifestVersionId,
		mdMsg: `
# Unsupported manifest version!

Addon versions have at least five dot separated components and start
with the series, e.g. ` + "`16.0.1.0.0`" + `.

## Things you can try:
- Set ` + "`'version'`" + ` in the manifest to ` + "`<series>.x.y.z`" + `
- Use ` + "`--series`" + ` to build an addon whose version has no series prefix`,
	}

	invalidDistributionNameIssue = &Issue{
		id: InvalidDistributionNameId,
		mdMsg: `
# Not an addon distribution name!

Addon distributions are named ` + "`odoo<NN>-addon-<name>`" + ` up to 14.0 and
` + "`odoo-addon-<name>`" + ` from 15.0 on.

## Things you can try:
- Check the ` + "`Name`" + ` header of the precomputed PKG-INFO file`,
		extLinks: []HttpLink{"https://packaging.python.org/en/latest/specifications/core-metadata/"},
	}

	unknownPostVersionStrategyIssue = &Issue{
		id: UnknownPostVersionStrategyId,
		mdMsg: `
# Unknown post version strategy!

Valid strategies are ` + "`none`" + `, ` + "`.N`" + `, ` + "`+1.devN`" + ` and ` + "`.99.devN`" + `.

## Things you can try:
- Fix ` + "`--post-version-strategy`" + `, ` + "`post_version_strategy_override`" + `
  or ` + "`MANIFESTOO_POST_VERSION_STRATEGY`",
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Print the effective configuration and where it comes from:
~~~
$ manifestoo config path
$ manifestoo config dump
~~~
- Recreate a default file with ` + "`manifestoo config init`" + `
- Unset ` + "`MANIFESTOO_*`" + ` environment variables`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	vcsFailedIssue = &Issue{
		id: VCSFailedId,
		mdMsg: `
# Failed to read the addon history!

Post versions are computed from the git history of the addon directory.

## Things you can try:
- Make sure ` + "`git`" + ` is on your PATH, or set ` + "`vcs.git_binary`" + `
- Switch to the in-process backend with ` + "`MANIFESTOO_VCS_BACKEND=go-git`" + `
- Use ` + "`--post-version-strategy none`" + ` to skip the history walk`,
		extLinks: []HttpLink{"https://git-scm.com/docs/git-log"},
	}

	issues = map[Id]*Issue{
		addonNotFoundIssue.Id():              addonNotFoundIssue,
		invalidManifestIssue.Id():            invalidManifestIssue,
		unsupportedSeriesIssue.Id():          unsupportedSeriesIssue,
		unsupportedManifestVersionIssue.Id(): unsupportedManifestVersionIssue,
		invalidDistributionNameIssue.Id():    invalidDistributionNameIssue,
		unknownPostVersionStrategyIssue.Id(): unknownPostVersionStrategyIssue,
		configLoadFailedIssue.Id():           configLoadFailedIssue,
		vcsFailedIssue.Id():                  vcsFailedIssue,
	}

	// kindIssues maps errdefs kinds to their issue, most specific first.
	kindIssues = []struct {
		kind error
		id   Id
	}{
		{errdefs.ErrAddonNotFoundInvalidManifest, InvalidManifestId},
		{errdefs.ErrAddonNotFound, AddonNotFoundId},
		{errdefs.ErrInvalidManifest, InvalidManifestId},
		{errdefs.ErrUnsupportedOdooSeries, UnsupportedSeriesId},
		{errdefs.ErrUnsupportedManifestVersion, UnsupportedManifestVersionId},
		{errdefs.ErrInvalidDistributionName, InvalidDistributionNameId},
		{errdefs.ErrUnknownPostVersionStrategy, UnknownPostVersionStrategyId},
	}
)

// Values returns every known issue ordered by Id.
func Values() []*Issue {
	ids := make([]Id, 0, len(issues))
	for id := range maps.Keys(issues) {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*Issue, len(ids))
	for i, id := range ids {
		out[i] = issues[id]
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// ForError returns the issue linked to err: the IssueID of an
// ActionableError in its chain, else the page of its errdefs kind, else nil.
func ForError(err error) *Issue {
	var ae *ActionableError
	if errors.As(err, &ae) && ae.IssueID != 0 {
		if is, ok := issues[ae.IssueID]; ok {
			return is
		}
	}
	for _, ki := range kindIssues {
		if errors.Is(err, ki.kind) {
			return issues[ki.id]
		}
	}
	return nil
}
