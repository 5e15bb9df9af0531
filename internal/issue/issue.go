// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Catalog entries.
const (
	DescriptorNotFoundId Id = iota + 1
	DescriptorParseErrorId
	UnknownEnvironmentId
	UnresolvedReferenceId
	ReferenceCycleId
	InvalidMarkerId
	CommandNotAllowedId
	CommandFailedId
	ConfigLoadFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of an entry.
	MarkdownMsg string

	// HttpLink is a documentation link listed under an entry.
	HttpLink string

	// Issue is a catalog entry: a Markdown guide for one class of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

// Id returns the entry's identifier.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// DocLinks returns a copy of the entry's documentation links.
func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

// Render renders the entry for a terminal using a glamour style ("dark",
// "light", "notty" or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		var sb strings.Builder
		sb.WriteString(md)
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
		md = sb.String()
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	toxConfigDocs = HttpLink("https://tox.wiki/en/latest/config.html")

	issues = map[Id]*Issue{
		DescriptorNotFoundId: {
			id: DescriptorNotFoundId,
			mdMsg: `
# No descriptor found!

envrun looks for ` + "`tox.toml`, `tox.ini`" + ` and a ` + "`setup.cfg`" + ` with a ` + "`[tox:tox]`" + ` section, in that order.

## Things you can try:
- Run envrun from the project root
- Point at a descriptor explicitly:
~~~
$ envrun -c path/to/tox.ini list
~~~
- Set a default in your config file:
~~~cue
descriptor: "ci/tox.ini"
~~~`,
			docLinks: []HttpLink{toxConfigDocs},
		},
		DescriptorParseErrorId: {
			id: DescriptorParseErrorId,
			mdMsg: `
# Failed to parse the descriptor!

## Common issues:
- A multi-line value whose continuation lines are not indented
- A TOML replacement table with a missing ` + "`of`" + ` or ` + "`name`" + ` key
- Duplicate ` + "`[testenv:NAME]`" + ` sections

## Things you can try:
- Check the line reported above
- Run ` + "`envrun validate`" + ` for a full report`,
			docLinks: []HttpLink{toxConfigDocs},
		},
		UnknownEnvironmentId: {
			id: UnknownEnvironmentId,
			mdMsg: `
# Unknown environment!

The name you asked for is neither a ` + "`[testenv:NAME]`" + ` section nor listed in ` + "`env_list`" + `.

## Things you can try:
- List the defined environments:
~~~
$ envrun list
~~~
- Check for typos; factor groups such as ` + "`py{311,312}`" + ` expand before lookup`,
		},
		UnresolvedReferenceId: {
			id: UnresolvedReferenceId,
			mdMsg: `
# Unresolved reference!

A ` + "`{[section]key}`" + ` reference points at a section or key that does not exist.

## Things you can try:
- Check the spelling of the section name, including the ` + "`testenv:`" + ` prefix
- Declare the key in the referenced section
- Run ` + "`envrun validate`" + ` to list every broken reference`,
			docLinks: []HttpLink{toxConfigDocs},
		},
		ReferenceCycleId: {
			id: ReferenceCycleId,
			mdMsg: `
# Reference cycle!

Two or more fields reference each other, so none of them can be resolved.
The chain printed above starts and ends at the same field.

## Things you can try:
- Move the shared values into a section that references nothing
- Reference that section from every field that needs the values`,
		},
		InvalidMarkerId: {
			id: InvalidMarkerId,
			mdMsg: `
# Invalid dependency marker!

The text after ` + "`;`" + ` in a dependency must be an environment marker, for example:
~~~
pywin32; sys_platform == "win32"
tomli; python_version < "3.11"
~~~

## Things you can try:
- Quote every literal value
- Combine comparisons with ` + "`and`" + `, ` + "`or`" + ` and parentheses`,
			docLinks: []HttpLink{"https://packaging.python.org/en/latest/specifications/dependency-specifiers/"},
		},
		CommandNotAllowedId: {
			id: CommandNotAllowedId,
			mdMsg: `
# Command not allowed!

The environment declares ` + "`allowlist_externals`" + ` and the command's executable is not on it.

## Things you can try:
- Add the executable to the list:
~~~ini
allowlist_externals =
    make
    bash
~~~
- Use a tool installed by the environment's ` + "`deps`" + ` instead`,
			docLinks: []HttpLink{toxConfigDocs},
		},
		CommandFailedId: {
			id: CommandFailedId,
			mdMsg: `
# Command failed!

A command exited with a non-zero status. The remaining commands of that
environment were skipped; the other environments still ran.

## Things you can try:
- Re-run only the failing environment with ` + "`envrun run -e NAME -v`" + `
- Prefix a command with ` + "`- `" + ` to ignore its exit code
- Set ` + "`ignore_errors = true`" + ` to run every command regardless`,
		},
		ConfigLoadFailedId: {
			id: ConfigLoadFailedId,
			mdMsg: `
# Failed to load configuration!

## Things you can try:
- Show the effective configuration:
~~~
$ envrun config show
~~~
- Recreate the default file:
~~~
$ envrun config init
~~~`,
		},
	}
)

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Values returns every entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}
