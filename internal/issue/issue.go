// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	DescriptorNotFoundId Id = iota + 1
	DescriptorParseErrorId
	PackageNotFoundId
	VersionConflictId
	ManagerTooOldId
	AppIncompatibleId
	RepositoryUnreachableId
	InstallScriptFailedId
	ConfigLoadFailedId
	LockFileInvalidId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to look up the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation pages for this issue class
	extLinks []HttpLink  // external links that might help
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

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	descriptorNotFoundIssue = &Issue{
		id: DescriptorNotFoundId,
		mdMsg: `
# No package descriptor found!

We looked for a package descriptor but none exists at the given path.

## Things you can try:
- Check the path for typos
- A descriptor is a ` + "`.json`" + ` or ` + "`.hjson`" + ` file; other extensions are ignored
- List what a repository actually contains:
~~~
$ packmule pkg list
~~~`,
	}

	descriptorParseErrorIssue = &Issue{
		id: DescriptorParseErrorId,
		mdMsg: `
# Failed to parse package descriptor!

The descriptor file could not be understood.

## Common issues:
- Missing mandatory fields: every descriptor needs ` + "`name`" + ` and ` + "`version`" + `
- A version that does not parse (1 to 4 dot-separated numbers, e.g. ` + "`1.2.0`" + `)
- Broken JSON/HJSON syntax

## Example of a minimal descriptor:
~~~
{
  name: toolkit
  version: 1.2.0
}
~~~`,
	}

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not found!

No indexed package satisfies the requested reference.

## Things you can try:
- List what the configured repositories provide:
~~~
$ packmule pkg list
~~~
- Loosen the version range (` + "`toolkit@>=1.0`" + ` instead of an exact pin)
- Check the repository pin: ` + "`name from <url>`" + ` only matches that repository`,
	}

	versionConflictIssue = &Issue{
		id: VersionConflictId,
		mdMsg: `
# Version conflict!

Two packages in the dependency closure ask for the same package with
ranges no single version can satisfy.

## Things you can try:
- Inspect both requirements:
~~~
$ packmule pkg resolve <descriptor> --verbose
~~~
- Relax one of the conflicting ranges
- Pin the shared dependency explicitly in your own descriptor`,
	}

	managerTooOldIssue = &Issue{
		id: ManagerTooOldId,
		mdMsg: `
# Package manager too old!

A package in the closure declares a minimum manager version newer than
this build.

## Things you can try:
- Upgrade packmule
- Use an older release of the package`,
	}

	appIncompatibleIssue = &Issue{
		id: AppIncompatibleId,
		mdMsg: `
# Package incompatible with the application!

The package declares a compatible application version range that the
host application does not fall into.

## Things you can try:
- Upgrade or downgrade the host application
- Pick a package release whose ` + "`compatibleAppVersion`" + ` admits your version`,
	}

	repositoryUnreachableIssue = &Issue{
		id: RepositoryUnreachableId,
		mdMsg: `
# Repository unreachable!

A configured package repository could not be read.

## Things you can try:
- For local repositories, check the directory exists and is readable
- For git repositories, check the URL and your network connection
- Private repositories need credentials:
~~~
$ export PACKMULE_GIT_TOKEN=<token>
~~~`,
	}

	installScriptFailedIssue = &Issue{
		id: InstallScriptFailedId,
		mdMsg: `
# Install script failed!

The package's install script exited with a nonzero status.

## Things you can try:
- Re-run with verbose output:
~~~
$ packmule --verbose pkg install <descriptor>
~~~
- The script runs in a built-in POSIX shell; system shell extensions
  (bashisms beyond POSIX) may not be available
- Check the script's output above for the actual failure`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The packmule configuration file could not be loaded.

## Configuration file location:
- Linux: ~/.config/packmule/config.toml
- macOS: ~/Library/Application Support/packmule/config.toml
- Windows: %APPDATA%\packmule\config.toml

## Things you can try:
- Check the TOML syntax
- Remove the config file to fall back to defaults
- Inspect the effective configuration:
~~~
$ packmule config show
~~~`,
	}

	lockFileInvalidIssue = &Issue{
		id: LockFileInvalidId,
		mdMsg: `
# Invalid lock file!

packmule.lock.cue exists but could not be parsed.

## Things you can try:
- Delete the lock file and resolve again:
~~~
$ rm packmule.lock.cue
$ packmule pkg resolve <descriptor>
~~~
- Lock files are generated; hand edits are the usual culprit`,
	}

	issues = map[Id]*Issue{
		descriptorNotFoundIssue.Id():    descriptorNotFoundIssue,
		descriptorParseErrorIssue.Id():  descriptorParseErrorIssue,
		packageNotFoundIssue.Id():       packageNotFoundIssue,
		versionConflictIssue.Id():       versionConflictIssue,
		managerTooOldIssue.Id():         managerTooOldIssue,
		appIncompatibleIssue.Id():       appIncompatibleIssue,
		repositoryUnreachableIssue.Id(): repositoryUnreachableIssue,
		installScriptFailedIssue.Id():   installScriptFailedIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		lockFileInvalidIssue.Id():       lockFileInvalidIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
