// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"packmule/internal/issue"
	"packmule/internal/scripthost"
	"packmule/pkg/pakfile"
	"packmule/pkg/pakref"
	"packmule/pkg/pakrepo"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

// newPkgCommand creates the `packmule pkg` command tree.
func newPkgCommand(app *App) *cobra.Command {
	pkgCmd := &cobra.Command{
		Use:   "pkg",
		Short: "Work with packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pkgCmd.AddCommand(newPkgListCommand(app))
	pkgCmd.AddCommand(newPkgShowCommand(app))
	pkgCmd.AddCommand(newPkgResolveCommand(app))
	pkgCmd.AddCommand(newPkgInstallCommand(app))

	return pkgCmd
}

func newPkgListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List packages in the configured repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return reportError(cmd, app, err)
			}

			idx, err := app.buildIndex(cmd.Context(), cfg)
			if err != nil {
				return reportError(cmd, app, err)
			}

			entries := idx.All()
			if len(entries) == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("No packages found. Add repositories with 'packmule config show' as a starting point."))
				return nil
			}

			fmt.Fprintln(app.stdout, TitleStyle.Render("Available packages"))
			fmt.Fprintln(app.stdout)
			for _, e := range entries {
				line := PkgStyle.Render(e.Ref.Name) + "@" + e.Ref.Version.String()
				if e.Ref.Repository != "" {
					line += SubtitleStyle.Render("  (" + e.Ref.Repository + ")")
				}
				fmt.Fprintln(app.stdout, line)
				if desc := firstLine(e.Meta.Description); desc != "" {
					fmt.Fprintln(app.stdout, "  "+SubtitleStyle.Render(desc))
				}
			}
			return nil
		},
	}
}

func newPkgShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ref>",
		Short: "Show the best-matching package for a reference",
		Long: `Show the metadata of the newest indexed package satisfying a
reference. References look like "name", "name@>=1.2" or
"name@1.0 from https://repo.example.com".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := pakref.ParsePartial(args[0])
			if err != nil {
				return reportError(cmd, app, err)
			}

			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return reportError(cmd, app, err)
			}
			idx, err := app.buildIndex(cmd.Context(), cfg)
			if err != nil {
				return reportError(cmd, app, err)
			}

			entry, ok := idx.Match(ref)
			if !ok {
				renderIssue(app, issue.PackageNotFoundId)
				return reportError(cmd, app, &ExitError{Code: 1, Err: fmt.Errorf("no package satisfies %q", args[0])})
			}

			return printPackage(app, entry)
		},
	}
}

func printPackage(app *App, entry pakrepo.Entry) error {
	meta := entry.Meta

	fmt.Fprintln(app.stdout, TitleStyle.Render(entry.Ref.Name)+" "+SuccessStyle.Render(entry.Ref.Version.String()))
	printField(app, "repository", entry.Ref.Repository)
	printField(app, "author", meta.Author)
	printField(app, "license", meta.License)
	printField(app, "project", meta.ProjectURL)
	printField(app, "compatible app versions", meta.CompatibleAppVersion)
	if meta.RequiredManagerVersion.Valid && meta.RequiredManagerVersion.Minimal.String() != "0" {
		printField(app, "minimum manager version", meta.RequiredManagerVersion.Minimal.String())
	}

	for _, section := range []struct {
		label string
		refs  []pakref.PartialRef
	}{
		{"dependencies", meta.Dependencies.Refs()},
		{"imports", meta.Imports.Refs()},
	} {
		if len(section.refs) == 0 {
			continue
		}
		fmt.Fprintln(app.stdout)
		fmt.Fprintln(app.stdout, SubtitleStyle.Render(section.label+":"))
		for _, ref := range section.refs {
			fmt.Fprintln(app.stdout, "  "+PkgStyle.Render(ref.String()))
		}
	}

	if meta.Description != "" {
		rendered, err := glamour.Render(meta.Description, colorStyle())
		if err != nil {
			// Unstyled fallback beats losing the description.
			rendered = meta.Description + "\n"
		}
		fmt.Fprintln(app.stdout)
		fmt.Fprint(app.stdout, rendered)
	}
	return nil
}

func printField(app *App, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(app.stdout, "%s: %s\n", PkgStyle.Render(label), value)
}

func newPkgResolveCommand(app *App) *cobra.Command {
	var lockPath string

	cmd := &cobra.Command{
		Use:   "resolve <descriptor>",
		Short: "Resolve a descriptor's dependency closure and write the lock file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resolutions, err := resolveClosure(cmd.Context(), app, args[0])
			if err != nil {
				return reportError(cmd, app, err)
			}

			for _, res := range resolutions {
				fmt.Fprintf(app.stdout, "%s %s -> %s\n",
					SuccessStyle.Render("resolved"),
					PkgStyle.Render(res.Requested.String()),
					res.Entry.Ref.String())
			}

			lock := pakrepo.LockFromResolutions(resolutions)
			if err := lock.Save(lockPath); err != nil {
				return reportError(cmd, app, err)
			}
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("wrote "+lockPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&lockPath, "lock", pakrepo.LockFileName, "lock file to write")
	return cmd
}

func newPkgInstallCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "install <descriptor>",
		Short: "Resolve a descriptor and run the install scripts of its closure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return reportError(cmd, app, err)
			}

			root, resolutions, err := resolveClosure(cmd.Context(), app, args[0])
			if err != nil {
				return reportError(cmd, app, err)
			}

			targets := installTargets(root, resolutions)
			if len(targets) == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("Nothing to install: no package in the closure has an install script."))
				return nil
			}

			if !assumeYes && !cfg.AssumeYes {
				ok, err := app.Host.Confirm(fmt.Sprintf("Run install scripts for %d package(s)?", len(targets)))
				if err != nil {
					return reportError(cmd, app, err)
				}
				if !ok {
					fmt.Fprintln(app.stdout, WarningStyle.Render("Aborted."))
					return nil
				}
			}

			runner := scripthost.NewRunner(app.Host)
			for _, target := range targets {
				result := runner.Run(cmd.Context(), target.ref, target.script)
				if result.Error != nil {
					renderIssue(app, issue.InstallScriptFailedId)
					return reportError(cmd, app, result.Error)
				}
				if result.ExitCode != 0 {
					renderIssue(app, issue.InstallScriptFailedId)
					return reportError(cmd, app, &ExitError{
						Code: result.ExitCode,
						Err:  fmt.Errorf("install script of %s exited with status %d", target.ref, result.ExitCode),
					})
				}
				fmt.Fprintln(app.stdout, SuccessStyle.Render("installed ")+PkgStyle.Render(target.ref.String()))
			}
			return nil
		},
	}
}

// installTarget is one install script with the package it belongs to.
type installTarget struct {
	ref    pakref.FullRef
	script string
}

// installTargets orders the install scripts of a resolved descriptor:
// the closure first (it is sorted by identity key), then the requested
// package's own script. Packages without a script are skipped.
func installTargets(root *pakfile.Metadata, resolutions []pakrepo.Resolution) []installTarget {
	targets := make([]installTarget, 0, len(resolutions)+1)
	for _, res := range resolutions {
		if strings.TrimSpace(res.Entry.Meta.Script) != "" {
			targets = append(targets, installTarget{ref: res.Entry.Ref, script: res.Entry.Meta.Script})
		}
	}
	if strings.TrimSpace(root.Script) != "" {
		targets = append(targets, installTarget{ref: root.FullRef(), script: root.Script})
	}
	return targets
}

// resolveClosure loads a descriptor, builds the index, and resolves the
// full dependency closure, rendering the matching issue page on failure.
// The parsed root descriptor is returned alongside the closure.
func resolveClosure(ctx context.Context, app *App, descriptorPath string) (*pakfile.Metadata, []pakrepo.Resolution, error) {
	meta, err := pakrepo.LoadDescriptor(descriptorPath)
	if err != nil {
		renderIssue(app, issue.DescriptorParseErrorId)
		return nil, nil, issue.NewErrorContext().
			WithOperation("load package descriptor").
			WithResource(descriptorPath).
			WithSuggestion("A descriptor needs at least a name and a version").
			Wrap(err).
			BuildError()
	}

	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	idx, err := app.buildIndex(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	resolutions, err := app.newResolver(idx).Resolve(ctx, meta)
	if err != nil {
		renderIssue(app, resolutionIssueId(err))
		return nil, nil, err
	}
	return meta, resolutions, nil
}

// resolutionIssueId maps a resolver error to its help page.
func resolutionIssueId(err error) issue.Id {
	var incompatible *pakrepo.IncompatibleError
	switch {
	case errors.Is(err, pakrepo.ErrConflict):
		return issue.VersionConflictId
	case errors.As(err, &incompatible):
		if strings.Contains(incompatible.Reason, "manager") {
			return issue.ManagerTooOldId
		}
		return issue.AppIncompatibleId
	default:
		return issue.PackageNotFoundId
	}
}

func renderIssue(app *App, id issue.Id) {
	rendered, err := issue.Get(id).Render(colorStyle())
	if err != nil {
		return
	}
	fmt.Fprint(app.stderr, rendered)
}

// firstLine truncates multi-line descriptions for list output.
func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
