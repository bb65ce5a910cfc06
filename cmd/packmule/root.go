// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"packmule/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the packmule semantic version (set via -ldflags).
	Version = "dev"
	// AppVersion is the version of the host application this build is
	// embedded into (set via -ldflags).
	AppVersion = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// assumeYes answers every confirmation prompt with yes
	assumeYes bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "packmule",
		Short: "A package manager for script packages",
		Long: TitleStyle.Render("packmule") + SubtitleStyle.Render(" - A package manager for script packages") + `

packmule indexes repositories of package descriptors (JSON/HJSON),
resolves version-ranged dependencies into a pinned lock file, and runs
install scripts in a built-in POSIX shell.

Packages are identified by name and repository; versions have one to
four dot-separated components and ranges like ">=1.2 & <2".

` + SubtitleStyle.Render("Examples:") + `
  packmule pkg list                 List packages in configured repositories
  packmule pkg show toolkit@>=1.2   Show the best match for a reference
  packmule pkg resolve ./pkg.hjson  Resolve dependencies, write packmule.lock.cue
  packmule pkg install ./pkg.hjson  Resolve and run install scripts
  packmule config show              Show the effective configuration`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/packmule/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to all prompts")

	app := NewApp(Dependencies{})

	// Add subcommands
	rootCmd.AddCommand(newPkgCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// fang.Execute for enhanced Cobra styling; version goes through
	// fang.WithVersion() since fang overrides rootCmd.Version.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// colorStyle maps the UI preference to a glamour style name.
func colorStyle() string {
	return "dark"
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// reportError prints a command failure to stderr, expanding the error
// chain when --verbose is set, and silences cobra's own duplicate
// rendering. The returned error carries the exit code for Execute.
func reportError(cmd *cobra.Command, app *App, err error) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: 1, Err: err}
}
