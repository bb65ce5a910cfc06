// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"packmule/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `packmule config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage packmule configuration",
		Long: `Manage packmule configuration.

Configuration is stored in:
  - Linux: ~/.config/packmule/config.toml
  - macOS: ~/Library/Application Support/packmule/config.toml
  - Windows: %APPDATA%\packmule\config.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateTOML(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	if cfgDir, dirErr := config.ConfigDir(); dirErr == nil {
		cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			fmt.Fprintf(app.stdout, "%s: %s\n", PkgStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Fprintf(app.stdout, "%s: %s\n", PkgStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	}
	fmt.Fprintln(app.stdout)

	fmt.Fprintf(app.stdout, "%s: %s\n", PkgStyle.Render("cache_dir"), SuccessStyle.Render(cfg.CacheDir))
	fmt.Fprintf(app.stdout, "%s: %s\n", PkgStyle.Render("assume_yes"), SuccessStyle.Render(fmt.Sprintf("%v", cfg.AssumeYes)))
	fmt.Fprintf(app.stdout, "%s: %s\n", PkgStyle.Render("ui.color_scheme"), SuccessStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(app.stdout, "%s: %s\n", PkgStyle.Render("ui.verbose"), SuccessStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(app.stdout, "%s: %s\n", PkgStyle.Render("ui.interactive"), SuccessStyle.Render(fmt.Sprintf("%v", cfg.UI.Interactive)))

	if len(cfg.Repositories) == 0 {
		fmt.Fprintln(app.stdout)
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No repositories configured."))
		return nil
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("Repositories:"))
	for _, repo := range cfg.Repositories {
		name := repo.Name
		if name == "" {
			name = repo.Location
		}
		fmt.Fprintf(app.stdout, "  %s (%s): %s\n", PkgStyle.Render(name), repo.Kind, repo.Location)
	}
	return nil
}
