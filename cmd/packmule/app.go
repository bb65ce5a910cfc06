// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"packmule/internal/config"
	"packmule/internal/issue"
	"packmule/internal/scripthost"
	"packmule/pkg/pakrepo"
	"packmule/pkg/pakver"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the
	// composition root for the CLI layer: every command handler receives
	// an App reference and delegates through it.
	App struct {
		Config config.Provider
		Logger *log.Logger
		Host   scripthost.Host

		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App.
	// Nil fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Logger *log.Logger
		Host   scripthost.Host
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp builds the production App, filling in defaults for any
// dependency the caller left nil.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		Logger: deps.Logger,
		Host:   deps.Host,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}

	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Logger == nil {
		app.Logger = log.NewWithOptions(app.stderr, log.Options{
			ReportTimestamp: false,
			Prefix:          config.AppName,
		})
	}
	if app.Host == nil {
		app.Host = scripthost.NewConsoleHost(app.Logger, os.Stdin, app.stdout)
	}

	return app
}

// loadConfig loads configuration, honoring the --config flag.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		rendered, rerr := issue.Get(issue.ConfigLoadFailedId).Render(colorStyle())
		if rerr == nil {
			fmt.Fprint(a.stderr, rendered)
		}
		return nil, err
	}

	// The --verbose flag beats the config file; otherwise the file decides.
	if !verbose {
		verbose = cfg.UI.Verbose
	}

	return cfg, nil
}

// buildIndex scans every configured repository into a fresh index.
// Individual descriptor failures are logged and skipped; an unreadable
// repository is logged and skipped too, so one bad repository does not
// hide the others.
func (a *App) buildIndex(ctx context.Context, cfg *config.Config) (*pakrepo.Index, error) {
	idx := pakrepo.NewIndex()
	fetcher := pakrepo.NewGitFetcher(cfg.CacheDir)

	for _, repo := range cfg.Repositories {
		switch repo.Kind {
		case config.RepositoryKindLocal:
			a.loadLocalRepo(repo, idx)
		case config.RepositoryKindGit:
			a.loadGitRepo(ctx, fetcher, repo, idx)
		}
	}

	return idx, nil
}

func (a *App) loadLocalRepo(repo config.RepositoryEntry, idx *pakrepo.Index) {
	result, err := pakrepo.LoadDir(repo.Location, idx)
	if err != nil {
		a.Logger.Warn("skipping unreadable repository", "repository", repo.Location, "err", err)
		return
	}
	for _, failure := range result.Failures {
		a.Logger.Warn("skipping bad descriptor", "path", failure.Path, "err", failure.Err)
	}
}

// loadGitRepo indexes every tagged version of a git-hosted package
// repository. Each tag is checked out in the cache and its descriptors
// parsed into memory before the next one replaces it.
func (a *App) loadGitRepo(ctx context.Context, fetcher *pakrepo.GitFetcher, repo config.RepositoryEntry, idx *pakrepo.Index) {
	versions, err := fetcher.ListVersions(ctx, repo.Location)
	if err != nil {
		a.Logger.Warn("skipping unreachable repository", "repository", repo.Location, "err", err)
		return
	}

	for _, version := range versions {
		dir, err := fetcher.Fetch(ctx, repo.Location, version)
		if err != nil {
			a.Logger.Warn("skipping unfetchable version", "repository", repo.Location, "version", version, "err", err)
			continue
		}
		result, err := pakrepo.LoadDir(dir, idx)
		if err != nil {
			a.Logger.Warn("skipping unreadable checkout", "repository", repo.Location, "version", version, "err", err)
			continue
		}
		for _, failure := range result.Failures {
			a.Logger.Warn("skipping bad descriptor", "path", failure.Path, "err", failure.Err)
		}
	}
}

// newResolver builds a resolver gated on this build's manager version
// and the embedding application's version.
func (a *App) newResolver(idx *pakrepo.Index) *pakrepo.Resolver {
	return &pakrepo.Resolver{
		Index:   idx,
		Manager: buildVersion(Version),
		App:     buildVersion(AppVersion),
	}
}

// buildVersion parses an ldflags-injected version. "dev" and other
// unparseable values map to the highest version so compatibility gates
// never block source builds.
func buildVersion(raw string) pakver.Version {
	v, err := pakver.Parse(raw)
	if err != nil {
		return pakver.New(math.MaxInt32)
	}
	return v
}
