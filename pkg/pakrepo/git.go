// SPDX-License-Identifier: MPL-2.0

package pakrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"packmule/pkg/pakver"
)

type (
	// GitFetcher lists and fetches git-hosted packages. Version tags on
	// the package repository ("1.2.3" or "v1.2.3") are the available
	// full versions.
	GitFetcher struct {
		// CacheDir is the base directory for fetched package sources.
		CacheDir string

		auth transport.AuthMethod
	}
)

// NewGitFetcher creates a fetcher rooted at cacheDir. When
// PACKMULE_GIT_TOKEN is set it is used as an HTTPS bearer token, which
// is enough for the hosted repositories packages come from; public
// repositories need no auth at all.
func NewGitFetcher(cacheDir string) *GitFetcher {
	f := &GitFetcher{CacheDir: cacheDir}
	if token := os.Getenv("PACKMULE_GIT_TOKEN"); token != "" {
		f.auth = &http.BasicAuth{Username: "packmule", Password: token}
	}
	return f
}

// ListVersions returns the version tags of a package repository, newest
// first, without cloning it. Tags that are not dotted versions are
// skipped.
func (f *GitFetcher) ListVersions(ctx context.Context, repoURL string) ([]pakver.Version, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{repoURL},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: f.auth})
	if err != nil {
		return nil, fmt.Errorf("failed to list remote refs: %w", err)
	}

	var versions []pakver.Version
	for _, ref := range refs {
		if !ref.Name().IsTag() {
			continue
		}
		tag := strings.TrimPrefix(ref.Name().Short(), "v")
		v, err := pakver.Parse(tag)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[j].Less(versions[i], pakver.InferNewest)
	})
	return versions, nil
}

// Fetch clones or updates a package repository in the cache and checks
// out the tag for the given version. It returns the checkout path.
func (f *GitFetcher) Fetch(ctx context.Context, repoURL string, version pakver.Version) (string, error) {
	cachePath := f.repoCachePath(repoURL)

	repo, err := git.PlainOpen(cachePath)
	if err != nil {
		repo, err = f.clone(ctx, repoURL, cachePath)
		if err != nil {
			return "", fmt.Errorf("failed to clone repository: %w", err)
		}
	} else {
		// Best-effort update; the requested tag may already be local.
		_ = f.update(ctx, repo)
	}

	if err := f.checkout(repo, version); err != nil {
		return "", fmt.Errorf("failed to checkout version %s: %w", version, err)
	}
	return cachePath, nil
}

func (f *GitFetcher) clone(ctx context.Context, repoURL, dest string) (*git.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}
	return git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:  repoURL,
		Auth: f.auth,
	})
}

func (f *GitFetcher) update(ctx context.Context, repo *git.Repository) error {
	err := repo.FetchContext(ctx, &git.FetchOptions{
		Auth:  f.auth,
		Tags:  git.AllTags,
		Force: true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

func (f *GitFetcher) checkout(repo *git.Repository, version pakver.Version) error {
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	ref, err := f.findTag(repo, version)
	if err != nil {
		return err
	}

	return worktree.Checkout(&git.CheckoutOptions{
		Hash:  ref,
		Force: true,
	})
}

// findTag resolves the commit for a version, accepting both bare and
// v-prefixed tag names.
func (f *GitFetcher) findTag(repo *git.Repository, version pakver.Version) (plumbing.Hash, error) {
	for _, name := range []string{version.String(), "v" + version.String()} {
		ref, err := repo.Reference(plumbing.NewTagReferenceName(name), true)
		if err == nil {
			return ref.Hash(), nil
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("no tag for version %s", version)
}

// repoCachePath maps a repository URL to a path-safe cache location,
// e.g. "https://github.com/user/repo.git" -> "<cache>/sources/github.com/user/repo".
func (f *GitFetcher) repoCachePath(repoURL string) string {
	path := strings.TrimPrefix(repoURL, "https://")
	path = strings.TrimPrefix(path, "git@")
	path = strings.TrimPrefix(path, "ssh://")
	path = strings.TrimSuffix(path, ".git")
	path = strings.ReplaceAll(path, ":", "/")
	return filepath.Join(f.CacheDir, "sources", path)
}
