// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, resolved, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("loadWithOptions: %v", err)
	}
	if resolved != "" {
		t.Errorf("resolved path = %q, want empty when no file exists", resolved)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("default color scheme = %q", cfg.UI.ColorScheme)
	}
	if !cfg.UI.Interactive {
		t.Errorf("default interactive = false, want true")
	}
	if cfg.CacheDir == "" {
		t.Errorf("empty cache dir should fall back to the platform default")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
cache_dir = "/var/cache/packmule"
assume_yes = true

[ui]
color_scheme = "dark"
verbose = true

[[repositories]]
name = "main"
kind = "git"
location = "https://packs.example.com/main"

[[repositories]]
kind = "local"
location = "/srv/packs"
`)

	cfg, resolved, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.CacheDir != "/var/cache/packmule" {
		t.Errorf("cache_dir = %q", cfg.CacheDir)
	}
	if !cfg.AssumeYes {
		t.Errorf("assume_yes not honored")
	}
	if cfg.UI.ColorScheme != ColorSchemeDark || !cfg.UI.Verbose {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if len(cfg.Repositories) != 2 {
		t.Fatalf("repositories = %d, want 2", len(cfg.Repositories))
	}
	if cfg.Repositories[0].Name != "main" || cfg.Repositories[0].Kind != RepositoryKindGit {
		t.Errorf("first repository = %+v", cfg.Repositories[0])
	}
	if cfg.Repositories[1].Location != "/srv/packs" {
		t.Errorf("second repository = %+v", cfg.Repositories[1])
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.toml"),
	})
	if err == nil {
		t.Fatal("explicit missing config file should be an error")
	}
}

func TestLoadInvalidColorScheme(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[ui]
color_scheme = "sepia"
`)

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrInvalidColorScheme) {
		t.Errorf("error chain should include ErrInvalidColorScheme, got %v", err)
	}
}

func TestLoadInvalidRepository(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[[repositories]]
kind = "ftp"
location = ""
`)

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if !errors.Is(err, ErrInvalidRepositoryEntry) {
		t.Errorf("error chain should include ErrInvalidRepositoryEntry, got %v", err)
	}
}

func TestLoadCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := loadWithOptions(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestConfigDirOverride(t *testing.T) {
	t.Cleanup(Reset)

	SetConfigDirOverride("/custom/config/dir")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if dir != "/custom/config/dir" {
		t.Errorf("ConfigDir = %q", dir)
	}
}

func TestGenerateTOMLRoundTrip(t *testing.T) {
	orig := &Config{
		CacheDir:  "/tmp/pm-cache",
		AssumeYes: true,
		UI:        UIConfig{ColorScheme: ColorSchemeLight, Verbose: true, Interactive: false},
		Repositories: []RepositoryEntry{
			{Name: "main", Kind: RepositoryKindGit, Location: "https://packs.example.com/main"},
			{Kind: RepositoryKindLocal, Location: "/srv/packs"},
		},
	}

	dir := t.TempDir()
	writeConfig(t, dir, GenerateTOML(orig))

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions: %v", err)
	}
	if cfg.CacheDir != orig.CacheDir || cfg.AssumeYes != orig.AssumeYes {
		t.Errorf("top-level fields did not round-trip: %+v", cfg)
	}
	if cfg.UI != orig.UI {
		t.Errorf("ui did not round-trip: %+v", cfg.UI)
	}
	if len(cfg.Repositories) != 2 || cfg.Repositories[0] != orig.Repositories[0] {
		t.Errorf("repositories did not round-trip: %+v", cfg.Repositories)
	}
}

func TestProviderLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `assume_yes = true`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.AssumeYes {
		t.Errorf("provider did not surface file values")
	}
}

func TestColorSchemeValidate(t *testing.T) {
	tests := []struct {
		scheme  ColorScheme
		wantErr bool
	}{
		{ColorSchemeAuto, false},
		{ColorSchemeDark, false},
		{ColorSchemeLight, false},
		{"sepia", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			err := tt.scheme.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.scheme, err, tt.wantErr)
			}
		})
	}
}

func TestInvalidConfigErrorMessage(t *testing.T) {
	cfg := &Config{
		UI: UIConfig{ColorScheme: "sepia"},
		Repositories: []RepositoryEntry{
			{Kind: "ftp", Location: " "},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	if !strings.Contains(msg, "sepia") || !strings.Contains(msg, "repositories[0]") {
		t.Errorf("message should name every failing field: %q", msg)
	}
}
