// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"packmule/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "packmule"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

type (
	// LoadOptions pins down where one Load call looks for its file.
	// The zero value means the platform config directory, file
	// optional.
	LoadOptions struct {
		// ConfigFilePath names one exact file to load. When set, the
		// file must exist and the directory lookup is skipped.
		ConfigFilePath string
		// ConfigDirPath replaces the platform config directory for
		// this call.
		ConfigDirPath string
	}

	// Provider is the seam command handlers load configuration
	// through; tests substitute a canned Config for the disk lookup.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	diskProvider struct{}
)

// NewProvider returns the Provider that reads config.toml from disk.
func NewProvider() Provider {
	return diskProvider{}
}

// Load resolves and validates the effective configuration.
func (diskProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// configDirOverride bypasses the platform directory lookup. Tests set
// it because os.UserHomeDir does not follow a rewritten HOME on every
// platform.
var configDirOverride string

// SetConfigDirOverride forces ConfigDir to return dir. Test-only.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears test overrides. Call from test cleanup.
func Reset() {
	configDirOverride = ""
}

// ConfigDir returns the packmule configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// CacheDir returns the default cache directory for fetched repositories.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get cache directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level cache state. Callers that want caching can wrap this function.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	v.SetConfigType(ConfigFileExt)

	defaults := DefaultConfig()
	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("assume_yes", defaults.AssumeYes)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.interactive", defaults.UI.Interactive)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""

	// An explicit config file path is used exclusively; a missing file is
	// then an error rather than a silent fallback to defaults.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'packmule config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := readFileIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, "", wrapConfigReadError(opts.ConfigFilePath, err)
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}

		cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		if fileExists(cfgPath) {
			if err := readFileIntoViper(v, cfgPath); err != nil {
				return nil, "", wrapConfigReadError(cfgPath, err)
			}
			resolvedPath = cfgPath
		}
		// No config file found: defaults plus env overrides.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check the field values reported below").
			Wrap(err).
			BuildError()
	}

	if cfg.CacheDir == "" {
		cacheDir, err := CacheDir()
		if err != nil {
			return nil, "", err
		}
		cfg.CacheDir = cacheDir
	}

	return &cfg, resolvedPath, nil
}

func wrapConfigReadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid TOML syntax").
		WithSuggestion("Verify the configuration values match the expected fields").
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

func readFileIntoViper(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	if err := v.MergeConfig(f); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(cfgDir, 0o755)
}

// GenerateTOML renders the configuration in the file format packmule
// reads back, for 'config show' and for seeding a fresh config file.
func GenerateTOML(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("# packmule configuration file\n\n")

	if cfg.CacheDir != "" {
		fmt.Fprintf(&sb, "cache_dir = %q\n", cfg.CacheDir)
	}
	fmt.Fprintf(&sb, "assume_yes = %v\n", cfg.AssumeYes)

	sb.WriteString("\n[ui]\n")
	fmt.Fprintf(&sb, "color_scheme = %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "verbose = %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "interactive = %v\n", cfg.UI.Interactive)

	for _, repo := range cfg.Repositories {
		sb.WriteString("\n[[repositories]]\n")
		if repo.Name != "" {
			fmt.Fprintf(&sb, "name = %q\n", repo.Name)
		}
		fmt.Fprintf(&sb, "kind = %q\n", repo.Kind)
		fmt.Fprintf(&sb, "location = %q\n", repo.Location)
	}

	return sb.String()
}
