// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// RepositoryKindLocal is a directory of descriptor files.
	RepositoryKindLocal RepositoryKind = "local"
	// RepositoryKindGit is a git remote distributing packages as tags.
	RepositoryKindGit RepositoryKind = "git"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidRepositoryEntry is the sentinel error wrapped by InvalidRepositoryEntryError.
	ErrInvalidRepositoryEntry = errors.New("invalid repository entry")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not
	// recognized. It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// RepositoryKind tells how a configured repository is read.
	RepositoryKind string

	// RepositoryEntry is one configured package repository. Location is a
	// directory path for local repositories or a remote URL for git ones.
	RepositoryEntry struct {
		Name     string         `mapstructure:"name"`
		Kind     RepositoryKind `mapstructure:"kind"`
		Location string         `mapstructure:"location"`
	}

	// InvalidRepositoryEntryError is returned when a RepositoryEntry has
	// invalid fields. It wraps ErrInvalidRepositoryEntry for errors.Is().
	InvalidRepositoryEntryError struct {
		FieldErrors []error
	}

	// UIConfig holds terminal output preferences.
	UIConfig struct {
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
		Verbose     bool        `mapstructure:"verbose"`
		Interactive bool        `mapstructure:"interactive"`
	}

	// Config is the full packmule configuration.
	Config struct {
		// CacheDir is where fetched repositories are kept. Empty means
		// the platform cache directory.
		CacheDir string `mapstructure:"cache_dir"`

		// AssumeYes answers every confirmation prompt with yes.
		AssumeYes bool `mapstructure:"assume_yes"`

		Repositories []RepositoryEntry `mapstructure:"repositories"`
		UI           UIConfig          `mapstructure:"ui"`
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// Validate checks that the color scheme is one of the known values.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

func (c ColorScheme) String() string {
	return string(c)
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("%v: %q (must be %q, %q or %q)",
		ErrInvalidColorScheme, e.Value, ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight)
}

func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// Validate checks kind and location. A missing name is allowed; the
// location then identifies the repository.
func (r RepositoryEntry) Validate() error {
	var fieldErrors []error

	switch r.Kind {
	case RepositoryKindLocal, RepositoryKindGit:
	default:
		fieldErrors = append(fieldErrors, fmt.Errorf("kind: %q (must be %q or %q)", r.Kind, RepositoryKindLocal, RepositoryKindGit))
	}
	if strings.TrimSpace(r.Location) == "" {
		fieldErrors = append(fieldErrors, errors.New("location: must not be empty"))
	}

	if len(fieldErrors) > 0 {
		return &InvalidRepositoryEntryError{FieldErrors: fieldErrors}
	}
	return nil
}

func (e *InvalidRepositoryEntryError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%v: %s", ErrInvalidRepositoryEntry, strings.Join(msgs, "; "))
}

func (e *InvalidRepositoryEntryError) Unwrap() error {
	return ErrInvalidRepositoryEntry
}

// Validate checks the whole configuration, collecting every field error
// instead of stopping at the first.
func (c *Config) Validate() error {
	var fieldErrors []error

	if err := c.UI.ColorScheme.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	for i, repo := range c.Repositories {
		if err := repo.Validate(); err != nil {
			fieldErrors = append(fieldErrors, fmt.Errorf("repositories[%d]: %w", i, err))
		}
	}

	if len(fieldErrors) > 0 {
		return &InvalidConfigError{FieldErrors: fieldErrors}
	}
	return nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%v: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (e *InvalidConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
			Interactive: true,
		},
	}
}
