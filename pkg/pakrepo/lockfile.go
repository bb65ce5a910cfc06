// SPDX-License-Identifier: MPL-2.0

package pakrepo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"packmule/pkg/pakref"
)

// LockFileName is the name of the lock file. It pins the exact package
// versions a resolution selected, next to the descriptor it was
// resolved for.
const LockFileName = "packmule.lock.cue"

// ErrInvalidLockFile is the sentinel error for unusable lock files.
var ErrInvalidLockFile = errors.New("invalid lock file")

type (
	// LockFile is the on-disk record of a resolution.
	LockFile struct {
		// Version is the lock file format version.
		Version string

		// Generated is when the lock file was written.
		Generated time.Time

		// Packages maps identity keys to their pinned versions.
		Packages map[pakref.Key]LockedPackage
	}

	// LockedPackage is one pinned entry.
	LockedPackage struct {
		// Name is the package name.
		Name string

		// Requested is the original range text that asked for the package.
		Requested string

		// Resolved is the exact version that was selected.
		Resolved string

		// Repository is the repository the selection came from.
		Repository string
	}
)

// NewLockFile creates an empty lock file.
func NewLockFile() *LockFile {
	return &LockFile{
		Version:   "1.0",
		Generated: time.Now(),
		Packages:  make(map[pakref.Key]LockedPackage),
	}
}

// LockFromResolutions pins a resolver result.
func LockFromResolutions(resolutions []Resolution) *LockFile {
	lock := NewLockFile()
	for _, res := range resolutions {
		lock.Packages[res.Requested.Key()] = LockedPackage{
			Name:       res.Entry.Ref.Name,
			Requested:  res.Requested.VersionRange,
			Resolved:   res.Entry.Ref.Version.String(),
			Repository: res.Entry.Ref.Repository,
		}
	}
	return lock
}

// LoadLockFile loads a lock file from the given path. A missing file is
// not an error; it yields a fresh empty lock.
func LoadLockFile(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLockFile(), nil
		}
		return nil, fmt.Errorf("failed to read lock file: %w", err)
	}
	return parseLockCUE(string(data))
}

// Save writes the lock file to disk in CUE format, atomically via a
// temp file and rename.
func (l *LockFile) Save(path string) error {
	content := l.toCUE()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace lock file: %w", err)
	}
	return nil
}

// Keys returns the pinned identity keys in sorted order.
func (l *LockFile) Keys() []pakref.Key {
	keys := make([]string, 0, len(l.Packages))
	for k := range l.Packages {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	out := make([]pakref.Key, len(keys))
	for i, k := range keys {
		out[i] = pakref.Key(k)
	}
	return out
}

// toCUE serializes the lock file.
func (l *LockFile) toCUE() string {
	var sb strings.Builder

	sb.WriteString("// packmule.lock.cue - Auto-generated lock file for package resolutions\n")
	sb.WriteString("// DO NOT EDIT MANUALLY\n\n")

	fmt.Fprintf(&sb, "version: %q\n", l.Version)
	fmt.Fprintf(&sb, "generated: %q\n\n", l.Generated.Format(time.RFC3339))

	if len(l.Packages) == 0 {
		sb.WriteString("packages: {}\n")
		return sb.String()
	}

	sb.WriteString("packages: {\n")
	for _, key := range l.Keys() {
		pkg := l.Packages[key]
		fmt.Fprintf(&sb, "\t%q: {\n", key)
		fmt.Fprintf(&sb, "\t\tname:      %q\n", pkg.Name)
		if pkg.Requested != "" {
			fmt.Fprintf(&sb, "\t\trequested: %q\n", pkg.Requested)
		}
		fmt.Fprintf(&sb, "\t\tresolved:  %q\n", pkg.Resolved)
		if pkg.Repository != "" {
			fmt.Fprintf(&sb, "\t\trepository: %q\n", pkg.Repository)
		}
		sb.WriteString("\t}\n")
	}
	sb.WriteString("}\n")

	return sb.String()
}

// parseLockCUE parses the lock format written by toCUE line by line.
func parseLockCUE(content string) (*LockFile, error) {
	lock := NewLockFile()

	var currentKey pakref.Key
	var current LockedPackage
	inPackages := false
	braceDepth := 0

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		// Top-level fields only outside the packages block; the field
		// names collide with entry fields.
		if !inPackages {
			if strings.HasPrefix(line, "version:") {
				lock.Version = parseQuotedValue(line)
				if lock.Version == "" {
					return nil, fmt.Errorf("%w: empty version", ErrInvalidLockFile)
				}
				continue
			}
			if strings.HasPrefix(line, "generated:") {
				if t, err := time.Parse(time.RFC3339, parseQuotedValue(line)); err == nil {
					lock.Generated = t
				}
				continue
			}
		}

		if strings.HasPrefix(line, "packages:") {
			inPackages = true
		}
		if !inPackages {
			continue
		}

		if strings.Contains(line, "{") {
			braceDepth++
			if braceDepth == 2 && strings.Contains(line, ":") {
				currentKey = pakref.Key(parseEntryKey(line))
				current = LockedPackage{}
			}
		}
		if strings.Contains(line, "}") {
			if braceDepth == 2 && currentKey != "" {
				lock.Packages[currentKey] = current
				currentKey = ""
			}
			braceDepth--
			if braceDepth == 0 {
				inPackages = false
			}
		}

		if braceDepth == 2 && currentKey != "" {
			switch {
			case strings.HasPrefix(line, "name:"):
				current.Name = parseQuotedValue(line)
			case strings.HasPrefix(line, "requested:"):
				current.Requested = parseQuotedValue(line)
			case strings.HasPrefix(line, "resolved:"):
				current.Resolved = parseQuotedValue(line)
			case strings.HasPrefix(line, "repository:"):
				current.Repository = parseQuotedValue(line)
			}
		}
	}

	return lock, nil
}

// parseQuotedValue extracts the quoted string after the first colon.
func parseQuotedValue(line string) string {
	_, value, ok := strings.Cut(line, ":")
	if !ok {
		return ""
	}
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, "{")
	value = strings.TrimSpace(value)
	return strings.Trim(value, `"`)
}

// parseEntryKey extracts the quoted entry key from a line like
// `"toolkit from https://packs.example.com": {`. Keys may contain
// colons, so the split happens at the closing quote, not the first
// colon.
func parseEntryKey(line string) string {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, `"`) {
		return ""
	}
	end := strings.LastIndex(line, `":`)
	if end <= 0 {
		return ""
	}
	return line[1:end]
}
