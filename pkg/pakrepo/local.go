// SPDX-License-Identifier: MPL-2.0

package pakrepo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"packmule/pkg/pakfile"
)

type (
	// LoadFailure records one descriptor file that could not be parsed.
	// A broken descriptor never aborts loading the rest of a repository.
	LoadFailure struct {
		Path string
		Err  error
	}

	// LoadResult reports what a repository scan produced.
	LoadResult struct {
		// Entries were parsed and added to the index.
		Entries []Entry

		// Failures are the files that did not parse.
		Failures []LoadFailure
	}
)

// LoadDir scans a directory for package descriptors (*.json, *.hjson)
// and adds every parseable one to the index. The scan itself failing
// (missing or unreadable directory) is the only hard error; individual
// descriptor failures are collected in the result.
func LoadDir(dir string, idx *Index) (*LoadResult, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read repository directory %s: %w", dir, err)
	}

	result := &LoadResult{}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(f.Name())) {
		case ".json", ".hjson":
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		meta, err := LoadDescriptor(path)
		if err != nil {
			result.Failures = append(result.Failures, LoadFailure{Path: path, Err: err})
			continue
		}
		entry := Entry{Ref: meta.FullRef(), Meta: meta}
		idx.Add(entry)
		result.Entries = append(result.Entries, entry)
	}

	return result, nil
}

// LoadDescriptor reads and parses a single descriptor file, picking the
// HJSON or JSON path from the file extension.
func LoadDescriptor(path string) (*pakfile.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", path, err)
	}

	meta := &pakfile.Metadata{}
	if strings.EqualFold(filepath.Ext(path), ".hjson") {
		err = pakfile.ParseHJSON(data, meta)
	} else {
		err = pakfile.ParseJSON(data, meta)
	}
	if err != nil {
		return nil, fmt.Errorf("descriptor %s: %w", path, err)
	}
	return meta, nil
}
