// SPDX-License-Identifier: MPL-2.0

package pakfile

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/hjson/hjson-go/v4"

	"packmule/pkg/pakref"
	"packmule/pkg/pakver"
)

//go:embed pakfile_schema.cue
var descriptorSchema string

// schemaRoot is the path of the descriptor definition inside the schema.
const schemaRoot = "#Descriptor"

// rawDescriptor mirrors the JSON shape of a descriptor document.
type rawDescriptor struct {
	Name                  string   `json:"name"`
	Version               string   `json:"version"`
	Author                string   `json:"author"`
	License               string   `json:"license"`
	ProjectURL            string   `json:"projectUrl"`
	Repository            string   `json:"repository"`
	Description           string   `json:"description"`
	CompatibleAppVersion  string   `json:"compatibleAppVersion"`
	MinimumManagerVersion string   `json:"minimumManagerVersion"`
	Install               string   `json:"install"`
	Dependencies          []string `json:"dependencies"`
	Imports               []string `json:"imports"`
}

// ParseHJSON parses an HJSON descriptor into m. The document is first
// normalized to plain JSON — a pure syntax conversion with no semantic
// logic — and then follows the JSON path.
func ParseHJSON(data []byte, m *Metadata) error {
	var tree map[string]any
	if err := hjson.Unmarshal(data, &tree); err != nil {
		return &DescriptorError{Reason: "malformed HJSON", Cause: err}
	}
	coerceVersionFields(tree)

	normalized, err := json.Marshal(tree)
	if err != nil {
		return &DescriptorError{Reason: "HJSON normalization failed", Cause: err}
	}

	if err := ParseJSON(normalized, m); err != nil {
		return err
	}
	// Keep the bytes the caller actually handed over, not the
	// normalized form.
	m.RawText = string(data)
	return nil
}

// coerceVersionFields rewrites numeric version values to strings. An
// unquoted one- or two-component version like "version: 1.2" reads as
// a number in relaxed syntax; without this the schema would reject it
// with a type error instead of accepting the version the author wrote.
func coerceVersionFields(tree map[string]any) {
	for _, key := range []string{"version", "minimumManagerVersion"} {
		switch n := tree[key].(type) {
		case float64:
			tree[key] = strconv.FormatFloat(n, 'f', -1, 64)
		case int64:
			tree[key] = strconv.FormatInt(n, 10)
		case json.Number:
			tree[key] = n.String()
		}
	}
}

// ParseJSON parses a JSON descriptor into m.
//
// The document is compiled and unified with the embedded CUE schema
// (compile schema, compile data, validate and decode), then mandatory
// fields are checked: a missing or unparseable name or version is fatal
// and leaves m untouched. On success every scalar field is assigned, the
// self reference is inferred if m carries none, and the dependency and
// import sets are cleared and rebuilt from their document arrays.
func ParseJSON(data []byte, m *Metadata) error {
	raw, err := decodeDescriptor(data)
	if err != nil {
		return err
	}

	if raw.Name == "" {
		return &DescriptorError{Reason: "missing mandatory field \"name\""}
	}
	if raw.Version == "" {
		return &DescriptorError{Reason: "missing mandatory field \"version\""}
	}
	version, err := pakver.Parse(raw.Version)
	if err != nil {
		return &DescriptorError{Reason: fmt.Sprintf("field \"version\" is not a version: %q", raw.Version), Cause: err}
	}

	m.Name = raw.Name
	m.Version = version
	m.Author = raw.Author
	m.License = raw.License
	m.ProjectURL = raw.ProjectURL
	m.Repository = raw.Repository
	m.Description = raw.Description
	m.CompatibleAppVersion = raw.CompatibleAppVersion
	m.Script = raw.Install
	m.RawText = string(data)

	if raw.MinimumManagerVersion != "" {
		m.RequiredManagerVersion = pakver.ParseRequirement(raw.MinimumManagerVersion)
	} else {
		m.RequiredManagerVersion = pakver.Requirement{Valid: true}
	}

	m.inferSelf()

	rebuildSet(&m.Dependencies, raw.Dependencies)
	rebuildSet(&m.Imports, raw.Imports)

	return nil
}

// decodeDescriptor runs the schema flow on a JSON document and decodes
// the result. Validation failures are descriptor-fatal.
func decodeDescriptor(data []byte) (*rawDescriptor, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(descriptorSchema)
	if schema.Err() != nil {
		return nil, fmt.Errorf("internal error: descriptor schema does not compile: %w", schema.Err())
	}
	root := schema.LookupPath(cue.ParsePath(schemaRoot))
	if root.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaRoot, root.Err())
	}

	doc := ctx.CompileBytes(data)
	if doc.Err() != nil {
		return nil, &DescriptorError{Reason: "malformed JSON", Cause: doc.Err()}
	}

	unified := root.Unify(doc)
	if err := unified.Validate(); err != nil {
		return nil, &DescriptorError{Reason: "descriptor does not match schema", Cause: err}
	}

	var raw rawDescriptor
	if err := unified.Decode(&raw); err != nil {
		return nil, &DescriptorError{Reason: "descriptor decode failed", Cause: err}
	}
	return &raw, nil
}

// rebuildSet clears the set and repopulates it from descriptor entries.
// Entries that fail the reference grammar are dropped; duplicates by
// identity collapse per the set's last-write-wins policy.
func rebuildSet(set *pakref.Set, entries []string) {
	set.Clear()
	for _, entry := range entries {
		ref, err := pakref.ParsePartial(entry)
		if err != nil {
			continue
		}
		set.Add(ref)
	}
}
