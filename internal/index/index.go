// Package index models the flat code index produced by the external
// indexer: named code elements with file/line positions plus raw file
// text for full-text scans. The index is read-only input to mapping.
package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	rerr "reqmap/internal/errors"
)

// CodeIndex is the complete inventory for one repository.
type CodeIndex struct {
	Files []IndexedFile `json:"files"`
}

// IndexedFile carries the indexed elements and raw text of one file.
type IndexedFile struct {
	Path     string        `json:"path"`
	Language string        `json:"language,omitempty"`
	Elements []CodeElement `json:"elements,omitempty"`
	// RawTextLines is the full file content, one entry per line.
	RawTextLines []string `json:"rawTextLines,omitempty"`
}

// CodeElement is a named code construct with its position.
type CodeElement struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // class, function, endpoint, config-key, ...
	Line int    `json:"line,omitempty"`
}

// Load reads a code index JSON document from disk.
func Load(path string) (*CodeIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerr.Wrap(rerr.IndexMissing, "failed to read code index", err)
	}
	return Parse(data)
}

// Parse decodes a code index JSON document.
func Parse(data []byte) (*CodeIndex, error) {
	var idx CodeIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, rerr.Wrap(rerr.IndexMissing, "failed to parse code index", err)
	}
	return &idx, nil
}

// Save writes the index as pretty-printed JSON, creating parent
// directories as needed.
func (idx *CodeIndex) Save(path string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return rerr.Wrap(rerr.IOFailure, "failed to create index directory", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// File returns the indexed file with the given path, or nil.
func (idx *CodeIndex) File(path string) *IndexedFile {
	for i := range idx.Files {
		if idx.Files[i].Path == path {
			return &idx.Files[i]
		}
	}
	return nil
}

// TotalElements counts elements across all files.
func (idx *CodeIndex) TotalElements() int {
	n := 0
	for i := range idx.Files {
		n += len(idx.Files[i].Elements)
	}
	return n
}

// SortFiles orders files by path so that downstream traversal order is
// deterministic regardless of how the indexer emitted them.
func (idx *CodeIndex) SortFiles() {
	sort.Slice(idx.Files, func(i, j int) bool {
		return idx.Files[i].Path < idx.Files[j].Path
	})
}
