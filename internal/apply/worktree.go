package apply

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	rerr "reqmap/internal/errors"
)

// WorkTree abstracts the file tree changes are applied to. Production
// code uses OSWorkTree; tests use MemWorkTree to assert on post-apply
// content without touching disk.
type WorkTree interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	Delete(path string) error
	Exists(path string) (bool, error)
}

// OSWorkTree is a WorkTree rooted at a repository checkout. All paths
// are relative to the root; escaping the root is rejected.
type OSWorkTree struct {
	root string
}

// NewOSWorkTree returns a WorkTree over the directory at root.
func NewOSWorkTree(root string) *OSWorkTree {
	return &OSWorkTree{root: root}
}

func (w *OSWorkTree) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", rerr.Newf(rerr.IOFailure, "path %q escapes the work tree", path)
	}
	return filepath.Join(w.root, clean), nil
}

func (w *OSWorkTree) Read(path string) ([]byte, error) {
	full, err := w.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, rerr.Wrap(rerr.IOFailure, "failed to read "+path, err)
	}
	return data, nil
}

func (w *OSWorkTree) Write(path string, data []byte) error {
	full, err := w.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return rerr.Wrap(rerr.IOFailure, "failed to create parent directory for "+path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return rerr.Wrap(rerr.IOFailure, "failed to write "+path, err)
	}
	return nil
}

func (w *OSWorkTree) Delete(path string) error {
	full, err := w.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return rerr.Wrap(rerr.IOFailure, "failed to delete "+path, err)
	}
	return nil
}

func (w *OSWorkTree) Exists(path string) (bool, error) {
	full, err := w.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, rerr.Wrap(rerr.IOFailure, "failed to stat "+path, err)
	}
	return true, nil
}

// MemWorkTree is an in-memory WorkTree. Safe for concurrent use.
type MemWorkTree struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemWorkTree returns a WorkTree seeded with the given files.
func NewMemWorkTree(files map[string]string) *MemWorkTree {
	m := &MemWorkTree{files: make(map[string][]byte, len(files))}
	for p, content := range files {
		m.files[p] = []byte(content)
	}
	return m
}

func (m *MemWorkTree) Read(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	if !ok {
		return nil, rerr.Newf(rerr.IOFailure, "failed to read %s: no such file", path)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemWorkTree) Write(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.files[path] = stored
	return nil
}

func (m *MemWorkTree) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		return rerr.Newf(rerr.IOFailure, "failed to delete %s: no such file", path)
	}
	delete(m.files, path)
	return nil
}

func (m *MemWorkTree) Exists(path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[path]
	return ok, nil
}

// Content returns the current content of path, or "" when absent.
func (m *MemWorkTree) Content(path string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return string(m.files[path])
}

// Paths returns the sorted list of files currently in the tree.
func (m *MemWorkTree) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
