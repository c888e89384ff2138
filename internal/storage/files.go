// Package storage implements the local filesystem store backing the
// document pipeline directories.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docbricks/docbricks/internal/domain"
)

// Dir names one stage of the document pipeline.
type Dir string

// Pipeline directories, one per processing stage.
const (
	DirUploaded   Dir = "uploaded_files"
	DirParsed     Dir = "parsed_files"
	DirEdited     Dir = "edited_files"
	DirSummarized Dir = "summarized_files"
)

// Dirs lists every pipeline directory.
var Dirs = []Dir{DirUploaded, DirParsed, DirEdited, DirSummarized}

// ParseDir validates a client-supplied directory name.
func ParseDir(s string) (Dir, error) {
	for _, d := range Dirs {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown directory %q", s)
}

// FileStore saves and loads pipeline files under a base directory.
type FileStore struct {
	base string
}

// New creates a file store rooted at base.
func New(base string) *FileStore {
	return &FileStore{base: base}
}

// EnsureDirs creates every pipeline directory that is missing.
func (f *FileStore) EnsureDirs() error {
	for _, d := range Dirs {
		if err := os.MkdirAll(filepath.Join(f.base, string(d)), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// Save writes a file into a pipeline directory and returns its path.
func (f *FileStore) Save(dir Dir, name string, data []byte) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	path := f.Path(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save %s/%s: %w", dir, name, err)
	}
	return path, nil
}

// Load reads a file from a pipeline directory.
func (f *FileStore) Load(dir Dir, name string) ([]byte, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path(dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", dir, name, domain.ErrFileNotFound)
		}
		return nil, fmt.Errorf("load %s/%s: %w", dir, name, err)
	}
	return data, nil
}

// Exists reports whether a file is present in a pipeline directory.
func (f *FileStore) Exists(dir Dir, name string) bool {
	name, err := cleanName(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(f.Path(dir, name))
	return err == nil
}

// List returns the file names in a pipeline directory, sorted.
func (f *FileStore) List(dir Dir) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.base, string(dir)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a file. Returns domain.ErrFileNotFound when absent.
func (f *FileStore) Delete(dir Dir, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(f.Path(dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s/%s: %w", dir, name, domain.ErrFileNotFound)
		}
		return fmt.Errorf("delete %s/%s: %w", dir, name, err)
	}
	return nil
}

// Path returns the filesystem path of a pipeline file.
func (f *FileStore) Path(dir Dir, name string) string {
	return filepath.Join(f.base, string(dir), name)
}

// BaseName strips the extension from a filename.
func BaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// cleanName rejects names that would escape the pipeline directory.
func cleanName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("file name is required")
	}
	cleaned := filepath.Base(filepath.Clean(name))
	if cleaned != name || cleaned == "." || cleaned == ".." {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return cleaned, nil
}
