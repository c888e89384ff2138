// Package artifact persists per-document sparse encoders, one JSON file
// per document id.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/sparse"
)

const artifactExt = ".json"

// Store reads and writes sparse index artifacts under a single directory.
type Store struct {
	dir string
}

// New creates an artifact store rooted at dir. The directory is created
// lazily on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the encoder for a document id, replacing any previous
// artifact. The write goes through a temp file and rename so a failed fit
// or crash never leaves a partially written artifact behind.
func (s *Store) Save(id string, enc *sparse.Encoder) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	data, err := json.Marshal(enc)
	if err != nil {
		return "", fmt.Errorf("encode artifact %s: %w", id, err)
	}

	path := s.path(id)
	tmp, err := os.CreateTemp(s.dir, id+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write artifact %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close artifact %s: %w", id, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("publish artifact %s: %w", id, err)
	}
	return path, nil
}

// Load reads one artifact. Unreadable or undecodable files are reported as
// domain.ErrCorruptArtifact so the merger can skip them.
func (s *Store) Load(id string) (*sparse.Encoder, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("artifact %s: %w", id, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("artifact %s: %v: %w", id, err, domain.ErrCorruptArtifact)
	}

	enc := sparse.NewEncoder()
	if err := json.Unmarshal(data, enc); err != nil {
		return nil, fmt.Errorf("artifact %s: %v: %w", id, err, domain.ErrCorruptArtifact)
	}
	return enc, nil
}

// List returns the document ids of all persisted artifacts, sorted.
// A missing directory is an empty corpus, not an error.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, artifactExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, artifactExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a document's artifact. Deleting an absent artifact is a no-op.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete artifact %s: %w", id, err)
	}
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+artifactExt)
}
