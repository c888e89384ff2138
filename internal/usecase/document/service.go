// Package document manages the file pipeline that feeds ingestion:
// uploads, parsed text, manual edits, and cleanup.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/parser"
	"github.com/docbricks/docbricks/internal/storage"
)

// Files is the slice of the file store the pipeline needs.
type Files interface {
	Save(dir storage.Dir, name string, data []byte) (string, error)
	Load(dir storage.Dir, name string) ([]byte, error)
	Exists(dir storage.Dir, name string) bool
	List(dir storage.Dir) ([]string, error)
	Delete(dir storage.Dir, name string) error
	Path(dir storage.Dir, name string) string
}

// Deindexer removes a file's footprint from both indexes.
type Deindexer interface {
	RemoveFile(ctx context.Context, name string) error
}

type Service struct {
	files   Files
	deindex Deindexer
}

func New(files Files, deindex Deindexer) *Service {
	return &Service{files: files, deindex: deindex}
}

// Upload stores a raw file and returns its path on disk.
func (s *Service) Upload(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: uploaded file %s is empty", domain.ErrEmptyDocument, name)
	}
	return s.files.Save(storage.DirUploaded, name, data)
}

// List returns the file names in one pipeline directory.
func (s *Service) List(dir storage.Dir) ([]string, error) {
	return s.files.List(dir)
}

// Parse extracts plain text from an uploaded file, caching the result as
// markdown so repeated requests skip the extraction.
func (s *Service) Parse(name string) (string, error) {
	parsedName := storage.BaseName(name) + ".md"
	if cached, err := s.files.Load(storage.DirParsed, parsedName); err == nil {
		return string(cached), nil
	}

	data, err := s.files.Load(storage.DirUploaded, name)
	if err != nil {
		return "", err
	}

	text, err := parser.Parse(s.files.Path(storage.DirUploaded, name), data)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}

	if _, err := s.files.Save(storage.DirParsed, parsedName, []byte(text)); err != nil {
		return "", fmt.Errorf("cache parsed text for %s: %w", name, err)
	}
	return text, nil
}

// SaveContent stores a manually edited version of a file's text. Edited
// text wins over parsed text at ingestion time.
func (s *Service) SaveContent(name, content string) (string, error) {
	return s.files.Save(storage.DirEdited, storage.BaseName(name)+".md", []byte(content))
}

// Delete removes a file from one pipeline directory. Deleting the uploaded
// original also drops every derived file and the document's entries in
// both indexes, so the pipeline holds no orphans.
func (s *Service) Delete(ctx context.Context, dir storage.Dir, name string) error {
	if err := s.files.Delete(dir, name); err != nil {
		return err
	}
	if dir != storage.DirUploaded {
		return nil
	}

	derived := storage.BaseName(name) + ".md"
	for _, d := range []storage.Dir{storage.DirParsed, storage.DirEdited, storage.DirSummarized} {
		if err := s.files.Delete(d, derived); err != nil && !errors.Is(err, domain.ErrFileNotFound) {
			return err
		}
	}
	return s.deindex.RemoveFile(ctx, name)
}
