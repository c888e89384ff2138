package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/storage"
)

// --- Mocks ---

// fakeFiles is an in-memory stand-in for the pipeline file store.
type fakeFiles struct {
	files map[storage.Dir]map[string][]byte
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{files: make(map[storage.Dir]map[string][]byte)}
}

func (f *fakeFiles) Save(dir storage.Dir, name string, data []byte) (string, error) {
	if f.files[dir] == nil {
		f.files[dir] = make(map[string][]byte)
	}
	f.files[dir][name] = data
	return f.Path(dir, name), nil
}

func (f *fakeFiles) Load(dir storage.Dir, name string) ([]byte, error) {
	data, ok := f.files[dir][name]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", dir, name, domain.ErrFileNotFound)
	}
	return data, nil
}

func (f *fakeFiles) Exists(dir storage.Dir, name string) bool {
	_, ok := f.files[dir][name]
	return ok
}

func (f *fakeFiles) List(dir storage.Dir) ([]string, error) {
	var names []string
	for name := range f.files[dir] {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeFiles) Delete(dir storage.Dir, name string) error {
	if _, ok := f.files[dir][name]; !ok {
		return fmt.Errorf("%s/%s: %w", dir, name, domain.ErrFileNotFound)
	}
	delete(f.files[dir], name)
	return nil
}

func (f *fakeFiles) Path(dir storage.Dir, name string) string {
	return filepath.Join("data", string(dir), name)
}

type mockDeindexer struct {
	removed []string
	err     error
}

func (m *mockDeindexer) RemoveFile(_ context.Context, name string) error {
	if m.err != nil {
		return m.err
	}
	m.removed = append(m.removed, name)
	return nil
}

// --- Tests ---

func TestUpload(t *testing.T) {
	files := newFakeFiles()
	svc := New(files, &mockDeindexer{})

	path, err := svc.Upload("report.md", []byte("# Report"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if path == "" {
		t.Error("expected a path")
	}
	if !files.Exists(storage.DirUploaded, "report.md") {
		t.Error("upload not stored")
	}
}

func TestUpload_Empty(t *testing.T) {
	svc := New(newFakeFiles(), &mockDeindexer{})
	_, err := svc.Upload("empty.md", nil)
	if !errors.Is(err, domain.ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestParse_CachesResult(t *testing.T) {
	files := newFakeFiles()
	if _, err := files.Save(storage.DirUploaded, "notes.md", []byte("# Notes\nbody")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	svc := New(files, &mockDeindexer{})

	text, err := svc.Parse("notes.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if text != "# Notes\nbody" {
		t.Errorf("text = %q", text)
	}
	if string(files.files[storage.DirParsed]["notes.md"]) != "# Notes\nbody" {
		t.Error("parsed text not cached")
	}

	// Cached copy wins even if the upload disappears.
	delete(files.files[storage.DirUploaded], "notes.md")
	text, err = svc.Parse("notes.md")
	if err != nil {
		t.Fatalf("Parse cached: %v", err)
	}
	if text != "# Notes\nbody" {
		t.Errorf("cached text = %q", text)
	}
}

func TestParse_MissingUpload(t *testing.T) {
	svc := New(newFakeFiles(), &mockDeindexer{})
	_, err := svc.Parse("ghost.md")
	if !errors.Is(err, domain.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestSaveContent_StoresMarkdownUnderStem(t *testing.T) {
	files := newFakeFiles()
	svc := New(files, &mockDeindexer{})

	if _, err := svc.SaveContent("report.pdf", "edited body"); err != nil {
		t.Fatalf("SaveContent: %v", err)
	}
	if string(files.files[storage.DirEdited]["report.md"]) != "edited body" {
		t.Error("edited content not stored as report.md")
	}
}

func TestDelete_UploadedCascades(t *testing.T) {
	files := newFakeFiles()
	deindex := &mockDeindexer{}
	svc := New(files, deindex)
	ctx := context.Background()

	for dir, name := range map[storage.Dir]string{
		storage.DirUploaded:   "report.pdf",
		storage.DirParsed:     "report.md",
		storage.DirEdited:     "report.md",
		storage.DirSummarized: "report.md",
	} {
		if _, err := files.Save(dir, name, []byte("x")); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	if err := svc.Delete(ctx, storage.DirUploaded, "report.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, dir := range storage.Dirs {
		if names, _ := files.List(dir); len(names) != 0 {
			t.Errorf("%s not emptied: %v", dir, names)
		}
	}
	if len(deindex.removed) != 1 || deindex.removed[0] != "report.pdf" {
		t.Errorf("deindex calls = %v", deindex.removed)
	}
}

func TestDelete_UploadedWithoutDerivedFiles(t *testing.T) {
	files := newFakeFiles()
	deindex := &mockDeindexer{}
	svc := New(files, deindex)

	if _, err := files.Save(storage.DirUploaded, "lone.pdf", []byte("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := svc.Delete(context.Background(), storage.DirUploaded, "lone.pdf"); err != nil {
		t.Fatalf("Delete must tolerate absent derived files: %v", err)
	}
	if len(deindex.removed) != 1 {
		t.Errorf("deindex calls = %v", deindex.removed)
	}
}

func TestDelete_DerivedDirOnly(t *testing.T) {
	files := newFakeFiles()
	deindex := &mockDeindexer{}
	svc := New(files, deindex)

	if _, err := files.Save(storage.DirUploaded, "report.pdf", []byte("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := files.Save(storage.DirEdited, "report.md", []byte("y")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := svc.Delete(context.Background(), storage.DirEdited, "report.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !files.Exists(storage.DirUploaded, "report.pdf") {
		t.Error("deleting an edited file must keep the upload")
	}
	if len(deindex.removed) != 0 {
		t.Error("deleting a derived file must not deindex")
	}
}

func TestDelete_Missing(t *testing.T) {
	svc := New(newFakeFiles(), &mockDeindexer{})
	err := svc.Delete(context.Background(), storage.DirUploaded, "ghost.pdf")
	if !errors.Is(err, domain.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
