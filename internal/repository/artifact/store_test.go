package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/sparse"
)

func fitEncoder(t *testing.T, text string) *sparse.Encoder {
	t.Helper()
	enc := sparse.NewEncoder()
	if err := enc.Fit(text); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return enc
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := New(t.TempDir())
	enc := fitEncoder(t, "redis cluster failover")

	path, err := s.Save("doc-1", enc)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact file missing: %v", err)
	}

	got, err := s.Load("doc-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DocCount() != 1 || got.DocFreq("redis") != 1 {
		t.Errorf("restored encoder lost statistics: count=%d df=%d", got.DocCount(), got.DocFreq("redis"))
	}
}

func TestSave_ReplacesPrevious(t *testing.T) {
	s := New(t.TempDir())

	if _, err := s.Save("doc-1", fitEncoder(t, "old text here")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Save("doc-1", fitEncoder(t, "completely new words")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("doc-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DocFreq("old") != 0 {
		t.Error("old statistics must be gone after replacement")
	}
	if got.DocFreq("completely") != 1 {
		t.Error("new statistics missing")
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if _, err := s.Save("doc-1", fitEncoder(t, "some text")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "doc-1.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("unexpected directory contents: %v", names)
	}
}

func TestLoad_Missing(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Load("nope")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := New(dir)
	_, err := s.Load("bad")
	if !errors.Is(err, domain.ErrCorruptArtifact) {
		t.Errorf("expected ErrCorruptArtifact, got %v", err)
	}
}

func TestList_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	for _, id := range []string{"b-doc", "a-doc", "c-doc"} {
		if _, err := s.Save(id, fitEncoder(t, "text for "+id)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	// Non-artifact files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ids, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"a-doc", "b-doc", "c-doc"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("List = %v, want %v", ids, want)
	}
}

func TestList_MissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-created"))
	ids, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty list, got %v", ids)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Save("doc-1", fitEncoder(t, "some text")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Delete("doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("doc-1"); err != nil {
		t.Errorf("second Delete must be a no-op, got %v", err)
	}
	if _, err := s.Load("doc-1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound after delete, got %v", err)
	}
}
