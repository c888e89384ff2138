// Package summary produces and caches per-file summaries.
package summary

import (
	"context"
	"fmt"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/storage"
)

const promptTemplate = "Summarize the following document in a few concise paragraphs:\n\n%s"

// Files is the slice of the file store the summarizer needs.
type Files interface {
	LoadDocumentText(name string) (string, domain.Metadata, error)
	Load(dir storage.Dir, name string) ([]byte, error)
	Save(dir storage.Dir, name string, data []byte) (string, error)
}

// ChatModel turns a summarization prompt into a completion.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	files Files
	chat  ChatModel
}

func New(files Files, chat ChatModel) *Service {
	return &Service{files: files, chat: chat}
}

// Summarize returns the summary for a file, generating and caching it on
// first request. Edits to the underlying file invalidate nothing here, so
// callers wanting a fresh summary delete the cached one first.
func (s *Service) Summarize(ctx context.Context, name string) (string, error) {
	cacheName := storage.BaseName(name) + ".md"
	if cached, err := s.files.Load(storage.DirSummarized, cacheName); err == nil {
		return string(cached), nil
	}

	text, _, err := s.files.LoadDocumentText(name)
	if err != nil {
		return "", err
	}

	out, err := s.chat.Complete(ctx, fmt.Sprintf(promptTemplate, text))
	if err != nil {
		return "", err
	}

	if _, err := s.files.Save(storage.DirSummarized, cacheName, []byte(out)); err != nil {
		return "", fmt.Errorf("cache summary for %s: %w", name, err)
	}
	return out, nil
}
