package ingest

import (
	"context"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/repository/index"
	"github.com/docbricks/docbricks/internal/sparse"
)

// Index writes dense+sparse records to the vector store.
type Index interface {
	EnsureIndex(ctx context.Context) error
	Upsert(ctx context.Context, rec index.Record) error
	Delete(ctx context.Context, id string) error
}

// Embedder vectorizes document text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ArtifactWriter persists per-document sparse encoders.
type ArtifactWriter interface {
	Save(id string, enc *sparse.Encoder) (string, error)
	Delete(id string) error
}

// Source loads the parsed-or-edited text for a file name.
type Source interface {
	LoadDocumentText(name string) (string, domain.Metadata, error)
}

// Registry resolves source filenames to assigned document ids.
type Registry interface {
	Resolve(ctx context.Context, filename string) (string, error)
	Lookup(ctx context.Context, filename string) (string, error)
	Forget(ctx context.Context, filename string) error
}

// CacheInvalidator marks the merged sparse encoder stale after ingestion.
type CacheInvalidator interface {
	Invalidate()
}
