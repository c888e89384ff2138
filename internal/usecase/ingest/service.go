// Package ingest orchestrates per-document ingestion into the dense and
// sparse indexes.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/logger"
	"github.com/docbricks/docbricks/internal/metrics"
	"github.com/docbricks/docbricks/internal/repository/index"
	"github.com/docbricks/docbricks/internal/sparse"

	"go.uber.org/zap"
)

// Service coordinates the dense upsert and the sparse fit-and-persist for
// one document at a time.
type Service struct {
	index     Index
	embed     Embedder
	artifacts ArtifactWriter
	source    Source
	registry  Registry
	cache     CacheInvalidator
}

// New creates an ingestion service.
func New(
	idx Index, embed Embedder, artifacts ArtifactWriter,
	source Source, registry Registry, cache CacheInvalidator,
) *Service {
	return &Service{
		index:     idx,
		embed:     embed,
		artifacts: artifacts,
		source:    source,
		registry:  registry,
		cache:     cache,
	}
}

// IngestFile resolves a pipeline file to its assigned document id and
// ingests its current text. A file with no parsed or edited text fails
// with domain.ErrDocumentNotIngestable before either index is touched.
func (s *Service) IngestFile(ctx context.Context, name string) (string, error) {
	text, meta, err := s.source.LoadDocumentText(name)
	if err != nil {
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %w", domain.ErrDocumentNotIngestable, err)
	}

	id, err := s.registry.Resolve(ctx, name)
	if err != nil {
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("resolve document id: %w", err)
	}

	if err := s.Ingest(ctx, id, text, meta); err != nil {
		return "", err
	}
	return id, nil
}

// Ingest writes the dense record first, then the sparse artifact. There is
// no cross-store rollback: a dense write followed by a sparse failure
// leaves the document densely queryable only, and the error tells the
// caller which half failed. The two stores share no commit protocol, so
// the gap is accepted rather than papered over.
func (s *Service) Ingest(ctx context.Context, id, text string, meta domain.Metadata) error {
	log := logger.FromContext(ctx)

	// Fit up front: an empty document must fail before any index mutation.
	enc := sparse.NewEncoder()
	if err := enc.Fit(text); err != nil {
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return err
	}

	if err := s.index.EnsureIndex(ctx); err != nil {
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return err
	}

	embResult, err := s.embed.Embed(ctx, text)
	if err != nil {
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("vectorize document %s: %w", id, err)
	}

	rec := index.Record{
		ID:       id,
		Content:  text,
		Dense:    embResult.Embedding,
		Sparse:   enc.EncodeDocument(text),
		Metadata: meta,
	}
	if err := s.index.Upsert(ctx, rec); err != nil {
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return err
	}

	path, err := s.artifacts.Save(id, enc)
	if err != nil {
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("persist sparse artifact %s: %w", id, err)
	}

	s.cache.Invalidate()
	metrics.IngestTotal.WithLabelValues("success").Inc()

	log.Info("Document ingested",
		zap.String("document_id", id),
		zap.String("source", meta.SourceName),
		zap.String("artifact", path),
		zap.Int("tokens", embResult.TotalTokens),
	)
	return nil
}

// RemoveFile drops a file's dense record, sparse artifact, and id mapping.
// Unknown files are a no-op so file deletion stays idempotent.
func (s *Service) RemoveFile(ctx context.Context, name string) error {
	id, err := s.registry.Lookup(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil
		}
		return err
	}

	if err := s.index.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.artifacts.Delete(id); err != nil {
		return err
	}
	if err := s.registry.Forget(ctx, name); err != nil {
		return err
	}

	s.cache.Invalidate()
	return nil
}
