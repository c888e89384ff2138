// Package retrieval implements the hybrid (dense + sparse) document search.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/metrics"
)

// Service answers queries with a single fused-score similarity search.
type Service struct {
	index Index
	embed Embedder
	cache *EncoderCache
	alpha float64
	topK  int
}

// New creates a retrieval service. alpha blends the dense and sparse score
// contributions (0 = pure sparse, 1 = pure dense).
func New(index Index, embed Embedder, cache *EncoderCache, alpha float64, topK int) *Service {
	return &Service{index: index, embed: embed, cache: cache, alpha: alpha, topK: topK}
}

// Cache exposes the encoder cache so ingestion can invalidate it.
func (s *Service) Cache() *EncoderCache { return s.cache }

// Search encodes the query densely and sparsely and returns the topK
// records by fused score. Any store failure surfaces as
// domain.ErrRetrieval with no partial results.
func (s *Service) Search(ctx context.Context, query string) ([]domain.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	encoder, err := s.cache.Get()
	if err != nil {
		metrics.SearchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("merged encoder: %w: %w", domain.ErrRetrieval, err)
	}
	sparseVec := encoder.EncodeQuery(query)

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		metrics.SearchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("vectorize query: %w: %w", domain.ErrRetrieval, err)
	}

	results, err := s.index.Query(ctx, embResult.Embedding, sparseVec, s.alpha, s.topK)
	if err != nil {
		metrics.SearchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("hybrid query: %w: %w", domain.ErrRetrieval, err)
	}

	metrics.SearchTotal.WithLabelValues("success").Inc()
	return results, nil
}
