package retrieval

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/metrics"
	"github.com/docbricks/docbricks/internal/sparse"
)

// EncoderCache holds the merged sparse encoder built from every persisted
// artifact. The merge is rebuilt lazily on first use and after
// Invalidate, never mutated in place: queries read a snapshot while a
// rebuild swaps in a fresh encoder.
type EncoderCache struct {
	artifacts ArtifactSource
	logger    *zap.Logger

	mu      sync.RWMutex
	encoder *sparse.Encoder // nil until first build
}

// NewEncoderCache creates an empty cache.
func NewEncoderCache(artifacts ArtifactSource, logger *zap.Logger) *EncoderCache {
	return &EncoderCache{artifacts: artifacts, logger: logger}
}

// Get returns the merged encoder, building it on first use.
func (c *EncoderCache) Get() (*sparse.Encoder, error) {
	c.mu.RLock()
	enc := c.encoder
	c.mu.RUnlock()
	if enc != nil {
		return enc, nil
	}
	return c.Refresh()
}

// Refresh rebuilds the merged encoder from disk and swaps it in.
// Corrupt artifacts are logged and skipped; a corpus where every artifact
// is unreadable degrades to the empty encoder instead of failing.
func (c *EncoderCache) Refresh() (*sparse.Encoder, error) {
	ids, err := c.artifacts.List()
	if err != nil {
		return nil, fmt.Errorf("list sparse artifacts: %w", err)
	}

	merged := sparse.NewEncoder()
	var skipped int
	for _, id := range ids {
		enc, err := c.artifacts.Load(id)
		if err != nil {
			if errors.Is(err, domain.ErrCorruptArtifact) {
				c.logger.Warn("Skipping corrupt sparse artifact",
					zap.String("document_id", id), zap.Error(err))
				skipped++
				continue
			}
			return nil, fmt.Errorf("load sparse artifact %s: %w", id, err)
		}
		merged.Merge(enc)
	}

	metrics.SparseArtifactsLoaded.WithLabelValues("merged").Set(float64(len(ids) - skipped))
	metrics.SparseArtifactsLoaded.WithLabelValues("skipped").Set(float64(skipped))

	c.logger.Debug("Merged sparse encoder rebuilt",
		zap.Int("artifacts", len(ids)),
		zap.Int("skipped", skipped),
		zap.Int("vocab_size", merged.VocabSize()),
	)

	c.mu.Lock()
	c.encoder = merged
	c.mu.Unlock()
	return merged, nil
}

// Invalidate drops the cached encoder so the next query rebuilds it.
func (c *EncoderCache) Invalidate() {
	c.mu.Lock()
	c.encoder = nil
	c.mu.Unlock()
}
