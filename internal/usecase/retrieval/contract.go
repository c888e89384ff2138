package retrieval

import (
	"context"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/sparse"
)

// Index runs the fused similarity query against the vector store.
type Index interface {
	Query(
		ctx context.Context, dense []float32, sparseVec domain.SparseVector,
		alpha float64, topK int,
	) ([]domain.RetrievalResult, error)
}

// Embedder vectorizes query text; it must be the same model used at
// ingestion time.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ArtifactSource enumerates and loads persisted sparse encoders.
type ArtifactSource interface {
	List() ([]string, error)
	Load(id string) (*sparse.Encoder, error)
}
