package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/docbricks/docbricks/internal/domain"
	"github.com/docbricks/docbricks/internal/sparse"
)

// --- Mocks ---

type mockIndex struct {
	results   []domain.RetrievalResult
	err       error
	gotSparse domain.SparseVector
	gotAlpha  float64
	gotTopK   int
}

func (m *mockIndex) Query(
	_ context.Context, _ []float32, sparseVec domain.SparseVector,
	alpha float64, topK int,
) ([]domain.RetrievalResult, error) {
	m.gotSparse = sparseVec
	m.gotAlpha = alpha
	m.gotTopK = topK
	return m.results, m.err
}

type mockEmbedder struct {
	vec []float32
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockArtifacts struct {
	encoders map[string]*sparse.Encoder
	corrupt  map[string]bool
	listErr  error
	loads    int
}

func newMockArtifacts() *mockArtifacts {
	return &mockArtifacts{
		encoders: make(map[string]*sparse.Encoder),
		corrupt:  make(map[string]bool),
	}
}

func (m *mockArtifacts) add(t *testing.T, id, text string) {
	t.Helper()
	enc := sparse.NewEncoder()
	if err := enc.Fit(text); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	m.encoders[id] = enc
}

func (m *mockArtifacts) List() ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]string, 0, len(m.encoders)+len(m.corrupt))
	for id := range m.encoders {
		ids = append(ids, id)
	}
	for id := range m.corrupt {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockArtifacts) Load(id string) (*sparse.Encoder, error) {
	m.loads++
	if m.corrupt[id] {
		return nil, fmt.Errorf("artifact %s: %w", id, domain.ErrCorruptArtifact)
	}
	enc, ok := m.encoders[id]
	if !ok {
		return nil, fmt.Errorf("artifact %s: %w", id, domain.ErrDocumentNotFound)
	}
	return enc, nil
}

func newService(idx *mockIndex, emb *mockEmbedder, arts *mockArtifacts, alpha float64) *Service {
	cache := NewEncoderCache(arts, zap.NewNop())
	return New(idx, emb, cache, alpha, 3)
}

// --- Tests ---

func TestSearch_BlankQuery(t *testing.T) {
	svc := newService(&mockIndex{}, &mockEmbedder{}, newMockArtifacts(), 0.5)
	for _, q := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Search(context.Background(), q); err == nil {
			t.Errorf("Search(%q) should fail", q)
		}
	}
}

func TestSearch_PassesFusionParameters(t *testing.T) {
	idx := &mockIndex{results: []domain.RetrievalResult{{ID: "doc-1", Score: 0.9}}}
	arts := newMockArtifacts()
	arts.add(t, "doc-1", "redis cluster failover")

	svc := newService(idx, &mockEmbedder{vec: []float32{1, 0}}, arts, 0.7)
	res, err := svc.Search(context.Background(), "redis failover")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(res) != 1 || res[0].ID != "doc-1" {
		t.Errorf("results = %v", res)
	}
	if idx.gotAlpha != 0.7 || idx.gotTopK != 3 {
		t.Errorf("alpha=%f topK=%d, want 0.7/3", idx.gotAlpha, idx.gotTopK)
	}
	if idx.gotSparse.IsZero() {
		t.Error("query sparse vector must come from the merged encoder")
	}
}

func TestSearch_EmptyCorpusDegradesToZeroSparse(t *testing.T) {
	idx := &mockIndex{}
	svc := newService(idx, &mockEmbedder{vec: []float32{1, 0}}, newMockArtifacts(), 0.5)

	if _, err := svc.Search(context.Background(), "anything"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !idx.gotSparse.IsZero() {
		t.Error("no artifacts must yield a zero sparse query vector")
	}
}

func TestSearch_EmbedFailure(t *testing.T) {
	svc := newService(&mockIndex{}, &mockEmbedder{err: errors.New("quota")}, newMockArtifacts(), 0.5)
	_, err := svc.Search(context.Background(), "anything")
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Errorf("expected ErrRetrieval, got %v", err)
	}
}

func TestSearch_IndexFailure(t *testing.T) {
	idx := &mockIndex{err: errors.New("conn reset")}
	svc := newService(idx, &mockEmbedder{vec: []float32{1}}, newMockArtifacts(), 0.5)
	_, err := svc.Search(context.Background(), "anything")
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Errorf("expected ErrRetrieval, got %v", err)
	}
}

func TestSearch_ListFailure(t *testing.T) {
	arts := newMockArtifacts()
	arts.listErr = errors.New("permission denied")
	svc := newService(&mockIndex{}, &mockEmbedder{vec: []float32{1}}, arts, 0.5)
	_, err := svc.Search(context.Background(), "anything")
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Errorf("expected ErrRetrieval, got %v", err)
	}
}

func TestCache_SkipsCorruptArtifacts(t *testing.T) {
	arts := newMockArtifacts()
	arts.add(t, "good-1", "redis cluster failover")
	arts.add(t, "good-2", "postgres replication")
	arts.corrupt["bad-1"] = true

	cache := NewEncoderCache(arts, zap.NewNop())
	enc, err := cache.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if enc.DocCount() != 2 {
		t.Errorf("doc count = %d, want 2 (corrupt skipped)", enc.DocCount())
	}
}

func TestCache_AllCorruptDegradesToEmpty(t *testing.T) {
	arts := newMockArtifacts()
	arts.corrupt["bad-1"] = true
	arts.corrupt["bad-2"] = true

	cache := NewEncoderCache(arts, zap.NewNop())
	enc, err := cache.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if enc.DocCount() != 0 {
		t.Errorf("doc count = %d, want 0", enc.DocCount())
	}
	if !enc.EncodeQuery("anything").IsZero() {
		t.Error("empty merged encoder must produce zero query vectors")
	}
}

func TestCache_LazyAndInvalidate(t *testing.T) {
	arts := newMockArtifacts()
	arts.add(t, "doc-1", "redis cluster")
	cache := NewEncoderCache(arts, zap.NewNop())

	if _, err := cache.Get(); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := cache.Get(); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if arts.loads != 1 {
		t.Errorf("second Get must hit the cache, loads = %d", arts.loads)
	}

	arts.add(t, "doc-2", "postgres tuning")
	cache.Invalidate()

	enc, err := cache.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if enc.DocCount() != 2 {
		t.Errorf("doc count after invalidate = %d, want 2", enc.DocCount())
	}
	if arts.loads != 3 {
		t.Errorf("invalidate must force a rebuild, loads = %d", arts.loads)
	}
}
