// Package index stores dense+sparse document records in the vector store
// and runs the fused similarity query over them.
package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/docbricks/docbricks/internal/db"
	"github.com/docbricks/docbricks/internal/domain"
)

// Hash field names; the leading underscores keep them clear of metadata keys.
const (
	fieldContent = "__content"
	fieldVector  = "__vector"
	fieldSparse  = "__sparse"

	metaSourceName = "source_name"
	metaFileName   = "file_name"
	metaFilePath   = "file_path"
)

// store is the consumer interface for index operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Record is one document entry in the vector store.
type Record struct {
	ID       string
	Content  string
	Dense    []float32
	Sparse   domain.SparseVector
	Metadata domain.Metadata
}

// Repo reads and writes hybrid document records under a fixed namespace.
type Repo struct {
	store     store
	namespace string
	vectorDim int
}

// New creates an index repository.
func New(s store, namespace string, vectorDim int) *Repo {
	return &Repo{store: s, namespace: namespace, vectorDim: vectorDim}
}

// EnsureIndex creates the FT index for the namespace if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	name := r.indexName()

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("probe index %s: %w: %w", name, domain.ErrStoreUnavailable, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     name,
		Prefixes: []string{r.keyPrefix()},
		Fields: []db.IndexField{
			{Name: fieldContent, Type: db.IndexFieldText},
			{Name: metaSourceName, Type: db.IndexFieldTag},
			{
				Name:           fieldVector,
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorHNSW,
				VectorDim:      r.vectorDim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil // lost a benign create race
		}
		return fmt.Errorf("create index %s: %w: %w", name, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Upsert writes one record keyed by document id; the same id always lands
// on the same key, so re-ingestion replaces instead of accumulating.
func (r *Repo) Upsert(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("record id is required")
	}

	sparseJSON, err := encodeSparse(rec.Sparse)
	if err != nil {
		return fmt.Errorf("encode sparse vector %s: %w", rec.ID, err)
	}

	fields := map[string]string{
		fieldContent:   rec.Content,
		fieldVector:    vectorToBytes(rec.Dense),
		fieldSparse:    sparseJSON,
		metaSourceName: rec.Metadata.SourceName,
		metaFileName:   rec.Metadata.FileName,
		metaFilePath:   rec.Metadata.FilePath,
	}
	if err := r.store.HSet(ctx, r.key(rec.ID), fields); err != nil {
		return fmt.Errorf("upsert %s: %w: %w", rec.ID, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes a record by document id.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("delete %s: %w: %w", id, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Query scores every record in the namespace against the dense and sparse
// query vectors and returns the topK by fused score:
//
//	score = alpha*cosine(dense) + (1-alpha)*dot(sparse)
//
// One record per ingested file keeps the corpus small enough to score
// exhaustively, which makes the fusion exact for any alpha.
func (r *Repo) Query(
	ctx context.Context, dense []float32, sparseVec domain.SparseVector,
	alpha float64, topK int,
) ([]domain.RetrievalResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	keys, err := r.store.Scan(ctx, r.keyPrefix()+"*")
	if err != nil {
		return nil, fmt.Errorf("scan namespace: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	results := make([]domain.RetrievalResult, 0, len(hashes))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue // key deleted between scan and fetch
		}

		var denseScore float64
		if alpha > 0 {
			docVec := bytesToVector(fields[fieldVector])
			denseScore = cosineSimilarity(dense, docVec)
		}

		var sparseScore float64
		if alpha < 1 {
			docSparse, err := decodeSparse(fields[fieldSparse])
			if err != nil {
				return nil, fmt.Errorf("record %s: %w", keys[i], err)
			}
			sparseScore = sparseVec.Dot(docSparse)
		}

		results = append(results, domain.RetrievalResult{
			ID:    strings.TrimPrefix(keys[i], r.keyPrefix()),
			Score: alpha*denseScore + (1-alpha)*sparseScore,
			Text:  fields[fieldContent],
			Metadata: domain.Metadata{
				SourceName: fields[metaSourceName],
				FileName:   fields[metaFileName],
				FilePath:   fields[metaFilePath],
			},
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (r *Repo) keyPrefix() string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, r.namespace)
}

func (r *Repo) key(id string) string {
	return r.keyPrefix() + id
}

func (r *Repo) indexName() string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, r.namespace)
}
