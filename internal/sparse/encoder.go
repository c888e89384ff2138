// Package sparse implements a BM25 sparse encoder fitted per document and
// merged across documents at query time.
package sparse

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"

	"github.com/docbricks/docbricks/internal/domain"
)

// Default BM25 parameters (Robertson et al.).
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// Encoder holds BM25 term statistics. A fresh encoder is fitted on exactly
// one document; corpus-wide statistics are obtained by merging the
// per-document encoders. The zero statistics state is valid: queries encode
// to a zero vector and score no lexical relevance.
type Encoder struct {
	k1 float64
	b  float64

	docCount    int
	totalDocLen int            // sum of token counts across fitted documents
	docFreq     map[string]int // term -> number of fitted documents containing it
}

// NewEncoder creates an empty encoder with default BM25 parameters.
func NewEncoder() *Encoder {
	return &Encoder{
		k1:      DefaultK1,
		b:       DefaultB,
		docFreq: make(map[string]int),
	}
}

// DocCount returns the number of documents the statistics cover.
func (e *Encoder) DocCount() int { return e.docCount }

// DocFreq returns the document frequency of a term after tokenizer
// normalization.
func (e *Encoder) DocFreq(term string) int { return e.docFreq[term] }

// VocabSize returns the number of distinct terms.
func (e *Encoder) VocabSize() int { return len(e.docFreq) }

// Fit records term statistics for a single document's text.
// Returns domain.ErrEmptyDocument when the text tokenizes to nothing.
func (e *Encoder) Fit(text string) error {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return fmt.Errorf("fit: %w", domain.ErrEmptyDocument)
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		e.docFreq[tok]++
	}
	e.docCount++
	e.totalDocLen += len(tokens)
	return nil
}

// Merge folds another encoder's statistics into this one. Document
// frequencies and counts are summed, so merge order does not matter.
func (e *Encoder) Merge(other *Encoder) {
	if other == nil {
		return
	}
	for term, df := range other.docFreq {
		e.docFreq[term] += df
	}
	e.docCount += other.docCount
	e.totalDocLen += other.totalDocLen
}

// EncodeDocument produces the document-side BM25 sparse vector:
// value(t) = tf*(k1+1) / (tf + k1*(1 - b + b*len/avgLen)).
// Indices are stable term hashes sorted ascending.
func (e *Encoder) EncodeDocument(text string) domain.SparseVector {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return domain.SparseVector{}
	}

	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}

	docLen := float64(len(tokens))
	avgLen := e.avgDocLen()
	if avgLen == 0 {
		avgLen = docLen
	}

	weights := make(map[uint32]float32, len(tf))
	for term, n := range tf {
		freq := float64(n)
		norm := freq * (e.k1 + 1) / (freq + e.k1*(1-e.b+e.b*docLen/avgLen))
		weights[TermIndex(term)] += float32(norm)
	}
	return sparseFromWeights(weights)
}

// EncodeQuery produces the query-side sparse vector: each distinct query
// term is weighted by its smoothed IDF share. An encoder with no fitted
// documents encodes every query to the zero vector.
func (e *Encoder) EncodeQuery(text string) domain.SparseVector {
	tokens := Tokenize(text)
	if len(tokens) == 0 || e.docCount == 0 {
		return domain.SparseVector{}
	}

	n := float64(e.docCount)
	idf := make(map[uint32]float64, len(tokens))
	var idfSum float64
	seen := make(map[string]struct{}, len(tokens))
	for _, term := range tokens {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		df := float64(e.docFreq[term])
		v := math.Log(1 + (n-df+0.5)/(df+0.5))
		idf[TermIndex(term)] += v
		idfSum += v
	}
	if idfSum == 0 {
		return domain.SparseVector{}
	}

	weights := make(map[uint32]float32, len(idf))
	for idx, v := range idf {
		weights[idx] = float32(v / idfSum)
	}
	return sparseFromWeights(weights)
}

func (e *Encoder) avgDocLen() float64 {
	if e.docCount == 0 {
		return 0
	}
	return float64(e.totalDocLen) / float64(e.docCount)
}

// TermIndex maps a term to its sparse vector index via FNV-1a. Hash-derived
// indices keep independently fitted encoders comparable without a shared
// vocabulary table.
func TermIndex(term string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(term))
	return h.Sum32()
}

func sparseFromWeights(weights map[uint32]float32) domain.SparseVector {
	indices := make([]uint32, 0, len(weights))
	for idx := range weights {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, idx := range indices {
		values[i] = weights[idx]
	}
	return domain.SparseVector{Indices: indices, Values: values}
}
