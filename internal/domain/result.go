package domain

// RetrievalResult is a single ranked hit from the hybrid search,
// ordered by descending fused score at the call site.
type RetrievalResult struct {
	ID       string
	Score    float64
	Text     string
	Metadata Metadata
}
