package domain

// SparseVector is a lexical (BM25-style) vector in sparse form.
// Indices are stable term hashes, so vectors produced by independently
// fitted encoders are directly comparable.
type SparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

// IsZero reports whether the vector carries no terms.
func (v SparseVector) IsZero() bool { return len(v.Indices) == 0 }

// Dot returns the dot product with another sparse vector.
// Both vectors must have indices sorted ascending, which the sparse
// encoder guarantees.
func (v SparseVector) Dot(other SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(other.Indices) {
		switch {
		case v.Indices[i] == other.Indices[j]:
			sum += float64(v.Values[i]) * float64(other.Values[j])
			i++
			j++
		case v.Indices[i] < other.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}
