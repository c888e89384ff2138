package index

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/docbricks/docbricks/internal/domain"
)

// vectorToBytes serializes a dense vector as little-endian float32.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func encodeSparse(v domain.SparseVector) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeSparse(s string) (domain.SparseVector, error) {
	if s == "" {
		return domain.SparseVector{}, nil
	}
	var v domain.SparseVector
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return domain.SparseVector{}, fmt.Errorf("decode sparse vector: %w", err)
	}
	return v, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either is empty or zero-length.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
