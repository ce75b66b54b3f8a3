// Package similarity provides vector distance functions for embedding-based
// song scoring.
package similarity

import "math"

// Cosine computes the cosine similarity between two vectors.
// Returns a value in [-1, 1] where 1 means identical direction and 0 means
// orthogonal. Catalog embeddings are non-negative, so in practice the result
// lands in [0, 1].
//
// Vectors of mismatched length, nil/empty vectors, and zero-norm vectors all
// compare as 0 rather than producing an error.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
