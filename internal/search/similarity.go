// Package search scores and ranks stored chunks against a query
// vector. The shipped strategy is exhaustive brute-force scoring, a
// deliberate prototype-scale choice; an index-backed strategy can
// implement the same interface without touching callers.
package search

import "math"

// Cosine returns the cosine similarity between two vectors, in [-1, 1].
//
// Mismatched lengths, empty or absent vectors, and zero-norm vectors
// all score exactly 0. That permissive fallback is deliberate: a
// malformed embedding should lose the ranking, not crash retrieval.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
