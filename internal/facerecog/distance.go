package facerecog

import "math"

// EncodingDistance computes the cosine distance between two face encodings
// (0 = identical). Vectors of different lengths are truncated to the
// shorter one so encodings from older gallery versions stay comparable.
// Degenerate vectors yield the maximum meaningful distance of 1.
func EncodingDistance(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 1.0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1.0
	}
	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
