// Package similarity provides vector similarity math for ranking.
package similarity

import (
	"fmt"
	"math"
)

// ErrDimensionMismatch indicates two vectors cannot be compared.
type ErrDimensionMismatch struct {
	LenA int
	LenB int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vector dimension mismatch: %d vs %d", e.LenA, e.LenB)
}

// Cosine computes the cosine similarity between two vectors of equal,
// non-zero length. A zero-norm input yields 0.0 rather than NaN so that
// downstream sorting stays total and deterministic.
func Cosine(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, &ErrDimensionMismatch{LenA: len(a), LenB: len(b)}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
