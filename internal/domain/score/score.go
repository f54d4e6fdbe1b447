// Package score holds the two relevance signals the ranking engine blends:
// length-normalized lexical term overlap and cosine vector similarity.
package score

import (
	"math"

	"github.com/campusfeed/askrank/internal/domain/text"
)

// cosineEpsilon keeps the cosine denominator non-zero for zero vectors.
const cosineEpsilon = 1e-10

// Lexical counts haystack tokens that appear in the query's token set
// (haystack duplicates each count) and normalizes by log2(2 + haystack
// token count) so long documents don't win on volume alone. Returns 0 when
// either side tokenizes to nothing. The result is not clamped to [0,1].
func Lexical(query, haystack string) float64 {
	q := text.Tokenize(query)
	h := text.Tokenize(haystack)
	if len(q) == 0 || len(h) == 0 {
		return 0
	}

	qset := make(map[string]struct{}, len(q))
	for _, t := range q {
		qset[t] = struct{}{}
	}

	hits := 0
	for _, t := range h {
		if _, ok := qset[t]; ok {
			hits++
		}
	}

	return float64(hits) / math.Log2(2+float64(len(h)))
}

// Cosine returns the cosine similarity of a and b, computed in a single
// pass over matching indices. Both vectors must have the same length; the
// embedding client contract guarantees this for vectors from one batch.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + cosineEpsilon)
}
