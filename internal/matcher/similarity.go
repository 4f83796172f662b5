package matcher

import (
	"math"
)

// CosineSimilarity calculates the cosine similarity between two embedding vectors.
// Returns a value between -1.0 (opposite) and 1.0 (identical). Vectors of
// different length, empty vectors and zero vectors yield 0.
func CosineSimilarity(embedding1, embedding2 []float64) float64 {
	if len(embedding1) != len(embedding2) || len(embedding1) == 0 {
		return 0.0
	}

	var dotProduct, norm1, norm2 float64
	for i := range embedding1 {
		dotProduct += embedding1[i] * embedding2[i]
		norm1 += embedding1[i] * embedding1[i]
		norm2 += embedding2[i] * embedding2[i]
	}

	if norm1 == 0 || norm2 == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(norm1) * math.Sqrt(norm2))
}

// CosineDistance is 1 - cosine similarity: 0 for identical directions, 2 for opposite.
func CosineDistance(embedding1, embedding2 []float64) float64 {
	return 1 - CosineSimilarity(embedding1, embedding2)
}

// Confidence maps a distance onto 0..100 with 0 at distance 0.8 and above.
func Confidence(distance float64) int {
	c := (1 - distance/ConfidenceZeroDistance) * 100
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return int(math.Round(c))
}

// RequiredGap returns the separation expected between the best and second
// best candidate. Close matches need less separation than borderline ones.
func RequiredGap(bestDistance, baseGap float64) float64 {
	switch {
	case bestDistance <= 0.35:
		return 0.01
	case bestDistance <= 0.45:
		return 0.02
	case bestDistance <= 0.55:
		return 0.03
	default:
		return baseGap
	}
}
