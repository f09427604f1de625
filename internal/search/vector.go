package search

import (
	"encoding/json"
	"math"
)

// EncodeVector serializes a vector as a JSON array for text-column storage.
// The encoding round-trips through DecodeVector to the same values.
func EncodeVector(vec []float64) (string, error) {
	data, err := json.Marshal(vec)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeVector parses a JSON-encoded vector. An empty string decodes to an
// empty vector rather than an error, matching rows loaded without an
// embedding.
func DecodeVector(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	var vec []float64
	if err := json.Unmarshal([]byte(s), &vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Vectors of mismatched length, and vectors with zero magnitude, score 0:
// similarity is undefined there and a no-match is the useful answer.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
