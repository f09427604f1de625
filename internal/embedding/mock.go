package embedding

import "hash/fnv"

// MockEmbeddingService produces deterministic pseudo-random vectors of a
// fixed dimension, seeded from a hash of the input text. It preserves the
// shape contract of a real embedding provider but carries no semantic
// signal: it exists as an explicit degraded mode for running without API
// credentials, and as a stable test double. The same text always yields the
// same vector.
type MockEmbeddingService struct {
	Dimension int
}

// NewMockEmbeddingService creates a MockEmbeddingService producing vectors
// of the given dimension.
func NewMockEmbeddingService(dimension int) *MockEmbeddingService {
	return &MockEmbeddingService{Dimension: dimension}
}

// Embed returns a deterministic pseudo-random vector for text.
func (s *MockEmbeddingService) Embed(text string) ([]float64, error) {
	return deterministicVector(text, s.Dimension), nil
}

// EmbedBatch returns a deterministic pseudo-random vector for each text.
func (s *MockEmbeddingService) EmbedBatch(texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text, s.Dimension)
	}
	return vectors, nil
}

// deterministicVector generates a pseudo-random vector from an FNV hash of
// the text, using a linear congruential generator so repeated calls agree.
func deterministicVector(text string, dim int) []float64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float64, dim)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float64(seed%2000)/1000.0 - 1.0
	}
	return vec
}
