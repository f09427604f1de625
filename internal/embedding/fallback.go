package embedding

import "log"

// FallbackEmbeddingService wraps a primary EmbeddingService and absorbs its
// failures by serving vectors from a fallback service of the same dimension.
// A provider outage therefore degrades search quality instead of failing the
// load or the query. Every fallback is logged as a warning so the degraded
// mode is visible in operation.
type FallbackEmbeddingService struct {
	Primary  EmbeddingService
	Fallback EmbeddingService
}

// NewFallbackEmbeddingService creates a FallbackEmbeddingService.
func NewFallbackEmbeddingService(primary, fallback EmbeddingService) *FallbackEmbeddingService {
	return &FallbackEmbeddingService{Primary: primary, Fallback: fallback}
}

// Embed returns the primary embedding, or the fallback embedding if the
// primary call fails. It never returns an error from a primary failure.
func (s *FallbackEmbeddingService) Embed(text string) ([]float64, error) {
	vec, err := s.Primary.Embed(text)
	if err != nil {
		log.Printf("[Embedding] primary provider failed, using fallback: %v", err)
		return s.Fallback.Embed(text)
	}
	return vec, nil
}

// EmbedBatch returns primary embeddings, falling back per-batch on failure.
func (s *FallbackEmbeddingService) EmbedBatch(texts []string) ([][]float64, error) {
	vecs, err := s.Primary.EmbedBatch(texts)
	if err != nil {
		log.Printf("[Embedding] primary provider failed, using fallback: %v", err)
		return s.Fallback.EmbedBatch(texts)
	}
	return vecs, nil
}

// NewService selects the embedding strategy at construction time: with an
// API key configured it returns the API client wrapped with the
// deterministic fallback; without one it returns the fallback alone.
func NewService(endpoint, apiKey, modelName string, dimension int) EmbeddingService {
	mock := NewMockEmbeddingService(dimension)
	if apiKey == "" {
		log.Printf("[Embedding] no API key configured, running in degraded mode with deterministic embeddings")
		return mock
	}
	return NewFallbackEmbeddingService(NewAPIEmbeddingService(endpoint, apiKey, modelName), mock)
}
