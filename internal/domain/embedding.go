package domain

import "context"

// EmbeddingResult holds a vector and the token usage it cost.
// Cache hits report zero tokens.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by providers that can verify their own availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
