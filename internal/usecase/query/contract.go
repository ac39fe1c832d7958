package query

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/schema"
)

// Retriever finds the chunks most similar to a query embedding.
type Retriever interface {
	Search(ctx context.Context, vector []float32, limit int) ([]schema.RetrievedChunk, error)
}

// Reranker reorders retrieved chunks by relevance to the query text.
type Reranker interface {
	Rerank(ctx context.Context, query string, chunks []schema.RetrievedChunk, topN int) ([]schema.RerankedChunk, error)
}

// Generator produces an answer from the prompt and conversation.
type Generator interface {
	Generate(ctx context.Context, system string, history []schema.ChatMessage, query string) (domain.Generation, error)
}

// HistoryStore persists per-session conversation turns.
type HistoryStore interface {
	Load(ctx context.Context, sessionID string) ([]schema.ChatMessage, error)
	Append(ctx context.Context, sessionID string, turns ...schema.ChatMessage) error
}
