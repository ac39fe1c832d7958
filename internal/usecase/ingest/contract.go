package ingest

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// ChunkWriter persists embedded chunks in the vector store.
type ChunkWriter interface {
	UpsertChunks(ctx context.Context, chunks []domain.StoredChunk) error
}
