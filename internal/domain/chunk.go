package domain

import "github.com/kailas-cloud/ragdex/internal/schema"

// StoredChunk is a chunk ready to be written to the vector store:
// its text, embedding vector, and provenance metadata.
type StoredChunk struct {
	Text     string
	Vector   []float32
	Metadata schema.ChunkMetadata
}
