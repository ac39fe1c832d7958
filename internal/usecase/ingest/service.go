// Package ingest turns submitted text into embedded chunks in the
// vector store and reports the processing outcome.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/logger"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/schema"
)

// DefaultTitle is used when the request has no title and the text has
// no leading heading.
const DefaultTitle = "Untitled Document"

// Service coordinates document ingestion.
type Service struct {
	embedder domain.Embedder
	writer   ChunkWriter
	chunker  *Chunker
}

// New creates an ingestion service.
func New(embedder domain.Embedder, writer ChunkWriter, chunker *Chunker) *Service {
	if chunker == nil {
		chunker = NewChunker(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &Service{embedder: embedder, writer: writer, chunker: chunker}
}

// Process chunks, embeds, and stores the submitted text, returning the
// ingestion receipt with the measured processing time.
func (s *Service) Process(ctx context.Context, req schema.TextProcessRequest) (schema.DocumentUploadResponse, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	docID := uuid.NewString()
	title := req.Title
	if title == "" {
		title = deriveTitle(req.Text)
	}

	pieces := s.chunker.Split(req.Text)
	createdAt := schema.FormatTimestamp(time.Now())

	stored := make([]domain.StoredChunk, 0, len(pieces))
	for _, piece := range pieces {
		result, err := s.embedder.Embed(ctx, piece.Text)
		if err != nil {
			return schema.DocumentUploadResponse{}, fmt.Errorf("embed chunk: %w", err)
		}
		stored = append(stored, domain.StoredChunk{
			Text:   piece.Text,
			Vector: result.Embedding,
			Metadata: schema.ChunkMetadata{
				Source:    docID,
				Title:     title,
				Section:   piece.Section,
				ChunkID:   uuid.NewString(),
				Links:     ExtractLinks(piece.Text),
				Images:    ExtractImages(piece.Text),
				CreatedAt: createdAt,
			},
		})
	}

	if err := s.writer.UpsertChunks(ctx, stored); err != nil {
		return schema.DocumentUploadResponse{}, fmt.Errorf("store chunks: %w", err)
	}

	links := ExtractLinks(req.Text)
	images := ExtractImages(req.Text)

	metrics.DocumentsIngestedTotal.Inc()
	metrics.ChunksCreatedTotal.Add(float64(len(stored)))

	log.Info("document ingested",
		zap.String("document_id", docID),
		zap.String("title", title),
		zap.Int("chunks", len(stored)),
		zap.Duration("took", time.Since(start)),
	)

	return schema.DocumentUploadResponse{
		Success:          true,
		DocumentID:       docID,
		Title:            title,
		ChunksCreated:    len(stored),
		LinksExtracted:   len(links),
		ImagesExtracted:  len(images),
		ProcessingTimeMS: float64(time.Since(start).Microseconds()) / 1000,
	}, nil
}

// deriveTitle takes the first markdown heading, or the first line
// truncated, or the fallback title.
func deriveTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := headingLine.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[2])
		}
		if len(line) > 80 {
			line = strings.TrimSpace(line[:80])
		}
		return line
	}
	return DefaultTitle
}
