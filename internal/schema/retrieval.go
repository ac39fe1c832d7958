package schema

import (
	"encoding/json"
	"time"
)

// ChunkMetadata is the provenance of a text chunk as stored next to its
// vector. Never exposed to external callers directly except as embedded
// data in query responses.
type ChunkMetadata struct {
	Source    string   `json:"source"`
	Title     string   `json:"title"`
	Section   string   `json:"section,omitempty"`
	ChunkID   string   `json:"chunk_id"`
	Links     []string `json:"links"`
	Images    []string `json:"images"`
	CreatedAt string   `json:"created_at"`
}

type chunkMetadataWire struct {
	Source    *string  `json:"source"`
	Title     *string  `json:"title"`
	Section   *string  `json:"section"`
	ChunkID   *string  `json:"chunk_id"`
	Links     []string `json:"links"`
	Images    []string `json:"images"`
	CreatedAt *string  `json:"created_at"`
}

// ParseChunkMetadata validates raw JSON into a ChunkMetadata, stamping
// absent created_at with the current time.
func ParseChunkMetadata(data []byte) (ChunkMetadata, error) {
	return ParseChunkMetadataAt(data, time.Now().UTC())
}

// ParseChunkMetadataAt is ParseChunkMetadata with an explicit instant
// for the created_at default, keeping construction deterministic.
func ParseChunkMetadataAt(data []byte, now time.Time) (ChunkMetadata, error) {
	var w chunkMetadataWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return ChunkMetadata{}, err
	}

	if w.Source == nil {
		v.missing("source")
	}
	if w.Title == nil {
		v.missing("title")
	}
	if w.ChunkID == nil {
		v.missing("chunk_id")
	}
	if err := v.err(); err != nil {
		return ChunkMetadata{}, err
	}

	m := ChunkMetadata{
		Source:    *w.Source,
		Title:     *w.Title,
		ChunkID:   *w.ChunkID,
		Links:     emptyIfNil(w.Links),
		Images:    emptyIfNil(w.Images),
		CreatedAt: FormatTimestamp(now),
	}
	if w.Section != nil {
		m.Section = *w.Section
	}
	if w.CreatedAt != nil {
		m.CreatedAt = *w.CreatedAt
	}
	return m, nil
}

// RetrievedChunk is a chunk surfaced by similarity search, before
// reranking. Score is the raw vector-similarity signal. Metadata is
// owned by value: downstream copies never alias this record.
type RetrievedChunk struct {
	ChunkID  string        `json:"chunk_id"`
	Text     string        `json:"text"`
	Score    float64       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
}

type retrievedChunkWire struct {
	ChunkID  *string         `json:"chunk_id"`
	Text     *string         `json:"text"`
	Score    *float64        `json:"score"`
	Metadata json.RawMessage `json:"metadata"`
}

// ParseRetrievedChunk validates raw JSON into a RetrievedChunk.
func ParseRetrievedChunk(data []byte) (RetrievedChunk, error) {
	var w retrievedChunkWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return RetrievedChunk{}, err
	}

	if w.ChunkID == nil {
		v.missing("chunk_id")
	}
	if w.Text == nil {
		v.missing("text")
	}
	if w.Score == nil {
		v.missing("score")
	}
	var meta ChunkMetadata
	if len(w.Metadata) == 0 || string(w.Metadata) == "null" {
		v.missing("metadata")
	} else {
		m, err := ParseChunkMetadata(w.Metadata)
		if err != nil {
			v.nested("metadata", err)
		} else {
			meta = m
		}
	}
	if err := v.err(); err != nil {
		return RetrievedChunk{}, err
	}

	return RetrievedChunk{
		ChunkID:  *w.ChunkID,
		Text:     *w.Text,
		Score:    *w.Score,
		Metadata: meta,
	}, nil
}

// RerankedChunk is a chunk after the secondary reranking pass.
// Score is the reranker score; OriginalScore preserves the prior vector
// similarity for audit, and reranking must never overwrite it.
type RerankedChunk struct {
	ChunkID       string        `json:"chunk_id"`
	Text          string        `json:"text"`
	Score         float64       `json:"score"`
	OriginalScore float64       `json:"original_score"`
	Metadata      ChunkMetadata `json:"metadata"`
}

type rerankedChunkWire struct {
	ChunkID       *string         `json:"chunk_id"`
	Text          *string         `json:"text"`
	Score         *float64        `json:"score"`
	OriginalScore *float64        `json:"original_score"`
	Metadata      json.RawMessage `json:"metadata"`
}

// ParseRerankedChunk validates raw JSON into a RerankedChunk.
func ParseRerankedChunk(data []byte) (RerankedChunk, error) {
	var w rerankedChunkWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return RerankedChunk{}, err
	}

	if w.ChunkID == nil {
		v.missing("chunk_id")
	}
	if w.Text == nil {
		v.missing("text")
	}
	if w.Score == nil {
		v.missing("score")
	}
	if w.OriginalScore == nil {
		v.missing("original_score")
	}
	var meta ChunkMetadata
	if len(w.Metadata) == 0 || string(w.Metadata) == "null" {
		v.missing("metadata")
	} else {
		m, err := ParseChunkMetadata(w.Metadata)
		if err != nil {
			v.nested("metadata", err)
		} else {
			meta = m
		}
	}
	if err := v.err(); err != nil {
		return RerankedChunk{}, err
	}

	return RerankedChunk{
		ChunkID:       *w.ChunkID,
		Text:          *w.Text,
		Score:         *w.Score,
		OriginalScore: *w.OriginalScore,
		Metadata:      meta,
	}, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
