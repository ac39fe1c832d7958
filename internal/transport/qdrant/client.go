// Package qdrant is a minimal REST client for the Qdrant vector store,
// covering the collection, upsert, and search surface the pipeline needs.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/schema"
)

// Client talks to one Qdrant collection.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	collection string
	logger     *zap.Logger
}

// Config holds the vector store settings.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// New creates a Qdrant client.
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		logger:     cfg.Logger,
	}
}

// Ping checks that the Qdrant instance is reachable.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthz returned %d: %w", resp.StatusCode, domain.ErrVectorStoreUnavailable)
	}
	return nil
}

// EnsureCollection creates the collection with the given vector size if
// it does not exist yet. Cosine distance matches the embedding model's
// normalized vectors.
func (c *Client) EnsureCollection(ctx context.Context, dimensions int) error {
	resp, err := c.do(ctx, http.MethodGet, "/collections/"+c.collection, nil)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("get collection returned %d: %w", resp.StatusCode, domain.ErrVectorStoreUnavailable)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	resp, err = c.do(ctx, http.MethodPut, "/collections/"+c.collection, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp, "create collection")
	}

	c.logger.Info("Created vector collection",
		zap.String("collection", c.collection),
		zap.Int("dimensions", dimensions),
	)
	return nil
}

type upsertRequest struct {
	Points []point `json:"points"`
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// UpsertChunks writes chunks to the collection. Chunk IDs double as
// point IDs, so re-ingesting a chunk overwrites it.
func (c *Client) UpsertChunks(ctx context.Context, chunks []domain.StoredChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]point, len(chunks))
	for i, chunk := range chunks {
		points[i] = point{
			ID:      chunk.Metadata.ChunkID,
			Vector:  chunk.Vector,
			Payload: payloadFromChunk(chunk),
		}
	}

	resp, err := c.do(ctx, http.MethodPut,
		"/collections/"+c.collection+"/points?wait=true", upsertRequest{Points: points})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp, "upsert points")
	}
	return nil
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		ID      string          `json:"id"`
		Score   float64         `json:"score"`
		Payload json.RawMessage `json:"payload"`
	} `json:"result"`
}

// Search returns the topK most similar chunks, best first. Scores are
// the raw vector-similarity signal, pre-reranking.
func (c *Client) Search(ctx context.Context, vector []float32, topK int) ([]schema.RetrievedChunk, error) {
	resp, err := c.do(ctx, http.MethodPost,
		"/collections/"+c.collection+"/points/search",
		searchRequest{Vector: vector, Limit: topK, WithPayload: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp, "search points")
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %v: %w", err, domain.ErrVectorStoreUnavailable)
	}

	chunks := make([]schema.RetrievedChunk, 0, len(parsed.Result))
	for _, hit := range parsed.Result {
		chunk, err := chunkFromHit(hit.ID, hit.Score, hit.Payload)
		if err != nil {
			c.logger.Warn("Skipping malformed search hit", zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

type payload struct {
	Text      string   `json:"text"`
	Source    string   `json:"source"`
	Title     string   `json:"title"`
	Section   string   `json:"section,omitempty"`
	ChunkID   string   `json:"chunk_id"`
	Links     []string `json:"links"`
	Images    []string `json:"images"`
	CreatedAt string   `json:"created_at"`
}

func payloadFromChunk(chunk domain.StoredChunk) map[string]any {
	p := map[string]any{
		"text":       chunk.Text,
		"source":     chunk.Metadata.Source,
		"title":      chunk.Metadata.Title,
		"chunk_id":   chunk.Metadata.ChunkID,
		"links":      chunk.Metadata.Links,
		"images":     chunk.Metadata.Images,
		"created_at": chunk.Metadata.CreatedAt,
	}
	if chunk.Metadata.Section != "" {
		p["section"] = chunk.Metadata.Section
	}
	return p
}

func chunkFromHit(id string, score float64, raw json.RawMessage) (schema.RetrievedChunk, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return schema.RetrievedChunk{}, fmt.Errorf("decode payload: %w", err)
	}
	if p.ChunkID == "" {
		p.ChunkID = id
	}
	return schema.RetrievedChunk{
		ChunkID: p.ChunkID,
		Text:    p.Text,
		Score:   score,
		Metadata: schema.ChunkMetadata{
			Source:    p.Source,
			Title:     p.Title,
			Section:   p.Section,
			ChunkID:   p.ChunkID,
			Links:     emptyIfNil(p.Links),
			Images:    emptyIfNil(p.Images),
			CreatedAt: p.CreatedAt,
		},
	}, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %v: %w", method, path, err, domain.ErrVectorStoreUnavailable)
	}
	return resp, nil
}

func readAPIError(resp *http.Response, op string) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s returned %d: %s: %w",
		op, resp.StatusCode, string(detail), domain.ErrVectorStoreUnavailable)
}
