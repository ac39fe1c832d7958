// Package cohere adapts the Cohere v2 rerank API to the reranking port
// of the query pipeline.
package cohere

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
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/schema"
)

const rerankPath = "/v2/rerank"

// Reranker scores retrieved chunks against the query with a Cohere
// rerank model.
type Reranker struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *zap.Logger
}

// Config holds the reranker settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates a Cohere reranker.
func New(cfg *Config) *Reranker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Reranker{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     cfg.Logger,
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank scores chunks against the query and returns the topN best,
// ordered by reranker score descending. Each result keeps the chunk's
// vector-similarity score as OriginalScore and copies the metadata by
// value, so mutating a reranked chunk never touches the retrieved one.
func (r *Reranker) Rerank(
	ctx context.Context,
	query string,
	chunks []schema.RetrievedChunk,
	topN int,
) ([]schema.RerankedChunk, error) {
	if len(chunks) == 0 {
		return []schema.RerankedChunk{}, nil
	}

	docs := make([]string, len(chunks))
	for i, c := range chunks {
		docs[i] = c.Text
	}

	body, err := json.Marshal(rerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: docs,
		TopN:      topN,
	})
	if err != nil {
		return nil, fmt.Errorf("encode rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+rerankPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		metrics.RerankRequestsTotal.WithLabelValues(r.model, "error").Inc()
		return nil, fmt.Errorf("rerank request: %v: %w", err, domain.ErrRerankProviderError)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RerankRequestsTotal.WithLabelValues(r.model, "error").Inc()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("rerank API error %d: %s: %w",
			resp.StatusCode, string(detail), domain.ErrRerankProviderError)
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.RerankRequestsTotal.WithLabelValues(r.model, "error").Inc()
		return nil, fmt.Errorf("decode rerank response: %v: %w", err, domain.ErrRerankProviderError)
	}

	metrics.RerankRequestsTotal.WithLabelValues(r.model, "success").Inc()

	reranked := make([]schema.RerankedChunk, 0, len(parsed.Results))
	for _, res := range parsed.Results {
		if res.Index < 0 || res.Index >= len(chunks) {
			r.logger.Warn("rerank result index out of range",
				zap.Int("index", res.Index), zap.Int("documents", len(chunks)))
			continue
		}
		src := chunks[res.Index]
		reranked = append(reranked, schema.RerankedChunk{
			ChunkID:       src.ChunkID,
			Text:          src.Text,
			Score:         res.RelevanceScore,
			OriginalScore: src.Score,
			Metadata:      src.Metadata,
		})
	}
	return reranked, nil
}
