// Package query answers user questions over the ingested corpus,
// combining retrieval, reranking, and generation into one response.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/logger"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/schema"
)

const sourceSnippetLen = 200

// Options tune the retrieval pipeline.
type Options struct {
	TopK     int     // candidates fetched from the vector store
	TopN     int     // chunks kept after reranking
	MinScore float64 // rerank score below which a chunk is dropped
}

// Service runs the query pipeline end to end.
type Service struct {
	embedder  domain.Embedder
	retriever Retriever
	reranker  Reranker
	generator Generator
	history   HistoryStore
	opts      Options
}

// New creates a query service. The history store may be nil, in which
// case sessions are still minted but conversation turns are not kept.
func New(embedder domain.Embedder, retriever Retriever, reranker Reranker, generator Generator, history HistoryStore, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 20
	}
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	return &Service{
		embedder:  embedder,
		retriever: retriever,
		reranker:  reranker,
		generator: generator,
		history:   history,
		opts:      opts,
	}
}

// Answer resolves a query request into a full response with sources,
// stage timings, and token usage.
func (s *Service) Answer(ctx context.Context, req schema.QueryRequest) (schema.QueryResponse, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	history := req.ChatHistory
	if len(history) == 0 && req.SessionID != "" && s.history != nil {
		loaded, err := s.history.Load(ctx, sessionID)
		if err != nil {
			log.Warn("load session history", zap.String("session_id", sessionID), zap.Error(err))
		} else {
			history = loaded
		}
	}

	// Retrieval stage covers embedding the query and the vector search.
	retrievalStart := time.Now()
	emb, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return schema.QueryResponse{}, fmt.Errorf("embed query: %w", err)
	}
	candidates, err := s.retriever.Search(ctx, emb.Embedding, s.opts.TopK)
	if err != nil {
		return schema.QueryResponse{}, fmt.Errorf("search: %w", err)
	}
	retrievalMS := elapsedMS(retrievalStart)
	metrics.PipelineStageDuration.WithLabelValues("retrieval").Observe(time.Since(retrievalStart).Seconds())

	rerankStart := time.Now()
	reranked, err := s.reranker.Rerank(ctx, req.Query, candidates, s.opts.TopN)
	if err != nil {
		return schema.QueryResponse{}, fmt.Errorf("rerank: %w", err)
	}
	rerankMS := elapsedMS(rerankStart)
	metrics.PipelineStageDuration.WithLabelValues("rerank").Observe(time.Since(rerankStart).Seconds())

	kept := reranked[:0:len(reranked)]
	for _, c := range reranked {
		if c.Score >= s.opts.MinScore {
			kept = append(kept, c)
		}
	}
	hasContext := len(kept) > 0

	system := generalSystemPrompt
	if hasContext {
		system = buildContextPrompt(kept)
	}

	llmStart := time.Now()
	gen, err := s.generator.Generate(ctx, system, history, req.Query)
	if err != nil {
		return schema.QueryResponse{}, fmt.Errorf("generate: %w", err)
	}
	llmMS := elapsedMS(llmStart)
	metrics.PipelineStageDuration.WithLabelValues("llm").Observe(time.Since(llmStart).Seconds())

	if hasContext {
		metrics.QueriesTotal.WithLabelValues("grounded").Inc()
	} else {
		metrics.QueriesTotal.WithLabelValues("general").Inc()
	}

	sources := make([]schema.SourceReference, 0, len(kept))
	for i, c := range kept {
		sources = append(sources, schema.SourceReference{
			ID:       i + 1,
			Text:     snippet(c.Text, sourceSnippetLen),
			Document: c.Metadata.Title,
			Links:    c.Metadata.Links,
			Images:   c.Metadata.Images,
			Score:    c.Score,
			ChunkID:  c.Metadata.ChunkID,
			Section:  c.Metadata.Section,
		})
	}

	resp := schema.QueryResponse{
		Answer:     gen.Answer,
		Sources:    sources,
		HasContext: hasContext,
		Timing: schema.TimingInfo{
			RetrievalMS: retrievalMS,
			RerankMS:    rerankMS,
			LLMMS:       llmMS,
		},
		TokenUsage: gen.Usage,
		SessionID:  sessionID,
	}
	if !hasContext {
		resp.GeneralAnswer = gen.Answer
	}

	if s.history != nil {
		turns := []schema.ChatMessage{
			{Role: schema.RoleUser, Content: req.Query},
			{Role: schema.RoleAssistant, Content: gen.Answer},
		}
		if err := s.history.Append(ctx, sessionID, turns...); err != nil {
			log.Warn("append session history", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	resp.Timing.TotalMS = elapsedMS(start)

	log.Info("query answered",
		zap.String("session_id", sessionID),
		zap.Bool("has_context", hasContext),
		zap.Int("sources", len(sources)),
		zap.Float64("total_ms", resp.Timing.TotalMS),
	)
	return resp, nil
}

func elapsedMS(since time.Time) float64 {
	return float64(time.Since(since).Microseconds()) / 1000
}
