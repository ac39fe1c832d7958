// Package health reports service readiness and upstream connectivity.
package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/logger"
	"github.com/kailas-cloud/ragdex/internal/schema"
)

// VectorStorePinger checks vector store reachability.
type VectorStorePinger interface {
	Ping(ctx context.Context) error
}

// Service assembles health snapshots.
type Service struct {
	vectorStore      VectorStorePinger
	openAIConfigured bool
	cohereConfigured bool
}

// New creates a health service. The configured flags reflect whether
// provider credentials were supplied at startup.
func New(vectorStore VectorStorePinger, openAIConfigured, cohereConfigured bool) *Service {
	return &Service{
		vectorStore:      vectorStore,
		openAIConfigured: openAIConfigured,
		cohereConfigured: cohereConfigured,
	}
}

// Check probes the dependencies and returns the current snapshot.
// Unreachable upstreams degrade the status instead of failing the call.
func (s *Service) Check(ctx context.Context) schema.HealthResponse {
	qdrantUp := false
	if s.vectorStore != nil {
		if err := s.vectorStore.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn("vector store ping", zap.Error(err))
		} else {
			qdrantUp = true
		}
	}

	status := "ok"
	if !qdrantUp || !s.openAIConfigured || !s.cohereConfigured {
		status = "degraded"
	}

	return schema.HealthResponse{
		Status:           status,
		QdrantConnected:  qdrantUp,
		OpenAIConfigured: s.openAIConfigured,
		CohereConfigured: s.cohereConfigured,
		Timestamp:        schema.FormatTimestamp(time.Now()),
	}
}
