// Package httpapi exposes the ingestion and query pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/schema"
)

// Error response codes.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeProviderError    = "provider_error"
	CodeVectorStoreDown  = "vector_store_unavailable"
	CodeSessionStoreDown = "session_store_unavailable"
	CodeInternalError    = "internal_error"
)

// DocumentService ingests raw text into the chunk store.
type DocumentService interface {
	Process(ctx context.Context, req schema.TextProcessRequest) (schema.DocumentUploadResponse, error)
}

// QueryService answers questions over the ingested corpus.
type QueryService interface {
	Answer(ctx context.Context, req schema.QueryRequest) (schema.QueryResponse, error)
}

// HealthService reports upstream connectivity.
type HealthService interface {
	Check(ctx context.Context) schema.HealthResponse
}

// SessionService removes stored conversation history.
type SessionService interface {
	Delete(ctx context.Context, sessionID string) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server wires the use case services into HTTP handlers.
type Server struct {
	documents     DocumentService
	queries       QueryService
	health        HealthService
	sessions      SessionService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(documents DocumentService, queries QueryService, health HealthService, sessions SessionService, logger *zap.Logger) *Server {
	s := &Server{
		documents: documents,
		queries:   queries,
		health:    health,
		sessions:  sessions,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrVectorStoreUnavailable, http.StatusServiceUnavailable, CodeVectorStoreDown),
		sentinelHandler(domain.ErrSessionStoreError, http.StatusServiceUnavailable, CodeSessionStoreDown),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeProviderError),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, CodeProviderError),
		sentinelHandler(domain.ErrRerankProviderError, http.StatusBadGateway, CodeProviderError),
	}
	return s
}

// Routes mounts all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/documents", s.ProcessDocument)
	r.Post("/query", s.Query)
	r.Delete("/sessions/{sessionID}", s.DeleteSession)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// ProcessDocument handles POST /documents.
func (s *Server) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := schema.ParseTextProcessRequest(body)
	if err != nil {
		s.writeParseError(w, err)
		return
	}

	resp, err := s.documents.Process(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := schema.ParseQueryRequest(body)
	if err != nil {
		s.writeParseError(w, err)
		return
	}

	resp, err := s.queries.Answer(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteSession handles DELETE /sessions/{sessionID}, clearing the
// stored conversation history for that session.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.sessions.Delete(r.Context(), sessionID); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health. Always 200: degradation is reported
// through the body, not the status code.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Check(r.Context()))
}

// writeParseError maps schema validation failures to a 400 carrying the
// full violation list; anything else is a malformed body.
func (s *Server) writeParseError(w http.ResponseWriter, err error) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:       CodeValidationFailed,
			Message:    "request validation failed",
			Violations: verr.Violations,
		})
		return
	}
	writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrVectorStoreUnavailable,
		domain.ErrEmbeddingProviderError,
		domain.ErrLLMProviderError,
		domain.ErrRerankProviderError,
		domain.ErrSessionStoreError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

type errorResponse struct {
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	Violations []schema.Violation `json:"violations,omitempty"`
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	var buf json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
