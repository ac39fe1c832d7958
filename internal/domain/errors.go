package domain

import "errors"

// Sentinel errors for pipeline stage failures. The transport layer maps
// these to HTTP status codes with errors.Is.
var (
	// ErrVectorStoreUnavailable signals that the vector index cannot be reached.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMProviderError signals a chat completion provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrRerankProviderError signals a reranking provider failure.
	ErrRerankProviderError = errors.New("rerank provider error")
	// ErrSessionStoreError signals a chat history storage failure.
	ErrSessionStoreError = errors.New("session store error")
)
