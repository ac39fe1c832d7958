package schema

import (
	"encoding/json"
	"fmt"
)

// SourceReference is a citation surfaced to the end user. ID is the [n]
// citation marker embedded in the answer text; ids are dense and
// sequential within one response, starting at 1.
type SourceReference struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Document string   `json:"document"`
	Links    []string `json:"links"`
	Images   []string `json:"images"`
	Score    float64  `json:"score"`
	ChunkID  string   `json:"chunk_id,omitempty"`
	Section  string   `json:"section,omitempty"`
}

type sourceReferenceWire struct {
	ID       *int     `json:"id"`
	Text     *string  `json:"text"`
	Document *string  `json:"document"`
	Links    []string `json:"links"`
	Images   []string `json:"images"`
	Score    *float64 `json:"score"`
	ChunkID  *string  `json:"chunk_id"`
	Section  *string  `json:"section"`
}

// ParseSourceReference validates raw JSON into a SourceReference.
func ParseSourceReference(data []byte) (SourceReference, error) {
	var w sourceReferenceWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return SourceReference{}, err
	}

	switch {
	case w.ID == nil:
		v.missing("id")
	case *w.ID < 1:
		v.add("id", "must be a positive integer", *w.ID)
	}
	if w.Text == nil {
		v.missing("text")
	}
	if w.Document == nil {
		v.missing("document")
	}
	if w.Score == nil {
		v.missing("score")
	}
	if err := v.err(); err != nil {
		return SourceReference{}, err
	}

	ref := SourceReference{
		ID:       *w.ID,
		Text:     *w.Text,
		Document: *w.Document,
		Links:    emptyIfNil(w.Links),
		Images:   emptyIfNil(w.Images),
		Score:    *w.Score,
	}
	if w.ChunkID != nil {
		ref.ChunkID = *w.ChunkID
	}
	if w.Section != nil {
		ref.Section = *w.Section
	}
	return ref, nil
}

// TimingInfo is the per-stage latency breakdown of one query.
// TotalMS covers the whole request and is never less than the sum of
// the stage times (unaccounted overhead is allowed).
type TimingInfo struct {
	RetrievalMS float64 `json:"retrieval_ms"`
	RerankMS    float64 `json:"rerank_ms"`
	LLMMS       float64 `json:"llm_ms"`
	TotalMS     float64 `json:"total_ms"`
}

type timingInfoWire struct {
	RetrievalMS *float64 `json:"retrieval_ms"`
	RerankMS    *float64 `json:"rerank_ms"`
	LLMMS       *float64 `json:"llm_ms"`
	TotalMS     *float64 `json:"total_ms"`
}

// ParseTimingInfo validates raw JSON into a TimingInfo.
func ParseTimingInfo(data []byte) (TimingInfo, error) {
	var w timingInfoWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return TimingInfo{}, err
	}

	requireDuration(&v, "retrieval_ms", w.RetrievalMS)
	requireDuration(&v, "rerank_ms", w.RerankMS)
	requireDuration(&v, "llm_ms", w.LLMMS)
	requireDuration(&v, "total_ms", w.TotalMS)
	if w.RetrievalMS != nil && w.RerankMS != nil && w.LLMMS != nil && w.TotalMS != nil {
		sum := *w.RetrievalMS + *w.RerankMS + *w.LLMMS
		if *w.TotalMS < sum {
			v.add("total_ms", "must be at least the sum of stage times", *w.TotalMS)
		}
	}
	if err := v.err(); err != nil {
		return TimingInfo{}, err
	}

	return TimingInfo{
		RetrievalMS: *w.RetrievalMS,
		RerankMS:    *w.RerankMS,
		LLMMS:       *w.LLMMS,
		TotalMS:     *w.TotalMS,
	}, nil
}

func requireDuration(v *violations, field string, val *float64) {
	switch {
	case val == nil:
		v.missing(field)
	case *val < 0:
		v.add(field, "must be non-negative", *val)
	}
}

// TokenUsage is the LLM cost accounting for one query.
type TokenUsage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

type tokenUsageWire struct {
	PromptTokens     *int     `json:"prompt_tokens"`
	CompletionTokens *int     `json:"completion_tokens"`
	TotalTokens      *int     `json:"total_tokens"`
	EstimatedCostUSD *float64 `json:"estimated_cost_usd"`
}

// ParseTokenUsage validates raw JSON into a TokenUsage.
// total_tokens must equal prompt_tokens + completion_tokens.
func ParseTokenUsage(data []byte) (TokenUsage, error) {
	var w tokenUsageWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return TokenUsage{}, err
	}

	requireCount(&v, "prompt_tokens", w.PromptTokens)
	requireCount(&v, "completion_tokens", w.CompletionTokens)
	requireCount(&v, "total_tokens", w.TotalTokens)
	switch {
	case w.EstimatedCostUSD == nil:
		v.missing("estimated_cost_usd")
	case *w.EstimatedCostUSD < 0:
		v.add("estimated_cost_usd", "must be non-negative", *w.EstimatedCostUSD)
	}
	if w.PromptTokens != nil && w.CompletionTokens != nil && w.TotalTokens != nil {
		if *w.TotalTokens != *w.PromptTokens+*w.CompletionTokens {
			v.add("total_tokens", "must equal prompt_tokens + completion_tokens", *w.TotalTokens)
		}
	}
	if err := v.err(); err != nil {
		return TokenUsage{}, err
	}

	return TokenUsage{
		PromptTokens:     *w.PromptTokens,
		CompletionTokens: *w.CompletionTokens,
		TotalTokens:      *w.TotalTokens,
		EstimatedCostUSD: *w.EstimatedCostUSD,
	}, nil
}

// QueryResponse is the full answer to a query. Answer may embed [n]
// citation markers pointing into Sources. When HasContext is false the
// pipeline leaves Sources empty and sets GeneralAnswer instead.
type QueryResponse struct {
	Answer        string            `json:"answer"`
	Sources       []SourceReference `json:"sources"`
	HasContext    bool              `json:"has_context"`
	GeneralAnswer string            `json:"general_answer,omitempty"`
	Timing        TimingInfo        `json:"timing"`
	TokenUsage    *TokenUsage       `json:"token_usage,omitempty"`
	SessionID     string            `json:"session_id,omitempty"`
}

type queryResponseWire struct {
	Answer        *string           `json:"answer"`
	Sources       []json.RawMessage `json:"sources"`
	HasContext    *bool             `json:"has_context"`
	GeneralAnswer *string           `json:"general_answer"`
	Timing        json.RawMessage   `json:"timing"`
	TokenUsage    json.RawMessage   `json:"token_usage"`
	SessionID     *string           `json:"session_id"`
}

// ParseQueryResponse validates raw JSON into a QueryResponse.
// Citation ids in sources must be dense and sequential starting at 1.
func ParseQueryResponse(data []byte) (QueryResponse, error) {
	var w queryResponseWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return QueryResponse{}, err
	}

	if w.Answer == nil {
		v.missing("answer")
	}
	if w.HasContext == nil {
		v.missing("has_context")
	}

	sources := make([]SourceReference, 0, len(w.Sources))
	for i, raw := range w.Sources {
		ref, err := ParseSourceReference(raw)
		if err != nil {
			v.nested(fmt.Sprintf("sources[%d]", i), err)
			continue
		}
		sources = append(sources, ref)
	}
	for i, ref := range sources {
		if ref.ID != i+1 {
			v.add("sources", "citation ids must be sequential starting at 1", ref.ID)
			break
		}
	}

	var timing TimingInfo
	if len(w.Timing) == 0 || string(w.Timing) == "null" {
		v.missing("timing")
	} else {
		t, err := ParseTimingInfo(w.Timing)
		if err != nil {
			v.nested("timing", err)
		} else {
			timing = t
		}
	}

	var usage *TokenUsage
	if len(w.TokenUsage) > 0 && string(w.TokenUsage) != "null" {
		u, err := ParseTokenUsage(w.TokenUsage)
		if err != nil {
			v.nested("token_usage", err)
		} else {
			usage = &u
		}
	}
	if err := v.err(); err != nil {
		return QueryResponse{}, err
	}

	resp := QueryResponse{
		Answer:     *w.Answer,
		Sources:    sources,
		HasContext: *w.HasContext,
		Timing:     timing,
		TokenUsage: usage,
	}
	if w.GeneralAnswer != nil {
		resp.GeneralAnswer = *w.GeneralAnswer
	}
	if w.SessionID != nil {
		resp.SessionID = *w.SessionID
	}
	return resp, nil
}
