package schema

import "time"

// HealthResponse is a service health snapshot. The connectivity
// booleans are the designated channel for surfacing unreachable
// upstream services without raising.
type HealthResponse struct {
	Status           string `json:"status"`
	QdrantConnected  bool   `json:"qdrant_connected"`
	OpenAIConfigured bool   `json:"openai_configured"`
	CohereConfigured bool   `json:"cohere_configured"`
	Timestamp        string `json:"timestamp"`
}

type healthResponseWire struct {
	Status           *string `json:"status"`
	QdrantConnected  *bool   `json:"qdrant_connected"`
	OpenAIConfigured *bool   `json:"openai_configured"`
	CohereConfigured *bool   `json:"cohere_configured"`
	Timestamp        *string `json:"timestamp"`
}

// ParseHealthResponse validates raw JSON into a HealthResponse,
// stamping an absent timestamp with the current time.
func ParseHealthResponse(data []byte) (HealthResponse, error) {
	return ParseHealthResponseAt(data, time.Now().UTC())
}

// ParseHealthResponseAt is ParseHealthResponse with an explicit instant
// for the timestamp default.
func ParseHealthResponseAt(data []byte, now time.Time) (HealthResponse, error) {
	var w healthResponseWire
	var v violations
	if err := unmarshalWire(data, &w, &v); err != nil {
		return HealthResponse{}, err
	}

	if w.Status == nil {
		v.missing("status")
	}
	if w.QdrantConnected == nil {
		v.missing("qdrant_connected")
	}
	if w.OpenAIConfigured == nil {
		v.missing("openai_configured")
	}
	if w.CohereConfigured == nil {
		v.missing("cohere_configured")
	}
	if err := v.err(); err != nil {
		return HealthResponse{}, err
	}

	resp := HealthResponse{
		Status:           *w.Status,
		QdrantConnected:  *w.QdrantConnected,
		OpenAIConfigured: *w.OpenAIConfigured,
		CohereConfigured: *w.CohereConfigured,
		Timestamp:        FormatTimestamp(now),
	}
	if w.Timestamp != nil {
		resp.Timestamp = *w.Timestamp
	}
	return resp, nil
}
