package ragdex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kailas-cloud/ragdex/internal/schema"
)

const defaultTimeout = 120 * time.Second

// Client is the ragdex SDK entry point.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the ragdex API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c
}

// ProcessTextRequest is the input to ProcessText. Title is optional.
type ProcessTextRequest struct {
	Text  string
	Title string
}

// ProcessText ingests raw text into the knowledge base.
func (c *Client) ProcessText(ctx context.Context, req ProcessTextRequest) (schema.DocumentUploadResponse, error) {
	body, err := c.post(ctx, "/documents", map[string]string{
		"text":  req.Text,
		"title": req.Title,
	})
	if err != nil {
		return schema.DocumentUploadResponse{}, err
	}

	resp, err := schema.ParseDocumentUploadResponse(body)
	if err != nil {
		return schema.DocumentUploadResponse{}, fmt.Errorf("ragdex: invalid upload response: %w", err)
	}
	return resp, nil
}

// QueryOptions is the input to Query. SessionID and ChatHistory are
// optional; supply one or the other, not both.
type QueryOptions struct {
	Query       string
	SessionID   string
	ChatHistory []schema.ChatMessage
}

// Query asks a question and returns the full answer with sources.
func (c *Client) Query(ctx context.Context, opts QueryOptions) (schema.QueryResponse, error) {
	payload := map[string]any{"query": opts.Query}
	if opts.SessionID != "" {
		payload["session_id"] = opts.SessionID
	}
	if len(opts.ChatHistory) > 0 {
		payload["chat_history"] = opts.ChatHistory
	}

	body, err := c.post(ctx, "/query", payload)
	if err != nil {
		return schema.QueryResponse{}, err
	}

	resp, err := schema.ParseQueryResponse(body)
	if err != nil {
		return schema.QueryResponse{}, fmt.Errorf("ragdex: invalid query response: %w", err)
	}
	return resp, nil
}

// DeleteSession clears the stored chat history for a session.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return fmt.Errorf("ragdex: build request: %w", err)
	}
	_, err = c.send(req)
	return err
}

// Health returns the server health snapshot.
func (c *Client) Health(ctx context.Context) (schema.HealthResponse, error) {
	body, err := c.get(ctx, "/health")
	if err != nil {
		return schema.HealthResponse{}, err
	}

	resp, err := schema.ParseHealthResponse(body)
	if err != nil {
		return schema.HealthResponse{}, fmt.Errorf("ragdex: invalid health response: %w", err)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ragdex: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ragdex: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("ragdex: build request: %w", err)
	}
	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ragdex: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ragdex: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}
