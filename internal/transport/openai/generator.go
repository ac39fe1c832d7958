package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/schema"
)

// Generator produces answers via the chat completion API.
type Generator struct {
	client *openai.Client
	model  string
	// prices in USD per million tokens
	promptPrice     float64
	completionPrice float64
	logger          *zap.Logger
}

// GeneratorConfig holds the chat completion provider settings.
type GeneratorConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	PromptPrice     float64
	CompletionPrice float64
	Logger          *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:          openai.NewClientWithConfig(clientCfg),
		model:           cfg.Model,
		promptPrice:     cfg.PromptPrice,
		completionPrice: cfg.CompletionPrice,
		logger:          cfg.Logger,
	}
}

// Generate runs one chat completion: system prompt, prior turns in
// conversation order, then the user query.
func (g *Generator) Generate(
	ctx context.Context,
	system string,
	history []schema.ChatMessage,
	query string,
) (domain.Generation, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: query,
	})

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
	})
	if err != nil {
		return domain.Generation{}, parseAPIError(err, domain.ErrLLMProviderError)
	}

	if len(resp.Choices) == 0 {
		return domain.Generation{}, fmt.Errorf("empty completion response: %w", domain.ErrLLMProviderError)
	}

	g.logger.Debug("chat completion",
		zap.String("model", g.model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	gen := domain.Generation{Answer: resp.Choices[0].Message.Content}
	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(g.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(g.model, "completion").Add(float64(resp.Usage.CompletionTokens))
		gen.Usage = &schema.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.PromptTokens + resp.Usage.CompletionTokens,
			EstimatedCostUSD: g.estimateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		}
	}
	return gen, nil
}

// estimateCost converts token counts into USD using the configured
// per-million-token prices.
func (g *Generator) estimateCost(promptTokens, completionTokens int) float64 {
	return (float64(promptTokens)*g.promptPrice + float64(completionTokens)*g.completionPrice) / 1_000_000
}

func chatRole(r schema.Role) string {
	if r == schema.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}
