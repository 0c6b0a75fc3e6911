// Package llm wraps the OpenAI API for embedding generation and
// grounded chat completion.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aiagentrag/ragserver/internal/config"
	"github.com/aiagentrag/ragserver/internal/log"
)

// ErrEmptyResponse indicates the model returned no choices.
var ErrEmptyResponse = errors.New("empty model response")

// maxEmbedBatch is the maximum number of inputs sent in one embedding
// request. The OpenAI API accepts up to 2048; smaller batches keep
// request bodies bounded.
const maxEmbedBatch = 256

// systemPrompt instructs the model to answer strictly from the
// retrieved context.
const systemPrompt = `You are a helpful assistant. Answer the question using only the provided context. If the context does not contain enough information to answer, say so honestly instead of guessing.`

// Client wraps the OpenAI client with the application's model and
// generation settings. Safe for concurrent use.
type Client struct {
	api         *openai.Client
	chatModel   string
	embedModel  string
	temperature float32
	maxTokens   int
	logger      log.Logger
}

// New creates a Client from application configuration.
// OpenAIBaseURL redirects requests to any OpenAI-compatible endpoint.
func New(cfg *config.Config, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNop()
	}

	oaiCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		oaiCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(oaiCfg),
		chatModel:   cfg.OpenAIModel,
		embedModel:  cfg.EmbeddingModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

// EmbeddingModel returns the configured embedding model identifier.
func (c *Client) EmbeddingModel() string {
	return c.embedModel
}

// Embed generates embedding vectors for the given texts, preserving
// input order. Large inputs are sent in batches of maxEmbedBatch.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := min(start+maxEmbedBatch, len(texts))

		resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(c.embedModel),
			Input: texts[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("creating embeddings: %w", err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", end-start, len(resp.Data))
		}

		for _, d := range resp.Data {
			if len(d.Embedding) == 0 {
				return nil, fmt.Errorf("empty embedding at index %d", d.Index)
			}
			vectors = append(vectors, d.Embedding)
		}
	}

	c.logger.Debug("generated embeddings", "count", len(vectors), "model", c.embedModel)
	return vectors, nil
}

// Complete answers the question grounded in the given context string
// using a chat completion.
func (c *Client) Complete(ctx context.Context, question, contextText string) (string, error) {
	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.logger.Debug("chat completion", "model", c.chatModel,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return answer, nil
}
