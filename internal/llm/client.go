// Package llm wraps an OpenAI-compatible chat completion gateway. Calls are
// retried with exponential backoff; a deterministic mock mode keeps the rest
// of the service usable offline.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"

	"pipeline-insights-go/internal/config"
	"pipeline-insights-go/internal/logger"
)

// Generator drafts one text from a system prompt and a user prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client talks to the configured gateway.
type Client struct {
	api   *openai.Client
	model string
	log   *logger.Logger
}

// New builds a Generator from config. Mock mode or a missing API key yields
// the offline mock.
func New(cfg config.LLMConfig) Generator {
	if cfg.UseMock || cfg.APIKey == "" {
		return &Mock{}
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	return &Client{
		api:   openai.NewClientWithConfig(clientConfig),
		model: cfg.Model,
		log:   logger.New(),
	}
}

// Generate runs one chat completion with low temperature, retrying transient
// failures for up to 30 seconds.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	log := c.log.WithComponent("llm").WithField("model", c.model)

	var content string
	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: 0.2,
			MaxTokens:   2048,
		})
		if err != nil {
			log.WithError(err).Warn("chat completion failed")
			return err
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("no choices in response"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	start := time.Now()
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("llm generation failed: %w", err)
	}
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("chat completion ok")
	return strings.TrimSpace(content), nil
}
