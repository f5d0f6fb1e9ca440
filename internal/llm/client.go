package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// Client wraps the OpenAI chat completion API for narrative generation.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      zerolog.Logger
}

// Options holds sampling parameters for the text-generation service.
type Options struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewClient creates a narrative generation client.
func NewClient(opts Options) *Client {
	if opts.Model == "" {
		opts.Model = openai.GPT4
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 256
	}

	return &Client{
		client:      openai.NewClient(opts.APIKey),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		logger:      log.With().Str("component", "llm_client").Logger(),
	}
}

// Generate sends a prompt and returns the generated text. Failures are
// recoverable per analysis cycle: the caller logs, skips the dependent
// step, and the next scheduled cycle retries naturally.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		c.logger.Error().Err(err).Msg("chat completion failed")
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn().Msg("completion returned no choices")
		return "", fmt.Errorf("empty completion response")
	}

	return resp.Choices[0].Message.Content, nil
}
