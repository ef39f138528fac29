package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/config"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm"
	"github.com/rs/zerolog"
)

// Completer returns the raw text a model produces for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client adapts an llm.LLMClient to Completer, applying the configured
// model parameters and a per-call timeout.
type Client struct {
	llmClient   llm.LLMClient
	modelConfig config.ModelConfig
	timeout     time.Duration
	logger      *zerolog.Logger
}

func NewClient(llmClient llm.LLMClient, modelConfig config.ModelConfig, timeout time.Duration, logger *zerolog.Logger) *Client {
	return &Client{
		llmClient:   llmClient,
		modelConfig: modelConfig,
		timeout:     timeout,
		logger:      logger,
	}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	request := llm.LLMRequest{
		Prompt:      prompt,
		MaxTokens:   c.modelConfig.MaxTokens,
		Temperature: c.modelConfig.Temperature,
	}

	now := time.Now()

	var resp *llm.LLMResponse
	var err error
	if c.modelConfig.Retry {
		resp, err = c.llmClient.InvokeModelWithRetry(ctx, request)
	} else {
		resp, err = c.llmClient.InvokeModel(ctx, request)
	}
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	if resp == nil {
		return "", llm.ErrEmptyResponse
	}

	c.logger.Debug().
		Str("stop_reason", resp.StopReason).
		Int("length", len(resp.Content)).
		Dur("duration", time.Since(now)).
		Msg("judge responded")

	return resp.Content, nil
}
