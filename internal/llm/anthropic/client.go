package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm"
)

// Client talks to the Anthropic Messages API directly.
type Client struct {
	Client  anthropic.Client
	ModelID string
	Retry   llm.RetryPolicy
}

func NewClient(apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("Anthropic model ID is required")
	}

	return &Client{
		Client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(0),
		),
		ModelID: model,
		Retry:   llm.DefaultRetryPolicy(),
	}, nil
}

func (c *Client) InvokeModel(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.ModelID),
		MaxTokens: int64(request.MaxTokens),
		Messages: []anthropic.MessageParam{{
			Role: anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(request.Prompt),
			},
		}},
	}
	params.Temperature = anthropic.Float(request.Temperature)

	message, err := c.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("unable to invoke anthropic model %s: %w", c.ModelID, err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.LLMResponse{
		Content:    sb.String(),
		StopReason: string(message.StopReason),
	}, nil
}

func (c *Client) InvokeModelWithRetry(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	return llm.InvokeWithRetry(ctx, c.Retry, isRetryableError, func(ctx context.Context) (*llm.LLMResponse, error) {
		return c.InvokeModel(ctx, request)
	})
}

// isRetryableError matches rate limit, overloaded and transient server errors.
func isRetryableError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 503, 504, 529:
			return true
		}
	}
	return false
}
