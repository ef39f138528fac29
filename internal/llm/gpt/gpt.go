package gpt

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm"
)

func (c *Client) InvokeModel(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(request.Prompt),
		},
		Temperature: openai.Float(request.Temperature),
		Model:       openai.ChatModel(c.ModelID),
	}
	if c.LegacyMaxTokens {
		params.MaxTokens = openai.Int(int64(request.MaxTokens))
	} else {
		params.MaxCompletionTokens = openai.Int(int64(request.MaxTokens))
	}

	output, err := c.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("unable to invoke gpt model %s: %w", c.ModelID, err)
	}

	if len(output.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	choice := output.Choices[0]
	return &llm.LLMResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
	}, nil
}

func (c *Client) InvokeModelWithRetry(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	return llm.InvokeWithRetry(ctx, c.Retry, isRetryableError, func(ctx context.Context) (*llm.LLMResponse, error) {
		return c.InvokeModel(ctx, request)
	})
}

func isRetryableError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 408, 409, 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	// transport level failures
	return !errors.Is(err, context.Canceled) && !errors.Is(err, llm.ErrEmptyResponse)
}
