package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm"
	"google.golang.org/genai"
)

type Client struct {
	Client  *genai.Client
	ModelID string
	Retry   llm.RetryPolicy
}

// NewClient uses the Gemini API when apiKey is set and Vertex AI otherwise.
func NewClient(ctx context.Context, apiKey, project, location, model string) (*Client, error) {
	if model == "" {
		return nil, fmt.Errorf("Gemini model ID is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if apiKey == "" {
		cfg = &genai.ClientConfig{
			Project:  project,
			Location: location,
			Backend:  genai.BackendVertexAI,
		}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		Client:  client,
		ModelID: model,
		Retry:   llm.DefaultRetryPolicy(),
	}, nil
}

func (c *Client) InvokeModel(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(request.Temperature)),
		MaxOutputTokens: int32(request.MaxTokens),
	}

	resp, err := c.Client.Models.GenerateContent(ctx, c.ModelID, genai.Text(request.Prompt), config)
	if err != nil {
		return nil, fmt.Errorf("unable to invoke gemini model %s: %w", c.ModelID, err)
	}

	if len(resp.Candidates) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	text := resp.Text()
	if text == "" {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.LLMResponse{
		Content:    text,
		StopReason: string(resp.Candidates[0].FinishReason),
	}, nil
}

func (c *Client) InvokeModelWithRetry(ctx context.Context, request llm.LLMRequest) (*llm.LLMResponse, error) {
	return llm.InvokeWithRetry(ctx, c.Retry, isRetryableError, func(ctx context.Context) (*llm.LLMResponse, error) {
		return c.InvokeModel(ctx, request)
	})
}

func isRetryableError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return retryableStatus(apiErrPtr.Code)
	}

	errStr := err.Error()
	return strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "503")
}

func retryableStatus(code int) bool {
	switch code {
	case 429, 500, 503, 504:
		return true
	}
	return false
}
