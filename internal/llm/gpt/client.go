package gpt

import (
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm"
)

const (
	DefaultOllamaURL = "http://localhost:11434"

	// ollamaAPIKey is sent to Ollama, which ignores it; the SDK refuses an
	// empty key.
	ollamaAPIKey = "ollama"
)

type Client struct {
	Client  openai.Client
	ModelID string
	Retry   llm.RetryPolicy
	// LegacyMaxTokens sends max_tokens instead of max_completion_tokens.
	LegacyMaxTokens bool
}

// NewClient builds an OpenAI chat client. baseURL may point at any
// OpenAI-compatible endpoint; empty uses the public API.
func NewClient(apiKey string, model string, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("OpenAI model ID is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// retries are driven by InvokeModelWithRetry
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		Client:  openai.NewClient(opts...),
		ModelID: model,
		Retry:   llm.DefaultRetryPolicy(),
	}, nil
}

// NewOllamaClient talks to the OpenAI-compatible API a local Ollama server
// serves under /v1.
func NewOllamaClient(serverURL, model string) (*Client, error) {
	if model == "" {
		return nil, fmt.Errorf("Ollama model is required")
	}
	if serverURL == "" {
		serverURL = DefaultOllamaURL
	}

	client, err := NewClient(ollamaAPIKey, model, OllamaBaseURL(serverURL))
	if err != nil {
		return nil, err
	}
	client.LegacyMaxTokens = true
	return client, nil
}

// OllamaBaseURL maps an Ollama server address to its OpenAI-compatible root.
func OllamaBaseURL(serverURL string) string {
	return strings.TrimRight(serverURL, "/") + "/v1/"
}
