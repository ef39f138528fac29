package executor

import (
	"context"
	"testing"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/config"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/judge"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm/mocks"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prompt"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newRenderer(t *testing.T, overrides map[prompt.Kind]string) *prompt.Renderer {
	t.Helper()
	r, err := prompt.NewRenderer(prompt.WithOverrides(overrides)...)
	if err != nil {
		t.Fatalf("NewRenderer() failed: %v", err)
	}
	return r
}

func newController(t *testing.T, client llm.LLMClient, renderer *prompt.Renderer) *judge.Controller {
	t.Helper()
	completer := judge.NewClient(client, config.ModelConfig{MaxTokens: 512}, 0, newTestLogger())
	return judge.NewController(renderer, completer, judge.Options{MaxAttempts: 3}, newTestLogger())
}

// script makes client answer with replies in order and records every prompt.
func script(client *mocks.MockLLMClient, prompts *[]string, replies ...string) {
	calls := make([]any, 0, len(replies))
	for _, reply := range replies {
		calls = append(calls, client.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
				if prompts != nil {
					*prompts = append(*prompts, req.Prompt)
				}
				return &llm.LLMResponse{Content: reply}, nil
			}))
	}
	gomock.InOrder(calls...)
}
