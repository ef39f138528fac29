package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/config"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/judge"
	llmmocks "github.com/povarna/generative-ai-agents/summary-judge/internal/llm/mocks"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prechecks"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prompt"
	"go.uber.org/mock/gomock"
)

const (
	wellFormed = "Tarefa 1:\n- Criptografia\n- Chaves públicas\nTarefa 2:\n- positivo"
	fallback   = "Erro: Formato inválido após 3 tentativas."
)

func newGenerationExecutor(t *testing.T, generator, validator *llmmocks.MockLLMClient) *GenerationExecutor {
	t.Helper()
	renderer := newRenderer(t, nil)
	genClient := judge.NewClient(generator, config.ModelConfig{MaxTokens: 1024}, 0, newTestLogger())
	valClient := judge.NewClient(validator, config.ModelConfig{MaxTokens: 8}, 0, newTestLogger())

	return NewGenerationExecutor(
		renderer,
		genClient,
		prechecks.Default([]string{"Tarefa 1:", "Tarefa 2:"}, 10),
		judge.NewValidator(renderer, valClient, "Sim", newTestLogger()),
		GenerationOptions{Model: "qwen", Question: prompt.DefaultQuestion, Fallback: fallback, MaxAttempts: 3},
		newTestLogger(),
	)
}

func TestGenerationExecutor_Generate(t *testing.T) {
	doc := models.Document{ID: "doc1", Text: "Palestra sobre criptografia e chaves públicas."}

	tests := []struct {
		name         string
		generated    []string
		verdicts     []string
		wantText     string
		wantAttempts int
		wantAccepted bool
	}{
		{
			name:         "accepted on first attempt",
			generated:    []string{wellFormed},
			verdicts:     []string{"Sim"},
			wantText:     wellFormed,
			wantAttempts: 1,
			wantAccepted: true,
		},
		{
			name:         "static check failure skips the validator",
			generated:    []string{"**Tópicos**: criptografia", wellFormed},
			verdicts:     []string{" sim "},
			wantText:     wellFormed,
			wantAttempts: 2,
			wantAccepted: true,
		},
		{
			name:         "validator rejections fall back",
			generated:    []string{wellFormed, wellFormed, wellFormed},
			verdicts:     []string{"Não", "Sim.", "Talvez"},
			wantText:     fallback,
			wantAttempts: 3,
			wantAccepted: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			generator := llmmocks.NewMockLLMClient(ctrl)
			validator := llmmocks.NewMockLLMClient(ctrl)
			script(generator, nil, test.generated...)
			script(validator, nil, test.verdicts...)

			executor := newGenerationExecutor(t, generator, validator)
			got, err := executor.Generate(context.Background(), doc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Text != test.wantText || got.Attempts != test.wantAttempts || got.Accepted != test.wantAccepted {
				t.Errorf("Generate() = %+v", got)
			}
		})
	}
}

func TestGenerationExecutor_GeneratorErrorsCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	generator := llmmocks.NewMockLLMClient(ctrl)
	validator := llmmocks.NewMockLLMClient(ctrl)

	generator.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).Return(nil, errors.New("model not loaded")).Times(3)

	executor := newGenerationExecutor(t, generator, validator)
	got, err := executor.Generate(context.Background(), models.Document{ID: "d", Text: "t"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != fallback || got.Accepted {
		t.Errorf("expected fallback, got %+v", got)
	}
}

func TestGenerationExecutor_Execute(t *testing.T) {
	ctrl := gomock.NewController(t)
	generator := llmmocks.NewMockLLMClient(ctrl)
	validator := llmmocks.NewMockLLMClient(ctrl)
	script(generator, nil, wellFormed, wellFormed)
	script(validator, nil, "Sim", "Sim")

	executor := newGenerationExecutor(t, generator, validator)

	written := map[string]string{}
	_, err := executor.Execute(context.Background(),
		[]models.Document{{ID: "doc1", Text: "criptografia"}, {ID: "doc2", Text: "x"}},
		func(g Generation) error {
			if g.DocumentID == "doc2" {
				return errors.New("read-only file system")
			}
			written[g.DocumentID] = g.Text
			return nil
		})

	if err == nil {
		t.Fatal("expected write error")
	}
	if written["doc1"] != wellFormed {
		t.Errorf("doc1 not written: %v", written)
	}
}
