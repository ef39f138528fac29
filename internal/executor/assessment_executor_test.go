package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/aggregator"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/config"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/corpus"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/judge"
	llmmocks "github.com/povarna/generative-ai-agents/summary-judge/internal/llm/mocks"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	storemocks "github.com/povarna/generative-ai-agents/summary-judge/internal/store/mocks"
	"go.uber.org/mock/gomock"
)

const validAssessment = `{"strengths": ["clareza"], "weaknesses": ["formato"], "recommendations": ["limitar tópicos"], "summary": "bom"}`

func qwenEvaluations() []models.DocumentEvaluation {
	scores := []int{8, 6, 9}
	explanations := []string{"e1", "e2", "e3"}

	var evaluations []models.DocumentEvaluation
	for i, id := range []string{"d1", "d2", "d3"} {
		evaluations = append(evaluations, models.DocumentEvaluation{
			DocumentID: id,
			Order:      []string{"qwen"},
			Judgments:  map[string]models.Judgment{"qwen": {Score: scores[i], Explanation: explanations[i]}},
		})
	}
	return evaluations
}

func TestAssessmentExecutor_Execute(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmocks.NewMockLLMClient(ctrl)
	mockStore := storemocks.NewMockStore(ctrl)

	var prompts []string
	script(client, &prompts, validAssessment)

	var saved models.ModelAssessment
	mockStore.EXPECT().SaveAssessment(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, assessment models.ModelAssessment) error {
			saved = assessment
			return nil
		})

	agg := aggregator.NewAggregator(newTestLogger())
	executor := NewAssessmentExecutor(newController(t, client, newRenderer(t, nil)), mockStore, agg, trackedModels, "\n\n", newTestLogger())

	stats := agg.Aggregate(qwenEvaluations())
	report, err := executor.Execute(context.Background(), stats, []string{"qwen", "llama"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := AssessmentReport{Assessed: []string{"qwen"}, NoData: []string{"llama"}}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}

	for _, fragment := range []string{"Pontuação média: 7.67", "e1\n\ne2\n\ne3", "'qwen'"} {
		if !strings.Contains(prompts[0], fragment) {
			t.Errorf("assessment prompt missing %q", fragment)
		}
	}

	if saved.Model != "qwen" || saved.Count != 3 || saved.Summary != "bom" {
		t.Errorf("unexpected saved assessment: %+v", saved)
	}
}

func TestAssessmentExecutor_Execute_ExhaustedContinues(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmocks.NewMockLLMClient(ctrl)
	mockStore := storemocks.NewMockStore(ctrl)

	script(client, nil, "x", "y", `{"strengths": []}`, validAssessment)
	mockStore.EXPECT().SaveAssessment(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	stats := map[string]models.AggregatedStats{
		"qwen":  {Model: "qwen", Scores: []int{5}, Explanations: []string{"a"}, Count: 1, Mean: 5},
		"llama": {Model: "llama", Scores: []int{7}, Explanations: []string{"b"}, Count: 1, Mean: 7},
	}

	executor := NewAssessmentExecutor(newController(t, client, newRenderer(t, nil)), mockStore,
		aggregator.NewAggregator(newTestLogger()), trackedModels, "\n\n", newTestLogger())

	report, err := executor.Execute(context.Background(), stats, []string{"qwen", "llama"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := AssessmentReport{Assessed: []string{"llama"}, Failed: []string{"qwen"}}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestAssessmentExecutor_AssessModel(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := storemocks.NewMockStore(ctrl)
		mockStore.EXPECT().ListEvaluations(gomock.Any()).Return(qwenEvaluations(), nil)

		executor := NewAssessmentExecutor(newController(t, llmmocks.NewMockLLMClient(ctrl), newRenderer(t, nil)), mockStore,
			aggregator.NewAggregator(newTestLogger()), trackedModels, "\n\n", newTestLogger())

		if _, err := executor.AssessModel(context.Background(), "gemma"); !errors.Is(err, aggregator.ErrNoData) {
			t.Errorf("expected ErrNoData, got %v", err)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := llmmocks.NewMockLLMClient(ctrl)
		mockStore := storemocks.NewMockStore(ctrl)
		mockStore.EXPECT().ListEvaluations(gomock.Any()).Return(qwenEvaluations(), nil)
		script(client, nil, "a", "b", "c")

		executor := NewAssessmentExecutor(newController(t, client, newRenderer(t, nil)), mockStore,
			aggregator.NewAggregator(newTestLogger()), trackedModels, "\n\n", newTestLogger())

		if _, err := executor.AssessModel(context.Background(), "qwen"); !errors.Is(err, judge.ErrExhausted) {
			t.Errorf("expected ErrExhausted, got %v", err)
		}
	})

	t.Run("store error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := storemocks.NewMockStore(ctrl)
		mockStore.EXPECT().ListEvaluations(gomock.Any()).Return(nil, errors.New("connection refused"))

		executor := NewAssessmentExecutor(newController(t, llmmocks.NewMockLLMClient(ctrl), newRenderer(t, nil)), mockStore,
			aggregator.NewAggregator(newTestLogger()), trackedModels, "\n\n", newTestLogger())

		if _, err := executor.AssessModel(context.Background(), "qwen"); err == nil {
			t.Error("expected error")
		}
	})
}

func TestAssessmentExecutor_Stats_FollowsCorpusOrder(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	qwenDir := filepath.Join(root, "qwen")
	for _, dir := range []string{docs, qwenDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	// File name order is a-b.txt, a.txt; document id order is a, a-b.
	for _, id := range []string{"a-b", "a"} {
		if err := os.WriteFile(filepath.Join(docs, id+".txt"), []byte("texto "+id), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(qwenDir, id+".out"), []byte("resumo "+id), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	source := corpus.NewDirSource(config.CorpusSettings{
		DocumentsDir:     docs,
		DocumentExt:      ".txt",
		MissingCandidate: config.MissingCandidateFail,
	}, []config.TrackedModel{{Name: "qwen", Dir: qwenDir, Suffix: ".out"}}, newTestLogger())

	entries, err := source.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	ctrl := gomock.NewController(t)
	client := llmmocks.NewMockLLMClient(ctrl)
	var prompts []string
	script(client, &prompts, `{"score": 8, "explanation": "primeiro"}`, `{"score": 6, "explanation": "segundo"}`)

	recordStore := newFileStore(t)
	evaluations := NewEvaluationExecutor(newController(t, client, newRenderer(t, nil)), recordStore, []string{"qwen"}, "", newTestLogger())
	if _, err := evaluations.Execute(ctx, entries); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if strings.Contains(prompts[0], "resumo a-b") || !strings.Contains(prompts[1], "resumo a-b") {
		t.Fatal("expected document a to be judged before a-b")
	}

	assessments := NewAssessmentExecutor(newController(t, client, newRenderer(t, nil)), recordStore,
		aggregator.NewAggregator(newTestLogger()), []string{"qwen"}, "\n\n", newTestLogger())
	stats, err := assessments.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}

	if diff := cmp.Diff([]string{"primeiro", "segundo"}, stats["qwen"].Explanations); diff != "" {
		t.Errorf("explanations out of corpus order (-want +got):\n%s", diff)
	}
}

func TestAssessmentExecutor_AssessModel_RejectsInvalidModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := NewAssessmentExecutor(newController(t, llmmocks.NewMockLLMClient(ctrl), newRenderer(t, nil)), storemocks.NewMockStore(ctrl),
		aggregator.NewAggregator(newTestLogger()), trackedModels, "\n\n", newTestLogger())

	if _, err := executor.AssessModel(context.Background(), "../x"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}
