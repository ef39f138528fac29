package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/corpus"
	llmmocks "github.com/povarna/generative-ai-agents/summary-judge/internal/llm/mocks"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prompt"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store/filestore"
	storemocks "github.com/povarna/generative-ai-agents/summary-judge/internal/store/mocks"
	"go.uber.org/mock/gomock"
)

var trackedModels = []string{"qwen", "llama"}

func entry(id string, candidates map[string]string) corpus.Entry {
	return corpus.Entry{
		Document:   models.Document{ID: id, Text: "texto " + id},
		Candidates: candidates,
	}
}

func both(id string) corpus.Entry {
	return entry(id, map[string]string{"qwen": "qwen " + id, "llama": "llama " + id})
}

var ignoreTimes = cmpopts.IgnoreFields(models.DocumentEvaluation{}, "CreatedAt")

func TestEvaluationExecutor_Execute_ContinuesAfterExhaustion(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmocks.NewMockLLMClient(ctrl)
	mockStore := storemocks.NewMockStore(ctrl)

	script(client, nil,
		`{"score": 8, "explanation": "a"}`,
		`{"score": 5, "explanation": "b"}`,
		"not json at all", "not json at all", "not json at all",
		`{"score": 9, "explanation": "c"}`,
	)

	var saved []models.DocumentEvaluation
	mockStore.EXPECT().SaveEvaluation(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, evaluation models.DocumentEvaluation) error {
			saved = append(saved, evaluation)
			return nil
		}).Times(2)
	mockStore.EXPECT().AppendFailure(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entry models.FailureEntry) error {
			if entry.DocumentID != "doc2" || entry.Model != "qwen" {
				t.Errorf("unexpected failure entry: %+v", entry)
			}
			return nil
		}).Times(1)

	executor := NewEvaluationExecutor(newController(t, client, newRenderer(t, nil)), mockStore, trackedModels, "", newTestLogger())

	report, err := executor.Execute(context.Background(), []corpus.Entry{both("doc1"), both("doc2")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.DocumentEvaluation{
		{
			DocumentID: "doc1",
			Order:      []string{"qwen", "llama"},
			Judgments: map[string]models.Judgment{
				"qwen":  {Score: 8, Explanation: "a"},
				"llama": {Score: 5, Explanation: "b"},
			},
		},
		{
			DocumentID: "doc2",
			Order:      []string{"llama"},
			Judgments:  map[string]models.Judgment{"llama": {Score: 9, Explanation: "c"}},
		},
	}
	if diff := cmp.Diff(want, saved, ignoreTimes); diff != "" {
		t.Errorf("saved evaluations mismatch (-want +got):\n%s", diff)
	}

	if report.Documents != 2 || report.Judged != 3 || len(report.Failures) != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.RunID == "" {
		t.Error("expected a run id")
	}
}

func TestEvaluationExecutor_Execute_StoreErrorAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmocks.NewMockLLMClient(ctrl)
	mockStore := storemocks.NewMockStore(ctrl)

	script(client, nil, `{"score": 8, "explanation": "a"}`, `{"score": 7, "explanation": "b"}`)
	mockStore.EXPECT().SaveEvaluation(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	executor := NewEvaluationExecutor(newController(t, client, newRenderer(t, nil)), mockStore, trackedModels, "", newTestLogger())

	report, err := executor.Execute(context.Background(), []corpus.Entry{both("doc1"), both("doc2")})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected store error, got %v", err)
	}
	if report.Documents != 0 {
		t.Errorf("expected no completed documents, got %d", report.Documents)
	}
}

func TestEvaluationExecutor_Execute_MissingVariableIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmocks.NewMockLLMClient(ctrl)
	mockStore := storemocks.NewMockStore(ctrl)

	renderer := newRenderer(t, map[prompt.Kind]string{prompt.KindJudging: "{{.context}} {{.response}} {{.rubric}}"})
	executor := NewEvaluationExecutor(newController(t, client, renderer), mockStore, trackedModels, "", newTestLogger())

	_, err := executor.Execute(context.Background(), []corpus.Entry{both("doc1")})
	if !errors.Is(err, prompt.ErrMissingVariable) {
		t.Errorf("expected ErrMissingVariable, got %v", err)
	}
}

func TestEvaluationExecutor_EvaluateDocument_MissingCandidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmocks.NewMockLLMClient(ctrl)
	mockStore := storemocks.NewMockStore(ctrl)

	script(client, nil, `{"score": 6, "explanation": "ok"}`)
	mockStore.EXPECT().AppendFailure(gomock.Any(), gomock.Any()).Return(nil)
	mockStore.EXPECT().SaveEvaluation(gomock.Any(), gomock.Any()).Return(nil)

	executor := NewEvaluationExecutor(newController(t, client, newRenderer(t, nil)), mockStore, trackedModels, "", newTestLogger())

	evaluation, failures, err := executor.EvaluateDocument(context.Background(), entry("doc1", map[string]string{"qwen": "resp"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(evaluation.Judgments) != 1 || len(failures) != 1 || failures[0].Model != "llama" {
		t.Errorf("unexpected outcome: %+v, %+v", evaluation, failures)
	}
}

func TestEvaluationExecutor_EvaluateDocument_NothingJudged(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmocks.NewMockLLMClient(ctrl)
	mockStore := storemocks.NewMockStore(ctrl)

	script(client, nil, "{}", "{}", "{}")
	mockStore.EXPECT().AppendFailure(gomock.Any(), gomock.Any()).Return(nil)
	mockStore.EXPECT().SaveEvaluation(gomock.Any(), gomock.Any()).Times(0)
	mockStore.EXPECT().DeleteEvaluation(gomock.Any(), "doc1").Return(nil)

	executor := NewEvaluationExecutor(newController(t, client, newRenderer(t, nil)), mockStore, []string{"qwen"}, "", newTestLogger())

	if _, _, err := executor.EvaluateDocument(context.Background(), both("doc1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEvaluationExecutor_Judge(t *testing.T) {
	valid := models.JudgeRequest{DocumentID: "doc1", Model: "qwen", Context: "texto", Response: "resposta", Task: "resuma"}

	t.Run("invalid request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		executor := NewEvaluationExecutor(newController(t, llmmocks.NewMockLLMClient(ctrl), newRenderer(t, nil)),
			storemocks.NewMockStore(ctrl), trackedModels, "", newTestLogger())

		_, err := executor.Judge(context.Background(), models.JudgeRequest{DocumentID: "doc1"})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest, got %v", err)
		}
	})

	t.Run("persist merges into existing evaluation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := llmmocks.NewMockLLMClient(ctrl)
		mockStore := storemocks.NewMockStore(ctrl)

		var prompts []string
		script(client, &prompts, `{"score": 7, "explanation": "bom"}`)

		existing := store.Merge(models.DocumentEvaluation{DocumentID: "doc1"}, "llama", models.Judgment{Score: 3, Explanation: "x"})
		mockStore.EXPECT().GetEvaluation(gomock.Any(), "doc1").Return(existing, nil)
		mockStore.EXPECT().SaveEvaluation(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, evaluation models.DocumentEvaluation) error {
				if diff := cmp.Diff([]string{"llama", "qwen"}, evaluation.Order); diff != "" {
					t.Errorf("Order mismatch (-want +got):\n%s", diff)
				}
				return nil
			})

		executor := NewEvaluationExecutor(newController(t, client, newRenderer(t, nil)), mockStore, trackedModels, "", newTestLogger())

		req := valid
		req.Persist = true
		result, err := executor.Judge(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Status != models.StatusSuccess || result.Judgment.Score != 7 || result.Attempts != 1 {
			t.Errorf("unexpected result: %+v", result)
		}
		if !strings.Contains(prompts[0], "Tarefa original:\nresuma") {
			t.Errorf("task missing from prompt:\n%s", prompts[0])
		}
	})

	t.Run("invalid keys", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		executor := NewEvaluationExecutor(newController(t, llmmocks.NewMockLLMClient(ctrl), newRenderer(t, nil)),
			storemocks.NewMockStore(ctrl), trackedModels, "", newTestLogger())

		for _, req := range []models.JudgeRequest{
			{DocumentID: "../escaped", Model: "qwen", Context: "c", Response: "r", Persist: true},
			{DocumentID: "doc1", Model: "../x", Context: "c", Response: "r", Persist: true},
			{DocumentID: "dir/doc1", Model: "qwen", Context: "c", Response: "r"},
		} {
			_, err := executor.Judge(context.Background(), req)
			if !errors.Is(err, ErrInvalidRequest) || !errors.Is(err, store.ErrInvalidKey) {
				t.Errorf("Judge(%q, %q) expected ErrInvalidRequest and ErrInvalidKey, got %v", req.DocumentID, req.Model, err)
			}
		}
	})

	t.Run("exhaustion is a result, not an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := llmmocks.NewMockLLMClient(ctrl)
		mockStore := storemocks.NewMockStore(ctrl)

		script(client, nil, "a", "b", "c")
		mockStore.EXPECT().AppendFailure(gomock.Any(), gomock.Any()).Return(nil)

		existing := store.Merge(models.DocumentEvaluation{DocumentID: "doc1"}, "qwen", models.Judgment{Score: 9, Explanation: "old"})
		existing = store.Merge(existing, "llama", models.Judgment{Score: 3, Explanation: "x"})
		mockStore.EXPECT().GetEvaluation(gomock.Any(), "doc1").Return(existing, nil)
		mockStore.EXPECT().SaveEvaluation(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, evaluation models.DocumentEvaluation) error {
				if _, ok := evaluation.Judgments["qwen"]; ok {
					t.Error("stale qwen judgment kept after exhaustion")
				}
				if diff := cmp.Diff([]string{"llama"}, evaluation.Order); diff != "" {
					t.Errorf("Order mismatch (-want +got):\n%s", diff)
				}
				return nil
			})

		executor := NewEvaluationExecutor(newController(t, client, newRenderer(t, nil)), mockStore, trackedModels, "", newTestLogger())

		req := valid
		req.Persist = true
		result, err := executor.Judge(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Status != models.StatusExhausted || result.Judgment != nil || result.Attempts != 3 {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}

func TestEvaluationExecutor_Judge_ExhaustedRemovesLastJudgment(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := llmmocks.NewMockLLMClient(ctrl)
	mockStore := storemocks.NewMockStore(ctrl)

	script(client, nil, "a", "b", "c")
	mockStore.EXPECT().AppendFailure(gomock.Any(), gomock.Any()).Return(nil)
	mockStore.EXPECT().GetEvaluation(gomock.Any(), "doc1").Return(
		store.Merge(models.DocumentEvaluation{DocumentID: "doc1"}, "qwen", models.Judgment{Score: 9, Explanation: "old"}), nil)
	mockStore.EXPECT().DeleteEvaluation(gomock.Any(), "doc1").Return(nil)

	executor := NewEvaluationExecutor(newController(t, client, newRenderer(t, nil)), mockStore, trackedModels, "", newTestLogger())

	req := models.JudgeRequest{DocumentID: "doc1", Model: "qwen", Context: "texto", Response: "resposta", Persist: true}
	if _, err := executor.Judge(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newFileStore(t *testing.T) *filestore.FileStore {
	t.Helper()
	s, err := filestore.New(t.TempDir(), "", newTestLogger())
	if err != nil {
		t.Fatalf("filestore.New() failed: %v", err)
	}
	return s
}

func TestEvaluationExecutor_Execute_RerunReplacesStaleRecords(t *testing.T) {
	ctx := context.Background()
	recordStore := newFileStore(t)

	ctrl := gomock.NewController(t)
	client := llmmocks.NewMockLLMClient(ctrl)
	script(client, nil,
		`{"score": 9, "explanation": "old"}`,
		"not json at all", "not json at all", "not json at all",
	)

	executor := NewEvaluationExecutor(newController(t, client, newRenderer(t, nil)), recordStore, []string{"qwen"}, "", newTestLogger())
	entries := []corpus.Entry{entry("d1", map[string]string{"qwen": "resposta"})}

	if _, err := executor.Execute(ctx, entries); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if evaluations, _ := recordStore.ListEvaluations(ctx); len(evaluations) != 1 {
		t.Fatalf("expected one evaluation after the first run, got %+v", evaluations)
	}

	report, err := executor.Execute(ctx, entries)
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if len(report.Failures) != 1 {
		t.Errorf("expected one failure, got %+v", report.Failures)
	}

	evaluations, err := recordStore.ListEvaluations(ctx)
	if err != nil {
		t.Fatalf("ListEvaluations() error: %v", err)
	}
	if len(evaluations) != 0 {
		t.Errorf("stale evaluation survived the re-run: %+v", evaluations)
	}
}

func TestEvaluationExecutor_Judge_PersistRejectsEscapingIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	recordStore := newFileStore(t)
	executor := NewEvaluationExecutor(newController(t, llmmocks.NewMockLLMClient(ctrl), newRenderer(t, nil)),
		recordStore, trackedModels, "", newTestLogger())

	req := models.JudgeRequest{DocumentID: "../escaped", Model: "qwen", Context: "texto", Response: "resposta", Persist: true}
	if _, err := executor.Judge(context.Background(), req); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestStatusLabels(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"qwen", "qwen"},
		{"llama", "llama"},
		{"request-supplied-name", untrackedModel},
		{"", untrackedModel},
	}

	for _, test := range tests {
		t.Run(test.model, func(t *testing.T) {
			labels := statusLabels(trackedModels, test.model, models.StatusSuccess)
			if labels["model"] != test.want || labels["status"] != string(models.StatusSuccess) {
				t.Errorf("statusLabels() = %v, want model %q", labels, test.want)
			}
		})
	}
}
