package report

import (
	"strings"
	"testing"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

func TestMarkdown(t *testing.T) {
	in := Input{
		Models: []string{"qwen", "llama"},
		Stats: map[string]models.AggregatedStats{
			"qwen":    {Model: "qwen", Scores: []int{8, 6, 9}, Count: 3, Mean: 23.0 / 3},
			"mistral": {Model: "mistral", Scores: []int{4}, Count: 1, Mean: 4},
		},
		Failures: []models.FailureEntry{
			{DocumentID: "doc2", Model: "qwen", Reason: "exhausted after 3 attempts"},
			{DocumentID: "doc9", Reason: "missing candidate"},
		},
		Assessed: []string{"qwen"},
	}

	got, err := Markdown(in)
	if err != nil {
		t.Fatalf("Markdown() error: %v", err)
	}
	t.Logf("Generated report:\n%s", got)

	for _, want := range []string{"## Scores", "7.67", "| qwen", "| mistral", "No judgments: llama", "## Failures (2)", "doc2", "exhausted after 3 attempts"} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q", want)
		}
	}

	if strings.Index(got, "qwen") > strings.Index(got, "mistral") {
		t.Error("tracked models should be listed before untracked ones")
	}
}

func TestMarkdown_NoFailures(t *testing.T) {
	got, err := Markdown(Input{Models: []string{"qwen"}})
	if err != nil {
		t.Fatalf("Markdown() error: %v", err)
	}
	if strings.Contains(got, "## Failures") {
		t.Error("failure section should be omitted when there are none")
	}
	if !strings.Contains(got, "No judgments: qwen") {
		t.Errorf("expected qwen listed without judgments, got:\n%s", got)
	}
}
