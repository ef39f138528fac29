package prechecks

import (
	"fmt"
	"strings"
	"testing"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

func topics(n int) string {
	var b strings.Builder
	b.WriteString("Tarefa 1:\n")
	for i := range n {
		fmt.Fprintf(&b, "- tópico %d\n", i+1)
	}
	b.WriteString("Tarefa 2:\n- positivo")
	return b.String()
}

func TestLengthChecker(t *testing.T) {
	checker := NewLengthChecker("Tarefa 1:", 10)

	tests := []struct {
		name   string
		output string
		score  float64
		reason string
	}{
		{name: "Missing section", output: "- a\n- b", score: 0.0, reason: "not found"},
		{name: "No topics", output: "Tarefa 1:\nnada\nTarefa 2:\n- positivo", score: 0.0, reason: "No topics listed"},
		{name: "Within limit", output: topics(10), score: 1.0, reason: "acceptable"},
		{name: "Too many topics", output: topics(11), score: 0.5, reason: "Too many topics: 11"},
		{
			name:   "Topic too long",
			output: "Tarefa 1:\n- um dois três quatro cinco seis\nTarefa 2:\n- positivo",
			score:  0.5,
			reason: "longer than 5 words",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res := checker.Check(models.GenerationContext{Output: test.output})

			if res.Score != test.score {
				t.Errorf("Score: %f, want: %f", res.Score, test.score)
			}
			if !strings.Contains(res.Reason, test.reason) {
				t.Errorf("Reason: %s, want: %s", res.Reason, test.reason)
			}
		})
	}
}
