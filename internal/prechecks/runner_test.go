package prechecks

import (
	"testing"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

func TestRunner(t *testing.T) {
	runner := Default(sections, 10)

	tests := []struct {
		name       string
		source     string
		output     string
		wantFailed []string
	}{
		{
			name:   "well formed output",
			source: "A palestra abordou criptografia simétrica e gestão de chaves.",
			output: "Tarefa 1:\n- Criptografia simétrica\n- Gestão de chaves\nTarefa 2:\n- positivo",
		},
		{
			name:       "ungrounded topics only warn",
			source:     "Receitas de massa fresca.",
			output:     "Tarefa 1:\n- Criptografia\nTarefa 2:\n- negativo",
			wantFailed: nil,
		},
		{
			name:       "too many topics",
			source:     "x",
			output:     topics(12),
			wantFailed: []string{"length-checker"},
		},
		{
			name:       "free text",
			source:     "x",
			output:     "O texto fala sobre muitas coisas.",
			wantFailed: []string{"format-checker", "length-checker"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			results := runner.Run(models.GenerationContext{Source: test.source, Output: test.output})

			if len(results) != 3 {
				t.Fatalf("Expected 3 results, got %d", len(results))
			}
			for i, want := range []string{"format-checker", "length-checker", "overlap-checker"} {
				if results[i].Name != want {
					t.Errorf("result %d = %s, want %s", i, results[i].Name, want)
				}
				if results[i].Score < 0.0 || results[i].Score > 1.0 {
					t.Errorf("Score should be between 0 and 1, got %f for checker %s", results[i].Score, results[i].Name)
				}
			}

			failed := Failed(results)
			if len(failed) != len(test.wantFailed) {
				t.Fatalf("failed = %+v, want %v", failed, test.wantFailed)
			}
			for i, res := range failed {
				if res.Name != test.wantFailed[i] {
					t.Errorf("failed[%d] = %s, want %s", i, res.Name, test.wantFailed[i])
				}
			}
		})
	}
}
