package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

func TestParse_ScoreExplanation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    models.Judgment
		wantErr bool
	}{
		{
			name: "valid object",
			raw:  `{"score": 8, "explanation": "Cobre os temas principais."}`,
			want: models.Judgment{Score: 8, Explanation: "Cobre os temas principais."},
		},
		{
			name: "fenced object",
			raw:  "```json\n{\"score\": 0, \"explanation\": \"vazio\"}\n```",
			want: models.Judgment{Score: 0, Explanation: "vazio"},
		},
		{
			name: "integral float coerces",
			raw:  `{"score": 10.0, "explanation": "ok"}`,
			want: models.Judgment{Score: 10, Explanation: "ok"},
		},
		{
			name: "numeric string coerces",
			raw:  `{"score": " 7 ", "explanation": "ok"}`,
			want: models.Judgment{Score: 7, Explanation: "ok"},
		},
		{name: "score above range", raw: `{"score": 11, "explanation": "ok"}`, wantErr: true},
		{name: "negative score", raw: `{"score": -1, "explanation": "ok"}`, wantErr: true},
		{name: "fractional score", raw: `{"score": 7.5, "explanation": "ok"}`, wantErr: true},
		{name: "boolean score", raw: `{"score": true, "explanation": "ok"}`, wantErr: true},
		{name: "null score", raw: `{"score": null, "explanation": "ok"}`, wantErr: true},
		{name: "non numeric string score", raw: `{"score": "high", "explanation": "ok"}`, wantErr: true},
		{name: "empty explanation", raw: `{"score": 5, "explanation": ""}`, wantErr: true},
		{name: "blank explanation", raw: `{"score": 5, "explanation": "   "}`, wantErr: true},
		{name: "explanation wrong type", raw: `{"score": 5, "explanation": 3}`, wantErr: true},
		{name: "missing explanation", raw: `{"score": 5}`, wantErr: true},
		{name: "missing score", raw: `{"explanation": "ok"}`, wantErr: true},
		{name: "extra field", raw: `{"score": 5, "explanation": "ok", "confidence": 0.9}`, wantErr: true},
		{name: "not json", raw: `not json at all`, wantErr: true},
		{name: "empty", raw: ``, wantErr: true},
		{name: "array", raw: `[{"score": 5, "explanation": "ok"}]`, wantErr: true},
		{name: "null", raw: `null`, wantErr: true},
		{name: "trailing text", raw: `{"score": 5, "explanation": "ok"} obrigado!`, wantErr: true},
		{name: "two objects", raw: `{"score": 5, "explanation": "ok"}{"score": 6, "explanation": "ok"}`, wantErr: true},
		{name: "prose around object", raw: `Aqui está: {"score": 5, "explanation": "ok"}`, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse(test.raw, ScoreExplanation)
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if !errors.Is(err, ErrParse) {
					t.Errorf("expected ErrParse, got %v", err)
				}
				if got != (models.Judgment{}) {
					t.Errorf("expected zero record on failure, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_ModelAssessment(t *testing.T) {
	valid := `{
		"strengths": ["clareza"],
		"weaknesses": ["excesso de tópicos", "formato"],
		"recommendations": ["limitar a 10 tópicos"],
		"summary": "Desempenho consistente."
	}`

	got, err := Parse(valid, ModelAssessmentShape)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := models.Assessment{
		Strengths:       []string{"clareza"},
		Weaknesses:      []string{"excesso de tópicos", "formato"},
		Recommendations: []string{"limitar a 10 tópicos"},
		Summary:         "Desempenho consistente.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	invalid := []struct {
		name string
		raw  string
	}{
		{"empty strengths", `{"strengths": [], "weaknesses": ["a"], "recommendations": ["b"], "summary": "c"}`},
		{"blank item", `{"strengths": [" "], "weaknesses": ["a"], "recommendations": ["b"], "summary": "c"}`},
		{"string instead of list", `{"strengths": "a", "weaknesses": ["a"], "recommendations": ["b"], "summary": "c"}`},
		{"non string item", `{"strengths": [1], "weaknesses": ["a"], "recommendations": ["b"], "summary": "c"}`},
		{"missing summary", `{"strengths": ["a"], "weaknesses": ["a"], "recommendations": ["b"]}`},
		{"empty summary", `{"strengths": ["a"], "weaknesses": ["a"], "recommendations": ["b"], "summary": ""}`},
		{"missing recommendations", `{"strengths": ["a"], "weaknesses": ["a"], "summary": "c"}`},
		{"score explanation shape", `{"score": 5, "explanation": "ok"}`},
	}

	for _, test := range invalid {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Parse(test.raw, ModelAssessmentShape); !errors.Is(err, ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestParseError_Message(t *testing.T) {
	_, err := Parse(`{"score": 5}`, ScoreExplanation)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Shape != "ScoreExplanation" {
		t.Errorf("Shape = %q, want ScoreExplanation", parseErr.Shape)
	}
	if parseErr.Reason != `missing field "explanation"` {
		t.Errorf("Reason = %q", parseErr.Reason)
	}
}

func TestStripMarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `  {"a":1}  `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"unterminated fence", "```json", "```json"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := StripMarkdownCodeBlock(test.input); got != test.want {
				t.Errorf("StripMarkdownCodeBlock() = %q, want %q", got, test.want)
			}
		})
	}
}
