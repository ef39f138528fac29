package models

import (
	"slices"
	"time"
)

// Document is a source text from the corpus. Immutable once loaded.
type Document struct {
	ID   string `json:"document_id"`
	Text string `json:"text"`
}

// CandidateResponse is the text an evaluated model produced for one document.
type CandidateResponse struct {
	DocumentID string `json:"document_id"`
	Model      string `json:"model"`
	Text       string `json:"text"`
}

// Judgment is the structured reply of the judge for a single candidate.
type Judgment struct {
	Score       int    `json:"score" validate:"min=0,max=10"`
	Explanation string `json:"explanation" validate:"required"`
}

// EvaluationRecord is one successful judgment for a (document, model) pair.
type EvaluationRecord struct {
	DocumentID  string `json:"document_id"`
	Model       string `json:"model"`
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// DocumentEvaluation groups the judgments produced for one document.
// It is persisted as {"<model>": {"score": ..., "explanation": ...}}.
type DocumentEvaluation struct {
	DocumentID string              `json:"document_id"`
	Judgments  map[string]Judgment `json:"judgments"`
	// Order is the declared model order the judgments were produced in.
	Order     []string  `json:"order,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Records flattens the evaluation into per-model records, following Order
// and then any remaining models sorted by name.
func (d DocumentEvaluation) Records() []EvaluationRecord {
	records := make([]EvaluationRecord, 0, len(d.Judgments))
	seen := make(map[string]bool, len(d.Judgments))

	for _, model := range d.Order {
		j, ok := d.Judgments[model]
		if !ok || seen[model] {
			continue
		}
		seen[model] = true
		records = append(records, EvaluationRecord{DocumentID: d.DocumentID, Model: model, Score: j.Score, Explanation: j.Explanation})
	}

	rest := make([]string, 0)
	for model := range d.Judgments {
		if !seen[model] {
			rest = append(rest, model)
		}
	}
	slices.Sort(rest)
	for _, model := range rest {
		j := d.Judgments[model]
		records = append(records, EvaluationRecord{DocumentID: d.DocumentID, Model: model, Score: j.Score, Explanation: j.Explanation})
	}

	return records
}

// Assessment is the structured meta-assessment shape returned by the judge.
type Assessment struct {
	Strengths       []string `json:"strengths" validate:"required,min=1,dive,required"`
	Weaknesses      []string `json:"weaknesses" validate:"required,min=1,dive,required"`
	Recommendations []string `json:"recommendations" validate:"required,min=1,dive,required"`
	Summary         string   `json:"summary" validate:"required"`
}

// ModelAssessment is the persisted meta-assessment for one model.
type ModelAssessment struct {
	Model string `json:"model"`
	Assessment
	AverageScore float64   `json:"average_score"`
	Count        int       `json:"count"`
	CreatedAt    time.Time `json:"created_at"`
}

// AggregatedStats is a derived per-model view over evaluation records.
type AggregatedStats struct {
	Model        string   `json:"model"`
	Scores       []int    `json:"scores"`
	Explanations []string `json:"explanations"`
	Count        int      `json:"count"`
	Mean         float64  `json:"mean"`
}

// FailureEntry is one line of the append-only failure log.
type FailureEntry struct {
	DocumentID string    `json:"document_id"`
	Model      string    `json:"model,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// JudgeRequest asks for a single (document, candidate) judgment outside a batch run.
type JudgeRequest struct {
	DocumentID string `json:"document_id"`
	Model      string `json:"model"`
	Context    string `json:"context"`
	Response   string `json:"response"`
	Task       string `json:"task,omitempty"`
	Persist    bool   `json:"persist,omitempty"`
}

// JudgeResult is the outcome of a JudgeRequest.
type JudgeResult struct {
	DocumentID string    `json:"document_id"`
	Model      string    `json:"model"`
	Judgment   *Judgment `json:"judgment,omitempty"`
	Attempts   int       `json:"attempts"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

type Status string

const (
	StatusSuccess   Status = "success"
	StatusExhausted Status = "exhausted"
	StatusSkipped   Status = "skipped"
)

// GenerationContext is the input of the static checks run on generated text.
type GenerationContext struct {
	DocumentID string `json:"document_id"`
	Source     string `json:"source"`
	Output     string `json:"output"`
}

// CheckResult is the outcome of one static check, scored in [0, 1].
type CheckResult struct {
	Name     string        `json:"name"`
	Score    float64       `json:"score"`
	Reason   string        `json:"reason"`
	Duration time.Duration `json:"duration"`
}
