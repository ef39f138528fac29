package corpus

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/config"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/rs/zerolog"
)

var (
	ErrMissingCandidate = errors.New("missing candidate response")
	ErrDuplicateID      = errors.New("duplicate document id")
)

// Entry is a document joined with the candidate response of every tracked
// model, keyed by model name.
type Entry struct {
	Document   models.Document   `json:"document"`
	Candidates map[string]string `json:"candidates"`
}

// Candidate returns the response for model as a CandidateResponse.
func (e Entry) Candidate(model string) (models.CandidateResponse, bool) {
	text, ok := e.Candidates[model]
	return models.CandidateResponse{DocumentID: e.Document.ID, Model: model, Text: text}, ok
}

// Source loads the full joined corpus. Sources enumerate documents in
// ascending document id order, the same order stores list evaluations in.
type Source interface {
	Load(ctx context.Context) ([]Entry, error)
}

// SortEntries orders entries by document id.
func SortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Document.ID, b.Document.ID)
	})
}

// join applies the missing-candidate policy to one entry. It reports false
// when the entry must be dropped.
func join(entry Entry, tracked []string, policy string, logger *zerolog.Logger) (bool, error) {
	for _, model := range tracked {
		if _, ok := entry.Candidates[model]; ok {
			continue
		}
		if policy == config.MissingCandidateSkip {
			logger.Warn().
				Str("document_id", entry.Document.ID).
				Str("model", model).
				Msg("candidate missing, skipping document")
			return false, nil
		}
		return false, fmt.Errorf("%w: document %s, model %s", ErrMissingCandidate, entry.Document.ID, model)
	}
	return true, nil
}
