package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

var (
	ErrNotFound   = errors.New("record not found")
	ErrInvalidKey = errors.New("invalid record key")
)

// Store persists judge output. Evaluations are keyed by document id,
// overwritten on re-run and listed in ascending document id order; the
// failure log is append-only.
type Store interface {
	SaveEvaluation(ctx context.Context, evaluation models.DocumentEvaluation) error
	GetEvaluation(ctx context.Context, documentID string) (models.DocumentEvaluation, error)
	ListEvaluations(ctx context.Context) ([]models.DocumentEvaluation, error)
	// DeleteEvaluation removes a document's evaluation. Deleting a missing
	// evaluation is not an error.
	DeleteEvaluation(ctx context.Context, documentID string) error
	AppendFailure(ctx context.Context, entry models.FailureEntry) error
	Failures(ctx context.Context) ([]models.FailureEntry, error)
	SaveAssessment(ctx context.Context, assessment models.ModelAssessment) error
	GetAssessment(ctx context.Context, model string) (models.ModelAssessment, error)
	Close() error
}

// ValidateKey rejects document ids and model names that cannot be used as a
// single path segment or object key component.
func ValidateKey(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator or NUL", ErrInvalidKey, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	return nil
}
