package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/corpus"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/judge"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/metrics"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/parser"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prompt"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store"
	"github.com/rs/zerolog"
)

// EvaluationExecutor judges every candidate of every document and persists
// one DocumentEvaluation per document.
type EvaluationExecutor struct {
	controller *judge.Controller
	store      store.Store
	models     []string
	task       string
	logger     *zerolog.Logger
}

func NewEvaluationExecutor(
	controller *judge.Controller,
	recordStore store.Store,
	trackedModels []string,
	task string,
	logger *zerolog.Logger,
) *EvaluationExecutor {
	return &EvaluationExecutor{
		controller: controller,
		store:      recordStore,
		models:     trackedModels,
		task:       task,
		logger:     logger,
	}
}

// RunReport summarizes one evaluation run.
type RunReport struct {
	RunID      string                `json:"run_id"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Documents  int                   `json:"documents"`
	Judged     int                   `json:"judged"`
	Failures   []models.FailureEntry `json:"failures"`
}

// Execute processes entries in order, models in declared order. Exhausted
// pairs are logged to the failure log and skipped; missing template
// variables, store errors and cancellation abort the run.
func (e *EvaluationExecutor) Execute(ctx context.Context, entries []corpus.Entry) (RunReport, error) {
	report := RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	logger := e.logger.With().Str("run_id", report.RunID).Logger()
	logger.Info().Int("documents", len(entries)).Strs("models", e.models).Msg("starting evaluation run")

	for _, entry := range entries {
		evaluation, failures, err := e.EvaluateDocument(ctx, entry)
		if err != nil {
			report.FinishedAt = time.Now().UTC()
			return report, err
		}

		report.Documents++
		report.Judged += len(evaluation.Judgments)
		report.Failures = append(report.Failures, failures...)
	}

	report.FinishedAt = time.Now().UTC()

	logger.Info().
		Int("documents", report.Documents).
		Int("judged", report.Judged).
		Int("failures", len(report.Failures)).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("evaluation run complete")

	return report, nil
}

// EvaluateDocument judges the candidates of one document and replaces its
// stored evaluation. A document with no successful judgment has its
// evaluation removed; failures are appended as they happen.
func (e *EvaluationExecutor) EvaluateDocument(ctx context.Context, entry corpus.Entry) (models.DocumentEvaluation, []models.FailureEntry, error) {
	evaluation := models.DocumentEvaluation{
		DocumentID: entry.Document.ID,
		Judgments:  make(map[string]models.Judgment, len(e.models)),
		CreatedAt:  time.Now().UTC(),
	}
	var failures []models.FailureEntry

	for _, model := range e.models {
		candidate, ok := entry.Candidate(model)
		if !ok {
			failure, err := e.recordFailure(ctx, entry.Document.ID, model, corpus.ErrMissingCandidate.Error())
			if err != nil {
				return evaluation, failures, err
			}
			metrics.Evaluations.With(statusLabels(e.models, model, models.StatusSkipped)).Inc()
			failures = append(failures, failure)
			continue
		}

		judgment, attempts, err := e.judge(ctx, entry.Document, candidate, e.task)
		if err != nil {
			if !errors.Is(err, judge.ErrExhausted) {
				return evaluation, failures, fmt.Errorf("document %s, model %s: %w", entry.Document.ID, model, err)
			}

			e.logger.Error().
				Err(err).
				Str("document_id", entry.Document.ID).
				Str("model", model).
				Int("attempts", attempts).
				Msg("judge exhausted, skipping candidate")

			failure, err := e.recordFailure(ctx, entry.Document.ID, model, err.Error())
			if err != nil {
				return evaluation, failures, err
			}
			metrics.Evaluations.With(statusLabels(e.models, model, models.StatusExhausted)).Inc()
			failures = append(failures, failure)
			continue
		}

		metrics.Evaluations.With(statusLabels(e.models, model, models.StatusSuccess)).Inc()
		evaluation = store.Merge(evaluation, model, judgment)

		e.logger.Debug().
			Str("document_id", entry.Document.ID).
			Str("model", model).
			Int("score", judgment.Score).
			Int("attempts", attempts).
			Msg("candidate judged")
	}

	if len(evaluation.Judgments) == 0 {
		if err := e.store.DeleteEvaluation(ctx, entry.Document.ID); err != nil {
			return evaluation, failures, fmt.Errorf("failed to clear evaluation %s: %w", entry.Document.ID, err)
		}
	} else if err := e.store.SaveEvaluation(ctx, evaluation); err != nil {
		return evaluation, failures, fmt.Errorf("failed to save evaluation %s: %w", entry.Document.ID, err)
	}

	e.logger.Info().
		Str("document_id", entry.Document.ID).
		Int("judged", len(evaluation.Judgments)).
		Int("failed", len(failures)).
		Msg("document evaluated")

	return evaluation, failures, nil
}

// Judge evaluates a single candidate outside a batch run. Exhaustion is
// reported in the result, not as an error.
func (e *EvaluationExecutor) Judge(ctx context.Context, req models.JudgeRequest) (models.JudgeResult, error) {
	result := models.JudgeResult{DocumentID: req.DocumentID, Model: req.Model}

	if err := validateRequest(req); err != nil {
		return result, err
	}

	task := req.Task
	if task == "" {
		task = e.task
	}

	judgment, attempts, err := e.judge(ctx,
		models.Document{ID: req.DocumentID, Text: req.Context},
		models.CandidateResponse{DocumentID: req.DocumentID, Model: req.Model, Text: req.Response},
		task,
	)
	result.Attempts = attempts

	switch {
	case errors.Is(err, judge.ErrExhausted):
		result.Status = models.StatusExhausted
		result.Error = err.Error()
		metrics.Evaluations.With(statusLabels(e.models, req.Model, models.StatusExhausted)).Inc()
		if req.Persist {
			if _, err := e.recordFailure(ctx, req.DocumentID, req.Model, result.Error); err != nil {
				return result, err
			}
			if err := e.dropJudgment(ctx, req.DocumentID, req.Model); err != nil {
				return result, err
			}
		}
		return result, nil
	case err != nil:
		return result, err
	}

	metrics.Evaluations.With(statusLabels(e.models, req.Model, models.StatusSuccess)).Inc()
	result.Status = models.StatusSuccess
	result.Judgment = &judgment

	if req.Persist {
		evaluation, err := e.store.GetEvaluation(ctx, req.DocumentID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return result, fmt.Errorf("failed to load evaluation %s: %w", req.DocumentID, err)
		}
		evaluation.DocumentID = req.DocumentID
		evaluation.CreatedAt = time.Now().UTC()
		if err := e.store.SaveEvaluation(ctx, store.Merge(evaluation, req.Model, judgment)); err != nil {
			return result, fmt.Errorf("failed to save evaluation %s: %w", req.DocumentID, err)
		}
	}

	return result, nil
}

// dropJudgment removes a stale judgment of model so an exhausted pair leaves
// no record behind.
func (e *EvaluationExecutor) dropJudgment(ctx context.Context, documentID, model string) error {
	evaluation, err := e.store.GetEvaluation(ctx, documentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load evaluation %s: %w", documentID, err)
	}

	evaluation, removed := store.Remove(evaluation, model)
	switch {
	case !removed:
		return nil
	case len(evaluation.Judgments) == 0:
		err = e.store.DeleteEvaluation(ctx, documentID)
	default:
		err = e.store.SaveEvaluation(ctx, evaluation)
	}
	if err != nil {
		return fmt.Errorf("failed to drop judgment %s/%s: %w", documentID, model, err)
	}

	e.logger.Info().Str("document_id", documentID).Str("model", model).Msg("stale judgment removed")
	return nil
}

func (e *EvaluationExecutor) judge(ctx context.Context, doc models.Document, candidate models.CandidateResponse, task string) (models.Judgment, int, error) {
	vars := map[string]string{
		prompt.VarContext:  doc.Text,
		prompt.VarResponse: candidate.Text,
	}
	if task != "" {
		vars[prompt.VarTask] = task
	}

	result, err := judge.Run(ctx, e.controller, prompt.KindJudging, vars, parser.ScoreExplanation)
	return result.Record, result.Attempts, err
}

func (e *EvaluationExecutor) recordFailure(ctx context.Context, documentID, model, reason string) (models.FailureEntry, error) {
	failure := models.FailureEntry{
		DocumentID: documentID,
		Model:      model,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.store.AppendFailure(ctx, failure); err != nil {
		return failure, fmt.Errorf("failed to append failure for %s: %w", documentID, err)
	}
	return failure, nil
}

func validateRequest(req models.JudgeRequest) error {
	var missing []string
	if strings.TrimSpace(req.DocumentID) == "" {
		missing = append(missing, "document_id")
	}
	if strings.TrimSpace(req.Model) == "" {
		missing = append(missing, "model")
	}
	if strings.TrimSpace(req.Context) == "" {
		missing = append(missing, "context")
	}
	if strings.TrimSpace(req.Response) == "" {
		missing = append(missing, "response")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if err := store.ValidateKey(req.DocumentID); err != nil {
		return fmt.Errorf("%w: document_id: %w", ErrInvalidRequest, err)
	}
	if err := store.ValidateKey(req.Model); err != nil {
		return fmt.Errorf("%w: model: %w", ErrInvalidRequest, err)
	}
	return nil
}
