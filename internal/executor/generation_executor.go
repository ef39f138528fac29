package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/judge"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/metrics"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prechecks"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prompt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// PrecheckRunner runs the static checks on a generated output.
type PrecheckRunner interface {
	Run(generationContext models.GenerationContext) []models.CheckResult
}

// Validator decides whether a generated output has the requested format.
type Validator interface {
	Accepts(ctx context.Context, candidate string) bool
}

// Generation is the outcome of generating one candidate response.
type Generation struct {
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
	Attempts   int    `json:"attempts"`
	Accepted   bool   `json:"accepted"`
}

// GenerationExecutor produces candidate responses and gates them with the
// static checks and the validator. After the attempt budget it yields the
// fallback text instead of failing.
type GenerationExecutor struct {
	renderer    judge.Renderer
	generator   judge.Completer
	prechecks   PrecheckRunner
	validator   Validator
	question    string
	fallback    string
	maxAttempts int
	model       string
	logger      *zerolog.Logger
}

type GenerationOptions struct {
	Model       string
	Question    string
	Fallback    string
	MaxAttempts int
}

func NewGenerationExecutor(
	renderer judge.Renderer,
	generator judge.Completer,
	checks PrecheckRunner,
	validator Validator,
	opts GenerationOptions,
	logger *zerolog.Logger,
) *GenerationExecutor {
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = judge.DefaultMaxAttempts
	}

	return &GenerationExecutor{
		renderer:    renderer,
		generator:   generator,
		prechecks:   checks,
		validator:   validator,
		question:    opts.Question,
		fallback:    opts.Fallback,
		maxAttempts: maxAttempts,
		model:       opts.Model,
		logger:      logger,
	}
}

// Generate returns the first output that passes the static checks and the
// validator. Only template errors and cancellation are returned as errors.
func (e *GenerationExecutor) Generate(ctx context.Context, doc models.Document) (Generation, error) {
	generation := Generation{DocumentID: doc.ID}

	text, err := e.renderer.Render(prompt.KindGeneration, map[string]string{
		prompt.VarContext:  doc.Text,
		prompt.VarQuestion: e.question,
	})
	if err != nil {
		return generation, err
	}

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return generation, err
		}
		generation.Attempts = attempt

		output, err := e.generator.Complete(ctx, text)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return generation, ctxErr
			}
			e.logger.Warn().Err(err).Str("document_id", doc.ID).Int("attempt", attempt).Msg("generation call failed")
			continue
		}
		output = strings.TrimSpace(output)

		if failed := prechecks.Failed(e.prechecks.Run(models.GenerationContext{
			DocumentID: doc.ID,
			Source:     doc.Text,
			Output:     output,
		})); len(failed) > 0 {
			e.logger.Warn().
				Str("document_id", doc.ID).
				Int("attempt", attempt).
				Str("check", failed[0].Name).
				Str("reason", failed[0].Reason).
				Msg("generated output failed static checks")
			continue
		}

		if !e.validator.Accepts(ctx, output) {
			e.logger.Warn().Str("document_id", doc.ID).Int("attempt", attempt).Msg("validator rejected generated output")
			continue
		}

		generation.Text = output
		generation.Accepted = true
		metrics.Generations.With(prometheus.Labels{"model": e.model, "status": string(models.StatusSuccess)}).Inc()
		return generation, nil
	}

	e.logger.Error().
		Str("document_id", doc.ID).
		Int("attempts", generation.Attempts).
		Msg("no valid output generated, using fallback")
	metrics.Generations.With(prometheus.Labels{"model": e.model, "status": string(models.StatusExhausted)}).Inc()

	generation.Text = e.fallback
	return generation, nil
}

// Execute generates an output for every document and hands each one to
// write, stopping at the first write error.
func (e *GenerationExecutor) Execute(ctx context.Context, docs []models.Document, write func(Generation) error) ([]Generation, error) {
	generations := make([]Generation, 0, len(docs))

	for _, doc := range docs {
		generation, err := e.Generate(ctx, doc)
		if err != nil {
			return generations, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		if err := write(generation); err != nil {
			return generations, fmt.Errorf("failed to write output for %s: %w", doc.ID, err)
		}
		generations = append(generations, generation)
	}

	return generations, nil
}
