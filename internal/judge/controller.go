package judge

import (
	"context"
	"errors"
	"fmt"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/metrics"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/parser"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prompt"
	"github.com/rs/zerolog"
)

type State string

const (
	StatePending    State = "pending"
	StateAttempting State = "attempting"
	StateSuccess    State = "success"
	StateExhausted  State = "exhausted"
)

const DefaultMaxAttempts = 3

var ErrExhausted = errors.New("retry budget exhausted")

// ExhaustedError is returned when no attempt produced a valid record.
type ExhaustedError struct {
	Kind     prompt.Kind
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: no valid response after %d attempts: %v", e.Kind, e.Attempts, e.Last)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Renderer produces the prompt text for a template kind.
type Renderer interface {
	Render(kind prompt.Kind, vars map[string]string) (string, error)
}

// Controller drives render, judge call and parse up to a fixed attempt budget.
type Controller struct {
	renderer    Renderer
	client      Completer
	maxAttempts int
	hint        string
	logger      *zerolog.Logger
}

type Options struct {
	MaxAttempts int
	// CorrectiveHint, when non-empty, is appended to the prompt of every
	// attempt after the first.
	CorrectiveHint string
}

func NewController(renderer Renderer, client Completer, opts Options, logger *zerolog.Logger) *Controller {
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Controller{
		renderer:    renderer,
		client:      client,
		maxAttempts: maxAttempts,
		hint:        opts.CorrectiveHint,
		logger:      logger,
	}
}

func (c *Controller) MaxAttempts() int {
	return c.maxAttempts
}

// Result is the terminal outcome of a controller run.
type Result[T any] struct {
	Record   T
	State    State
	Attempts int
}

// Run obtains a record of the given shape. It returns on the first attempt
// whose output parses. Judge call failures count as failed attempts. A
// missing template variable or a cancelled context aborts immediately.
func Run[T any](ctx context.Context, c *Controller, kind prompt.Kind, vars map[string]string, shape parser.Shape[T]) (Result[T], error) {
	result := Result[T]{State: StatePending}
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.State = StateAttempting
		result.Attempts = attempt

		text, err := c.renderer.Render(kind, vars)
		if err != nil {
			return result, err
		}
		if attempt > 1 && c.hint != "" {
			text += c.hint
		}

		raw, err := c.client.Complete(ctx, text)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			lastErr = err
			metrics.JudgeAttempts.With(attemptLabels(kind, "client_error")).Inc()
			c.logger.Warn().
				Err(err).
				Str("kind", string(kind)).
				Int("attempt", attempt).
				Int("max_attempts", c.maxAttempts).
				Msg("judge call failed")
			continue
		}

		record, err := parser.Parse(raw, shape)
		if err != nil {
			lastErr = err
			metrics.JudgeAttempts.With(attemptLabels(kind, "parse_error")).Inc()
			c.logger.Warn().
				Err(err).
				Str("kind", string(kind)).
				Int("attempt", attempt).
				Int("max_attempts", c.maxAttempts).
				Msg("invalid judge response, retrying")
			continue
		}

		metrics.JudgeAttempts.With(attemptLabels(kind, "success")).Inc()
		metrics.JudgeRuns.With(runLabels(kind, StateSuccess)).Inc()

		result.Record = record
		result.State = StateSuccess
		return result, nil
	}

	metrics.JudgeRuns.With(runLabels(kind, StateExhausted)).Inc()
	result.State = StateExhausted

	return result, &ExhaustedError{Kind: kind, Attempts: result.Attempts, Last: lastErr}
}
