package judge

import (
	"context"
	"strings"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/metrics"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prompt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Validator asks a model a yes/no question about a generated text. Only an
// exact, case-insensitive match on the affirmative token counts as yes.
type Validator struct {
	renderer    Renderer
	client      Completer
	affirmative string
	logger      *zerolog.Logger
}

func NewValidator(renderer Renderer, client Completer, affirmative string, logger *zerolog.Logger) *Validator {
	return &Validator{
		renderer:    renderer,
		client:      client,
		affirmative: strings.TrimSpace(affirmative),
		logger:      logger,
	}
}

// Accepts never fails: render errors, call errors and ambiguous answers
// are all rejections.
func (v *Validator) Accepts(ctx context.Context, candidate string) bool {
	text, err := v.renderer.Render(prompt.KindValidation, map[string]string{
		prompt.VarResponse: candidate,
	})
	if err != nil {
		v.logger.Error().Err(err).Msg("failed to build validation prompt")
		return v.decide(false)
	}

	raw, err := v.client.Complete(ctx, text)
	if err != nil {
		v.logger.Warn().Err(err).Msg("validation call failed, treating as rejection")
		return v.decide(false)
	}

	accepted := v.affirmative != "" && strings.EqualFold(strings.TrimSpace(raw), v.affirmative)
	if !accepted {
		v.logger.Debug().Str("answer", truncate(raw, 80)).Msg("validator rejected candidate")
	}

	return v.decide(accepted)
}

func (v *Validator) decide(accepted bool) bool {
	decision := "rejected"
	if accepted {
		decision = "accepted"
	}
	metrics.ValidatorDecisions.With(prometheus.Labels{"decision": decision}).Inc()
	return accepted
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
