package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/aggregator"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/judge"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/metrics"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/parser"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prompt"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store"
	"github.com/rs/zerolog"
)

// AssessmentExecutor produces one meta-assessment per model from the
// aggregated judgments.
type AssessmentExecutor struct {
	controller *judge.Controller
	store      store.Store
	aggregator Aggregator
	models     []string
	separator  string
	logger     *zerolog.Logger
}

func NewAssessmentExecutor(
	controller *judge.Controller,
	recordStore store.Store,
	agg Aggregator,
	trackedModels []string,
	separator string,
	logger *zerolog.Logger,
) *AssessmentExecutor {
	return &AssessmentExecutor{
		controller: controller,
		store:      recordStore,
		aggregator: agg,
		models:     trackedModels,
		separator:  separator,
		logger:     logger,
	}
}

// AssessmentReport lists what happened to every tracked model.
type AssessmentReport struct {
	Assessed []string `json:"assessed"`
	NoData   []string `json:"no_data"`
	Failed   []string `json:"failed"`
}

// Stats aggregates every persisted evaluation.
func (e *AssessmentExecutor) Stats(ctx context.Context) (map[string]models.AggregatedStats, error) {
	evaluations, err := e.store.ListEvaluations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluations: %w", err)
	}
	return e.aggregator.Aggregate(evaluations), nil
}

// Execute assesses each tracked model in declared order. Models without
// records and models whose assessment exhausts its attempts are skipped.
func (e *AssessmentExecutor) Execute(ctx context.Context, stats map[string]models.AggregatedStats, trackedModels []string) (AssessmentReport, error) {
	var report AssessmentReport

	for _, model := range trackedModels {
		modelStats, err := aggregator.StatsFor(stats, model)
		if err != nil {
			e.logger.Warn().Str("model", model).Msg("no data for model, skipping assessment")
			metrics.Assessments.With(statusLabels(e.models, model, models.StatusSkipped)).Inc()
			report.NoData = append(report.NoData, model)
			continue
		}

		if _, err := e.Assess(ctx, modelStats); err != nil {
			if !errors.Is(err, judge.ErrExhausted) {
				return report, err
			}
			report.Failed = append(report.Failed, model)
			continue
		}

		report.Assessed = append(report.Assessed, model)
	}

	return report, nil
}

// AssessModel aggregates the persisted evaluations and assesses one model.
func (e *AssessmentExecutor) AssessModel(ctx context.Context, model string) (models.ModelAssessment, error) {
	if err := store.ValidateKey(model); err != nil {
		return models.ModelAssessment{}, fmt.Errorf("%w: model: %w", ErrInvalidRequest, err)
	}

	stats, err := e.Stats(ctx)
	if err != nil {
		return models.ModelAssessment{}, err
	}

	modelStats, err := aggregator.StatsFor(stats, model)
	if err != nil {
		return models.ModelAssessment{}, err
	}

	return e.Assess(ctx, modelStats)
}

// Assess runs the assessment prompt for one model's stats and persists the
// result.
func (e *AssessmentExecutor) Assess(ctx context.Context, stats models.AggregatedStats) (models.ModelAssessment, error) {
	if stats.Count == 0 {
		return models.ModelAssessment{}, fmt.Errorf("%w: %s", aggregator.ErrNoData, stats.Model)
	}

	vars := map[string]string{
		prompt.VarModel:        stats.Model,
		prompt.VarAverageScore: fmt.Sprintf("%.2f", stats.Mean),
		prompt.VarExplanations: strings.Join(stats.Explanations, e.separator),
	}

	result, err := judge.Run(ctx, e.controller, prompt.KindAssessment, vars, parser.ModelAssessmentShape)
	if err != nil {
		if errors.Is(err, judge.ErrExhausted) {
			e.logger.Error().
				Err(err).
				Str("model", stats.Model).
				Int("attempts", result.Attempts).
				Msg("assessment exhausted")
			metrics.Assessments.With(statusLabels(e.models, stats.Model, models.StatusExhausted)).Inc()
		}
		return models.ModelAssessment{}, err
	}

	assessment := models.ModelAssessment{
		Model:        stats.Model,
		Assessment:   result.Record,
		AverageScore: stats.Mean,
		Count:        stats.Count,
		CreatedAt:    time.Now().UTC(),
	}

	if err := e.store.SaveAssessment(ctx, assessment); err != nil {
		return assessment, fmt.Errorf("failed to save assessment %s: %w", stats.Model, err)
	}

	metrics.Assessments.With(statusLabels(e.models, stats.Model, models.StatusSuccess)).Inc()
	e.logger.Info().
		Str("model", stats.Model).
		Float64("average_score", stats.Mean).
		Int("count", stats.Count).
		Msg("assessment saved")

	return assessment, nil
}
