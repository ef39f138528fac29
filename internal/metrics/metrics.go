package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JudgeAttempts counts every judge call made by the retry controller.
	// outcome is one of success, parse_error, client_error.
	JudgeAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_judge_attempts_total",
			Help: "Judge calls made by the retry controller",
		},
		[]string{"kind", "outcome"},
	)

	// JudgeRuns counts finished controller runs by terminal state.
	JudgeRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_judge_runs_total",
			Help: "Retry controller runs by terminal state",
		},
		[]string{"kind", "state"},
	)

	// Evaluations, Assessments and Generations label only configured models;
	// any other name is reported as "other".
	Evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_judge_evaluations_total",
			Help: "Per (document, model) evaluations by status",
		},
		[]string{"model", "status"},
	)

	Assessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_judge_assessments_total",
			Help: "Per-model meta-assessments by status",
		},
		[]string{"model", "status"},
	)

	ValidatorDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_judge_validator_decisions_total",
			Help: "Secondary validator decisions",
		},
		[]string{"decision"},
	)

	Generations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_judge_generations_total",
			Help: "Generated candidate responses by status",
		},
		[]string{"model", "status"},
	)
)
