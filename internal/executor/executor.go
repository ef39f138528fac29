package executor

import (
	"errors"
	"slices"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

var ErrInvalidRequest = errors.New("invalid judge request")

// untrackedModel replaces model names outside the configured set in metric
// labels.
const untrackedModel = "other"

// Aggregator groups evaluation records into per-model stats.
type Aggregator interface {
	Aggregate(evaluations []models.DocumentEvaluation) map[string]models.AggregatedStats
}

func statusLabels(trackedModels []string, model string, status models.Status) prometheus.Labels {
	if !slices.Contains(trackedModels, model) {
		model = untrackedModel
	}
	return prometheus.Labels{"model": model, "status": string(status)}
}
