package aggregator

import (
	"errors"
	"fmt"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/rs/zerolog"
)

var ErrNoData = errors.New("no evaluation records for model")

type Aggregator struct {
	logger *zerolog.Logger
}

func NewAggregator(logger *zerolog.Logger) *Aggregator {
	return &Aggregator{
		logger: logger,
	}
}

// Aggregate groups every record by model. Explanations keep the order the
// records were encountered in: evaluations in slice order, and within one
// evaluation the declared model order.
func (a *Aggregator) Aggregate(evaluations []models.DocumentEvaluation) map[string]models.AggregatedStats {
	stats := make(map[string]models.AggregatedStats)
	sums := make(map[string]int)

	for _, evaluation := range evaluations {
		for _, record := range evaluation.Records() {
			s := stats[record.Model]
			s.Model = record.Model
			s.Scores = append(s.Scores, record.Score)
			s.Explanations = append(s.Explanations, record.Explanation)
			s.Count++
			stats[record.Model] = s
			sums[record.Model] += record.Score
		}
	}

	for model, s := range stats {
		s.Mean = float64(sums[model]) / float64(s.Count)
		stats[model] = s

		a.logger.
			Debug().
			Str("model", model).
			Int("count", s.Count).
			Float64("mean", s.Mean).
			Msg("aggregated model scores")
	}

	a.logger.
		Info().
		Int("documents", len(evaluations)).
		Int("models", len(stats)).
		Msg("aggregation complete")

	return stats
}

// StatsFor returns the stats for model, or ErrNoData when it has no records.
func StatsFor(stats map[string]models.AggregatedStats, model string) (models.AggregatedStats, error) {
	s, ok := stats[model]
	if !ok || s.Count == 0 {
		return models.AggregatedStats{Model: model}, fmt.Errorf("%w: %s", ErrNoData, model)
	}
	return s, nil
}

// Summary holds the spread of a model's scores for reporting.
type Summary struct {
	Model string  `json:"model"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
}

func Summarize(s models.AggregatedStats) Summary {
	summary := Summary{Model: s.Model, Count: s.Count, Mean: s.Mean}
	for i, score := range s.Scores {
		if i == 0 || score < summary.Min {
			summary.Min = score
		}
		if i == 0 || score > summary.Max {
			summary.Max = score
		}
	}
	return summary
}
