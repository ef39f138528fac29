package api

import "github.com/povarna/generative-ai-agents/summary-judge/internal/aggregator"

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// StatsResponse lists per-model score summaries in tracked-model order.
// Models without judgments are left out.
type StatsResponse struct {
	Models []aggregator.Summary `json:"models"`
}
