package judge

import (
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prompt"
	"github.com/prometheus/client_golang/prometheus"
)

func attemptLabels(kind prompt.Kind, outcome string) prometheus.Labels {
	return prometheus.Labels{"kind": string(kind), "outcome": outcome}
}

func runLabels(kind prompt.Kind, state State) prometheus.Labels {
	return prometheus.Labels{"kind": string(kind), "state": string(state)}
}
