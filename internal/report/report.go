package report

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/aggregator"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

// Input is everything a run summary shows.
type Input struct {
	// Models is the tracked model order; models with stats but not listed
	// here are appended in name order.
	Models   []string
	Stats    map[string]models.AggregatedStats
	Failures []models.FailureEntry
	// Assessed lists models that received a meta-assessment.
	Assessed []string
}

// Markdown renders the per-model score table followed by the failure log.
func Markdown(in Input) (string, error) {
	var buf bytes.Buffer

	buf.WriteString("## Scores\n\n")
	scores := newMarkdownTable([]string{"Model", "Documents", "Mean", "Min", "Max", "Assessed"}, &buf)

	var noData []string
	for _, model := range modelOrder(in) {
		stats, err := aggregator.StatsFor(in.Stats, model)
		if err != nil {
			noData = append(noData, model)
			continue
		}
		s := aggregator.Summarize(stats)
		assessed := "no"
		if slices.Contains(in.Assessed, model) {
			assessed = "yes"
		}
		if err := scores.Append([]string{
			s.Model,
			strconv.Itoa(s.Count),
			fmt.Sprintf("%.2f", s.Mean),
			strconv.Itoa(s.Min),
			strconv.Itoa(s.Max),
			assessed,
		}); err != nil {
			return "", fmt.Errorf("failed to append score row: %w", err)
		}
	}
	if err := scores.Render(); err != nil {
		return "", fmt.Errorf("failed to render score table: %w", err)
	}

	if len(noData) > 0 {
		buf.WriteString("\nNo judgments: ")
		for i, model := range noData {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(model)
		}
		buf.WriteString("\n")
	}

	if len(in.Failures) == 0 {
		return buf.String(), nil
	}

	fmt.Fprintf(&buf, "\n## Failures (%d)\n\n", len(in.Failures))
	failures := newMarkdownTable([]string{"Document", "Model", "Reason"}, &buf)
	for _, f := range in.Failures {
		model := f.Model
		if model == "" {
			model = "-"
		}
		if err := failures.Append([]string{f.DocumentID, model, f.Reason}); err != nil {
			return "", fmt.Errorf("failed to append failure row: %w", err)
		}
	}
	if err := failures.Render(); err != nil {
		return "", fmt.Errorf("failed to render failure table: %w", err)
	}

	return buf.String(), nil
}

func modelOrder(in Input) []string {
	order := slices.Clone(in.Models)
	var extra []string
	for model := range in.Stats {
		if !slices.Contains(order, model) {
			extra = append(extra, model)
		}
	}
	slices.Sort(extra)
	return append(order, extra...)
}
