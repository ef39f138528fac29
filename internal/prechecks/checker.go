package prechecks

import (
	"strings"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

type Checker interface {
	Check(generationContext models.GenerationContext) models.CheckResult
}

// Section is one "Tarefa N:" block of a generated answer.
type Section struct {
	Marker string
	Lines  []string
}

// SplitSections cuts text at each marker, in marker order. Markers that do
// not appear are absent from the result.
func SplitSections(text string, markers []string) []Section {
	var sections []Section
	var current *Section

	for line := range strings.Lines(text) {
		trimmed := strings.TrimSpace(line)

		matched := ""
		for _, marker := range markers {
			if strings.HasPrefix(trimmed, marker) {
				matched = marker
				break
			}
		}

		if matched != "" {
			sections = append(sections, Section{Marker: matched})
			current = &sections[len(sections)-1]
			if rest := strings.TrimSpace(strings.TrimPrefix(trimmed, matched)); rest != "" {
				current.Lines = append(current.Lines, rest)
			}
			continue
		}

		if current != nil && trimmed != "" {
			current.Lines = append(current.Lines, trimmed)
		}
	}

	return sections
}

// Topics returns the "-" bullet items of a section without the bullet.
func (s Section) Topics() []string {
	var topics []string
	for _, line := range s.Lines {
		if item, ok := strings.CutPrefix(line, "-"); ok {
			topics = append(topics, strings.TrimSpace(item))
		}
	}
	return topics
}
