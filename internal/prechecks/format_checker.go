package prechecks

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

type FormatChecker struct {
	Sections  []string
	Forbidden string
}

func NewFormatChecker(sections []string) *FormatChecker {
	return &FormatChecker{
		Sections:  sections,
		Forbidden: "*",
	}
}

var repeatedPunctuation = regexp.MustCompile(`[!?.]{3,}`)

// Check requires every section marker in order, rejects forbidden
// characters and penalizes repeated punctuation.
func (c *FormatChecker) Check(generationContext models.GenerationContext) models.CheckResult {
	result := models.CheckResult{
		Name:  "format-checker",
		Score: 0.0,
	}

	now := time.Now()
	output := strings.TrimSpace(generationContext.Output)

	if len(output) == 0 {
		result.Reason = "Empty output"
		result.Duration = time.Since(now)
		return result
	}

	sections := SplitSections(output, c.Sections)
	if len(sections) != len(c.Sections) {
		result.Reason = fmt.Sprintf("Expected %d sections, found %d", len(c.Sections), len(sections))
		result.Duration = time.Since(now)
		return result
	}
	for i, section := range sections {
		if section.Marker != c.Sections[i] {
			result.Reason = fmt.Sprintf("Section %q out of order", section.Marker)
			result.Duration = time.Since(now)
			return result
		}
	}

	if c.Forbidden != "" && strings.ContainsAny(output, c.Forbidden) {
		result.Reason = fmt.Sprintf("Output contains forbidden characters %q", c.Forbidden)
		result.Score = 0.5
		result.Duration = time.Since(now)
		return result
	}

	if repeatedPunctuation.MatchString(output) {
		result.Reason = "Output contains repeatable characters"
		result.Score = 0.5
		result.Duration = time.Since(now)
		return result
	}

	result.Reason = "Valid format"
	result.Score = 1.0
	result.Duration = time.Since(now)

	return result
}
