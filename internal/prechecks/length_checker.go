package prechecks

import (
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

const DefaultMaxTopicWords = 5

// LengthChecker bounds the topic list of the first section: at least one
// topic, at most MaxTopics, each at most MaxTopicWords words.
type LengthChecker struct {
	Marker        string
	MaxTopics     int
	MaxTopicWords int
}

func NewLengthChecker(marker string, maxTopics int) *LengthChecker {
	return &LengthChecker{
		Marker:        marker,
		MaxTopics:     maxTopics,
		MaxTopicWords: DefaultMaxTopicWords,
	}
}

func (c *LengthChecker) Check(generationContext models.GenerationContext) models.CheckResult {
	result := models.CheckResult{
		Name:  "length-checker",
		Score: 0.0,
	}

	now := time.Now()

	sections := SplitSections(generationContext.Output, []string{c.Marker})
	if len(sections) == 0 {
		result.Reason = fmt.Sprintf("Section %q not found", c.Marker)
		result.Duration = time.Since(now)
		return result
	}

	topics := sections[0].Topics()
	switch {
	case len(topics) == 0:
		result.Reason = "No topics listed"
	case c.MaxTopics > 0 && len(topics) > c.MaxTopics:
		result.Score = 0.5
		result.Reason = fmt.Sprintf("Too many topics: %d, limit is %d", len(topics), c.MaxTopics)
	default:
		result.Score = 1.0
		result.Reason = "Topic count is acceptable"
		for _, topic := range topics {
			if c.MaxTopicWords > 0 && len(strings.Fields(topic)) > c.MaxTopicWords {
				result.Score = 0.5
				result.Reason = fmt.Sprintf("Topic %q is longer than %d words", topic, c.MaxTopicWords)
				break
			}
		}
	}

	result.Duration = time.Since(now)
	return result
}
