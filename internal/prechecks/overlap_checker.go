package prechecks

import (
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

// OverlapChecker scores how many distinct topic words of the generated
// output also occur in the source document. A low ratio points to topics
// that are not grounded in the source.
type OverlapChecker struct {
	Marker              string
	MinOverlapThreshold float64
}

func NewOverlapChecker(marker string) *OverlapChecker {
	return &OverlapChecker{
		Marker:              marker,
		MinOverlapThreshold: 0.1,
	}
}

func (c *OverlapChecker) Check(generationContext models.GenerationContext) models.CheckResult {
	result := models.CheckResult{
		Name:  "overlap-checker",
		Score: 0.0,
	}
	now := time.Now()

	if len(generationContext.Source) == 0 {
		result.Reason = "Empty source"
		result.Duration = time.Since(now)
		return result
	}

	sections := SplitSections(generationContext.Output, []string{c.Marker})
	if len(sections) == 0 || len(sections[0].Topics()) == 0 {
		result.Reason = "Empty topics"
		result.Duration = time.Since(now)
		return result
	}

	topicTokens := extractUniqueTokens(tokenize(strings.Join(sections[0].Topics(), " ")))
	if len(topicTokens) == 0 {
		result.Reason = "Empty topics"
		result.Duration = time.Since(now)
		return result
	}
	sourceTokens := extractUniqueTokens(tokenize(generationContext.Source))

	count := 0
	for token := range topicTokens {
		if sourceTokens[token] {
			count++
		}
	}

	score := float64(count) / float64(len(topicTokens))
	result.Score = score
	if score < c.MinOverlapThreshold {
		result.Reason = fmt.Sprintf("Low keyword overlap: %.0f%% of topic terms found in source", score*100)
	} else {
		result.Reason = "There is a good overlap"
	}

	result.Duration = time.Since(now)
	return result
}

func extractUniqueTokens(tokens []string) map[string]bool {
	unique := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		unique[t] = true
	}
	return unique
}

var stopWords = map[string]bool{
	"a": true, "o": true, "as": true, "os": true, "um": true, "uma": true,
	"de": true, "da": true, "do": true, "das": true, "dos": true,
	"e": true, "em": true, "no": true, "na": true, "nos": true, "nas": true,
	"para": true, "por": true, "com": true, "sem": true, "que": true,
	"se": true, "ao": true, "aos": true, "ou": true, "é": true,
	"the": true, "an": true, "of": true, "and": true, "to": true, "in": true,
}

func tokenize(s string) []string {
	s = strings.ToLower(s)
	s = removePunctuation(s)

	tokens := []string{}
	for word := range strings.FieldsSeq(s) {
		if !stopWords[word] && len([]rune(word)) > 1 {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func removePunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(".,!?;:()[]{}\"'", r) {
			return -1
		}
		return r
	}, s)
}
