package prechecks

import (
	"sync"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
)

// PassScore is the score every check must reach for an output to pass.
const PassScore = 1.0

type Runner struct {
	Checkers []Checker
}

func NewRunner(checkers []Checker) *Runner {
	return &Runner{
		Checkers: checkers,
	}
}

// Default builds the checks for the two-section generation format.
func Default(sections []string, maxTopics int) *Runner {
	checks := []Checker{NewFormatChecker(sections)}
	if len(sections) > 0 {
		checks = append(checks, NewLengthChecker(sections[0], maxTopics), NewOverlapChecker(sections[0]))
	}
	return NewRunner(checks)
}

// Run executes every checker and returns results in checker order.
func (r *Runner) Run(generationContext models.GenerationContext) []models.CheckResult {
	results := make([]models.CheckResult, len(r.Checkers))
	var wg sync.WaitGroup

	for i, checker := range r.Checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			results[i] = c.Check(generationContext)
		}(i, checker)
	}

	wg.Wait()
	return results
}

// Failed returns the results that did not reach PassScore. The overlap
// score is advisory and never fails an output on its own.
func Failed(results []models.CheckResult) []models.CheckResult {
	var failed []models.CheckResult
	for _, res := range results {
		if res.Name == "overlap-checker" {
			continue
		}
		if res.Score < PassScore {
			failed = append(failed, res)
		}
	}
	return failed
}
