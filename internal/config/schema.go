package config

import "time"

// Config is the pipeline configuration loaded from YAML.
type Config struct {
	Judge      JudgeSettings      `yaml:"judge"`
	Assessment AssessmentSettings `yaml:"assessment"`
	Generation GenerationSettings `yaml:"generation"`
	Corpus     CorpusSettings     `yaml:"corpus"`
	// Models are the evaluated models, judged in this order for every document.
	Models []TrackedModel `yaml:"models"`
	// Templates overrides built-in prompt text by kind (judging, assessment, validation, generation).
	Templates map[string]string `yaml:"templates"`
}

// ModelConfig holds the judge invocation parameters.
type ModelConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Retry       bool    `yaml:"retry"`
}

type JudgeSettings struct {
	Model       ModelConfig   `yaml:"model"`
	MaxAttempts int           `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
	// CorrectiveHint appends a note to retried prompts saying the previous
	// answer was not valid. Off by default: retries resend the identical prompt.
	CorrectiveHint bool   `yaml:"corrective_hint"`
	HintText       string `yaml:"hint_text"`
	// Task is the original task description shown to the judge, if any.
	Task string `yaml:"task"`
}

type AssessmentSettings struct {
	// Model overrides the judge model parameters; nil inherits them.
	Model     *ModelConfig `yaml:"model"`
	Separator string       `yaml:"separator"`
}

type GenerationSettings struct {
	Model            *ModelConfig `yaml:"model"`
	Question         string       `yaml:"question"`
	AffirmativeToken string       `yaml:"affirmative_token"`
	Fallback         string       `yaml:"fallback"`
	MaxAttempts      int          `yaml:"max_attempts"`
	MaxTopics        int          `yaml:"max_topics"`
	Sections         []string     `yaml:"sections"`
}

type CorpusSettings struct {
	DocumentsDir string `yaml:"documents_dir"`
	DocumentExt  string `yaml:"document_ext"`
	// MissingCandidate is "fail" (abort the load) or "skip" (drop the document).
	MissingCandidate string `yaml:"missing_candidate"`
}

// TrackedModel declares where a model's candidate responses live. The
// candidate for document <id> is read from Dir/<id><Suffix>.
type TrackedModel struct {
	Name   string `yaml:"name"`
	Dir    string `yaml:"dir"`
	Suffix string `yaml:"suffix"`
}

// ModelNames returns the tracked model names in declared order.
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for _, m := range c.Models {
		names = append(names, m.Name)
	}
	return names
}
