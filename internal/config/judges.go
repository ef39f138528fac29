package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/prompt"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath    = "configs/judge.yaml"
	DefaultMaxAttempts   = 3
	DefaultTimeout       = 120 * time.Second
	DefaultSuffix        = ".txt_output.txt"
	DefaultAffirmative   = "Sim"
	DefaultFallback      = "Erro: Formato inválido após 3 tentativas."
	DefaultSeparator     = "\n\n"
	DefaultMaxTopics     = 10
	MissingCandidateFail = "fail"
	MissingCandidateSkip = "skip"
)

var ErrInvalidConfig = errors.New("invalid config")

// LoadJudgeConfig loads the YAML file named by JUDGE_CONFIG_PATH, falling
// back to configs/judge.yaml.
func LoadJudgeConfig() (*Config, error) {
	path := os.Getenv("JUDGE_CONFIG_PATH")
	if path == "" {
		path = DefaultConfigPath
	}
	return Load(path)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Judge.Model.MaxTokens == 0 {
		cfg.Judge.Model.MaxTokens = 512
	}
	if cfg.Judge.MaxAttempts == 0 {
		cfg.Judge.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Judge.Timeout == 0 {
		cfg.Judge.Timeout = DefaultTimeout
	}
	if cfg.Judge.CorrectiveHint && cfg.Judge.HintText == "" {
		cfg.Judge.HintText = prompt.DefaultCorrectiveHint
	}

	if cfg.Assessment.Model == nil {
		m := cfg.Judge.Model
		cfg.Assessment.Model = &m
	}
	if cfg.Assessment.Separator == "" {
		cfg.Assessment.Separator = DefaultSeparator
	}

	if cfg.Generation.Model == nil {
		m := cfg.Judge.Model
		cfg.Generation.Model = &m
	}
	if cfg.Generation.Question == "" {
		cfg.Generation.Question = prompt.DefaultQuestion
	}
	if cfg.Generation.AffirmativeToken == "" {
		cfg.Generation.AffirmativeToken = DefaultAffirmative
	}
	if cfg.Generation.Fallback == "" {
		cfg.Generation.Fallback = DefaultFallback
	}
	if cfg.Generation.MaxAttempts == 0 {
		cfg.Generation.MaxAttempts = cfg.Judge.MaxAttempts
	}
	if cfg.Generation.MaxTopics == 0 {
		cfg.Generation.MaxTopics = DefaultMaxTopics
	}
	if len(cfg.Generation.Sections) == 0 {
		cfg.Generation.Sections = []string{"Tarefa 1:", "Tarefa 2:"}
	}

	if cfg.Corpus.DocumentExt == "" {
		cfg.Corpus.DocumentExt = ".txt"
	}
	if cfg.Corpus.MissingCandidate == "" {
		cfg.Corpus.MissingCandidate = MissingCandidateFail
	}

	for i := range cfg.Models {
		if cfg.Models[i].Suffix == "" {
			cfg.Models[i].Suffix = DefaultSuffix
		}
	}
}

func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("%w: no models configured", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("%w: model at index %d has no name", ErrInvalidConfig, i)
		}
		if seen[m.Name] {
			return fmt.Errorf("%w: duplicate model name %q", ErrInvalidConfig, m.Name)
		}
		seen[m.Name] = true
	}

	for name, mc := range map[string]*ModelConfig{
		"judge":      &c.Judge.Model,
		"assessment": c.Assessment.Model,
		"generation": c.Generation.Model,
	} {
		if mc == nil {
			continue
		}
		if mc.MaxTokens < 0 {
			return fmt.Errorf("%w: %s model has negative max_tokens", ErrInvalidConfig, name)
		}
		if mc.Temperature < 0 || mc.Temperature > 1 {
			return fmt.Errorf("%w: %s model has invalid temperature %.2f", ErrInvalidConfig, name, mc.Temperature)
		}
	}

	if c.Judge.MaxAttempts < 1 {
		return fmt.Errorf("%w: max_attempts must be at least 1", ErrInvalidConfig)
	}
	if c.Judge.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("%w: generation max_attempts must be at least 1", ErrInvalidConfig)
	}

	switch c.Corpus.MissingCandidate {
	case MissingCandidateFail, MissingCandidateSkip, "":
	default:
		return fmt.Errorf("%w: missing_candidate must be %q or %q", ErrInvalidConfig, MissingCandidateFail, MissingCandidateSkip)
	}

	overrides := make(map[prompt.Kind]string, len(c.Templates))
	for kind, text := range c.Templates {
		switch prompt.Kind(kind) {
		case prompt.KindJudging, prompt.KindAssessment, prompt.KindValidation, prompt.KindGeneration:
			overrides[prompt.Kind(kind)] = text
		default:
			return fmt.Errorf("%w: unknown template kind %q", ErrInvalidConfig, kind)
		}
	}
	if _, err := prompt.NewRenderer(prompt.WithOverrides(overrides)...); err != nil {
		return fmt.Errorf("%w: invalid prompt template: %v", ErrInvalidConfig, err)
	}

	return nil
}

// TemplateOverrides returns the configured template text keyed by kind.
func (c *Config) TemplateOverrides() map[prompt.Kind]string {
	overrides := make(map[prompt.Kind]string, len(c.Templates))
	for kind, text := range c.Templates {
		overrides[prompt.Kind(kind)] = text
	}
	return overrides
}
