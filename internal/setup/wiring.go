package setup

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/summary-judge/internal/aggregator"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/config"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/executor"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/judge"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm/anthropic"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm/gemini"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prechecks"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/prompt"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/redis"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store/filestore"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store/objectstore"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store/pgstore"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/store/redisstore"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

const (
	ProviderBedrock   = "bedrock"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"

	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMinio    = "minio"
)

// Config is the process environment. Pipeline behaviour lives in the YAML
// file named by JudgeConfigPath.
type Config struct {
	DefaultProvider string `env:"DEFAULT_LLM_PROVIDER,default=bedrock"`

	AWSRegion     string `env:"AWS_REGION,default=us-east-1"`
	ClaudeModelID string `env:"CLAUDE_MODEL_ID"`

	OpenAIKey     string `env:"OPEN_AI_KEY"`
	OpenAIModelID string `env:"OPEN_AI_MODEL_ID"`
	OpenAIBaseURL string `env:"OPEN_AI_BASE_URL"`

	AnthropicKey     string `env:"ANTHROPIC_API_KEY"`
	AnthropicModelID string `env:"ANTHROPIC_MODEL_ID"`

	GeminiKey      string `env:"GEMINI_API_KEY"`
	GoogleProject  string `env:"GOOGLE_CLOUD_PROJECT"`
	GoogleLocation string `env:"GOOGLE_CLOUD_LOCATION"`
	GeminiModelID  string `env:"GEMINI_MODEL_ID"`

	OllamaURL   string `env:"OLLAMA_URL,default=http://localhost:11434"`
	OllamaModel string `env:"OLLAMA_MODEL"`

	// GenerationProvider and GenerationModelID select the model that writes
	// candidate responses. Empty values reuse the judge provider.
	GenerationProvider string `env:"GENERATION_LLM_PROVIDER"`
	GenerationModelID  string `env:"GENERATION_MODEL_ID"`

	JudgeConfigPath string `env:"JUDGE_CONFIG_PATH,default=configs/judge.yaml"`

	StoreBackend  string `env:"STORE_BACKEND,default=file"`
	OutputDir     string `env:"OUTPUT_DIR,default=output"`
	AssessmentDir string `env:"ASSESSMENT_DIR"`

	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Minio    MinioConfig    `env:",prefix=MINIO_"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=console"`
	APIPort   string `env:"API_PORT,default=8080"`
}

type RedisConfig struct {
	Addr       string `env:"ADDR,default=localhost:6379"`
	Password   string `env:"PASSWORD"`
	DB         int    `env:"DB,default=0"`
	MaxRetries int    `env:"MAX_RETRIES,default=5"`
	Prefix     string `env:"PREFIX,default=summary-judge"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=postgres"`
	Password string `env:"PASSWORD"`
	Database string `env:"DB,default=summary_judge"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type MinioConfig struct {
	Endpoint        string `env:"ENDPOINT,default=localhost:9000"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	Bucket          string `env:"BUCKET,default=summary-judge"`
	UseSSL          bool   `env:"USE_SSL,default=false"`
}

// Dependencies are the wired components shared by every command.
type Dependencies struct {
	Config             *config.Config
	Store              store.Store
	Renderer           *prompt.Renderer
	Aggregator         *aggregator.Aggregator
	EvaluationExecutor *executor.EvaluationExecutor
	AssessmentExecutor *executor.AssessmentExecutor
	Logger             *zerolog.Logger
}

// Close releases the store.
func (d *Dependencies) Close() error {
	return d.Store.Close()
}

func LoadConfig(ctx context.Context) (*Config, error) {
	return loadConfig(ctx, envconfig.OsLookuper())
}

func loadConfig(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if cfg.AssessmentDir == "" {
		cfg.AssessmentDir = cfg.OutputDir
	}
	return &cfg, nil
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	pipeline, err := config.Load(cfg.JudgeConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load judge config: %w", err)
	}

	llmClient, err := createLLMClient(ctx, cfg.DefaultProvider, "", cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.DefaultProvider, err)
	}

	renderer, err := prompt.NewRenderer(prompt.WithOverrides(pipeline.TemplateOverrides())...)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt renderer: %w", err)
	}

	recordStore, err := NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := judge.Options{MaxAttempts: pipeline.Judge.MaxAttempts}
	if pipeline.Judge.CorrectiveHint {
		opts.CorrectiveHint = pipeline.Judge.HintText
	}

	judgeClient := judge.NewClient(llmClient, pipeline.Judge.Model, pipeline.Judge.Timeout, logger)
	judgeController := judge.NewController(renderer, judgeClient, opts, logger)

	assessmentClient := judge.NewClient(llmClient, *pipeline.Assessment.Model, pipeline.Judge.Timeout, logger)
	assessmentController := judge.NewController(renderer, assessmentClient, opts, logger)

	agg := aggregator.NewAggregator(logger)
	evaluations := executor.NewEvaluationExecutor(judgeController, recordStore, pipeline.ModelNames(), pipeline.Judge.Task, logger)
	assessments := executor.NewAssessmentExecutor(assessmentController, recordStore, agg, pipeline.ModelNames(), pipeline.Assessment.Separator, logger)

	return &Dependencies{
		Config:             pipeline,
		Store:              recordStore,
		Renderer:           renderer,
		Aggregator:         agg,
		EvaluationExecutor: evaluations,
		AssessmentExecutor: assessments,
		Logger:             logger,
	}, nil
}

// WireGeneration builds the candidate generator for model. The validator
// uses the judge provider; generation uses GENERATION_LLM_PROVIDER.
func WireGeneration(ctx context.Context, cfg *Config, pipeline *config.Config, model string, logger *zerolog.Logger) (*executor.GenerationExecutor, error) {
	renderer, err := prompt.NewRenderer(prompt.WithOverrides(pipeline.TemplateOverrides())...)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt renderer: %w", err)
	}

	provider := cfg.GenerationProvider
	if provider == "" {
		provider = cfg.DefaultProvider
	}
	generatorLLM, err := createLLMClient(ctx, provider, cfg.GenerationModelID, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s generation client: %w", provider, err)
	}
	validatorLLM, err := createLLMClient(ctx, cfg.DefaultProvider, "", cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s validation client: %w", cfg.DefaultProvider, err)
	}

	gen := pipeline.Generation
	generator := judge.NewClient(generatorLLM, *gen.Model, pipeline.Judge.Timeout, logger)
	validator := judge.NewValidator(
		renderer,
		judge.NewClient(validatorLLM, pipeline.Judge.Model, pipeline.Judge.Timeout, logger),
		gen.AffirmativeToken,
		logger,
	)

	return executor.NewGenerationExecutor(
		renderer,
		generator,
		prechecks.Default(gen.Sections, gen.MaxTopics),
		validator,
		executor.GenerationOptions{
			Model:       model,
			Question:    gen.Question,
			Fallback:    gen.Fallback,
			MaxAttempts: gen.MaxAttempts,
		},
		logger,
	), nil
}

// NewStore opens the backend selected by STORE_BACKEND.
func NewStore(ctx context.Context, cfg *Config, logger *zerolog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case BackendFile, "":
		s, err := filestore.New(cfg.OutputDir, cfg.AssessmentDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return s, nil
	case BackendRedis:
		client, err := redis.ConnectRedis(ctx, redis.Options{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			MaxRetries: cfg.Redis.MaxRetries,
		}, logger)
		if err != nil {
			return nil, err
		}
		return redisstore.New(client, cfg.Redis.Prefix, logger), nil
	case BackendPostgres:
		s, err := pgstore.New(ctx, pgstore.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, nil
	case BackendMinio:
		s, err := objectstore.New(ctx, objectstore.Config{
			Endpoint:        cfg.Minio.Endpoint,
			AccessKeyID:     cfg.Minio.AccessKeyID,
			SecretAccessKey: cfg.Minio.SecretAccessKey,
			BucketName:      cfg.Minio.Bucket,
			UseSSL:          cfg.Minio.UseSSL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open object store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func createLLMClient(ctx context.Context, provider, modelOverride string, cfg *Config) (llm.LLMClient, error) {
	pick := func(model string) string {
		if modelOverride != "" {
			return modelOverride
		}
		return model
	}

	switch provider {
	case ProviderBedrock:
		return bedrock.NewClient(ctx, cfg.AWSRegion, pick(cfg.ClaudeModelID))
	case ProviderOpenAI:
		return gpt.NewClient(cfg.OpenAIKey, pick(cfg.OpenAIModelID), cfg.OpenAIBaseURL)
	case ProviderAnthropic:
		return anthropic.NewClient(cfg.AnthropicKey, pick(cfg.AnthropicModelID))
	case ProviderGemini:
		return gemini.NewClient(ctx, cfg.GeminiKey, cfg.GoogleProject, cfg.GoogleLocation, pick(cfg.GeminiModelID))
	case ProviderOllama:
		return gpt.NewOllamaClient(cfg.OllamaURL, pick(cfg.OllamaModel))
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
