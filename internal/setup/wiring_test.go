package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/llm/gpt"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

const judgeYAML = `
judge:
  max_attempts: 2
models:
  - name: qwen
    dir: qwen_outputs
  - name: llama
    dir: llama_outputs
`

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(context.Background(), envconfig.MapLookuper(map[string]string{
		"OUTPUT_DIR":           "/tmp/out",
		"REDIS_ADDR":           "redis:6379",
		"POSTGRES_PORT":        "5433",
		"MINIO_USE_SSL":        "true",
		"DEFAULT_LLM_PROVIDER": "ollama",
	}))
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.DefaultProvider != ProviderOllama {
		t.Errorf("DefaultProvider = %q", cfg.DefaultProvider)
	}
	if cfg.StoreBackend != BackendFile {
		t.Errorf("StoreBackend = %q, want file", cfg.StoreBackend)
	}
	if cfg.AssessmentDir != "/tmp/out" {
		t.Errorf("AssessmentDir = %q, want it to follow OUTPUT_DIR", cfg.AssessmentDir)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.Prefix != "summary-judge" {
		t.Errorf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Postgres.Port != "5433" || cfg.Postgres.SSLMode != "disable" {
		t.Errorf("unexpected postgres config: %+v", cfg.Postgres)
	}
	if !cfg.Minio.UseSSL {
		t.Error("expected MINIO_USE_SSL to be parsed")
	}
}

func TestCreateLLMClient(t *testing.T) {
	cfg := &Config{OllamaURL: "http://ollama:11434", OllamaModel: "llama3"}

	t.Run("model override", func(t *testing.T) {
		client, err := createLLMClient(context.Background(), ProviderOllama, "qwen2.5", cfg)
		if err != nil {
			t.Fatalf("createLLMClient() error: %v", err)
		}
		if got := client.(*gpt.Client).ModelID; got != "qwen2.5" {
			t.Errorf("ModelID = %q, want qwen2.5", got)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		if _, err := createLLMClient(context.Background(), "watson", "", cfg); err == nil {
			t.Error("expected error for unknown provider")
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		if _, err := createLLMClient(context.Background(), ProviderAnthropic, "", cfg); err == nil {
			t.Error("expected error without an API key")
		}
	})
}

func TestNewStore_UnknownBackend(t *testing.T) {
	logger := zerolog.Nop()
	if _, err := NewStore(context.Background(), &Config{StoreBackend: "cassandra"}, &logger); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestWire(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "judge.yaml")
	if err := os.WriteFile(path, []byte(judgeYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{
		DefaultProvider: ProviderOllama,
		OllamaModel:     "llama3",
		JudgeConfigPath: path,
		StoreBackend:    BackendFile,
		OutputDir:       filepath.Join(dir, "out"),
		AssessmentDir:   filepath.Join(dir, "out"),
	}
	logger := zerolog.Nop()

	deps, err := Wire(context.Background(), cfg, &logger)
	if err != nil {
		t.Fatalf("Wire() error: %v", err)
	}
	defer deps.Close()

	if diff := cmp.Diff([]string{"qwen", "llama"}, deps.Config.ModelNames()); diff != "" {
		t.Errorf("model order mismatch (-want +got):\n%s", diff)
	}
	if deps.EvaluationExecutor == nil || deps.AssessmentExecutor == nil {
		t.Error("expected executors to be wired")
	}

	gen, err := WireGeneration(context.Background(), cfg, deps.Config, "qwen", &logger)
	if err != nil {
		t.Fatalf("WireGeneration() error: %v", err)
	}
	if gen == nil {
		t.Error("expected generation executor")
	}
}

func TestWire_MissingConfigFile(t *testing.T) {
	logger := zerolog.Nop()
	cfg := &Config{DefaultProvider: ProviderOllama, OllamaModel: "m", JudgeConfigPath: filepath.Join(t.TempDir(), "nope.yaml")}

	if _, err := Wire(context.Background(), cfg, &logger); err == nil {
		t.Error("expected error for missing judge config")
	}
}
