package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/config"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/corpus"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/executor"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/models"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/setup"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/setup/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	startTime := time.Now()

	model := flag.String("model", "", "Tracked model whose candidate directory receives the outputs")
	overwrite := flag.Bool("overwrite", false, "Regenerate documents that already have a candidate")

	flag.Parse()

	if *model == "" {
		fmt.Fprintln(os.Stderr, "Usage: generate -model <name> [-overwrite]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := setup.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load environment: %v\n", err)
		os.Exit(1)
	}

	log.Logger = logger.New(cfg.LogLevel, cfg.LogFormat)

	pipeline, err := config.Load(cfg.JudgeConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load judge config")
	}

	target, ok := trackedModel(pipeline, *model)
	if !ok {
		log.Fatal().Str("model", *model).Strs("tracked", pipeline.ModelNames()).Msg("Unknown model")
	}

	generator, err := setup.WireGeneration(ctx, cfg, pipeline, target.Name, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire generator")
	}

	docs, err := corpus.ReadDocuments(ctx, pipeline.Corpus.DocumentsDir, pipeline.Corpus.DocumentExt)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read documents")
	}
	if !*overwrite {
		docs = pending(docs, target)
	}

	log.Info().Str("model", target.Name).Int("documents", len(docs)).Msg("Generating candidates")

	generations, err := generator.Execute(ctx, docs, func(g executor.Generation) error {
		return corpus.WriteCandidate(target, g.DocumentID, g.Text)
	})
	if err != nil {
		log.Fatal().Err(err).Int("written", len(generations)).Msg("Generation aborted")
	}

	accepted := 0
	for _, g := range generations {
		if g.Accepted {
			accepted++
		}
	}

	log.Info().
		Int("documents", len(generations)).
		Int("accepted", accepted).
		Int("fallback", len(generations)-accepted).
		Dur("duration", time.Since(startTime)).
		Msg("Generation complete")
}

func trackedModel(pipeline *config.Config, name string) (config.TrackedModel, bool) {
	for _, m := range pipeline.Models {
		if m.Name == name {
			return m, true
		}
	}
	return config.TrackedModel{}, false
}

func pending(docs []models.Document, m config.TrackedModel) []models.Document {
	var out []models.Document
	for _, doc := range docs {
		if _, err := os.Stat(corpus.CandidatePath(m, doc.ID)); err == nil {
			log.Debug().Str("document_id", doc.ID).Msg("Candidate exists, skipping")
			continue
		}
		out = append(out, doc)
	}
	return out
}
