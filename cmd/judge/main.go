package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/corpus"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/executor"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/report"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/setup"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/setup/logger"
	"github.com/rs/zerolog/log"
)

const (
	stageAll      = "all"
	stageEvaluate = "evaluate"
	stageAssess   = "assess"
)

func main() {
	startTime := time.Now()

	input := flag.String("input", "", "JSONL corpus path ('-' for stdin). Empty reads the directory corpus from the judge config")
	stage := flag.String("stage", stageAll, "Pipeline stage: 'evaluate', 'assess' or 'all'")
	reportPath := flag.String("report", "", "Markdown report path. Empty writes to stdout")
	dryRun := flag.Bool("dry-run", false, "Load and join the corpus without judging")

	flag.Parse()

	if *stage != stageAll && *stage != stageEvaluate && *stage != stageAssess {
		fmt.Fprintf(os.Stderr, "invalid -stage %q: supported: all, evaluate, assess\n", *stage)
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := setup.LoadConfig(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load environment: %v\n", err)
		os.Exit(1)
	}

	log.Logger = logger.New(cfg.LogLevel, cfg.LogFormat)

	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer deps.Close()

	in := report.Input{Models: deps.Config.ModelNames()}

	if *stage != stageAssess {
		entries, err := loadCorpus(ctx, *input, deps)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load corpus")
		}
		log.Info().Int("documents", len(entries)).Msg("Corpus loaded")

		if *dryRun {
			log.Info().Msg("Dry run complete")
			return
		}

		run, err := deps.EvaluationExecutor.Execute(ctx, entries)
		if err != nil {
			log.Fatal().Err(err).Str("run_id", run.RunID).Msg("Evaluation aborted")
		}
		in.Failures = run.Failures

		log.Info().
			Str("run_id", run.RunID).
			Int("documents", run.Documents).
			Int("judged", run.Judged).
			Int("failures", len(run.Failures)).
			Msg("Evaluation complete")
	}

	stats, err := deps.AssessmentExecutor.Stats(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to aggregate evaluations")
	}
	in.Stats = stats

	if *stage != stageEvaluate {
		assessed, err := deps.AssessmentExecutor.Execute(ctx, stats, in.Models)
		if err != nil {
			log.Fatal().Err(err).Msg("Assessment aborted")
		}
		in.Assessed = assessed.Assessed
		logAssessment(assessed)
	}

	markdown, err := report.Markdown(in)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render report")
	}
	if err := writeReport(*reportPath, markdown); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	log.Info().Dur("duration", time.Since(startTime)).Msg("Judge run complete")
}

func loadCorpus(ctx context.Context, input string, deps *setup.Dependencies) ([]corpus.Entry, error) {
	pipeline := deps.Config

	if input == "" {
		log.Info().Str("dir", pipeline.Corpus.DocumentsDir).Msg("Reading directory corpus")
		return corpus.NewDirSource(pipeline.Corpus, pipeline.Models, deps.Logger).Load(ctx)
	}

	var r io.Reader
	if input == "-" {
		r = os.Stdin
		log.Info().Msg("Reading from stdin")
	} else {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file %s: %w", input, err)
		}
		defer f.Close()
		r = f
		log.Info().Str("file", input).Msg("Reading input file")
	}

	return corpus.NewJSONLSource(r, pipeline.ModelNames(), pipeline.Corpus.MissingCandidate, deps.Logger).Load(ctx)
}

func logAssessment(r executor.AssessmentReport) {
	log.Info().
		Strs("assessed", r.Assessed).
		Strs("no_data", r.NoData).
		Strs("failed", r.Failed).
		Msg("Assessment complete")
}

func writeReport(path, markdown string) error {
	if path == "" {
		_, err := io.WriteString(os.Stdout, markdown)
		return err
	}
	return os.WriteFile(path, []byte(markdown), 0o644)
}
