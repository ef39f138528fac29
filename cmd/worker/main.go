package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/setup"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/setup/logger"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/stream"
	"github.com/povarna/generative-ai-agents/summary-judge/internal/stream/redis"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found")
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

	consumerName := os.Getenv("HOSTNAME")
	if consumerName == "" {
		consumerName, _ = os.Hostname()
	}

	streamCfg := &stream.StreamConfig{
		Provider: os.Getenv("STREAM_PROVIDER"),
		RedisConfig: redis.NewRedisStreamConfig(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			os.Getenv("JUDGE_STREAM"),
			os.Getenv("JUDGE_GROUP"),
			consumerName,
		),
	}

	consumer, err := stream.NewStreamConsumer(ctx, streamCfg, deps.EvaluationExecutor, deps.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stream consumer")
	}
	defer consumer.Stop()

	if err := consumer.Setup(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup consumer")
	}

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Consumer stopped with error")
	}

	log.Info().Msg("Judge worker stopped")
}
